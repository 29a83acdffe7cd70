package config

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/findstorm/internal/config/loader"
)

func noEnv() []string { return nil }

func files(m map[string]string) loader.ReadFileFunc {
	return func(path string) ([]byte, error) {
		s, ok := m[path]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return []byte(s), nil
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Find.MaxSessions)
	assert.Equal(t, "#c87800", cfg.UI.FindColor)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(Options{Path: "/missing.toml", ReadFile: files(nil), Environ: noEnv})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	fsys := files(map[string]string{"/c.toml": `
[find]
max_sessions = 7
regex = true

[ui]
all_match_opacity = 0.5
`})
	cfg, err := Load(Options{Path: "/c.toml", ReadFile: fsys, Environ: noEnv})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Find.MaxSessions)
	assert.True(t, cfg.Find.Regex)
	assert.Equal(t, 0.5, cfg.UI.AllMatchOpacity)
	assert.Equal(t, 0.7, cfg.UI.CurrentMatchOpacity, "unset keys keep defaults")
	assert.Equal(t, 1000, cfg.Find.NavigationDepth)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	fsys := files(map[string]string{"/c.toml": "[find]\nmax_sessions = 7\n[logging]\nlevel = \"warn\"\n"})
	env := func() []string {
		return []string{
			"FINDSTORM_MAX_SESSIONS=3",
			"FINDSTORM_LOG_LEVEL=debug",
			"FINDSTORM_WHOLE_WORD=true",
			"FINDSTORM_FIND_PATTERN_CACHE_SIZE=8",
			"FINDSTORM_STATE_FILE=/tmp/state.json",
			"FINDSTORM_LUA_TIMEOUT=250ms",
		}
	}
	cfg, err := Load(Options{Path: "/c.toml", ReadFile: fsys, Environ: env})
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Find.MaxSessions)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Find.WholeWord)
	assert.Equal(t, 8, cfg.Find.PatternCacheSize)
	assert.Equal(t, "/tmp/state.json", cfg.State.File)
	assert.Equal(t, 250*time.Millisecond, cfg.Script.Timeout())
}

func TestLoadParseError(t *testing.T) {
	fsys := files(map[string]string{"/c.toml": "[find\n"})
	_, err := Load(Options{Path: "/c.toml", ReadFile: fsys, Environ: noEnv})

	var serr *loader.SyntaxError
	assert.True(t, errors.As(err, &serr))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Find.MaxSessions = 0
	cfg.UI.AllMatchOpacity = 1.5
	cfg.UI.FindColor = "orange"
	cfg.Script.LuaTimeout = "soon"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "find.max_sessions")
	assert.Contains(t, err.Error(), "ui.all_match_opacity")
	assert.Contains(t, err.Error(), "ui.find_color")
	assert.Contains(t, err.Error(), "script.lua_timeout")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	fsys := files(map[string]string{"/c.toml": "[find]\nmax_sessions = -1\n"})
	_, err := Load(Options{Path: "/c.toml", ReadFile: fsys, Environ: noEnv})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadKeyBindings(t *testing.T) {
	fsys := files(map[string]string{"/c.toml": `
[keys]
"Ctrl+F" = "find.start"
"Alt+X" = "find.replaceAll"
`})
	cfg, err := Load(Options{Path: "/c.toml", ReadFile: fsys, Environ: noEnv})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Ctrl+F": "find.start", "Alt+X": "find.replaceAll"}, cfg.Keys)
}
