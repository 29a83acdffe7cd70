// Package config defines findstorm's typed configuration and loads it from
// defaults, an optional TOML file and FINDSTORM_ environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/findstorm/internal/config/loader"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "FINDSTORM_"

// Config is the complete configuration.
type Config struct {
	Find    FindConfig    `toml:"find"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
	State   StateConfig   `toml:"state"`
	Script  ScriptConfig  `toml:"script"`
	// Keys maps key names such as "Ctrl+F" to action names. Entries
	// override the default bindings of the terminal host.
	Keys map[string]string `toml:"keys"`
}

// FindConfig configures the find engine.
type FindConfig struct {
	MaxSessions      int  `toml:"max_sessions"`
	NavigationDepth  int  `toml:"navigation_depth"`
	PatternCacheSize int  `toml:"pattern_cache_size"`
	SimpleMode       bool `toml:"simple_mode"`
	Regex            bool `toml:"regex"`
	CaseSensitive    bool `toml:"case_sensitive"`
	WholeWord        bool `toml:"whole_word"`
	// PersistToggles stores toggle changes in the state file.
	PersistToggles bool `toml:"persist_toggles"`
}

// UIConfig configures match highlighting in the terminal host.
type UIConfig struct {
	FindColor           string  `toml:"find_color"`
	AllMatchOpacity     float64 `toml:"all_match_opacity"`
	CurrentMatchOpacity float64 `toml:"current_match_opacity"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level"`
	// File receives log output instead of stderr when set.
	File string `toml:"file"`
}

// StateConfig configures persisted state.
type StateConfig struct {
	// File is the JSON state file. Empty keeps state in memory.
	File string `toml:"file"`
}

// ScriptConfig configures Lua scripts.
type ScriptConfig struct {
	// LuaTimeout bounds a Lua script run, as a Go duration string. "0"
	// disables the bound.
	LuaTimeout string `toml:"lua_timeout"`
}

// Timeout returns the parsed LuaTimeout, or zero when it does not parse.
func (s ScriptConfig) Timeout() time.Duration {
	d, _ := time.ParseDuration(s.LuaTimeout)
	return d
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Find: FindConfig{
			MaxSessions:      100,
			NavigationDepth:  1000,
			PatternCacheSize: 64,
		},
		UI: UIConfig{
			FindColor:           "#c87800",
			AllMatchOpacity:     0.3,
			CurrentMatchOpacity: 0.7,
		},
		Logging: LoggingConfig{Level: "info"},
		Script:  ScriptConfig{LuaTimeout: "5s"},
	}
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Find.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("%w: find.max_sessions must be positive, got %d", ErrInvalid, c.Find.MaxSessions))
	}
	if c.Find.NavigationDepth <= 0 {
		errs = append(errs, fmt.Errorf("%w: find.navigation_depth must be positive, got %d", ErrInvalid, c.Find.NavigationDepth))
	}
	if c.Find.PatternCacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: find.pattern_cache_size must not be negative, got %d", ErrInvalid, c.Find.PatternCacheSize))
	}
	for name, v := range map[string]float64{
		"ui.all_match_opacity":     c.UI.AllMatchOpacity,
		"ui.current_match_opacity": c.UI.CurrentMatchOpacity,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%w: %s must be within [0,1], got %g", ErrInvalid, name, v))
		}
	}
	if _, err := colorful.Hex(c.UI.FindColor); err != nil {
		errs = append(errs, fmt.Errorf("%w: ui.find_color: %v", ErrInvalid, err))
	}
	if d, err := time.ParseDuration(c.Script.LuaTimeout); err != nil || d < 0 {
		errs = append(errs, fmt.Errorf("%w: script.lua_timeout must be a non-negative duration, got %q", ErrInvalid, c.Script.LuaTimeout))
	}
	return errors.Join(errs...)
}

// envMapping lists overrides whose names do not follow SECTION_KEY.
func envMapping() map[string]string {
	return map[string]string{
		EnvPrefix + "LOG_LEVEL":      "logging.level",
		EnvPrefix + "LOG_FILE":       "logging.file",
		EnvPrefix + "MAX_SESSIONS":   "find.max_sessions",
		EnvPrefix + "REGEX":          "find.regex",
		EnvPrefix + "CASE_SENSITIVE": "find.case_sensitive",
		EnvPrefix + "WHOLE_WORD":     "find.whole_word",
		EnvPrefix + "SIMPLE_MODE":    "find.simple_mode",
		EnvPrefix + "STATE_FILE":     "state.file",
		EnvPrefix + "LUA_TIMEOUT":    "script.lua_timeout",
	}
}

// Options controls where Load looks.
type Options struct {
	// Path of the TOML file. Empty skips the file.
	Path string
	// ReadFile defaults to os.ReadFile.
	ReadFile loader.ReadFileFunc
	// Environ defaults to os.Environ. Set to a function returning nil to
	// ignore the environment.
	Environ func() []string
}

// Load builds a validated Config from the defaults, the file and the
// environment.
func Load(opts Options) (*Config, error) {
	sources := []loader.Source{
		loader.File{Path: opts.Path, ReadFile: opts.ReadFile},
		loader.Env{Prefix: EnvPrefix, Aliases: envMapping(), Environ: opts.Environ},
	}

	layers := make([]map[string]any, 0, len(sources))
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		layers = append(layers, m)
	}

	cfg := Default()
	if err := decode(loader.Merge(layers...), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode applies a generic map onto cfg by round-tripping through TOML so
// that field tags and type conversion are handled in one place.
func decode(m map[string]any, cfg *Config) error {
	if len(m) == 0 {
		return nil
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode merged config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
