package loader

import (
	"os"
	"strconv"
	"strings"
)

// Env is the environment layer. A variable listed in Aliases sets the
// dotted key it maps to; any other variable starting with Prefix is read as
// PREFIX_SECTION_KEY and sets section.key, so FINDSTORM_FIND_MAX_SESSIONS
// sets find.max_sessions.
type Env struct {
	Prefix  string
	Aliases map[string]string
	// Environ defaults to os.Environ.
	Environ func() []string
}

func (e Env) Load() (map[string]any, error) {
	environ := e.Environ
	if environ == nil {
		environ = os.Environ
	}

	out := make(map[string]any)
	for _, kv := range environ() {
		name, raw, _ := strings.Cut(kv, "=")
		rest, ok := strings.CutPrefix(name, e.Prefix)
		if !ok {
			continue
		}
		key, aliased := e.Aliases[name]
		if !aliased {
			section, field, ok := strings.Cut(strings.ToLower(rest), "_")
			if !ok || section == "" || field == "" {
				continue
			}
			key = section + "." + field
		}
		set(out, strings.Split(key, "."), scalar(raw))
	}
	return out, nil
}

// scalar reads booleans, integers and decimals; anything else is a string.
func scalar(raw string) any {
	switch strings.ToLower(raw) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if strings.ContainsRune(raw, '.') {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func set(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		sub, ok := m[p].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			m[p] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = v
}
