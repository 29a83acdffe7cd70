// Package loader reads configuration layers into nested maps shaped like
// the TOML file, so that layers can be merged before the typed decode.
package loader

// Source is one configuration layer. A source that is absent yields a nil
// map and no error.
type Source interface {
	Load() (map[string]any, error)
}

// ReadFileFunc reads a whole file; os.ReadFile satisfies it.
type ReadFileFunc func(path string) ([]byte, error)

// Merge layers maps left to right into a new map. Later layers win; nested
// tables are merged key by key. The inputs are not modified.
func Merge(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		mergeInto(out, layer)
	}
	return out
}

func mergeInto(dst, src map[string]any) {
	for key, v := range src {
		table, isTable := v.(map[string]any)
		if !isTable {
			dst[key] = v
			continue
		}
		sub, ok := dst[key].(map[string]any)
		if !ok {
			sub = make(map[string]any, len(table))
			dst[key] = sub
		}
		mergeInto(sub, table)
	}
}
