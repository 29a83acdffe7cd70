package dispatcher

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/findstorm/internal/dispatcher/handler"
)

// nameLister is implemented by namespace handlers that can enumerate their
// actions, such as handler.ActionTable.
type nameLister interface {
	Names() []string
}

// routes resolves action names. A namespace handler that claims a name wins
// over an exact registration of the same name.
type routes struct {
	mu         sync.RWMutex
	exact      map[string]handler.Handler
	namespaces map[string]handler.NamespaceHandler
}

func newRoutes() *routes {
	return &routes{
		exact:      make(map[string]handler.Handler),
		namespaces: make(map[string]handler.NamespaceHandler),
	}
}

// add binds name to h. A later binding replaces an earlier one.
func (r *routes) add(name string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exact[name] = h
}

func (r *routes) addNamespace(ns handler.NamespaceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[ns.Namespace()] = ns
}

// lookup returns the handler for name, or nil.
func (r *routes) lookup(name string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if prefix, _, ok := strings.Cut(name, "."); ok {
		if ns := r.namespaces[prefix]; ns != nil && ns.CanHandle(name) {
			return handler.Func(ns.HandleAction)
		}
	}
	if h, ok := r.exact[name]; ok {
		return h
	}
	return nil
}

// names returns every routable action name, sorted.
func (r *routes) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.exact))
	for name := range r.exact {
		seen[name] = struct{}{}
	}
	for _, ns := range r.namespaces {
		if l, ok := ns.(nameLister); ok {
			for _, name := range l.Names() {
				seen[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
