// Package symbols demangles function names for display, caching results
// since the same names are rendered for every block of a function.
package symbols

import (
	"sync"

	"github.com/ianlancetaylor/demangle"
)

// Cache is a goroutine-safe demangling cache.
type Cache struct {
	mu    sync.RWMutex
	full  map[string]string
	short map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		full:  make(map[string]string),
		short: make(map[string]string),
	}
}

var defaultCache = NewCache()

// Demangle returns the demangled form of name using the shared cache. Names
// that are not mangled come back unchanged.
func Demangle(name string) string { return defaultCache.Demangle(name) }

// Short returns the demangled name without parameter lists using the shared
// cache, e.g. "ns::work" for "_ZN2ns4workEi".
func Short(name string) string { return defaultCache.Short(name) }

func (c *Cache) Demangle(name string) string {
	return c.lookup(c.full, name, demangle.NoClones)
}

func (c *Cache) Short(name string) string {
	return c.lookup(c.short, name, demangle.NoClones, demangle.NoParams)
}

func (c *Cache) lookup(m map[string]string, name string, opts ...demangle.Option) string {
	c.mu.RLock()
	v, ok := m[name]
	c.mu.RUnlock()
	if ok {
		return v
	}

	v = demangle.Filter(name, opts...)

	c.mu.Lock()
	m[name] = v
	c.mu.Unlock()
	return v
}
