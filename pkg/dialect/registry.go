package dialect

import (
	"errors"
	"slices"
	"strings"
	"sync"
)

// Registry of SQL dialects keyed by lower-cased name. The gaussdb and
// postgres dialect packages register themselves from init; the compile and
// query commands resolve the configured database's dialect through Get.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Dialect)
)

// ErrDialectRequired is returned when a compiler is built without a dialect.
var ErrDialectRequired = errors.New("dialect is required")

func registryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns a dialect by name, ignoring case.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[registryKey(name)]
	return d, ok
}

// Register adds d under its name, replacing any dialect already there.
func Register(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[registryKey(d.Name)] = d
}

// List returns all registered dialect names, sorted. Used in the
// "no SQL dialect" error to show what is available.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
