package container

import (
	"sort"
	"sync"
)

// Registrar accepts named definitions. Registering a name twice replaces the
// earlier value.
type Registrar interface {
	Register(name string, value any)
}

// Memory is an in-memory Registrar. The zero value is ready to use and safe
// for concurrent access.
type Memory struct {
	values sync.Map // Key: definition name, Value: any
}

var _ Registrar = (*Memory)(nil)

// NewMemory creates an empty in-memory registrar.
func NewMemory() *Memory {
	return &Memory{}
}

// Register implements Registrar.
func (m *Memory) Register(name string, value any) {
	m.values.Store(name, value)
}

// Lookup returns the value registered under name.
func (m *Memory) Lookup(name string) (any, bool) {
	return m.values.Load(name)
}

// Names returns every registered name, sorted.
func (m *Memory) Names() []string {
	var names []string
	m.values.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Snapshot copies every definition into a plain map.
func (m *Memory) Snapshot() map[string]any {
	out := make(map[string]any)
	m.values.Range(func(key, value any) bool {
		out[key.(string)] = value
		return true
	})
	return out
}
