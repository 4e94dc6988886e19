package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Manager holds named filter presets and compiles ad-hoc expressions
type Manager struct {
	compiler Compiler
	filters  map[string]CompiledFilter
	mu       sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewExprCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterFilter registers a new filter or updates an existing one
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers multiple filters at once. Nothing is
// registered unless every expression compiles.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for _, name := range slices.Sorted(maps.Keys(filters)) {
		filter, err := m.compiler.Compile(filters[name])
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve combines the named presets and an ad-hoc expression into one
// filter that matches only when all of them match. It returns nil when
// neither is given.
func (m *Manager) Resolve(presets []string, where string) (CompiledFilter, error) {
	parts := make([]string, 0, len(presets)+1)
	for _, name := range presets {
		filter, ok := m.GetFilter(name)
		if !ok {
			return nil, fmt.Errorf("filter preset '%s' not found (available: %s)", name, strings.Join(m.ListFilters(), ", "))
		}
		parts = append(parts, "("+filter.Expression()+")")
	}
	if where = strings.TrimSpace(where); where != "" {
		parts = append(parts, "("+where+")")
	}

	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
		if len(presets) == 1 {
			filter, _ := m.GetFilter(presets[0])
			return filter, nil
		}
		return m.compiler.Compile(where)
	}

	return m.compiler.Compile(strings.Join(parts, " and "))
}
