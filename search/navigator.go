package search

import (
	"net/url"
	"sync"
)

// Navigator abstracts the address bar. The controller reads search
// state from it and writes state back so the current page is always
// reproducible from the URL alone.
type Navigator interface {
	// Query returns the current URL query values.
	Query() url.Values

	// SetQuery replaces the URL query values without reloading.
	SetQuery(url.Values)
}

// MemoryNavigator is an in-process Navigator. It records every write
// so tests and the CLI can inspect navigation history.
type MemoryNavigator struct {
	mu      sync.Mutex
	current url.Values
	history []url.Values
}

// NewMemoryNavigator returns a navigator seeded with the given query
// values. A nil seed starts from an empty query.
func NewMemoryNavigator(seed url.Values) *MemoryNavigator {
	if seed == nil {
		seed = url.Values{}
	}
	return &MemoryNavigator{current: seed}
}

func (n *MemoryNavigator) Query() url.Values {
	n.mu.Lock()
	defer n.mu.Unlock()
	return cloneValues(n.current)
}

func (n *MemoryNavigator) SetQuery(v url.Values) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = cloneValues(v)
	n.history = append(n.history, n.current)
}

// History returns every query written through SetQuery, oldest first.
func (n *MemoryNavigator) History() []url.Values {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]url.Values, len(n.history))
	copy(out, n.history)
	return out
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		cp := make([]string, len(vals))
		copy(cp, vals)
		out[k] = cp
	}
	return out
}
