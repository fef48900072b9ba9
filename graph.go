package fetcher

import (
	"sort"
	"sync"

	"github.com/go-logr/logr"
)

// Graph is a normalized specification plus the process-lifetime state
// shared by every scope built from it: the producer cost table and the
// timing listeners. Multiple graphs never interfere; each owns its own
// cost table.
type Graph struct {
	paths map[Key][]*path
	costs *costTable
	log   logr.Logger

	mu        sync.RWMutex
	listeners map[int]TimingListener
	nextID    int
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger routes engine tracing through log. Resolution is silent
// by default.
func WithLogger(log logr.Logger) Option {
	return func(g *Graph) {
		g.log = log
	}
}

// New validates and normalizes src, once per spec definition.
// Malformed declarations and unbreakable dependency cycles fail here,
// never at resolution time.
func New(src Source, opts ...Option) (*Graph, error) {
	normalized, err := normalize(src)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		paths:     normalized,
		costs:     newCostTable(),
		log:       logr.Discard(),
		listeners: make(map[int]TimingListener),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Keys returns the declared keys in lexical order.
func (g *Graph) Keys() []Key {
	keys := make([]Key, 0, len(g.paths))
	for key := range g.paths {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Dependencies returns the dependency list of every declared path for
// key, in declaration order. It is empty for undeclared keys.
func (g *Graph) Dependencies(key Key) [][]Key {
	paths := g.paths[key]
	out := make([][]Key, len(paths))
	for i, p := range paths {
		deps := make([]Key, len(p.deps))
		copy(deps, p.deps)
		out[i] = deps
	}
	return out
}

// Subscribe registers a listener for timing events. The returned
// function removes it again.
func (g *Graph) Subscribe(l TimingListener) (cancel func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = l
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

func (g *Graph) publish(ev TimingEvent) {
	g.mu.RLock()
	listeners := make([]TimingListener, 0, len(g.listeners))
	for _, l := range g.listeners {
		listeners = append(listeners, l)
	}
	g.mu.RUnlock()

	for _, l := range listeners {
		l.FetchCompleted(ev)
	}
}
