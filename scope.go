package fetcher

import (
	"math"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scope is one resolution session: an instance-local cache over a
// shared Graph. A key resolves at most once per scope; concurrent
// requests for an unresolved key collapse onto one in-flight future.
type Scope struct {
	id    string
	graph *Graph

	mu    sync.Mutex
	cache map[Key]*Future
}

// ScopeOption configures a scope at construction.
type ScopeOption func(*Scope)

// WithSeed pre-populates the scope with already-known values. Seeded
// keys never invoke a producer and never touch the cost table.
func WithSeed(seed Values) ScopeOption {
	return func(s *Scope) {
		for key, val := range seed {
			s.cache[key] = resolvedFuture(val)
		}
	}
}

// NewScope creates a resolution scope over the graph, typically one
// per logical session such as an inbound request.
func (g *Graph) NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{
		id:    uuid.NewString(),
		graph: g,
		cache: make(map[Key]*Future),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the scope's identity, echoed in timing events.
func (s *Scope) ID() string {
	return s.id
}

// Fetch resolves key to a future. Cached keys return their future
// unchanged; undefined keys fail immediately without a cache write;
// everything else starts (or joins) the resolution chain for key. If
// the chain ultimately fails, the cache entry is evicted so a later
// Fetch may retry.
func (s *Scope) Fetch(key Key) *Future {
	s.mu.Lock()
	if f, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return f
	}
	if len(s.graph.paths[key]) == 0 {
		s.mu.Unlock()
		return failedFuture(&UndefinedKeyError{Key: key})
	}
	f := newFuture()
	s.cache[key] = f
	s.mu.Unlock()

	go func() {
		val, err := s.fetchResult(key)
		if err != nil {
			// Evict before settling so a later call may retry; waiters
			// already holding f still observe this failure.
			s.mu.Lock()
			if s.cache[key] == f {
				delete(s.cache, key)
			}
			s.mu.Unlock()
			s.graph.log.V(1).Info("resolution failed, cache entry evicted",
				"scope", s.id, "key", key, "err", err)
		}
		f.settle(val, err)
	}()
	return f
}

// Resolve is Fetch followed by Await.
func (s *Scope) Resolve(key Key) (any, error) {
	return s.Fetch(key).Await()
}

// FetchAll resolves an ad-hoc set of keys through the scope cache, as
// if they were the dependencies of an identity producer. The future
// settles with a Values mapping, or with the first failure in key
// order.
func (s *Scope) FetchAll(keys ...Key) *Future {
	futs := make([]*Future, len(keys))
	for i, key := range keys {
		futs[i] = s.Fetch(key)
	}

	out := newFuture()
	go func() {
		vals := make(Values, len(keys))
		for i, key := range keys {
			val, err := futs[i].Await()
			if err != nil {
				out.settle(nil, err)
				return
			}
			vals[key] = val
		}
		out.settle(vals, nil)
	}()
	return out
}

// Get is FetchAll followed by Await.
func (s *Scope) Get(keys ...Key) (Values, error) {
	val, err := s.FetchAll(keys...).Await()
	if err != nil {
		return nil, err
	}
	return val.(Values), nil
}

// fetchResult tries key's paths cheapest-first until one succeeds.
func (s *Scope) fetchResult(key Key) (any, error) {
	paths := s.graph.paths[key]

	type candidate struct {
		cost float64
		path *path
	}
	visited := map[Key]bool{key: true}
	ranked := make([]candidate, 0, len(paths))
	for _, p := range paths {
		ranked = append(ranked, candidate{cost: s.estimateCost(p, visited), path: p})
	}
	// Stable: ties keep declaration order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].cost < ranked[j].cost })

	var lastErr error
	attempts := 0
	for _, c := range ranked {
		if math.IsInf(c.cost, 1) {
			// The path cycles back into this resolution given the
			// current cache; running it would deadlock.
			continue
		}
		attempts++
		val, err := s.resolvePath(key, c.path)
		if err == nil {
			return val, nil
		}
		lastErr = err
		s.graph.log.V(1).Info("path failed, falling back",
			"scope", s.id, "key", key, "deps", c.path.deps, "err", err)
	}
	if attempts == 0 {
		return nil, &ExhaustedError{Key: key, Err: errNoViablePath}
	}
	return nil, &ExhaustedError{Key: key, Attempts: attempts, Err: lastErr}
}

// estimateCost is a heuristic lower bound: the producer's own running
// average plus, for every dependency without a settled value, the
// cheapest way to derive that dependency. Settled dependencies are
// free to reuse. In-flight cache entries do NOT count as settled: an
// in-flight entry may be an ancestor of this very estimation, and only
// by walking through it does the visited guard price the live cycle at
// +Inf instead of letting the attempt await its own ancestor. The
// recursion recomputes minima per query instead of memoizing across
// sibling queries; estimation is cheap next to real fetches. visited
// holds the keys on the current estimation chain.
func (s *Scope) estimateCost(p *path, visited map[Key]bool) float64 {
	cost := s.graph.costs.estimate(p.producer)
	for _, dep := range p.deps {
		if s.isSettled(dep) {
			continue
		}
		depCost := s.minDependencyCost(dep, visited)
		if math.IsInf(depCost, 1) {
			return depCost
		}
		cost += depCost
	}
	return cost
}

func (s *Scope) minDependencyCost(dep Key, visited map[Key]bool) float64 {
	if visited[dep] {
		return math.Inf(1)
	}
	paths := s.graph.paths[dep]
	if len(paths) == 0 {
		// Undeclared and not cached: the attempt will surface the
		// undefined-key error, so price it like a failing producer
		// rather than skipping it.
		return failureCost
	}
	visited[dep] = true
	min := math.Inf(1)
	for _, p := range paths {
		if c := s.estimateCost(p, visited); c < min {
			min = c
		}
	}
	delete(visited, dep)
	return min
}

func (s *Scope) isCached(key Key) bool {
	s.mu.Lock()
	_, ok := s.cache[key]
	s.mu.Unlock()
	return ok
}

// isSettled reports whether key holds a resolved value. Failed entries
// are evicted before they settle, so a settled cache entry always
// carries a value.
func (s *Scope) isSettled(key Key) bool {
	s.mu.Lock()
	f, ok := s.cache[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	_, settled := f.Peek()
	return settled
}

// resolvePath fans the path's dependencies out through the shared
// cache, then invokes the producer and records its cost. A failed
// attempt leaves successfully resolved dependencies cached for the
// next attempt.
func (s *Scope) resolvePath(key Key, p *path) (any, error) {
	requestStart := time.Now()

	futs := make([]*Future, len(p.deps))
	for i, dep := range p.deps {
		futs[i] = s.Fetch(dep)
	}
	deps := make(Values, len(p.deps))
	for i, dep := range p.deps {
		val, err := futs[i].Await()
		if err != nil {
			return nil, err
		}
		deps[dep] = val
	}

	fetchStart := time.Now()
	val, err := s.invoke(key, p.producer, deps)
	fetchDuration := time.Since(fetchStart)

	if err != nil {
		s.graph.costs.record(p.producer, failureCost)
		return nil, err
	}
	s.graph.costs.record(p.producer, fetchDuration.Seconds())

	s.graph.publish(TimingEvent{
		Scope:         s.id,
		Name:          key,
		Dependencies:  p.deps,
		RequestStart:  requestStart,
		WaitDuration:  fetchStart.Sub(requestStart),
		FetchStart:    fetchStart,
		FetchDuration: fetchDuration,
		TotalDuration: time.Since(requestStart),
	})
	return val, nil
}

// invoke shields the engine from panicking producers.
func (s *Scope) invoke(key Key, producer Producer, deps Values) (val any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &ProducerPanicError{
				Key:        key,
				Recovered:  recovered,
				StackTrace: debug.Stack(),
			}
		}
	}()
	return producer.Invoke(deps)
}
