// Package fetcher is a lazy, memoized, cost-adaptive dependency
// resolver: declare how named values derive from one another, then ask
// a scope for any of them. The engine walks the dependency graph,
// fetches only what is missing, caches results for the lifetime of the
// scope, and picks among alternative derivations using a running
// average of each producer's observed cost.
//
// # Overview
//
// Fetcher organizes code around three concepts:
//
//  1. Source: the declarative key -> derivation specification
//  2. Graph: a normalized source plus process-lifetime cost statistics
//  3. Scope: one resolution session with its own cache and seed values
//
// # Basic Usage
//
// Declare a source and build a graph once:
//
//	src := fetcher.Source{
//	    "profile": fetcher.Provide(func() (any, error) {
//	        return loadProfile()
//	    }),
//	    "accountId": []fetcher.Path{
//	        fetcher.Derive(func(deps fetcher.Values) (any, error) {
//	            account, err := fetcher.As[*Account](deps, "account")
//	            if err != nil {
//	                return nil, err
//	            }
//	            return account.ID, nil
//	        }, "account"),
//	        fetcher.Derive(func(deps fetcher.Values) (any, error) {
//	            profile, err := fetcher.As[*Profile](deps, "profile")
//	            if err != nil {
//	                return nil, err
//	            }
//	            return profile.AccountID, nil
//	        }, "profile"),
//	    },
//	}
//
//	graph, err := fetcher.New(src)
//
// Then resolve through a scope, typically one per inbound request:
//
//	scope := graph.NewScope(fetcher.WithSeed(fetcher.Values{
//	    "session": session,
//	}))
//
//	accountID, err := scope.Resolve("accountId")
//
// Values resolve at most once per scope. A second Resolve for the same
// key, or any other key that depends on it, reuses the cached result.
//
// # Alternative Paths
//
// A key may declare several derivation paths. The engine orders them
// by estimated cost, cheapest first, where the estimate is the
// producer's running-average execution time plus the cheapest way to
// derive each dependency that is not already cached. Producers that
// have never run are treated as nearly free so real data is gathered
// eagerly; producers that fail are penalized heavily so persistently
// broken paths sink to the bottom. When an attempt fails, the next
// cheapest path is tried; only when every path fails does the key fail,
// and then its cache entry is evicted so a later call may retry.
//
// # Producers
//
// Three calling conventions exist, each an explicit constructor:
//
//	fetcher.Supply(func() (any, error))           // no dependencies
//	fetcher.Func(func(fetcher.Values) (any, error))
//	fetcher.Callback(func(fetcher.Values, fetcher.Done))
//
// The callback form suits producers that complete asynchronously; only
// the first Done invocation counts, and only its first result is
// honored. There is no timeout or cancellation: a producer that never
// returns hangs every resolution depending on it, so wrap producers
// that need deadlines.
//
// # Futures
//
// Fetch returns a Future immediately; concurrent requests for the same
// unresolved key share one in-flight future.
//
//	fut := scope.Fetch("accountId")
//	val, err := fut.Await()
//
//	fut.Notify(func(val any, err error) { ... })
//
// The bulk accessor resolves arbitrary ad-hoc key sets through the
// same cache:
//
//	vals, err := scope.Get("accountId", "profile")
//
// # Timing Events
//
// Every successful producer execution emits one TimingEvent on the
// graph. Register listeners with Subscribe:
//
//	cancel := graph.Subscribe(fetcher.TimingListenerFunc(func(ev fetcher.TimingEvent) {
//	    log.Printf("%s took %v", ev.Name, ev.FetchDuration)
//	}))
//	defer cancel()
//
// The extensions package ships ready-made listeners for structured
// logging and Prometheus metrics, plus a dependency-tree renderer.
//
// # Cycles
//
// New rejects specs containing keys that no combination of alternative
// paths could ever derive. A cyclic path next to an acyclic
// alternative is legal; at resolution time a path whose cycle is live
// given the current cache is skipped rather than deadlocked.
//
// # Thread Safety
//
// Graphs and scopes are safe for concurrent use. The scope cache is
// scope-private; the cost table is shared by all scopes of a graph and
// synchronized internally.
package fetcher
