package fetcher

import (
	"fmt"
	"sort"
)

// Path is one way to derive a key: resolve Deps through the scope,
// then invoke Producer with the resulting mapping.
type Path struct {
	Deps     []Key
	Producer Producer
}

// Provide declares a single zero-dependency path.
func Provide(fn func() (any, error)) Path {
	return Path{Producer: Supply(fn)}
}

// Derive declares a path deriving a value from the named dependencies.
func Derive(fn func(Values) (any, error), deps ...Key) Path {
	return Path{Deps: deps, Producer: Func(fn)}
}

// DeriveCallback declares a dependent path whose producer completes
// through a Done callback.
func DeriveCallback(fn func(Values, Done), deps ...Key) Path {
	return Path{Deps: deps, Producer: Callback(fn)}
}

// Source is the raw key declaration mapping handed to New. Entry
// values may be a Path, a non-empty []Path of alternatives, a bare
// Producer, or one of the three producer function shapes directly:
//
//	func() (any, error)
//	func(Values) (any, error)
//	func(Values, Done)
//
// Anything else fails normalization with a SpecError.
type Source map[Key]any

// path is the normalized form. The declaration index is kept so cost
// ties break in declaration order.
type path struct {
	deps     []Key
	producer Producer
	index    int
}

func normalize(src Source) (map[Key][]*path, error) {
	normalized := make(map[Key][]*path, len(src))
	for key, raw := range src {
		paths, err := normalizeEntry(key, raw)
		if err != nil {
			return nil, err
		}
		normalized[key] = paths
	}
	if err := rejectHardCycles(normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func normalizeEntry(key Key, raw any) ([]*path, error) {
	switch decl := raw.(type) {
	case nil:
		return nil, &SpecError{Key: key, Reason: "declaration is nil"}
	case Path:
		p, err := normalizePath(key, decl, 0)
		if err != nil {
			return nil, err
		}
		return []*path{p}, nil
	case []Path:
		if len(decl) == 0 {
			return nil, &SpecError{Key: key, Reason: "needs at least one path"}
		}
		paths := make([]*path, 0, len(decl))
		for i, d := range decl {
			p, err := normalizePath(key, d, i)
			if err != nil {
				return nil, err
			}
			paths = append(paths, p)
		}
		return paths, nil
	case Producer:
		return []*path{{producer: decl}}, nil
	case func() (any, error):
		return []*path{{producer: Supply(decl)}}, nil
	case func(Values) (any, error):
		return []*path{{producer: Func(decl)}}, nil
	case func(Values, Done):
		return []*path{{producer: Callback(decl)}}, nil
	default:
		return nil, &SpecError{Key: key, Reason: fmt.Sprintf("unsupported declaration type %T", raw)}
	}
}

func normalizePath(key Key, decl Path, index int) (*path, error) {
	if decl.Producer == nil {
		return nil, &SpecError{Key: key, Reason: "path must end in a producer"}
	}
	for _, dep := range decl.Deps {
		if dep == "" {
			return nil, &SpecError{Key: key, Reason: "empty dependency key"}
		}
	}
	deps := make([]Key, len(decl.Deps))
	copy(deps, decl.Deps)
	return &path{deps: deps, producer: decl.Producer, index: index}, nil
}

// rejectHardCycles refuses specs containing keys that no combination
// of alternative paths can ever derive. Dependencies on keys outside
// the spec count as satisfiable: they may be seeded into a scope. A
// cyclic path next to an acyclic alternative is accepted; the engine
// skips it at resolution time when the cycle is live.
func rejectHardCycles(normalized map[Key][]*path) error {
	resolvable := make(map[Key]bool, len(normalized))
	for changed := true; changed; {
		changed = false
		for key, paths := range normalized {
			if resolvable[key] {
				continue
			}
			for _, p := range paths {
				viable := true
				for _, dep := range p.deps {
					if _, declared := normalized[dep]; declared && !resolvable[dep] {
						viable = false
						break
					}
				}
				if viable {
					resolvable[key] = true
					changed = true
					break
				}
			}
		}
	}

	var stuck []Key
	for key := range normalized {
		if !resolvable[key] {
			stuck = append(stuck, key)
		}
	}
	if len(stuck) > 0 {
		sort.Slice(stuck, func(i, j int) bool { return stuck[i] < stuck[j] })
		return &CycleError{Keys: stuck}
	}
	return nil
}
