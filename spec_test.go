package fetcher

import (
	"errors"
	"testing"
)

func TestNormalizeDeclarationForms(t *testing.T) {
	src := Source{
		"fromPath": Provide(func() (any, error) { return 1, nil }),
		"fromPaths": []Path{
			Derive(func(deps Values) (any, error) { return deps["fromPath"], nil }, "fromPath"),
			Provide(func() (any, error) { return 2, nil }),
		},
		"fromProducer": Supply(func() (any, error) { return 3, nil }),
		"fromNoArgFunc": func() (any, error) {
			return 4, nil
		},
		"fromDepsFunc": func(deps Values) (any, error) {
			return 5, nil
		},
		"fromCallbackFunc": func(deps Values, done Done) {
			done(nil, 6)
		},
	}

	g, err := New(src)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := len(g.Keys()); got != 6 {
		t.Errorf("expected 6 keys, got %d", got)
	}

	scope := g.NewScope()
	for key, want := range map[Key]int{
		"fromPath": 1, "fromProducer": 3, "fromNoArgFunc": 4,
		"fromDepsFunc": 5, "fromCallbackFunc": 6,
	} {
		val, err := scope.Resolve(key)
		if err != nil {
			t.Fatalf("resolving %q: %v", key, err)
		}
		if val != want {
			t.Errorf("resolving %q: expected %d, got %v", key, want, val)
		}
	}
}

func TestNormalizeRejectsMissingProducer(t *testing.T) {
	_, err := New(Source{
		"broken": Path{Deps: []Key{"a"}},
	})

	var specErr *SpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("expected SpecError, got %v", err)
	}
	if specErr.Key != "broken" {
		t.Errorf("expected error for key broken, got %q", specErr.Key)
	}
}

func TestNormalizeRejectsUnsupportedDeclaration(t *testing.T) {
	_, err := New(Source{"broken": 42})

	var specErr *SpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("expected SpecError, got %v", err)
	}
}

func TestNormalizeRejectsEmptyAlternatives(t *testing.T) {
	_, err := New(Source{"broken": []Path{}})

	var specErr *SpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("expected SpecError, got %v", err)
	}
}

func TestNormalizeRejectsNilDeclaration(t *testing.T) {
	_, err := New(Source{"broken": nil})

	var specErr *SpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("expected SpecError, got %v", err)
	}
}

func TestNormalizeRejectsEmptyDependencyKey(t *testing.T) {
	_, err := New(Source{
		"broken": Derive(func(deps Values) (any, error) { return nil, nil }, ""),
	})

	var specErr *SpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("expected SpecError, got %v", err)
	}
}

func TestHardCycleRejected(t *testing.T) {
	_, err := New(Source{
		"a": Derive(func(deps Values) (any, error) { return nil, nil }, "b"),
		"b": Derive(func(deps Values) (any, error) { return nil, nil }, "a"),
	})

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycleErr.Keys) != 2 {
		t.Errorf("expected both keys reported, got %v", cycleErr.Keys)
	}
}

func TestSoftCycleAccepted(t *testing.T) {
	// accountId <-> account cycle is escaped by the profile path.
	src := Source{
		"profile": Provide(func() (any, error) { return map[string]any{"accountId": 7}, nil }),
		"account": Derive(func(deps Values) (any, error) { return nil, nil }, "accountId"),
		"accountId": []Path{
			Derive(func(deps Values) (any, error) { return nil, nil }, "account"),
			Derive(func(deps Values) (any, error) { return nil, nil }, "profile"),
		},
	}

	if _, err := New(src); err != nil {
		t.Fatalf("expected soft cycle to be accepted, got %v", err)
	}
}

func TestUndeclaredDependencyAccepted(t *testing.T) {
	// "session" has no spec entry; it may be seeded into a scope.
	src := Source{
		"user": Derive(func(deps Values) (any, error) { return deps["session"], nil }, "session"),
	}

	g, err := New(src)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	scope := g.NewScope(WithSeed(Values{"session": "s-1"}))
	val, err := scope.Resolve("user")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if val != "s-1" {
		t.Errorf("expected s-1, got %v", val)
	}
}

func TestDependenciesIntrospection(t *testing.T) {
	g, err := New(Source{
		"a": Provide(func() (any, error) { return 1, nil }),
		"b": []Path{
			Derive(func(deps Values) (any, error) { return nil, nil }, "a"),
			Provide(func() (any, error) { return 2, nil }),
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	deps := g.Dependencies("b")
	if len(deps) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(deps))
	}
	if len(deps[0]) != 1 || deps[0][0] != "a" {
		t.Errorf("expected first path to depend on a, got %v", deps[0])
	}
	if len(deps[1]) != 0 {
		t.Errorf("expected second path to have no deps, got %v", deps[1])
	}
}
