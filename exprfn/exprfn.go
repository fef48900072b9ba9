// Package exprfn declares derivation paths as expr-lang expressions
// evaluated over the resolved dependency mapping: every dependency key
// is bound as a variable of the same name.
package exprfn

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	fetcher "github.com/fetcher-fn/fetcher-go"
)

// Path compiles expression once and returns a path evaluating it per
// fetch.
func Path(expression string, deps ...fetcher.Key) (fetcher.Path, error) {
	if expression == "" {
		return fetcher.Path{}, fmt.Errorf("exprfn: expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return fetcher.Path{}, fmt.Errorf("exprfn: compile %q: %w", expression, err)
	}
	return fetcher.Path{
		Deps:     deps,
		Producer: fetcher.Func(run(program, expression)),
	}, nil
}

// MustPath is Path, panicking on compile errors. Meant for static
// declarations.
func MustPath(expression string, deps ...fetcher.Key) fetcher.Path {
	p, err := Path(expression, deps...)
	if err != nil {
		panic(err)
	}
	return p
}

func run(program *exprvm.Program, expression string) func(fetcher.Values) (any, error) {
	return func(deps fetcher.Values) (any, error) {
		env := make(map[string]any, len(deps))
		for key, val := range deps {
			env[string(key)] = val
		}
		out, err := exprlang.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("exprfn: eval %q: %w", expression, err)
		}
		return out, nil
	}
}
