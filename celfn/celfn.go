// Package celfn declares derivation paths as CEL expressions, the
// counterpart to exprfn for sources that standardize on CEL. Every
// dependency key is declared as a dyn variable of the same name.
package celfn

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"

	fetcher "github.com/fetcher-fn/fetcher-go"
)

// Path compiles expression once and returns a path evaluating it per
// fetch.
func Path(expression string, deps ...fetcher.Key) (fetcher.Path, error) {
	if expression == "" {
		return fetcher.Path{}, fmt.Errorf("celfn: expression must not be empty")
	}

	opts := make([]celgo.EnvOption, 0, len(deps))
	for _, dep := range deps {
		opts = append(opts, celgo.Variable(string(dep), celgo.DynType))
	}
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return fetcher.Path{}, fmt.Errorf("celfn: environment: %w", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fetcher.Path{}, fmt.Errorf("celfn: compile %q: %w", expression, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return fetcher.Path{}, fmt.Errorf("celfn: program %q: %w", expression, err)
	}

	return fetcher.Path{
		Deps: deps,
		Producer: fetcher.Func(func(vals fetcher.Values) (any, error) {
			activation := make(map[string]any, len(vals))
			for key, val := range vals {
				activation[string(key)] = val
			}
			out, _, err := program.Eval(activation)
			if err != nil {
				return nil, fmt.Errorf("celfn: eval %q: %w", expression, err)
			}
			return out.Value(), nil
		}),
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
