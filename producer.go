package fetcher

import (
	"fmt"
	"sync"
)

// Key names a derivable value. Keys form the vertex set of the
// dependency graph declared by a Source.
type Key string

// Values maps dependency keys to their resolved values. Every producer
// invocation receives one Values covering exactly its declared
// dependencies.
type Values map[Key]any

// As asserts the value stored under key to T.
func As[T any](vals Values, key Key) (T, error) {
	raw, ok := vals[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("fetcher: no value for %q", key)
	}
	typed, ok := raw.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("fetcher: value for %q is %T, not %T", key, raw, typed)
	}
	return typed, nil
}

// Done completes a callback-convention producer. Only the first
// invocation counts, and only the first result is honored; producers
// that need to hand back multiple values must pass a composite value.
type Done func(err error, results ...any)

// Producer computes a key's value from its resolved dependencies.
//
// Producer identity keys the per-graph cost table, so implementations
// should be pointer types; everything returned by Supply, Func and
// Callback is.
type Producer interface {
	Invoke(deps Values) (any, error)
}

type supplyProducer struct {
	fn func() (any, error)
}

func (p *supplyProducer) Invoke(Values) (any, error) {
	return p.fn()
}

type funcProducer struct {
	fn func(Values) (any, error)
}

func (p *funcProducer) Invoke(deps Values) (any, error) {
	return p.fn(deps)
}

type callbackProducer struct {
	fn func(Values, Done)
}

type callbackResult struct {
	val any
	err error
}

func (p *callbackProducer) Invoke(deps Values) (any, error) {
	settled := make(chan callbackResult, 1)
	var once sync.Once
	done := Done(func(err error, results ...any) {
		once.Do(func() {
			var val any
			if len(results) > 0 {
				val = results[0]
			}
			settled <- callbackResult{val: val, err: err}
		})
	})
	p.fn(deps, done)
	res := <-settled
	return res.val, res.err
}

// Supply declares a producer that needs no dependencies.
func Supply(fn func() (any, error)) Producer {
	return &supplyProducer{fn: fn}
}

// Func declares a producer invoked with its resolved dependency
// mapping.
func Func(fn func(Values) (any, error)) Producer {
	return &funcProducer{fn: fn}
}

// Callback declares a producer that reports completion through a Done
// callback instead of a return value. Invoke blocks until Done is
// called; there is no timeout, so a producer that never completes
// hangs every resolution depending on it.
func Callback(fn func(Values, Done)) Producer {
	return &callbackProducer{fn: fn}
}
