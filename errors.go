package fetcher

import (
	"errors"
	"fmt"
	"strings"
)

// UndefinedKeyError reports a requested key that has neither a spec
// entry nor a seed value. It is returned immediately, without touching
// the scope cache.
type UndefinedKeyError struct {
	Key Key
}

func (e *UndefinedKeyError) Error() string {
	return fmt.Sprintf("fetcher: %q is not defined in the data source", e.Key)
}

// SpecError reports an invalid declaration. It is surfaced by New,
// never at resolution time.
type SpecError struct {
	Key    Key
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("fetcher: invalid declaration for %q: %s", e.Key, e.Reason)
}

// CycleError reports keys left with no acyclic derivation at all.
type CycleError struct {
	Keys []Key
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Keys))
	for i, key := range e.Keys {
		names[i] = string(key)
	}
	return fmt.Sprintf("fetcher: cyclic dependencies leave no viable path for: %s", strings.Join(names, ", "))
}

// ExhaustedError reports that every path for a key failed. It unwraps
// to the error of the final attempt.
type ExhaustedError struct {
	Key      Key
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetcher: all %d paths for %q failed: %v", e.Attempts, e.Key, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// ProducerPanicError wraps a panic recovered from a producer, which
// the engine treats like any other failed attempt.
type ProducerPanicError struct {
	Key        Key
	Recovered  any
	StackTrace []byte
}

func (e *ProducerPanicError) Error() string {
	return fmt.Sprintf("fetcher: producer for %q panicked: %v", e.Key, e.Recovered)
}

// errNoViablePath is reported when every path for a key was skipped as
// cyclic given the current cache, so nothing could even be attempted.
var errNoViablePath = errors.New("every derivation path cycles back through the requested key")
