package fetcher

// Future is the handle to an in-flight or settled resolution.
type Future struct {
	done chan struct{}
	val  any
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func resolvedFuture(val any) *Future {
	f := newFuture()
	f.settle(val, nil)
	return f
}

func failedFuture(err error) *Future {
	f := newFuture()
	f.settle(nil, err)
	return f
}

// settle must be called exactly once.
func (f *Future) settle(val any, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Await blocks until the future settles.
func (f *Future) Await() (any, error) {
	<-f.done
	return f.val, f.err
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Peek returns the resolved value without blocking. It reports false
// while the future is in flight or when it failed.
func (f *Future) Peek() (any, bool) {
	select {
	case <-f.done:
		return f.val, f.err == nil
	default:
		return nil, false
	}
}

// Notify calls fn from a new goroutine once the future settles. It is
// the Node-style trailing completion callback of the original API.
func (f *Future) Notify(fn func(val any, err error)) {
	go func() {
		<-f.done
		fn(f.val, f.err)
	}()
}
