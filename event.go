package fetcher

import "time"

// TimingEvent describes one successful producer execution. Failed
// attempts emit nothing; they only feed the cost table.
type TimingEvent struct {
	// Scope identifies the resolution scope the fetch ran in.
	Scope string
	// Name is the key the producer resolved.
	Name Key
	// Dependencies lists the winning path's dependency keys.
	Dependencies []Key
	// RequestStart is when the path attempt began, before the
	// dependency fan-out.
	RequestStart time.Time
	// WaitDuration is how long the attempt waited for dependencies.
	WaitDuration time.Duration
	// FetchStart is when every dependency was satisfied and the
	// producer was invoked.
	FetchStart time.Time
	// FetchDuration is the producer's own execution time.
	FetchDuration time.Duration
	// TotalDuration spans the whole attempt, fan-out included.
	TotalDuration time.Duration
}

// TimingListener consumes timing events. Callbacks run on the fetching
// goroutine and must not block.
type TimingListener interface {
	FetchCompleted(TimingEvent)
}

// TimingListenerFunc adapts a plain function to TimingListener.
type TimingListenerFunc func(TimingEvent)

func (f TimingListenerFunc) FetchCompleted(ev TimingEvent) {
	f(ev)
}
