// Package extensions holds optional plumbing around a fetcher.Graph:
// structured timing logs, Prometheus metrics and an ASCII dependency
// dump. Everything here rides on the public Graph surface; nothing is
// required for resolution itself.
package extensions

import (
	"github.com/go-logr/logr"

	fetcher "github.com/fetcher-fn/fetcher-go"
)

// TimingLogger logs every successful fetch through a logr sink.
type TimingLogger struct {
	log logr.Logger
}

// NewTimingLogger returns a listener suitable for Graph.Subscribe.
func NewTimingLogger(log logr.Logger) *TimingLogger {
	return &TimingLogger{log: log}
}

func (t *TimingLogger) FetchCompleted(ev fetcher.TimingEvent) {
	t.log.Info("fetch completed",
		"scope", ev.Scope,
		"key", ev.Name,
		"deps", ev.Dependencies,
		"wait", ev.WaitDuration,
		"fetch", ev.FetchDuration,
		"total", ev.TotalDuration,
	)
}
