// Package notify fans out the notification events produced by
// successful launchpad operations. Sinks are observational: a failing
// sink never rolls back the operation that produced the event.
package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/observability"
)

// Sink receives one event per successful operation.
type Sink interface {
	Publish(ctx context.Context, e *domain.Event) error
}

// Memory collects events in order, for tests and in-process consumers.
type Memory struct {
	mu     sync.Mutex
	events []*domain.Event
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish appends the event.
func (m *Memory) Publish(_ context.Context, e *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	eventCopy := *e
	m.events = append(m.events, &eventCopy)
	return nil
}

// Events returns a snapshot of all published events in publish order.
func (m *Memory) Events() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Event, len(m.events))
	copy(result, m.events)
	return result
}

var _ Sink = (*Memory)(nil)

// Fanout publishes to every sink. Sink failures are logged and counted,
// never propagated: events are observational and must not fail the
// operation that produced them.
type Fanout struct {
	sinks []namedSink
	log   *logrus.Entry
}

type namedSink struct {
	name string
	sink Sink
}

// NewFanout creates a fanout over zero or more sinks.
func NewFanout(log *logrus.Entry) *Fanout {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Fanout{log: log}
}

// Add registers a sink under a name used in logs and metrics.
func (f *Fanout) Add(name string, s Sink) {
	f.sinks = append(f.sinks, namedSink{name: name, sink: s})
}

// Publish delivers the event to every sink.
func (f *Fanout) Publish(ctx context.Context, e *domain.Event) error {
	for _, ns := range f.sinks {
		if err := ns.sink.Publish(ctx, e); err != nil {
			observability.RecordEventPublishFailure(ns.name)
			f.log.WithFields(logrus.Fields{
				"sink":       ns.name,
				"event_type": e.Type,
				"launch_id":  e.LaunchID,
			}).WithError(err).Warn("failed to publish event")
		}
	}
	observability.RecordEventPublished(string(e.Type))
	return nil
}

var _ Sink = (*Fanout)(nil)
