// Package servicetest provides an in-memory service.Publisher for tests.
package servicetest

import (
	"context"
	"sync"

	"github.com/iliyamo/timetracker/internal/queue"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
}

func (r *Recorder) Publish(_ context.Context, ev queue.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []queue.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.ActivityEvent(nil), r.events...)
}

// Kinds lists the kinds of the published events in order.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}
