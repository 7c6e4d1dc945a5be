// Package progress implements the fan-out progress sink the batch engine
// (and any other long-running operation) reports through.
package progress

import (
	"sync"

	"github.com/google/uuid"
)

// Phase is the lifecycle stage of a tracked operation.
type Phase string

const (
	PhaseStarted   Phase = "started"
	PhaseProgress  Phase = "progress"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// Update is one progress report.
type Update struct {
	CorrelationID string
	Phase         Phase
	Message       string
	Completed     int
	Total         int
}

// NewCorrelationID generates a fresh id to tag a run of updates.
func NewCorrelationID() string {
	return uuid.NewString()
}

// Started builds a "started" update.
func Started(id, message string, total int) Update {
	return Update{CorrelationID: id, Phase: PhaseStarted, Message: message, Total: total}
}

// InProgress builds a "progress" update.
func InProgress(id, message string, completed int) Update {
	return Update{CorrelationID: id, Phase: PhaseProgress, Message: message, Completed: completed}
}

// Completed builds a "completed" update.
func Completed(id, message string) Update {
	return Update{CorrelationID: id, Phase: PhaseCompleted, Message: message}
}

// Reporter is a shared sink with fan-out to any subscribed channels.
// Delivery to observers is best-effort: a subscriber that isn't draining
// its channel simply misses updates (spec §4.6 — "delivery... out of scope").
type Reporter struct {
	mu   sync.RWMutex
	subs map[string]chan Update
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{subs: make(map[string]chan Update)}
}

// Subscribe registers a channel to receive future updates and returns an
// id that can be passed to Unsubscribe.
func (r *Reporter) Subscribe(buffer int) (string, <-chan Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	ch := make(chan Update, buffer)
	r.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a previously-registered channel.
func (r *Reporter) Unsubscribe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.subs[id]; ok {
		delete(r.subs, id)
		close(ch)
	}
}

// Report delivers an update to every current subscriber, non-blocking.
func (r *Reporter) Report(update Update) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.subs {
		select {
		case ch <- update:
		default:
		}
	}
}
