package llm

import (
	"sync"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// observerBuffer is the per-subscriber channel depth. A single Client
// publishes at most one ResponseState at a time (requests are serialized),
// so this only needs to absorb a slow subscriber for the duration of one
// stream, not provide general backpressure headroom.
const observerBuffer = 64

// stateObserver is a single-producer, multi-consumer broadcast of
// ResponseState with a replayed latest value, the Go idiom for the
// source's "observable last-value cache" (spec §9). New subscribers
// immediately receive the current state, then every subsequent
// publication in order.
type stateObserver struct {
	mu          sync.Mutex
	latest      models.ResponseState
	subscribers map[chan models.ResponseState]struct{}
}

func newStateObserver() *stateObserver {
	return &stateObserver{
		latest:      models.Idle(),
		subscribers: make(map[chan models.ResponseState]struct{}),
	}
}

// Subscribe registers a new observer channel, pre-loaded with the current
// state. Callers must drain the channel; Unsubscribe stops delivery and
// closes it.
func (o *stateObserver) Subscribe() chan models.ResponseState {
	ch := make(chan models.ResponseState, observerBuffer)
	o.mu.Lock()
	ch <- o.latest
	o.subscribers[ch] = struct{}{}
	o.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (o *stateObserver) Unsubscribe(ch chan models.ResponseState) {
	o.mu.Lock()
	if _, ok := o.subscribers[ch]; ok {
		delete(o.subscribers, ch)
		close(ch)
	}
	o.mu.Unlock()
}

// Latest returns the most recently published state.
func (o *stateObserver) Latest() models.ResponseState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// publish records state as latest and delivers it to every subscriber in
// order. Delivery blocks on a full subscriber channel; since publication
// is serialized by the Client's single request goroutine and states are
// ordered and terminal, this preserves the ordering guarantee rather than
// dropping states the way high-volume event sinks elsewhere do.
func (o *stateObserver) publish(state models.ResponseState) {
	o.mu.Lock()
	o.latest = state
	subs := make([]chan models.ResponseState, 0, len(o.subscribers))
	for ch := range o.subscribers {
		subs = append(subs, ch)
	}
	o.mu.Unlock()

	for _, ch := range subs {
		ch <- state
	}
}
