package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

var ErrListenerExists = errors.New("error events already have a listener")

// ErrorEvent is a structured record of a failure detected while serving a request.
type ErrorEvent struct {
	Kind    ErrorKind
	Op      string
	Message string
	Status  int
	UserID  string
	Err     error
	Time    time.Time
}

// ErrorEvents is a buffered channel of ErrorEvent with exactly one consumer.
// Producers never block: events emitted while the buffer is full are dropped and counted.
type ErrorEvents struct {
	ch      chan ErrorEvent
	dropped uint64

	mu        sync.Mutex
	listening bool
	closed    bool
}

func NewErrorEvents(buffer int) *ErrorEvents {
	if buffer <= 0 {
		buffer = 64
	}
	return &ErrorEvents{ch: make(chan ErrorEvent, buffer)}
}

// Emit publishes ev without blocking.
func (ee *ErrorEvents) Emit(ev ErrorEvent) {
	if ee == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	ee.mu.Lock()
	defer ee.mu.Unlock()
	if ee.closed {
		return
	}
	select {
	case ee.ch <- ev:
	default:
		atomic.AddUint64(&ee.dropped, 1)
	}
}

// Dropped returns the number of events lost because the buffer was full.
func (ee *ErrorEvents) Dropped() uint64 {
	return atomic.LoadUint64(&ee.dropped)
}

// Listen calls fn for each event until ctx is done or the channel is closed.
// Only one listener may be registered.
func (ee *ErrorEvents) Listen(ctx context.Context, fn func(ErrorEvent)) error {
	ee.mu.Lock()
	if ee.listening {
		ee.mu.Unlock()
		return ErrListenerExists
	}
	ee.listening = true
	ee.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ee.ch:
			if !ok {
				return nil
			}
			fn(ev)
		}
	}
}

// Close stops the channel; pending events are still delivered to the listener.
func (ee *ErrorEvents) Close() {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	if !ee.closed {
		ee.closed = true
		close(ee.ch)
	}
}
