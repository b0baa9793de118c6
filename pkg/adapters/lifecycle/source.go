package lifecycle

import (
	"context"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/argumentaire/pkg/core"
)

// DefaultSettle is how long the store must stay quiet before a burst of
// events is reported as one change.
const DefaultSettle = 50 * time.Millisecond

type storeSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	settle time.Duration
}

// Option configures a store source.
type Option func(*storeSource)

// WithSettle overrides DefaultSettle. Zero forwards every event as is.
func WithSettle(d time.Duration) Option {
	return func(s *storeSource) {
		s.settle = d
	}
}

// NewSource creates a lifecycle.Source that emits store change events.
// An atomic save shows up as several filesystem events; they are coalesced
// and only the last one of a burst is forwarded.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &storeSource{
		events: events,
		out:    make(chan lifecycle.Event),
		settle: DefaultSettle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *storeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *storeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		if s.settle <= 0 {
			return s.forward(ctx)
		}
		return s.coalesce(ctx)
	})
	return nil
}

func (s *storeSource) forward(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-s.events:
			if !ok {
				return nil
			}
			if !s.emit(ctx, e) {
				return nil
			}
		}
	}
}

func (s *storeSource) coalesce(ctx context.Context) error {
	timer := time.NewTimer(s.settle)
	timer.Stop()

	var pending *core.Event
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case e, ok := <-s.events:
			if !ok {
				timer.Stop()
				if pending != nil {
					s.emit(ctx, *pending)
				}
				return nil
			}
			pending = &e
			timer.Reset(s.settle)
		case <-timer.C:
			if pending == nil {
				continue
			}
			e := *pending
			pending = nil
			if !s.emit(ctx, e) {
				return nil
			}
		}
	}
}

// emit reports false when ctx ended before the event was taken.
func (s *storeSource) emit(ctx context.Context, e core.Event) bool {
	select {
	case s.out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
