package subscription

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pathsub/pathsub-go/pkg/clock"
	"github.com/pathsub/pathsub-go/pkg/debounce"
	"github.com/pathsub/pathsub-go/pkg/log"
	"github.com/pathsub/pathsub-go/pkg/pathtree"
)

// Store errors.
var (
	ErrNoSuchGroup = errors.New("no subscribers at path")
)

// DefaultDelay is the default debounce delay for every group.
const DefaultDelay = debounce.DefaultDelay

// Callback is invoked on debounce settlement with a copy of the current
// value at the subscription's path and the subscription itself.
type Callback func(value any, sub *Subscription)

// Config holds store configuration.
type Config struct {
	// Delay is the debounce quiet period per group. Non-positive values
	// mean DefaultDelay.
	Delay time.Duration

	// Clock schedules debounce timers. Nil means clock.Real().
	Clock clock.Clock

	// AllowUnobservedPublish makes Publish on a path without subscribers
	// apply the merge and return nil instead of failing with
	// ErrNoSuchGroup.
	AllowUnobservedPublish bool

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// Trace receives one event per store operation. Nil disables tracing.
	Trace log.Logger
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Delay: DefaultDelay,
		Clock: clock.Real(),
	}
}

// Subscription is one listener's interest in one path. It keeps a
// non-owning reference to its store so it can act on its own path.
type Subscription struct {
	// ID is unique for the life of the process.
	ID string

	path     pathtree.Path
	callback Callback
	store    *Store
	active   atomic.Bool
}

// Path returns a copy of the subscribed path.
func (s *Subscription) Path() pathtree.Path {
	return s.path.Clone()
}

// IsActive reports whether the subscription is still registered.
func (s *Subscription) IsActive() bool {
	return s.active.Load()
}

// Unsubscribe removes this subscription from its store.
func (s *Subscription) Unsubscribe() {
	s.store.Unsubscribe(s.path, s.ID)
}

// Publish merges data at this subscription's path.
func (s *Subscription) Publish(data map[string]any) error {
	return s.store.Publish(s.path, data)
}

// Get returns a copy of the value at this subscription's path.
func (s *Subscription) Get() (any, bool) {
	return s.store.Get(s.path)
}

func (s *Subscription) deactivate() {
	s.active.Store(false)
}
