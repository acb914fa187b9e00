package subscription

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pathsub/pathsub-go/pkg/clock"
	"github.com/pathsub/pathsub-go/pkg/debounce"
	"github.com/pathsub/pathsub-go/pkg/log"
	"github.com/pathsub/pathsub-go/pkg/pathtree"
)

// group is every subscription to one exact path plus its gate.
type group struct {
	path pathtree.Path
	subs []*Subscription
	gate *debounce.Gate
}

// Store owns a data tree and the subscription groups observing it.
type Store struct {
	mu sync.Mutex

	config Config

	hooksMu sync.RWMutex
	logger  *slog.Logger
	trace   log.Logger

	tree map[string]any

	// Groups by pathtree.Path.Key
	groups map[string]*group
}

// NewStore creates a store over tree with the default configuration.
// A nil tree starts empty. The store takes ownership of tree.
func NewStore(tree map[string]any) *Store {
	return NewStoreWithConfig(tree, DefaultConfig())
}

// NewStoreWithConfig creates a store over tree with config.
func NewStoreWithConfig(tree map[string]any, config Config) *Store {
	if config.Delay <= 0 {
		config.Delay = DefaultDelay
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if tree == nil {
		tree = make(map[string]any)
	}

	s := &Store{
		config: config,
		tree:   tree,
		groups: make(map[string]*group),
	}
	s.SetLogger(config.Logger)
	s.SetTrace(config.Trace)
	return s
}

// SetLogger replaces the operational logger. Nil discards logs.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.logger = logger
}

// SetTrace replaces the trace sink. Nil disables tracing.
func (s *Store) SetTrace(trace log.Logger) {
	if trace == nil {
		trace = log.NoopLogger{}
	}
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.trace = trace
}

func (s *Store) opLogger() *slog.Logger {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()
	return s.logger
}

// Subscribe registers callback for path and returns the new subscription.
// It always succeeds.
func (s *Store) Subscribe(path pathtree.Path, callback Callback) *Subscription {
	path = path.Clone()
	key := path.Key()

	sub := &Subscription{
		ID:       uuid.New().String(),
		path:     path,
		callback: callback,
		store:    s,
	}
	sub.active.Store(true)

	s.mu.Lock()
	g, exists := s.groups[key]
	if !exists {
		g = &group{
			path: path,
			gate: debounce.NewGateWithClock(s.config.Delay, s.config.Clock),
		}
		s.groups[key] = g
	}
	g.subs = append(g.subs, sub)
	listeners := len(g.subs)
	s.mu.Unlock()

	s.opLogger().Debug("subscribed", "path", path.String(), "sub_id", sub.ID, "listeners", listeners)
	s.emit(log.Event{
		Kind:           log.KindSubscribe,
		Path:           path,
		SubscriptionID: sub.ID,
		Listeners:      listeners,
	})
	return sub
}

// Unsubscribe removes the subscription with id from the group at path.
// Removing the last subscription discards the group and its pending
// notifications. Unknown paths or ids are ignored.
func (s *Store) Unsubscribe(path pathtree.Path, id string) {
	key := path.Key()

	s.mu.Lock()
	g, exists := s.groups[key]
	if !exists {
		s.mu.Unlock()
		return
	}

	index := -1
	for i, sub := range g.subs {
		if sub.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return
	}

	removed := g.subs[index]
	removed.deactivate()
	if len(g.subs) == 1 {
		delete(s.groups, key)
		g.gate.Stop()
		g.subs = nil
	} else {
		g.subs = append(g.subs[:index:index], g.subs[index+1:]...)
	}
	listeners := len(g.subs)
	s.mu.Unlock()

	s.opLogger().Debug("unsubscribed", "path", path.String(), "sub_id", id, "listeners", listeners)
	s.emit(log.Event{
		Kind:           log.KindUnsubscribe,
		Path:           path.Clone(),
		SubscriptionID: id,
		Listeners:      listeners,
	})
}

// Get returns a copy of the value at path. The boolean is false when
// nothing is stored there. An empty path returns the whole tree.
func (s *Store) Get(path pathtree.Path) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := pathtree.Read(s.tree, path)
	if !found {
		return nil, false
	}
	return pathtree.Clone(value), true
}

// Publish shallow-merges data into the node at path and schedules a
// debounced notification of the group at path.
//
// Without subscribers at path it returns an error wrapping
// ErrNoSuchGroup and leaves the tree unchanged, unless
// Config.AllowUnobservedPublish is set. A path that does not match the
// tree's shape returns an error wrapping pathtree.ErrStructuralMismatch.
func (s *Store) Publish(path pathtree.Path, data map[string]any) error {
	key := path.Key()

	s.mu.Lock()
	g, exists := s.groups[key]
	if !exists && !s.config.AllowUnobservedPublish {
		s.mu.Unlock()
		return s.fail(path, fmt.Errorf("publish %s: %w", path, ErrNoSuchGroup))
	}

	if _, err := pathtree.Merge(s.tree, path, copyPatch(data)); err != nil {
		s.mu.Unlock()
		return s.fail(path, fmt.Errorf("publish %s: %w", path, err))
	}

	pending := 0
	if exists {
		g.gate.Arm(func() { s.settle(key, g) })
		pending = g.gate.Pending()
	}
	s.mu.Unlock()

	if !exists {
		s.opLogger().Debug("published without subscribers", "path", path.String())
	}

	s.emit(log.Event{
		Kind:    log.KindPublish,
		Path:    path.Clone(),
		Pending: pending,
		Patch:   copyPatch(data),
		Armed:   exists,
	})
	return nil
}

// settle delivers the current value at the group's path to every
// subscription the group holds now.
func (s *Store) settle(key string, g *group) {
	s.mu.Lock()
	if s.groups[key] != g {
		// The group was discarded while the notification was pending.
		s.mu.Unlock()
		return
	}
	subs := make([]*Subscription, len(g.subs))
	copy(subs, g.subs)
	value, _ := pathtree.Read(s.tree, g.path)
	value = pathtree.Clone(value)
	s.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		// A callback earlier in this round may have removed sub.
		if !sub.IsActive() || sub.callback == nil {
			continue
		}
		sub.callback(value, sub)
		delivered++
	}

	s.opLogger().Debug("settled", "path", g.path.String(), "listeners", delivered)
	s.emit(log.Event{
		Kind:      log.KindSettle,
		Path:      g.path.Clone(),
		Listeners: delivered,
	})
}

// Count returns the number of live subscriptions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, g := range s.groups {
		count += len(g.subs)
	}
	return count
}

// GroupCount returns the number of paths with at least one subscription.
func (s *Store) GroupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups)
}

// Paths returns every subscribed path, ordered by key.
func (s *Store) Paths() []pathtree.Path {
	s.mu.Lock()
	keys := make([]string, 0, len(s.groups))
	for key := range s.groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	paths := make([]pathtree.Path, 0, len(keys))
	for _, key := range keys {
		paths = append(paths, s.groups[key].path.Clone())
	}
	s.mu.Unlock()
	return paths
}

// Subscriptions returns the subscriptions at path in delivery order.
func (s *Store) Subscriptions(path pathtree.Path) []*Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, exists := s.groups[path.Key()]
	if !exists {
		return nil
	}
	subs := make([]*Subscription, len(g.subs))
	copy(subs, g.subs)
	return subs
}

// Close discards every group, cancelling pending notifications and
// deactivating all subscriptions. The tree is kept and the store remains
// usable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, g := range s.groups {
		g.gate.Stop()
		for _, sub := range g.subs {
			sub.deactivate()
		}
		delete(s.groups, key)
	}
}

func (s *Store) fail(path pathtree.Path, err error) error {
	s.opLogger().Warn("store operation failed", "path", path.String(), "error", err)
	s.emit(log.Event{
		Kind:  log.KindError,
		Path:  path.Clone(),
		Error: err.Error(),
	})
	return err
}

func (s *Store) emit(event log.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.config.Clock.Now()
	}
	s.hooksMu.RLock()
	trace := s.trace
	s.hooksMu.RUnlock()
	trace.Log(event)
}

func copyPatch(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return pathtree.Clone(data).(map[string]any)
}
