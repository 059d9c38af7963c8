package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"

	"github.com/evanschultz/achiever/internal/domain"
)

// DefaultNamespace is the key the whole state document is stored under.
const DefaultNamespace = "target-achiever-storage"

// Clock returns the current time.
type Clock func() time.Time

// Store is the single source of truth for users and targets. Every mutation produces a
// new State; target progress is recomputed after every structural change below a target,
// and the resulting state is mirrored to the persister in the background.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int

	clock     Clock
	logger    *charmLog.Logger
	onWarn    func(error)
	namespace string
	mirror    *mirror
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for hydration and persistence events.
func WithLogger(logger *charmLog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithWarningHandler registers a callback for non-fatal persistence failures.
func WithWarningHandler(fn func(error)) Option {
	return func(s *Store) {
		s.onWarn = fn
	}
}

// WithNamespace sets the document key used with the persister.
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// Open hydrates a store from persister and starts mirroring mutations back to it.
func Open(ctx context.Context, persister Persister, opts ...Option) (*Store, error) {
	if persister == nil {
		return nil, errors.New("persister is required")
	}
	s := &Store{
		subscribers: map[int]func(State){},
		clock:       time.Now,
		logger:      charmLog.New(io.Discard),
		namespace:   DefaultNamespace,
	}
	for _, opt := range opts {
		opt(s)
	}

	state, err := hydrate(ctx, persister, s.namespace)
	if err != nil {
		return nil, err
	}
	s.state = state
	s.logger.Debug("state hydrated", "key", s.namespace, "users", len(state.Users), "targets", len(state.Targets))

	s.mirror = newMirror(persister, s.namespace, s.clock, s.logger, s.onWarn, state.Version)
	s.mirror.start()
	return s, nil
}

// hydrate loads and decodes the persisted document, or returns an empty state.
func hydrate(ctx context.Context, persister Persister, key string) (State, error) {
	body, err := persister.LoadDocument(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return emptyState(), nil
		}
		return State{}, fmt.Errorf("load state document %q: %w", key, err)
	}
	if len(body) == 0 {
		return emptyState(), nil
	}
	snap, err := DecodeSnapshot(body)
	if err != nil {
		return State{}, fmt.Errorf("decode state document %q: %w", key, err)
	}
	return snap.ToState(), nil
}

// Flush writes the latest state to the persister if it has not been written yet.
func (s *Store) Flush(ctx context.Context) error {
	return s.mirror.write(ctx)
}

// Close stops the background mirror after a final flush. The persister is not closed.
func (s *Store) Close() error {
	return s.mirror.shutdown()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns the number of applied mutations since hydration.
func (s *Store) Version() uint64 {
	return s.Snapshot().Version
}

// CurrentUser returns the signed-in user.
func (s *Store) CurrentUser() (domain.User, bool) {
	st := s.Snapshot()
	if st.CurrentUser == nil {
		return domain.User{}, false
	}
	return *st.CurrentUser, true
}

// Users returns every registered user.
func (s *Store) Users() []domain.User {
	return s.Snapshot().Users
}

// Targets returns every target.
func (s *Store) Targets() []domain.Target {
	return s.Snapshot().Targets
}

// Target returns the target with id.
func (s *Store) Target(id string) (domain.Target, bool) {
	return s.Snapshot().FindTarget(id)
}

// TargetsForUser returns the targets owned by userID.
func (s *Store) TargetsForUser(userID string) []domain.Target {
	return s.Snapshot().TargetsForUser(userID)
}

// ActionProgress returns the derived progress of one action.
func (s *Store) ActionProgress(targetID, actionID string) (int, error) {
	target, ok := s.Target(targetID)
	if !ok {
		return 0, notFound("target", targetID)
	}
	for _, action := range target.Actions {
		if action.ID == actionID {
			return domain.ActionProgress(action), nil
		}
	}
	return 0, notFound("action", targetID, actionID)
}

// Subscribe registers fn to receive every new state. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// apply runs fn against the current state. On success the result becomes the new state,
// subscribers are notified and the mirror is woken; on error nothing changes.
func (s *Store) apply(op string, fn func(State) (State, error)) error {
	s.mu.Lock()
	next, err := fn(s.state)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("mutation skipped", "op", op, "err", err)
		return err
	}
	next.Version = s.state.Version + 1
	s.state = next
	subs := make([]func(State), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(next)
	}
	s.mirror.publish(next)
	return nil
}

// ReplaceState swaps in a whole new user list and target collection. Every target's
// progress is recomputed on the way in; a collection that would not load back is rejected.
func (s *Store) ReplaceState(next State) error {
	next = normalizeState(next)
	if err := checkTargets(next.Targets); err != nil {
		return err
	}
	return s.apply("replace_state", func(State) (State, error) {
		return next, nil
	})
}

// normalizeState recomputes derived fields and fills nil collections.
func normalizeState(st State) State {
	out := State{
		CurrentUser: st.CurrentUser,
		Users:       st.Users,
		Targets:     make([]domain.Target, len(st.Targets)),
	}
	if out.Users == nil {
		out.Users = []domain.User{}
	}
	for i, target := range st.Targets {
		out.Targets[i] = normalizeTarget(target)
	}
	return out
}

// normalizeTarget makes obstacle resolution fields consistent and recomputes progress.
func normalizeTarget(t domain.Target) domain.Target {
	if t.Actions == nil {
		t.Actions = []domain.Action{}
	}
	actions := make([]domain.Action, len(t.Actions))
	for i, action := range t.Actions {
		actions[i] = action.Normalized()
	}
	t.Actions = actions
	return t.WithRecomputedProgress()
}
