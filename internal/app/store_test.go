package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evanschultz/achiever/internal/domain"
)

// memPersister is an in-memory Persister that can be told to fail writes.
type memPersister struct {
	mu      sync.Mutex
	docs    map[string][]byte
	saves   int
	saveErr error
}

func newMemPersister() *memPersister {
	return &memPersister{docs: map[string][]byte{}}
}

func (p *memPersister) LoadDocument(_ context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	body, ok := p.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

func (p *memPersister) SaveDocument(_ context.Context, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	p.docs[key] = append([]byte(nil), body...)
	p.saves++
	return nil
}

func (p *memPersister) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func (p *memPersister) doc(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	body, ok := p.docs[key]
	return body, ok
}

func (p *memPersister) setSaveErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saveErr = err
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
}

func day(n int) *time.Time {
	ts := time.Date(2026, 4, n, 0, 0, 0, 0, time.UTC)
	return &ts
}

func newTestStore(t *testing.T, p Persister, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	s, err := Open(context.Background(), p, opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedTarget adds target t1 with action a1 holding steps s1 (three tasks, two done) and
// s2 (no task list), plus resolved obstacle o1.
func seedTarget(t *testing.T, s *Store) {
	t.Helper()
	target := domain.Target{ID: "t1", UserID: "u1", Title: "Run a marathon", CreatedAt: fixedClock()}
	if err := s.AddTarget(target); err != nil {
		t.Fatalf("AddTarget() error = %v", err)
	}
	action := domain.Action{ID: "a1", Title: "Train", Urgency: domain.LevelHigh, Impact: domain.LevelLow}
	if err := s.AddAction("t1", action); err != nil {
		t.Fatalf("AddAction() error = %v", err)
	}
	if err := s.AddStep("t1", "a1", domain.Step{ID: "s1", Description: "Base miles"}); err != nil {
		t.Fatalf("AddStep(s1) error = %v", err)
	}
	if err := s.AddStep("t1", "a1", domain.Step{ID: "s2", Description: "Buy shoes"}); err != nil {
		t.Fatalf("AddStep(s2) error = %v", err)
	}
	tasks := []domain.Task{
		{ID: "k1", Description: "5k", Completed: true, Deadline: day(5)},
		{ID: "k2", Description: "10k", Completed: true},
		{ID: "k3", Description: "half", Deadline: day(2)},
	}
	for _, task := range tasks {
		if err := s.AddTask("t1", "a1", "s1", task); err != nil {
			t.Fatalf("AddTask(%s) error = %v", task.ID, err)
		}
	}
	if err := s.AddObstacle("t1", "a1", domain.Obstacle{ID: "o1", Description: "Knee"}); err != nil {
		t.Fatalf("AddObstacle() error = %v", err)
	}
	if err := s.ResolveObstacle("t1", "a1", "o1", "Physio", fixedClock()); err != nil {
		t.Fatalf("ResolveObstacle() error = %v", err)
	}
}

// assertProgressConsistent checks every target's stored progress against its actions.
func assertProgressConsistent(t *testing.T, st State) {
	t.Helper()
	for _, target := range st.Targets {
		if want := domain.TargetProgress(target.Actions); target.Progress != want {
			t.Fatalf("target %q progress = %d, want %d", target.ID, target.Progress, want)
		}
	}
}

func TestOpenEmptyPersister(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	st := s.Snapshot()
	if st.CurrentUser != nil || len(st.Users) != 0 || len(st.Targets) != 0 {
		t.Fatalf("expected empty state, got %#v", st)
	}
	if st.Version != 0 {
		t.Fatalf("expected version 0, got %d", st.Version)
	}
}

func TestOpenRequiresPersister(t *testing.T) {
	if _, err := Open(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil persister")
	}
}

func TestOpenRejectsCorruptDocument(t *testing.T) {
	p := newMemPersister()
	p.docs[DefaultNamespace] = []byte(`{"version":"other"}`)
	_, err := Open(context.Background(), p)
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestActionProgressExample(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)

	got, err := s.ActionProgress("t1", "a1")
	if err != nil {
		t.Fatalf("ActionProgress() error = %v", err)
	}
	if got != 33 {
		t.Fatalf("expected action progress 33, got %d", got)
	}
	target, ok := s.Target("t1")
	if !ok {
		t.Fatal("expected target t1")
	}
	if target.Progress != 33 {
		t.Fatalf("expected target progress 33, got %d", target.Progress)
	}
	if _, err := s.ActionProgress("t1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProgressRecomputedAfterEveryMutation(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)

	title := "Stretch"
	ops := []struct {
		name string
		run  func() error
	}{
		{"add action", func() error {
			return s.AddAction("t1", domain.Action{ID: "a2", Title: "Rest", Urgency: domain.LevelLow, Impact: domain.LevelLow})
		}},
		{"add step", func() error { return s.AddStep("t1", "a2", domain.Step{ID: "s3", Description: "Sleep", Completed: true}) }},
		{"update action", func() error {
			return s.UpdateAction("t1", domain.Action{ID: "a2", Title: "Recover", Urgency: domain.LevelMedium, Impact: domain.LevelLow,
				Steps: []domain.Step{{ID: "s3", Description: "Sleep"}}})
		}},
		{"update step", func() error {
			return s.UpdateStep("t1", "a1", domain.Step{ID: "s2", Description: "Buy shoes", Completed: true})
		}},
		{"toggle task", func() error { return s.ToggleTask("t1", "a1", "s1", "k3") }},
		{"update task", func() error {
			done := false
			return s.UpdateTask("t1", "a1", "s1", "k1", domain.TaskPatch{Description: &title, Completed: &done})
		}},
		{"task deadline", func() error { return s.UpdateTaskDeadline("t1", "a1", "s1", "k1", day(9)) }},
		{"delete task", func() error { return s.DeleteTask("t1", "a1", "s1", "k1") }},
		{"add obstacle", func() error {
			return s.AddObstacle("t1", "a2", domain.Obstacle{ID: "o2", Description: "Travel"})
		}},
		{"update obstacle", func() error {
			return s.UpdateObstacle("t1", "a2", "o2", domain.ObstaclePatch{Description: &title})
		}},
		{"resolve obstacle", func() error { return s.ResolveObstacle("t1", "a2", "o2", "Hotel gym", fixedClock()) }},
		{"unresolve obstacle", func() error { return s.UnresolveObstacle("t1", "a1", "o1") }},
		{"delete obstacle", func() error { return s.DeleteObstacle("t1", "a1", "o1") }},
		{"delete step", func() error { return s.DeleteStep("t1", "a1", "s1") }},
		{"delete action", func() error { return s.DeleteAction("t1", "a1") }},
	}
	for _, op := range ops {
		if err := op.run(); err != nil {
			t.Fatalf("%s error = %v", op.name, err)
		}
		assertProgressConsistent(t, s.Snapshot())
	}

	target, _ := s.Target("t1")
	if len(target.Actions) != 1 || target.Actions[0].ID != "a2" {
		t.Fatalf("unexpected actions after deletes %#v", target.Actions)
	}
	// a2: s3 incomplete, o2 resolved.
	if target.Progress != 50 {
		t.Fatalf("expected progress 50, got %d", target.Progress)
	}
}

func TestDeleteActionCascades(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	if err := s.AddAction("t1", domain.Action{ID: "a2", Title: "Plan", Urgency: domain.LevelLow, Impact: domain.LevelLow,
		Steps: []domain.Step{{ID: "s9", Description: "Pick race", Completed: true}}}); err != nil {
		t.Fatalf("AddAction() error = %v", err)
	}

	if err := s.DeleteAction("t1", "a1"); err != nil {
		t.Fatalf("DeleteAction() error = %v", err)
	}
	target, _ := s.Target("t1")
	for _, action := range target.Actions {
		if action.ID == "a1" {
			t.Fatal("expected action a1 removed")
		}
	}
	for _, ref := range FlattenTasks([]domain.Target{target}) {
		if ref.Step.ID == "s1" {
			t.Fatal("expected tasks of a1 to be unreachable")
		}
	}
	if target.Progress != 100 {
		t.Fatalf("expected progress over remaining action only, got %d", target.Progress)
	}
}

func TestToggleTaskIsSelfInverse(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	before, _ := s.Target("t1")

	for i := 0; i < 2; i++ {
		if err := s.ToggleTask("t1", "a1", "s1", "k3"); err != nil {
			t.Fatalf("ToggleTask() error = %v", err)
		}
	}
	after, _ := s.Target("t1")
	if after.Progress != before.Progress {
		t.Fatalf("expected progress %d, got %d", before.Progress, after.Progress)
	}
	if got := after.Actions[0].Steps[0].Tasks[2].Completed; got {
		t.Fatal("expected task k3 back to incomplete")
	}
}

func TestToggleLastTaskCompletesStep(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	if err := s.ToggleTask("t1", "a1", "s1", "k3"); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	got, _ := s.ActionProgress("t1", "a1")
	// s1 complete, s2 incomplete, o1 resolved.
	if got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}

func TestOldSnapshotUnaffectedByLaterMutations(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	old := s.Snapshot()

	if err := s.ToggleTask("t1", "a1", "s1", "k3"); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	if err := s.UpdateTarget("t1", domain.TargetPatch{Title: ptr("Ultra")}); err != nil {
		t.Fatalf("UpdateTarget() error = %v", err)
	}
	if err := s.DeleteObstacle("t1", "a1", "o1"); err != nil {
		t.Fatalf("DeleteObstacle() error = %v", err)
	}

	target := old.Targets[0]
	if target.Title != "Run a marathon" {
		t.Fatalf("old snapshot title changed to %q", target.Title)
	}
	if target.Actions[0].Steps[0].Tasks[2].Completed {
		t.Fatal("old snapshot task changed")
	}
	if len(target.Actions[0].Obstacles) != 1 {
		t.Fatal("old snapshot obstacles changed")
	}
	if target.Progress != 33 {
		t.Fatalf("old snapshot progress changed to %d", target.Progress)
	}
}

func TestNotFoundLeavesStateUntouched(t *testing.T) {
	p := newMemPersister()
	s := newTestStore(t, p)
	seedTarget(t, s)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	version := s.Version()
	saves := p.saveCount()
	notified := 0
	cancel := s.Subscribe(func(State) { notified++ })
	defer cancel()

	errs := []error{
		s.UpdateTarget("nope", domain.TargetPatch{Title: ptr("x")}),
		s.DeleteTarget("nope"),
		s.AddAction("nope", domain.Action{ID: "a9"}),
		s.DeleteAction("t1", "nope"),
		s.AddStep("t1", "nope", domain.Step{ID: "s9"}),
		s.UpdateStep("t1", "a1", domain.Step{ID: "nope"}),
		s.ToggleTask("t1", "a1", "s2", "k1"),
		s.ToggleTask("t1", "a1", "s1", "nope"),
		s.DeleteTask("t1", "a1", "nope", "k1"),
		s.ResolveObstacle("t1", "a1", "nope", "x", fixedClock()),
		s.DeleteObstacle("t1", "a1", "nope"),
	}
	for i, err := range errs {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("op %d: expected ErrNotFound, got %v", i, err)
		}
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if s.Version() != version {
		t.Fatalf("expected version %d, got %d", version, s.Version())
	}
	if notified != 0 {
		t.Fatalf("expected no notifications, got %d", notified)
	}
	if got := p.saveCount(); got != saves {
		t.Fatalf("expected %d saves, got %d", saves, got)
	}
}

func TestAddRejectsDuplicateAndEmptyIDs(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)

	if err := s.AddTarget(domain.Target{ID: "t1"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := s.AddTask("t1", "a1", "s1", domain.Task{ID: "k1"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := s.AddStep("t1", "a1", domain.Step{ID: " "}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	// Ids only need to be unique within their own collection.
	if err := s.AddStep("t1", "a1", domain.Step{ID: "k1", Description: "same id as a task"}); err != nil {
		t.Fatalf("AddStep() error = %v", err)
	}
}

func TestAddTaskCreatesTaskList(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	if err := s.UpdateStep("t1", "a1", domain.Step{ID: "s2", Description: "Buy shoes", Completed: true}); err != nil {
		t.Fatalf("UpdateStep() error = %v", err)
	}
	before, _ := s.ActionProgress("t1", "a1")
	if err := s.AddTask("t1", "a1", "s2", domain.Task{ID: "k9", Description: "Try on"}); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	after, _ := s.ActionProgress("t1", "a1")
	// The step flag is ignored once the step has an incomplete task.
	if before != 67 || after != 33 {
		t.Fatalf("expected 67 then 33, got %d then %d", before, after)
	}
}

func TestUpdateTargetMergesMetadata(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	if err := s.UpdateTarget("t1", domain.TargetPatch{Description: ptr("Spring race"), CategoryID: ptr("health")}); err != nil {
		t.Fatalf("UpdateTarget() error = %v", err)
	}
	target, _ := s.Target("t1")
	if target.Title != "Run a marathon" || target.Description != "Spring race" || target.CategoryID != "health" {
		t.Fatalf("unexpected target after patch %#v", target)
	}
	if len(target.Actions) != 1 {
		t.Fatalf("expected actions kept, got %d", len(target.Actions))
	}
}

func TestUnresolveClearsResolutionFields(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	if err := s.UnresolveObstacle("t1", "a1", "o1"); err != nil {
		t.Fatalf("UnresolveObstacle() error = %v", err)
	}
	target, _ := s.Target("t1")
	o := target.Actions[0].Obstacles[0]
	if o.Resolved || o.Resolution != "" || o.ResolutionDate != nil {
		t.Fatalf("expected cleared resolution, got %#v", o)
	}
}

func TestAddObstacleNormalizesResolution(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	seedTarget(t, s)
	in := domain.Obstacle{ID: "o2", Description: "Rain", Resolution: "stale", ResolutionDate: day(1)}
	if err := s.AddObstacle("t1", "a1", in); err != nil {
		t.Fatalf("AddObstacle() error = %v", err)
	}
	target, _ := s.Target("t1")
	o := target.Actions[0].Obstacles[1]
	if o.Resolution != "" || o.ResolutionDate != nil {
		t.Fatalf("expected unresolved obstacle without resolution fields, got %#v", o)
	}
}

func TestUserSessionLifecycle(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	ada := s.RegisterUser(domain.User{ID: "u1", Email: "ada@example.com", Password: "pw1", Name: "Ada"})
	if !ada.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("expected CreatedAt stamped from clock, got %v", ada.CreatedAt)
	}
	if current, ok := s.CurrentUser(); !ok || current.ID != "u1" {
		t.Fatalf("expected u1 signed in after register, got %#v %v", current, ok)
	}
	s.SignOut()
	if _, ok := s.CurrentUser(); ok {
		t.Fatal("expected nobody signed in")
	}

	got, ok := s.SignIn("ada@example.com", "pw1")
	if !ok || got.ID != "u1" || got.Name != "Ada" {
		t.Fatalf("expected ada, got %#v %v", got, ok)
	}
	if _, ok := s.SignIn("ada@example.com", "wrong"); ok {
		t.Fatal("expected wrong password to fail")
	}
	if _, ok := s.SignIn("bob@example.com", "pw1"); ok {
		t.Fatal("expected unknown email to fail")
	}
	if current, ok := s.CurrentUser(); !ok || current.ID != "u1" {
		t.Fatal("expected failed sign-in to keep current user")
	}

	s.SetCurrentUser(nil)
	if _, ok := s.CurrentUser(); ok {
		t.Fatal("expected SetCurrentUser(nil) to sign out")
	}
}

func TestDuplicateRegistrationIsCurrentlyAccepted(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	s.RegisterUser(domain.User{ID: "u1", Email: "ada@example.com", Password: "pw1"})
	s.RegisterUser(domain.User{ID: "u2", Email: "ada@example.com", Password: "pw2"})
	if got := len(s.Users()); got != 2 {
		t.Fatalf("expected 2 users, got %d", got)
	}
	// First match wins on sign-in.
	got, ok := s.SignIn("ada@example.com", "pw2")
	if !ok || got.ID != "u2" {
		t.Fatalf("expected u2, got %#v %v", got, ok)
	}
}

func TestSubscribeReceivesNewStates(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	var versions []uint64
	cancel := s.Subscribe(func(st State) { versions = append(versions, st.Version) })
	s.RegisterUser(domain.User{ID: "u1", Email: "a@b.c", Password: "x"})
	s.SignOut()
	cancel()
	s.SignIn("a@b.c", "x")
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Fatalf("unexpected versions %v", versions)
	}
}

func TestTargetsForUser(t *testing.T) {
	s := newTestStore(t, newMemPersister())
	for _, target := range []domain.Target{
		{ID: "t1", UserID: "u1", Title: "a"},
		{ID: "t2", UserID: "u2", Title: "b"},
		{ID: "t3", UserID: "u1", Title: "c"},
	} {
		if err := s.AddTarget(target); err != nil {
			t.Fatalf("AddTarget() error = %v", err)
		}
	}
	got := s.TargetsForUser("u1")
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t3" {
		t.Fatalf("unexpected targets %#v", got)
	}
	if err := s.DeleteTarget("t1"); err != nil {
		t.Fatalf("DeleteTarget() error = %v", err)
	}
	if _, ok := s.Target("t1"); ok {
		t.Fatal("expected t1 deleted")
	}
}

func TestPersistenceFailureKeepsMemoryAndWarns(t *testing.T) {
	p := newMemPersister()
	var (
		mu       sync.Mutex
		warnings []error
	)
	s := newTestStore(t, p, WithWarningHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, err)
	}))
	boom := errors.New("quota exceeded")
	p.setSaveErr(boom)

	seedTarget(t, s)
	if err := s.Flush(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected flush error wrapping %v, got %v", boom, err)
	}
	if _, ok := s.Target("t1"); !ok {
		t.Fatal("expected in-memory state kept after failed write")
	}
	mu.Lock()
	count := len(warnings)
	mu.Unlock()
	if count == 0 {
		t.Fatal("expected at least one warning")
	}

	// The pending version is retried once storage recovers.
	p.setSaveErr(nil)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, ok := p.doc(DefaultNamespace); !ok {
		t.Fatal("expected document written after recovery")
	}
}

func TestCloseFlushesAndReopenRestores(t *testing.T) {
	p := newMemPersister()
	s, err := Open(context.Background(), p, WithClock(fixedClock), WithNamespace("custom"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.RegisterUser(domain.User{ID: "u1", Email: "ada@example.com", Password: "pw1"})
	seedTarget(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, ok := p.doc("custom"); !ok {
		t.Fatal("expected document under custom namespace")
	}

	reopened := newTestStore(t, p, WithNamespace("custom"))
	if current, ok := reopened.CurrentUser(); !ok || current.ID != "u1" {
		t.Fatalf("expected current user restored, got %#v %v", current, ok)
	}
	target, ok := reopened.Target("t1")
	if !ok || target.Progress != 33 {
		t.Fatalf("expected restored target with progress 33, got %#v", target)
	}
}

func ptr[T any](v T) *T {
	return &v
}

// closeAndReopen closes s and opens a new store over the same persister.
func closeAndReopen(t *testing.T, s *Store, p Persister) *Store {
	t.Helper()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return newTestStore(t, p)
}

func TestAddedActionWithoutLevelsReopens(t *testing.T) {
	p := newMemPersister()
	s, err := Open(context.Background(), p, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.AddTarget(domain.Target{ID: "t1", Title: "Run"}); err != nil {
		t.Fatalf("AddTarget() error = %v", err)
	}
	if err := s.AddAction("t1", domain.Action{ID: "a1", Title: "Train", Urgency: "HIGH"}); err != nil {
		t.Fatalf("AddAction() error = %v", err)
	}

	reopened := closeAndReopen(t, s, p)
	target, ok := reopened.Target("t1")
	if !ok || len(target.Actions) != 1 {
		t.Fatalf("expected restored target with one action, got %#v", target)
	}
	action := target.Actions[0]
	if action.Urgency != domain.LevelHigh || action.Impact != domain.LevelMedium {
		t.Fatalf("expected high/medium levels, got %q/%q", action.Urgency, action.Impact)
	}
}

func TestRegisteredUserWithoutIDReopens(t *testing.T) {
	p := newMemPersister()
	s, err := Open(context.Background(), p, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.RegisterUser(domain.User{Email: "ada@example.com", Password: "pw1"})

	reopened := closeAndReopen(t, s, p)
	current, ok := reopened.CurrentUser()
	if !ok || current.Email != "ada@example.com" {
		t.Fatalf("expected current user restored, got %#v %v", current, ok)
	}
	if got := len(reopened.Users()); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}
}

func TestWritesThatCouldNotReloadAreRejected(t *testing.T) {
	p := newMemPersister()
	s, err := Open(context.Background(), p, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seedTarget(t, s)
	version := s.Version()

	twoActions := domain.Target{ID: "t2", Title: "Dup", Actions: []domain.Action{
		{ID: "a", Title: "one"},
		{ID: "a", Title: "two"},
	}}
	if err := s.AddTarget(twoActions); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("AddTarget() expected ErrAlreadyExists, got %v", err)
	}
	if err := s.AddAction("t1", domain.Action{ID: "a2", Title: "x", Urgency: "urgent"}); !errors.Is(err, domain.ErrInvalidLevel) {
		t.Fatalf("AddAction() expected ErrInvalidLevel, got %v", err)
	}
	badSteps := domain.Action{ID: "a1", Title: "Train", Steps: []domain.Step{{ID: "s1"}, {ID: "s1"}}}
	if err := s.UpdateAction("t1", badSteps); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("UpdateAction() expected ErrAlreadyExists, got %v", err)
	}
	blankObstacle := domain.Action{ID: "a1", Title: "Train", Obstacles: []domain.Obstacle{{Description: "no id"}}}
	if err := s.UpdateAction("t1", blankObstacle); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("UpdateAction() expected ErrInvalidID, got %v", err)
	}
	dupTasks := domain.Step{ID: "s1", Tasks: []domain.Task{{ID: "k"}, {ID: "k"}}}
	if err := s.UpdateStep("t1", "a1", dupTasks); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("UpdateStep() expected ErrAlreadyExists, got %v", err)
	}
	if err := s.AddStep("t1", "a1", domain.Step{ID: "s9", Tasks: []domain.Task{{}}}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("AddStep() expected ErrInvalidID, got %v", err)
	}
	if err := s.ReplaceState(State{Targets: []domain.Target{{ID: "t1"}, {ID: "t1"}}}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("ReplaceState() expected ErrAlreadyExists, got %v", err)
	}
	if s.Version() != version {
		t.Fatalf("expected version %d after rejected writes, got %d", version, s.Version())
	}

	reopened := closeAndReopen(t, s, p)
	target, ok := reopened.Target("t1")
	if !ok || target.Progress != 33 {
		t.Fatalf("expected restored target with progress 33, got %#v", target)
	}
	if _, ok := reopened.Target("t2"); ok {
		t.Fatal("expected rejected target absent after reopen")
	}
}
