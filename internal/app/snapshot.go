package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/evanschultz/achiever/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "achiever.snapshot.v1"

// Snapshot is the serialized form of the whole store, used for the durable mirror and
// for export/import. Times are RFC3339 strings on the wire and time.Time in memory.
type Snapshot struct {
	Version     string           `json:"version"`
	SavedAt     time.Time        `json:"saved_at"`
	CurrentUser *SnapshotUser    `json:"current_user,omitempty"`
	Users       []SnapshotUser   `json:"users"`
	Targets     []SnapshotTarget `json:"targets"`
}

// SnapshotUser represents snapshot user data used by this package.
type SnapshotUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotTarget represents snapshot target data used by this package.
type SnapshotTarget struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	CategoryID    string           `json:"category_id,omitempty"`
	SubcategoryID string           `json:"subcategory_id,omitempty"`
	Progress      int              `json:"progress"`
	Actions       []SnapshotAction `json:"actions"`
	CreatedAt     time.Time        `json:"created_at"`
}

// SnapshotAction represents snapshot action data used by this package.
type SnapshotAction struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Urgency   domain.Level       `json:"urgency"`
	Impact    domain.Level       `json:"impact"`
	Steps     []SnapshotStep     `json:"steps"`
	Obstacles []SnapshotObstacle `json:"obstacles"`
}

// SnapshotStep keeps a null task list distinct from an empty one.
type SnapshotStep struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Completed   bool           `json:"completed"`
	Tasks       []SnapshotTask `json:"tasks"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// SnapshotObstacle represents snapshot obstacle data used by this package.
type SnapshotObstacle struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	Resolved       bool       `json:"resolved"`
	Resolution     string     `json:"resolution,omitempty"`
	ResolutionDate *time.Time `json:"resolution_date,omitempty"`
}

// EncodeSnapshot renders a snapshot as JSON.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot json: %w", err)
	}
	return body, nil
}

// DecodeSnapshot parses and validates a JSON snapshot.
func DecodeSnapshot(body []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// ExportSnapshot captures the current state.
func (s *Store) ExportSnapshot() Snapshot {
	return SnapshotFromState(s.Snapshot(), s.clock())
}

// ImportSnapshot validates snap and replaces the whole state with it.
func (s *Store) ImportSnapshot(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	return s.ReplaceState(snap.ToState())
}

// Validate checks the version and runs the same node checks the store applies on every
// write: required ids, id uniqueness per collection and level values. User ids are optional.
func (s *Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	targets := make([]domain.Target, 0, len(s.Targets))
	for _, target := range s.Targets {
		targets = append(targets, target.toDomain())
	}
	if err := checkTargets(targets); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return nil
}

// SnapshotFromState converts a state into its serialized form.
func SnapshotFromState(st State, now time.Time) Snapshot {
	snap := Snapshot{
		Version: SnapshotVersion,
		SavedAt: now.UTC(),
		Users:   make([]SnapshotUser, 0, len(st.Users)),
		Targets: make([]SnapshotTarget, 0, len(st.Targets)),
	}
	if st.CurrentUser != nil {
		current := snapshotUserFromDomain(*st.CurrentUser)
		snap.CurrentUser = &current
	}
	for _, user := range st.Users {
		snap.Users = append(snap.Users, snapshotUserFromDomain(user))
	}
	for _, target := range st.Targets {
		snap.Targets = append(snap.Targets, snapshotTargetFromDomain(target))
	}
	return snap
}

// ToState converts the snapshot into a normalized state with recomputed progress.
func (s Snapshot) ToState() State {
	st := State{
		Users:   make([]domain.User, 0, len(s.Users)),
		Targets: make([]domain.Target, 0, len(s.Targets)),
	}
	if s.CurrentUser != nil {
		current := s.CurrentUser.toDomain()
		st.CurrentUser = &current
	}
	for _, user := range s.Users {
		st.Users = append(st.Users, user.toDomain())
	}
	for _, target := range s.Targets {
		st.Targets = append(st.Targets, target.toDomain())
	}
	return normalizeState(st)
}

func snapshotUserFromDomain(u domain.User) SnapshotUser {
	return SnapshotUser{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func snapshotTargetFromDomain(t domain.Target) SnapshotTarget {
	out := SnapshotTarget{
		ID:            t.ID,
		UserID:        t.UserID,
		Title:         t.Title,
		Description:   t.Description,
		CategoryID:    t.CategoryID,
		SubcategoryID: t.SubcategoryID,
		Progress:      t.Progress,
		CreatedAt:     t.CreatedAt,
	}
	if t.Actions != nil {
		out.Actions = make([]SnapshotAction, 0, len(t.Actions))
		for _, action := range t.Actions {
			out.Actions = append(out.Actions, snapshotActionFromDomain(action))
		}
	}
	return out
}

func snapshotActionFromDomain(a domain.Action) SnapshotAction {
	out := SnapshotAction{
		ID:      a.ID,
		Title:   a.Title,
		Urgency: a.Urgency,
		Impact:  a.Impact,
	}
	if a.Steps != nil {
		out.Steps = make([]SnapshotStep, 0, len(a.Steps))
		for _, step := range a.Steps {
			out.Steps = append(out.Steps, snapshotStepFromDomain(step))
		}
	}
	if a.Obstacles != nil {
		out.Obstacles = make([]SnapshotObstacle, 0, len(a.Obstacles))
		for _, o := range a.Obstacles {
			out.Obstacles = append(out.Obstacles, SnapshotObstacle{
				ID:             o.ID,
				Description:    o.Description,
				Resolved:       o.Resolved,
				Resolution:     o.Resolution,
				ResolutionDate: copyTimePtr(o.ResolutionDate),
			})
		}
	}
	return out
}

func snapshotStepFromDomain(s domain.Step) SnapshotStep {
	out := SnapshotStep{
		ID:          s.ID,
		Description: s.Description,
		Completed:   s.Completed,
	}
	if s.Tasks != nil {
		out.Tasks = make([]SnapshotTask, 0, len(s.Tasks))
		for _, task := range s.Tasks {
			out.Tasks = append(out.Tasks, SnapshotTask{
				ID:          task.ID,
				Description: task.Description,
				Completed:   task.Completed,
				Deadline:    copyTimePtr(task.Deadline),
			})
		}
	}
	return out
}

func (u SnapshotUser) toDomain() domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func (t SnapshotTarget) toDomain() domain.Target {
	out := domain.Target{
		ID:            t.ID,
		UserID:        t.UserID,
		Title:         t.Title,
		Description:   t.Description,
		CategoryID:    t.CategoryID,
		SubcategoryID: t.SubcategoryID,
		Progress:      t.Progress,
		CreatedAt:     t.CreatedAt,
	}
	if t.Actions != nil {
		out.Actions = make([]domain.Action, 0, len(t.Actions))
		for _, action := range t.Actions {
			out.Actions = append(out.Actions, action.toDomain())
		}
	}
	return out
}

func (a SnapshotAction) toDomain() domain.Action {
	out := domain.Action{
		ID:      a.ID,
		Title:   a.Title,
		Urgency: domain.NormalizeLevel(a.Urgency),
		Impact:  domain.NormalizeLevel(a.Impact),
	}
	if a.Steps != nil {
		out.Steps = make([]domain.Step, 0, len(a.Steps))
		for _, step := range a.Steps {
			out.Steps = append(out.Steps, step.toDomain())
		}
	}
	if a.Obstacles != nil {
		out.Obstacles = make([]domain.Obstacle, 0, len(a.Obstacles))
		for _, o := range a.Obstacles {
			out.Obstacles = append(out.Obstacles, domain.Obstacle{
				ID:             o.ID,
				Description:    o.Description,
				Resolved:       o.Resolved,
				Resolution:     o.Resolution,
				ResolutionDate: copyTimePtr(o.ResolutionDate),
			})
		}
	}
	return out
}

func (s SnapshotStep) toDomain() domain.Step {
	out := domain.Step{
		ID:          s.ID,
		Description: s.Description,
		Completed:   s.Completed,
	}
	if s.Tasks != nil {
		out.Tasks = make([]domain.Task, 0, len(s.Tasks))
		for _, task := range s.Tasks {
			out.Tasks = append(out.Tasks, domain.Task{
				ID:          task.ID,
				Description: task.Description,
				Completed:   task.Completed,
				Deadline:    copyTimePtr(task.Deadline),
			})
		}
	}
	return out
}

// copyTimePtr returns a copy of a nullable time.
func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	ts := *in
	return &ts
}
