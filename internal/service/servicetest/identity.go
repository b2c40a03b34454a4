package servicetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/edupulse/class-service/internal/identity"
	"github.com/edupulse/class-service/internal/model"
)

// Resolver is a scriptable identity resolver. Unknown ids resolve to
// identity.ErrNotFound; setting Err makes every call fail with it.
type Resolver struct {
	mu     sync.RWMutex
	users  map[int64]model.UserView
	grades map[int64]model.GradeView
	err    error

	calls atomic.Int64
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		users:  make(map[int64]model.UserView),
		grades: make(map[int64]model.GradeView),
	}
}

// AddUser registers a user with the given role.
func (r *Resolver) AddUser(id int64, name string, role model.Role) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = model.UserView{ID: id, FullName: name, Role: role}
	return r
}

// AddGrade registers a grade.
func (r *Resolver) AddGrade(id int64, name string) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grades[id] = model.GradeView{ID: id, Name: name}
	return r
}

// Fail makes every subsequent call return err. Pass nil to recover.
func (r *Resolver) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Calls returns the number of resolve calls made so far.
func (r *Resolver) Calls() int64 { return r.calls.Load() }

func (r *Resolver) ResolveGrade(_ context.Context, gradeID int64) (*model.GradeView, error) {
	r.calls.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	g, ok := r.grades[gradeID]
	if !ok {
		return nil, fmt.Errorf("grade %d: %w", gradeID, identity.ErrNotFound)
	}
	return &g, nil
}

func (r *Resolver) ResolveLecturer(ctx context.Context, userID int64) (*model.UserView, error) {
	return r.resolveUser(ctx, userID, model.RoleLecturer)
}

func (r *Resolver) ResolveStudent(ctx context.Context, userID int64) (*model.UserView, error) {
	return r.resolveUser(ctx, userID, model.RoleStudent)
}

func (r *Resolver) resolveUser(_ context.Context, userID int64, role model.Role) (*model.UserView, error) {
	r.calls.Add(1)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, identity.ErrNotFound)
	}
	if u.Role != role {
		return nil, fmt.Errorf("user %d is %s: %w", userID, u.Role, identity.ErrInvalidRole)
	}
	return &u, nil
}

// Publisher records published attendance events.
type Publisher struct {
	mu     sync.Mutex
	events []model.AttendanceEvent
	Err    error
}

func (p *Publisher) PublishAttendance(_ context.Context, _ int64, evt model.AttendanceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, evt)
	return nil
}

// Events returns a copy of the recorded events.
func (p *Publisher) Events() []model.AttendanceEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.AttendanceEvent(nil), p.events...)
}
