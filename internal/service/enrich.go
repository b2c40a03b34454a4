package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/edupulse/class-service/internal/identity"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Display values used when identity enrichment fails on a read path.
const (
	UnknownLecturer = "Unknown Lecturer"
	UnknownGrade    = "Unknown Grade"
	UnknownStudent  = "Unknown Student"
)

// Write paths: every resolution failure aborts the operation.

func requireLecturer(ctx context.Context, r IdentityResolver, userID int64) (string, error) {
	u, err := r.ResolveLecturer(ctx, userID)
	if err != nil {
		return "", classifyIdentityErr(err, ErrLecturerInvalid)
	}
	return u.FullName, nil
}

func requireGrade(ctx context.Context, r IdentityResolver, gradeID int64) (string, error) {
	g, err := r.ResolveGrade(ctx, gradeID)
	if err != nil {
		return "", classifyIdentityErr(err, ErrGradeNotFound)
	}
	return g.Name, nil
}

func requireStudent(ctx context.Context, r IdentityResolver, userID int64) (string, error) {
	u, err := r.ResolveStudent(ctx, userID)
	if err != nil {
		return "", classifyIdentityErr(err, ErrStudentNotFound)
	}
	return u.FullName, nil
}

// classifyIdentityErr maps a "does not exist / wrong role" answer onto rejected
// and anything else onto ErrIdentityUnavailable.
func classifyIdentityErr(err, rejected error) error {
	if errors.Is(err, identity.ErrNotFound) || errors.Is(err, identity.ErrInvalidRole) {
		return fmt.Errorf("%w: %v", rejected, err)
	}
	return fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
}

// Read paths: failures degrade to a sentinel display value and are only logged.

// displayNames resolves display names for a single read operation. Each id is
// looked up at most once for the lifetime of the value; nothing outlives it.
type displayNames struct {
	resolver IdentityResolver
	log      zerolog.Logger
	flight   singleflight.Group

	mu    sync.Mutex
	names map[string]string
}

func newDisplayNames(resolver IdentityResolver, log zerolog.Logger) *displayNames {
	return &displayNames{
		resolver: resolver,
		log:      log,
		names:    make(map[string]string),
	}
}

func (d *displayNames) lecturer(ctx context.Context, id int64) string {
	return d.lookup(ctx, "lecturer", id, UnknownLecturer, func(ctx context.Context) (string, error) {
		u, err := d.resolver.ResolveLecturer(ctx, id)
		if err != nil {
			return "", err
		}
		return u.FullName, nil
	})
}

func (d *displayNames) grade(ctx context.Context, id int64) string {
	return d.lookup(ctx, "grade", id, UnknownGrade, func(ctx context.Context) (string, error) {
		g, err := d.resolver.ResolveGrade(ctx, id)
		if err != nil {
			return "", err
		}
		return g.Name, nil
	})
}

func (d *displayNames) student(ctx context.Context, id int64) string {
	return d.lookup(ctx, "student", id, UnknownStudent, func(ctx context.Context) (string, error) {
		u, err := d.resolver.ResolveStudent(ctx, id)
		if err != nil {
			return "", err
		}
		return u.FullName, nil
	})
}

func (d *displayNames) lookup(ctx context.Context, kind string, id int64, fallback string, fetch func(context.Context) (string, error)) string {
	key := kind + ":" + strconv.FormatInt(id, 10)

	d.mu.Lock()
	name, ok := d.names[key]
	d.mu.Unlock()
	if ok {
		return name
	}

	v, _, _ := d.flight.Do(key, func() (any, error) {
		d.mu.Lock()
		name, ok := d.names[key]
		d.mu.Unlock()
		if ok {
			return name, nil
		}

		name, err := fetch(ctx)
		if err != nil {
			d.log.Warn().Err(err).Str("kind", kind).Int64("id", id).Msg("Identity enrichment failed, using fallback")
			name = fallback
		}
		d.mu.Lock()
		d.names[key] = name
		d.mu.Unlock()
		return name, nil
	})
	return v.(string)
}
