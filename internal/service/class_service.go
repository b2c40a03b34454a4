package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ClassService handles class use cases: creation, update, archival and enriched queries.
type ClassService struct {
	classes     ClassStore
	identity    IdentityResolver
	enrichLimit int
	log         zerolog.Logger
}

// NewClassService creates a new ClassService. enrichLimit bounds concurrent
// identity lookups while assembling list responses.
func NewClassService(classes ClassStore, resolver IdentityResolver, enrichLimit int, log zerolog.Logger) *ClassService {
	if enrichLimit < 1 {
		enrichLimit = 1
	}
	return &ClassService{
		classes:     classes,
		identity:    resolver,
		enrichLimit: enrichLimit,
		log:         log.With().Str("component", "class_service").Logger(),
	}
}

// CreateClass validates the acting lecturer and the target grade, then stores an ACTIVE class.
func (s *ClassService) CreateClass(ctx context.Context, req model.ClassRequest, p model.Principal) (*model.ClassResponse, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	class, err := classFromRequest(req)
	if err != nil {
		return nil, err
	}

	lecturerName, err := requireLecturer(ctx, s.identity, p.UserID)
	if err != nil {
		return nil, err
	}
	gradeName, err := requireGrade(ctx, s.identity, req.GradeID)
	if err != nil {
		return nil, err
	}

	class.LecturerID = p.UserID
	class.Status = model.ClassStatusActive
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("class_id", class.ID).
		Int64("lecturer_id", class.LecturerID).
		Int64("grade_id", class.GradeID).
		Msg("Class created")

	resp := newClassResponse(class, gradeName, lecturerName)
	return &resp, nil
}

// UpdateClass overwrites name, description, grade and dates of a class owned by the acting lecturer.
// A changed grade is re-validated before anything is written.
func (s *ClassService) UpdateClass(ctx context.Context, classID int64, req model.ClassRequest, p model.Principal) (*model.ClassResponse, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	class, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(class, p); err != nil {
		return nil, err
	}

	next, err := classFromRequest(req)
	if err != nil {
		return nil, err
	}
	if next.GradeID != class.GradeID {
		if _, err := requireGrade(ctx, s.identity, next.GradeID); err != nil {
			return nil, err
		}
	}

	class.Name = next.Name
	class.Description = next.Description
	class.GradeID = next.GradeID
	class.StartDate = next.StartDate
	class.EndDate = next.EndDate

	if err := s.classes.Update(ctx, class); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	s.log.Info().Int64("class_id", class.ID).Msg("Class updated")
	return s.assembleOne(ctx, class), nil
}

// DeleteClass archives a class. Lectures and attendance are kept for reporting.
// Archiving an already archived class is a no-op.
func (s *ClassService) DeleteClass(ctx context.Context, classID int64, p model.Principal) error {
	class, err := s.load(ctx, classID)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(class, p); err != nil {
		return err
	}
	if class.Status == model.ClassStatusArchived {
		return nil
	}

	if err := s.setStatus(ctx, classID, model.ClassStatusArchived); err != nil {
		return err
	}
	s.log.Info().Int64("class_id", classID).Int64("by", p.UserID).Msg("Class archived")
	return nil
}

// RestoreClass returns an archived class to ACTIVE.
func (s *ClassService) RestoreClass(ctx context.Context, classID int64, p model.Principal) (*model.ClassResponse, error) {
	class, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(class, p); err != nil {
		return nil, err
	}
	if class.Status != model.ClassStatusArchived {
		return nil, ErrClassNotArchived
	}

	if err := s.setStatus(ctx, classID, model.ClassStatusActive); err != nil {
		return nil, err
	}
	class.Status = model.ClassStatusActive

	s.log.Info().Int64("class_id", classID).Int64("by", p.UserID).Msg("Class restored")
	return s.assembleOne(ctx, class), nil
}

// GetClassByID returns one class with lecturer and grade names, degrading to
// placeholder names when the identity service cannot answer.
func (s *ClassService) GetClassByID(ctx context.Context, classID int64) (*model.ClassResponse, error) {
	class, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	return s.assembleOne(ctx, class), nil
}

// GetAllClasses lists every class, optionally narrowed by status.
func (s *ClassService) GetAllClasses(ctx context.Context, status string) ([]model.ClassResponse, error) {
	st, err := parseClassStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, model.ClassFilter{Status: st})
}

// GetClassesByGrade lists the classes of a grade, optionally narrowed by status.
func (s *ClassService) GetClassesByGrade(ctx context.Context, gradeID int64, status string) ([]model.ClassResponse, error) {
	st, err := parseClassStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, model.ClassFilter{GradeID: &gradeID, Status: st})
}

// GetClassesByLecturer lists the classes taught by a lecturer. Lecturers may only
// list their own; admins may list anyone's.
func (s *ClassService) GetClassesByLecturer(ctx context.Context, lecturerID int64, p model.Principal) ([]model.ClassResponse, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if !p.IsAdmin() && p.UserID != lecturerID {
		return nil, ErrForeignLecturer
	}
	return s.list(ctx, model.ClassFilter{LecturerID: &lecturerID})
}

func (s *ClassService) list(ctx context.Context, filter model.ClassFilter) ([]model.ClassResponse, error) {
	classes, err := s.classes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, classes)
}

// assemble enriches classes concurrently. Enrichment never fails; the group
// only bounds parallelism.
func (s *ClassService) assemble(ctx context.Context, classes []model.Class) ([]model.ClassResponse, error) {
	names := newDisplayNames(s.identity, s.log)
	out := make([]model.ClassResponse, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichLimit)
	for i := range classes {
		g.Go(func() error {
			c := &classes[i]
			out[i] = newClassResponse(c, names.grade(gctx, c.GradeID), names.lecturer(gctx, c.LecturerID))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ClassService) assembleOne(ctx context.Context, class *model.Class) *model.ClassResponse {
	names := newDisplayNames(s.identity, s.log)
	resp := newClassResponse(class, names.grade(ctx, class.GradeID), names.lecturer(ctx, class.LecturerID))
	return &resp
}

func (s *ClassService) load(ctx context.Context, classID int64) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *ClassService) setStatus(ctx context.Context, classID int64, status model.ClassStatus) error {
	if err := s.classes.UpdateStatus(ctx, classID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return nil
}

// classFromRequest validates the request payload independently of transport-level binding.
func classFromRequest(req model.ClassRequest) (*model.Class, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	start, err := time.Parse(model.DateLayout, req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := time.Parse(model.DateLayout, req.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}
	return &model.Class{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		GradeID:     req.GradeID,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func parseClassStatusFilter(raw string) (*model.ClassStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	st, err := model.ParseClassStatus(raw)
	if err != nil {
		return nil, ErrInvalidClassStatus
	}
	return &st, nil
}

func newClassResponse(c *model.Class, gradeName, lecturerName string) model.ClassResponse {
	return model.ClassResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		GradeID:      c.GradeID,
		GradeName:    gradeName,
		LecturerID:   c.LecturerID,
		LecturerName: lecturerName,
		StartDate:    c.StartDate.Format(model.DateLayout),
		EndDate:      c.EndDate.Format(model.DateLayout),
		Status:       c.Status,
		LectureCount: c.LectureCount,
	}
}
