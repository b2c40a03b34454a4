package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/repository"
	"github.com/rs/zerolog"
)

// LectureService handles scheduling, updating and deleting lectures.
type LectureService struct {
	classes  ClassStore
	lectures LectureStore
	now      func() time.Time
	log      zerolog.Logger
}

// NewLectureService creates a new LectureService.
func NewLectureService(classes ClassStore, lectures LectureStore, log zerolog.Logger) *LectureService {
	return &LectureService{
		classes:  classes,
		lectures: lectures,
		now:      time.Now,
		log:      log.With().Str("component", "lecture_service").Logger(),
	}
}

// ScheduleLecture creates a lecture in an active class owned by the acting lecturer.
// The lecture must start strictly after the time of the call.
func (s *LectureService) ScheduleLecture(ctx context.Context, classID int64, req model.LectureRequest, p model.Principal) (*model.LectureResponse, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(class, p); err != nil {
		return nil, err
	}
	if class.Status != model.ClassStatusActive {
		return nil, ErrClassNotActive
	}

	lecture := &model.Lecture{ClassID: class.ID}
	if err := s.apply(lecture, req); err != nil {
		return nil, err
	}
	if err := s.lectures.Create(ctx, lecture); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("lecture_id", lecture.ID).
		Int64("class_id", class.ID).
		Time("date_time", lecture.DateTime).
		Msg("Lecture scheduled")

	resp := model.NewLectureResponse(lecture)
	return &resp, nil
}

// UpdateLecture overwrites a lecture's details. Only the owner of the parent class may do this.
func (s *LectureService) UpdateLecture(ctx context.Context, lectureID int64, req model.LectureRequest, p model.Principal) (*model.LectureResponse, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	lecture, err := s.loadOwned(ctx, lectureID, p)
	if err != nil {
		return nil, err
	}
	if err := s.apply(lecture, req); err != nil {
		return nil, err
	}

	if err := s.lectures.Update(ctx, lecture); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, err
	}

	s.log.Info().Int64("lecture_id", lecture.ID).Msg("Lecture updated")
	resp := model.NewLectureResponse(lecture)
	return &resp, nil
}

// DeleteLecture hard-deletes a lecture owned (through its class) by the acting lecturer.
// Lectures that already have attendance are kept.
func (s *LectureService) DeleteLecture(ctx context.Context, lectureID int64, p model.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if _, err := s.loadOwned(ctx, lectureID, p); err != nil {
		return err
	}

	if err := s.lectures.Delete(ctx, lectureID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferenced):
			return ErrLectureHasAttendance
		case errors.Is(err, repository.ErrNotFound):
			return ErrLectureNotFound
		default:
			return err
		}
	}

	s.log.Info().Int64("lecture_id", lectureID).Int64("by", p.UserID).Msg("Lecture deleted")
	return nil
}

// GetLectureByID returns a single lecture.
func (s *LectureService) GetLectureByID(ctx context.Context, lectureID int64) (*model.LectureResponse, error) {
	lecture, err := s.loadLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	resp := model.NewLectureResponse(lecture)
	return &resp, nil
}

// GetLecturesByClass lists the lectures of a class in schedule order.
func (s *LectureService) GetLecturesByClass(ctx context.Context, classID int64) ([]model.LectureResponse, error) {
	if _, err := s.loadClass(ctx, classID); err != nil {
		return nil, err
	}
	lectures, err := s.lectures.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	out := make([]model.LectureResponse, 0, len(lectures))
	for i := range lectures {
		out = append(out, model.NewLectureResponse(&lectures[i]))
	}
	return out, nil
}

// AuthorizeAttendanceFeed checks that p may follow the live attendance of a
// lecture: the owner of the parent class or an admin.
func (s *LectureService) AuthorizeAttendanceFeed(ctx context.Context, lectureID int64, p model.Principal) (*model.Lecture, error) {
	lecture, err := s.loadLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, lecture.ClassID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(class, p); err != nil {
		return nil, err
	}
	return lecture, nil
}

// CountLectures returns the total number of lectures across all classes.
func (s *LectureService) CountLectures(ctx context.Context) (int64, error) {
	return s.lectures.Count(ctx)
}

// apply validates req and copies it onto l. CreatedAt is never touched.
func (s *LectureService) apply(l *model.Lecture, req model.LectureRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if !req.DateTime.After(s.now()) {
		return ErrLectureInPast
	}
	l.Title = title
	l.Description = strings.TrimSpace(req.Description)
	l.DateTime = req.DateTime
	l.VideoLink = strings.TrimSpace(req.VideoLink)
	l.PDFURL = strings.TrimSpace(req.PDFURL)
	return nil
}

// loadOwned loads a lecture and checks that p owns its parent class.
func (s *LectureService) loadOwned(ctx context.Context, lectureID int64, p model.Principal) (*model.Lecture, error) {
	lecture, err := s.loadLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, lecture.ClassID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(class, p); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *LectureService) loadLecture(ctx context.Context, lectureID int64) (*model.Lecture, error) {
	lecture, err := s.lectures.GetByID(ctx, lectureID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, err
	}
	return lecture, nil
}

func (s *LectureService) loadClass(ctx context.Context, classID int64) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}
