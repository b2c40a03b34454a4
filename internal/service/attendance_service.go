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

// AttendanceEventMarked is the event type published after every mark.
const AttendanceEventMarked = "attendance_marked"

// AttendanceService handles marking and querying attendance.
type AttendanceService struct {
	lectures    LectureStore
	attendance  AttendanceStore
	identity    IdentityResolver
	feed        AttendancePublisher
	enrichLimit int
	now         func() time.Time
	log         zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService. feed may be nil.
func NewAttendanceService(
	lectures LectureStore,
	attendance AttendanceStore,
	resolver IdentityResolver,
	feed AttendancePublisher,
	enrichLimit int,
	log zerolog.Logger,
) *AttendanceService {
	if enrichLimit < 1 {
		enrichLimit = 1
	}
	return &AttendanceService{
		lectures:    lectures,
		attendance:  attendance,
		identity:    resolver,
		feed:        feed,
		enrichLimit: enrichLimit,
		now:         time.Now,
		log:         log.With().Str("component", "attendance_service").Logger(),
	}
}

// MarkAttendance records a student's status for a lecture. Repeated marks for the
// same (student, lecture) update the single existing record; check-in time is
// always reset to now.
func (s *AttendanceService) MarkAttendance(ctx context.Context, lectureID int64, req model.AttendanceRequest, p model.Principal) (*model.AttendanceResponse, error) {
	if err := requireSelfIfStudent(req.StudentID, p); err != nil {
		return nil, err
	}
	status, err := model.ParseAttendanceStatus(req.Status)
	if err != nil {
		return nil, ErrInvalidAttendanceStatus
	}

	lecture, err := s.loadLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	studentName, err := requireStudent(ctx, s.identity, req.StudentID)
	if err != nil {
		return nil, err
	}

	record := &model.Attendance{
		StudentID:   req.StudentID,
		LectureID:   lecture.ID,
		Status:      status,
		Notes:       strings.TrimSpace(req.Notes),
		CheckInTime: s.now(),
	}
	created, err := s.attendance.Upsert(ctx, record)
	if err != nil {
		// The lecture was deleted after it was loaded.
		if errors.Is(err, repository.ErrReferenced) {
			return nil, ErrLectureNotFound
		}
		return nil, err
	}
	record.LectureTitle = lecture.Title

	s.log.Info().
		Int64("attendance_id", record.ID).
		Int64("lecture_id", lecture.ID).
		Int64("student_id", record.StudentID).
		Str("status", string(status)).
		Bool("created", created).
		Msg("Attendance marked")

	resp := newAttendanceResponse(record, studentName)
	s.publish(ctx, lecture.ID, model.AttendanceEvent{
		Type:       AttendanceEventMarked,
		Created:    created,
		Attendance: resp,
	})
	return &resp, nil
}

// GetAttendanceForLecture lists the attendance of a lecture, optionally narrowed by status.
func (s *AttendanceService) GetAttendanceForLecture(ctx context.Context, lectureID int64, status string) ([]model.AttendanceResponse, error) {
	st, err := parseAttendanceStatusFilter(status)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadLecture(ctx, lectureID); err != nil {
		return nil, err
	}
	return s.list(ctx, model.AttendanceFilter{LectureID: &lectureID, Status: st})
}

// GetAttendanceForStudent lists a student's attendance across lectures. Students
// may only list their own.
func (s *AttendanceService) GetAttendanceForStudent(ctx context.Context, studentID int64, status string, p model.Principal) ([]model.AttendanceResponse, error) {
	if err := requireSelfIfStudent(studentID, p); err != nil {
		return nil, err
	}
	st, err := parseAttendanceStatusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, model.AttendanceFilter{StudentID: &studentID, Status: st})
}

// GetMyAttendanceForLecture returns the acting user's own record for a lecture.
func (s *AttendanceService) GetMyAttendanceForLecture(ctx context.Context, lectureID int64, p model.Principal) (*model.AttendanceResponse, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	lecture, err := s.loadLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}

	record, err := s.attendance.GetByStudentAndLecture(ctx, p.UserID, lecture.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	record.LectureTitle = lecture.Title

	names := newDisplayNames(s.identity, s.log)
	resp := newAttendanceResponse(record, names.student(ctx, record.StudentID))
	return &resp, nil
}

func (s *AttendanceService) list(ctx context.Context, filter model.AttendanceFilter) ([]model.AttendanceResponse, error) {
	records, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	names := newDisplayNames(s.identity, s.log)
	out := make([]model.AttendanceResponse, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichLimit)
	for i := range records {
		g.Go(func() error {
			out[i] = newAttendanceResponse(&records[i], names.student(gctx, records[i].StudentID))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// publish is best-effort; a feed outage never fails a mark.
func (s *AttendanceService) publish(ctx context.Context, lectureID int64, evt model.AttendanceEvent) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PublishAttendance(ctx, lectureID, evt); err != nil {
		s.log.Warn().Err(err).Int64("lecture_id", lectureID).Msg("Failed to publish attendance event")
	}
}

func (s *AttendanceService) loadLecture(ctx context.Context, lectureID int64) (*model.Lecture, error) {
	lecture, err := s.lectures.GetByID(ctx, lectureID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, err
	}
	return lecture, nil
}

func parseAttendanceStatusFilter(raw string) (*model.AttendanceStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	st, err := model.ParseAttendanceStatus(raw)
	if err != nil {
		return nil, ErrInvalidAttendanceStatus
	}
	return &st, nil
}

func newAttendanceResponse(a *model.Attendance, studentName string) model.AttendanceResponse {
	return model.AttendanceResponse{
		ID:           a.ID,
		StudentID:    a.StudentID,
		StudentName:  studentName,
		LectureID:    a.LectureID,
		LectureTitle: a.LectureTitle,
		Status:       a.Status,
		Notes:        a.Notes,
		CheckInTime:  a.CheckInTime,
	}
}
