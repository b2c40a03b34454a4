package service

import (
	"context"

	"github.com/edupulse/class-service/internal/model"
)

// ClassStore persists classes. Implemented by repository.ClassRepository.
type ClassStore interface {
	Create(ctx context.Context, c *model.Class) error
	GetByID(ctx context.Context, id int64) (*model.Class, error)
	List(ctx context.Context, f model.ClassFilter) ([]model.Class, error)
	Update(ctx context.Context, c *model.Class) error
	UpdateStatus(ctx context.Context, id int64, status model.ClassStatus) error
}

// LectureStore persists lectures. Implemented by repository.LectureRepository.
type LectureStore interface {
	Create(ctx context.Context, l *model.Lecture) error
	GetByID(ctx context.Context, id int64) (*model.Lecture, error)
	ListByClass(ctx context.Context, classID int64) ([]model.Lecture, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, l *model.Lecture) error
	Delete(ctx context.Context, id int64) error
}

// AttendanceStore persists attendance. Upsert must be atomic on (StudentID, LectureID).
// Implemented by repository.AttendanceRepository.
type AttendanceStore interface {
	Upsert(ctx context.Context, a *model.Attendance) (created bool, err error)
	GetByStudentAndLecture(ctx context.Context, studentID, lectureID int64) (*model.Attendance, error)
	List(ctx context.Context, f model.AttendanceFilter) ([]model.Attendance, error)
}

// IdentityResolver resolves foreign ids against the identity service.
// Implemented by identity.Client.
type IdentityResolver interface {
	ResolveGrade(ctx context.Context, gradeID int64) (*model.GradeView, error)
	ResolveLecturer(ctx context.Context, userID int64) (*model.UserView, error)
	ResolveStudent(ctx context.Context, userID int64) (*model.UserView, error)
}

// AttendancePublisher fans attendance marks out to live listeners.
type AttendancePublisher interface {
	PublishAttendance(ctx context.Context, lectureID int64, evt model.AttendanceEvent) error
}
