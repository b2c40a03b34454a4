package service

import (
	"io"
	"testing"
	"time"

	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/service/servicetest"
	"github.com/rs/zerolog"
)

const (
	lecturerID      int64 = 9
	otherLecturerID int64 = 10
	adminID         int64 = 1
	studentID       int64 = 42
	otherStudentID  int64 = 43
	gradeID         int64 = 5
	otherGradeID    int64 = 6
)

var (
	lecturer      = model.Principal{UserID: lecturerID, Role: model.RoleLecturer}
	otherLecturer = model.Principal{UserID: otherLecturerID, Role: model.RoleLecturer}
	admin         = model.Principal{UserID: adminID, Role: model.RoleAdmin}
	student       = model.Principal{UserID: studentID, Role: model.RoleStudent}
)

type fixture struct {
	store      *servicetest.Store
	resolver   *servicetest.Resolver
	feed       *servicetest.Publisher
	classes    *ClassService
	lectures   *LectureService
	attendance *AttendanceService
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.New(io.Discard)

	store := servicetest.NewStore()
	resolver := servicetest.NewResolver().
		AddUser(lecturerID, "Dr. Ada Byron", model.RoleLecturer).
		AddUser(otherLecturerID, "Dr. Alan Turing", model.RoleLecturer).
		AddUser(adminID, "Root Admin", model.RoleAdmin).
		AddUser(studentID, "Grace Hopper", model.RoleStudent).
		AddUser(otherStudentID, "Edsger Dijkstra", model.RoleStudent).
		AddGrade(gradeID, "Grade 5").
		AddGrade(otherGradeID, "Grade 6")
	feed := &servicetest.Publisher{}

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }

	f := &fixture{
		store:      store,
		resolver:   resolver,
		feed:       feed,
		classes:    NewClassService(store.Classes(), resolver, 4, log),
		lectures:   NewLectureService(store.Classes(), store.Lectures(), log),
		attendance: NewAttendanceService(store.Lectures(), store.Attendance(), resolver, feed, 4, log),
		now:        now,
	}
	f.lectures.now = func() time.Time { return now }
	f.attendance.now = func() time.Time { return now }
	return f
}

func algebraRequest() model.ClassRequest {
	return model.ClassRequest{
		Name:        "Algebra I",
		Description: "Linear equations and inequalities",
		GradeID:     gradeID,
		StartDate:   "2026-01-10",
		EndDate:     "2026-06-30",
	}
}

func (f *fixture) mustCreateClass(t *testing.T) *model.ClassResponse {
	t.Helper()
	c, err := f.classes.CreateClass(t.Context(), algebraRequest(), lecturer)
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	return c
}

func (f *fixture) mustScheduleLecture(t *testing.T, classID int64) *model.LectureResponse {
	t.Helper()
	l, err := f.lectures.ScheduleLecture(t.Context(), classID, model.LectureRequest{
		Title:    "Solving for x",
		DateTime: f.now.Add(time.Hour),
	}, lecturer)
	if err != nil {
		t.Fatalf("schedule lecture: %v", err)
	}
	return l
}
