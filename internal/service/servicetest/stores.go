// Package servicetest provides in-memory stores and identity stubs for exercising
// the services without Postgres, Redis or the identity service.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/repository"
)

// Store keeps classes, lectures and attendance in memory. A single Store
// implements all three store interfaces so that lecture counts, title joins
// and delete restrictions behave like the Postgres schema.
type Store struct {
	mu         sync.Mutex
	nextID     int64
	classes    map[int64]model.Class
	lectures   map[int64]model.Lecture
	attendance map[int64]model.Attendance
	writes     int
	Now        func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		classes:    make(map[int64]model.Class),
		lectures:   make(map[int64]model.Lecture),
		attendance: make(map[int64]model.Attendance),
		Now:        time.Now,
	}
}

// Writes returns the number of successful mutating calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Classes returns the class-store view of s.
func (s *Store) Classes() *ClassStore { return (*ClassStore)(s) }

// Lectures returns the lecture-store view of s.
func (s *Store) Lectures() *LectureStore { return (*LectureStore)(s) }

// Attendance returns the attendance-store view of s.
func (s *Store) Attendance() *AttendanceStore { return (*AttendanceStore)(s) }

// ClassStore is the class view of a Store.
type ClassStore Store

func (c *ClassStore) Create(_ context.Context, class *model.Class) error {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if class.Status == "" {
		class.Status = model.ClassStatusActive
	}
	now := s.Now()
	class.ID = s.id()
	class.CreatedAt = now
	class.UpdatedAt = now
	class.LectureCount = 0
	s.classes[class.ID] = *class
	s.writes++
	return nil
}

func (c *ClassStore) GetByID(_ context.Context, id int64) (*model.Class, error) {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	class, ok := s.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	class.LectureCount = s.lectureCount(id)
	return &class, nil
}

func (c *ClassStore) List(_ context.Context, f model.ClassFilter) ([]model.Class, error) {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Class, 0)
	for _, class := range s.classes {
		if f.LecturerID != nil && class.LecturerID != *f.LecturerID {
			continue
		}
		if f.GradeID != nil && class.GradeID != *f.GradeID {
			continue
		}
		if f.Status != nil && class.Status != *f.Status {
			continue
		}
		class.LectureCount = s.lectureCount(class.ID)
		out = append(out, class)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *ClassStore) Update(_ context.Context, class *model.Class) error {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.classes[class.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = class.Name
	stored.Description = class.Description
	stored.GradeID = class.GradeID
	stored.StartDate = class.StartDate
	stored.EndDate = class.EndDate
	stored.UpdatedAt = s.Now()
	class.UpdatedAt = stored.UpdatedAt
	s.classes[class.ID] = stored
	s.writes++
	return nil
}

func (c *ClassStore) UpdateStatus(_ context.Context, id int64, status model.ClassStatus) error {
	s := (*Store)(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.classes[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = s.Now()
	s.classes[id] = stored
	s.writes++
	return nil
}

func (s *Store) lectureCount(classID int64) int {
	n := 0
	for _, l := range s.lectures {
		if l.ClassID == classID {
			n++
		}
	}
	return n
}

// LectureStore is the lecture view of a Store.
type LectureStore Store

func (l *LectureStore) Create(_ context.Context, lecture *model.Lecture) error {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[lecture.ClassID]; !ok {
		return repository.ErrNotFound
	}
	lecture.ID = s.id()
	lecture.CreatedAt = s.Now()
	s.lectures[lecture.ID] = *lecture
	s.writes++
	return nil
}

func (l *LectureStore) GetByID(_ context.Context, id int64) (*model.Lecture, error) {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	lecture, ok := s.lectures[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &lecture, nil
}

func (l *LectureStore) ListByClass(_ context.Context, classID int64) ([]model.Lecture, error) {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Lecture, 0)
	for _, lecture := range s.lectures {
		if lecture.ClassID == classID {
			out = append(out, lecture)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out, nil
}

func (l *LectureStore) Count(context.Context) (int64, error) {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.lectures)), nil
}

func (l *LectureStore) Update(_ context.Context, lecture *model.Lecture) error {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.lectures[lecture.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = lecture.Title
	stored.Description = lecture.Description
	stored.DateTime = lecture.DateTime
	stored.VideoLink = lecture.VideoLink
	stored.PDFURL = lecture.PDFURL
	s.lectures[lecture.ID] = stored
	s.writes++
	return nil
}

func (l *LectureStore) Delete(_ context.Context, id int64) error {
	s := (*Store)(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lectures[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range s.attendance {
		if a.LectureID == id {
			return repository.ErrReferenced
		}
	}
	delete(s.lectures, id)
	s.writes++
	return nil
}

// AttendanceStore is the attendance view of a Store.
type AttendanceStore Store

func (a *AttendanceStore) Upsert(_ context.Context, rec *model.Attendance) (bool, error) {
	s := (*Store)(a)
	s.mu.Lock()
	defer s.mu.Unlock()
	lecture, ok := s.lectures[rec.LectureID]
	if !ok {
		return false, repository.ErrReferenced
	}
	rec.LectureTitle = lecture.Title
	s.writes++
	for id, existing := range s.attendance {
		if existing.StudentID == rec.StudentID && existing.LectureID == rec.LectureID {
			rec.ID = id
			s.attendance[id] = *rec
			return false, nil
		}
	}
	rec.ID = s.id()
	s.attendance[rec.ID] = *rec
	return true, nil
}

func (a *AttendanceStore) GetByStudentAndLecture(_ context.Context, studentID, lectureID int64) (*model.Attendance, error) {
	s := (*Store)(a)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.attendance {
		if rec.StudentID == studentID && rec.LectureID == lectureID {
			rec.LectureTitle = s.lectures[lectureID].Title
			return &rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (a *AttendanceStore) List(_ context.Context, f model.AttendanceFilter) ([]model.Attendance, error) {
	s := (*Store)(a)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Attendance, 0)
	for _, rec := range s.attendance {
		if f.LectureID != nil && rec.LectureID != *f.LectureID {
			continue
		}
		if f.StudentID != nil && rec.StudentID != *f.StudentID {
			continue
		}
		if f.Status != nil && rec.Status != *f.Status {
			continue
		}
		rec.LectureTitle = s.lectures[rec.LectureID].Title
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count returns the number of stored attendance records.
func (a *AttendanceStore) Count() int {
	s := (*Store)(a)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attendance)
}
