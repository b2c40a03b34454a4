package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/edupulse/class-service/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const attendanceColumns = `a.id, a.student_id, a.lecture_id, a.status, a.notes, a.check_in_time, l.title`

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func scanAttendance(row pgx.Row, a *model.Attendance) error {
	return row.Scan(&a.ID, &a.StudentID, &a.LectureID, &a.Status, &a.Notes, &a.CheckInTime, &a.LectureTitle)
}

// Upsert records a mark for (student_id, lecture_id). The unique index on that
// pair makes the insert-or-update a single atomic statement, so concurrent marks
// for the same pair converge on one row. created reports whether a new row was inserted.
func (r *AttendanceRepository) Upsert(ctx context.Context, a *model.Attendance) (created bool, err error) {
	err = r.pool.QueryRow(ctx,
		`INSERT INTO attendances (student_id, lecture_id, status, notes, check_in_time)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id, lecture_id) DO UPDATE
		 SET status = EXCLUDED.status,
		     notes = EXCLUDED.notes,
		     check_in_time = EXCLUDED.check_in_time
		 RETURNING id, (xmax = 0) AS inserted`,
		a.StudentID, a.LectureID, a.Status, a.Notes, a.CheckInTime,
	).Scan(&a.ID, &created)
	return created, translate(err)
}

// GetByStudentAndLecture retrieves the single record for a (student, lecture) pair.
func (r *AttendanceRepository) GetByStudentAndLecture(ctx context.Context, studentID, lectureID int64) (*model.Attendance, error) {
	a := &model.Attendance{}
	err := scanAttendance(r.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+`
		 FROM attendances a JOIN lectures l ON l.id = a.lecture_id
		 WHERE a.student_id = $1 AND a.lecture_id = $2`, studentID, lectureID), a)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// List retrieves attendance records matching the filter, most recent check-in first.
func (r *AttendanceRepository) List(ctx context.Context, f model.AttendanceFilter) ([]model.Attendance, error) {
	var (
		where []string
		args  []any
	)
	if f.LectureID != nil {
		args = append(args, *f.LectureID)
		where = append(where, fmt.Sprintf("a.lecture_id = $%d", len(args)))
	}
	if f.StudentID != nil {
		args = append(args, *f.StudentID)
		where = append(where, fmt.Sprintf("a.student_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendances a JOIN lectures l ON l.id = a.lecture_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY a.check_in_time DESC, a.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Attendance
	for rows.Next() {
		var a model.Attendance
		if err := scanAttendance(rows, &a); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
