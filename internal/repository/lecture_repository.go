package repository

import (
	"context"

	"github.com/edupulse/class-service/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lectureColumns = `id, class_id, title, description, date_time, video_link, pdf_url, created_at`

// LectureRepository handles lecture data access.
type LectureRepository struct {
	pool *pgxpool.Pool
}

// NewLectureRepository creates a new LectureRepository.
func NewLectureRepository(pool *pgxpool.Pool) *LectureRepository {
	return &LectureRepository{pool: pool}
}

func scanLecture(row pgx.Row, l *model.Lecture) error {
	return row.Scan(&l.ID, &l.ClassID, &l.Title, &l.Description, &l.DateTime, &l.VideoLink, &l.PDFURL, &l.CreatedAt)
}

// GetByID retrieves a lecture by its ID.
func (r *LectureRepository) GetByID(ctx context.Context, id int64) (*model.Lecture, error) {
	l := &model.Lecture{}
	if err := scanLecture(r.pool.QueryRow(ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE id = $1`, id), l); err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// ListByClass retrieves the lectures of a class in schedule order.
func (r *LectureRepository) ListByClass(ctx context.Context, classID int64) ([]model.Lecture, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE class_id = $1 ORDER BY date_time, id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lectures []model.Lecture
	for rows.Next() {
		var l model.Lecture
		if err := scanLecture(rows, &l); err != nil {
			return nil, err
		}
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

// Count returns the total number of lectures.
func (r *LectureRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lectures`).Scan(&n)
	return n, err
}

// Create inserts a new lecture. created_at is set here and never updated.
func (r *LectureRepository) Create(ctx context.Context, l *model.Lecture) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO lectures (class_id, title, description, date_time, video_link, pdf_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		l.ClassID, l.Title, l.Description, l.DateTime, l.VideoLink, l.PDFURL,
	).Scan(&l.ID, &l.CreatedAt)
}

// Update overwrites the mutable details of a lecture. Last writer wins.
func (r *LectureRepository) Update(ctx context.Context, l *model.Lecture) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lectures
		 SET title = $1, description = $2, date_time = $3, video_link = $4, pdf_url = $5
		 WHERE id = $6`,
		l.Title, l.Description, l.DateTime, l.VideoLink, l.PDFURL, l.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-deletes a lecture. Attendance rows reference lectures with
// ON DELETE RESTRICT, so a lecture with attendance yields ErrReferenced.
func (r *LectureRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
