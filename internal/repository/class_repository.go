package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/edupulse/class-service/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const classColumns = `c.id, c.name, c.description, c.grade_id, c.lecturer_id, c.start_date, c.end_date,
	c.status, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM lectures l WHERE l.class_id = c.id) AS lecture_count`

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

func scanClass(row pgx.Row, c *model.Class) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.GradeID, &c.LecturerID, &c.StartDate, &c.EndDate,
		&c.Status, &c.CreatedAt, &c.UpdatedAt, &c.LectureCount)
}

// GetByID retrieves a class by its ID, including its lecture count.
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*model.Class, error) {
	c := &model.Class{}
	err := scanClass(r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes c WHERE c.id = $1`, id), c)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// List retrieves classes matching the filter, newest first.
func (r *ClassRepository) List(ctx context.Context, f model.ClassFilter) ([]model.Class, error) {
	var (
		where []string
		args  []any
	)
	if f.LecturerID != nil {
		args = append(args, *f.LecturerID)
		where = append(where, fmt.Sprintf("c.lecturer_id = $%d", len(args)))
	}
	if f.GradeID != nil {
		args = append(args, *f.GradeID)
		where = append(where, fmt.Sprintf("c.grade_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)))
	}

	query := `SELECT ` + classColumns + ` FROM classes c`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY c.start_date DESC, c.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := scanClass(rows, &c); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Create inserts a new class. Status defaults to ACTIVE when unset.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	if c.Status == "" {
		c.Status = model.ClassStatusActive
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, description, grade_id, lecturer_id, start_date, end_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.GradeID, c.LecturerID, c.StartDate, c.EndDate, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update overwrites the mutable details of a class. Last writer wins.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE classes
		 SET name = $1, description = $2, grade_id = $3, start_date = $4, end_date = $5,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING updated_at`,
		c.Name, c.Description, c.GradeID, c.StartDate, c.EndDate, c.ID,
	).Scan(&c.UpdatedAt)
	return translate(err)
}

// UpdateStatus sets the lifecycle status of a class.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id int64, status model.ClassStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE classes SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
