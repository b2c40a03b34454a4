package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of class start and end dates.
const DateLayout = "2006-01-02"

// ClassStatus is the lifecycle state of a class.
type ClassStatus string

const (
	ClassStatusActive    ClassStatus = "ACTIVE"
	ClassStatusArchived  ClassStatus = "ARCHIVED"
	ClassStatusCancelled ClassStatus = "CANCELLED"
)

// ParseClassStatus parses a case-insensitive status name.
func ParseClassStatus(raw string) (ClassStatus, error) {
	switch s := ClassStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case ClassStatusActive, ClassStatusArchived, ClassStatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("unknown class status %q", raw)
	}
}

// Class is a course-like grouping of lectures owned by one lecturer and associated with one grade.
type Class struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	GradeID     int64       `json:"grade_id"`
	LecturerID  int64       `json:"lecturer_id"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Status      ClassStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// LectureCount is computed by the store on reads; it is not a column.
	LectureCount int `json:"-"`
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=2000"`
	GradeID     int64  `json:"grade_id" binding:"required,gt=0"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

// ClassResponse is a class enriched with lecturer and grade display names.
type ClassResponse struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	GradeID      int64       `json:"grade_id"`
	GradeName    string      `json:"grade_name"`
	LecturerID   int64       `json:"lecturer_id"`
	LecturerName string      `json:"lecturer_name"`
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
	Status       ClassStatus `json:"status"`
	LectureCount int         `json:"lecture_count"`
}
