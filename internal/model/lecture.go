package model

import "time"

// Lecture is a single scheduled session within a class.
type Lecture struct {
	ID          int64     `json:"id"`
	ClassID     int64     `json:"class_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	VideoLink   string    `json:"video_link"`
	PDFURL      string    `json:"pdf_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// LectureRequest is the payload for scheduling or updating a lecture.
type LectureRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=255"`
	Description string    `json:"description" binding:"max=2000"`
	DateTime    time.Time `json:"date_time" binding:"required"`
	VideoLink   string    `json:"video_link" binding:"omitempty,url,max=2048"`
	PDFURL      string    `json:"pdf_url" binding:"omitempty,url,max=2048"`
}

// LectureResponse is the API view of a lecture.
type LectureResponse struct {
	ID          int64     `json:"id"`
	ClassID     int64     `json:"class_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	VideoLink   string    `json:"video_link,omitempty"`
	PDFURL      string    `json:"pdf_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewLectureResponse maps a stored lecture to its API view.
func NewLectureResponse(l *Lecture) LectureResponse {
	return LectureResponse{
		ID:          l.ID,
		ClassID:     l.ClassID,
		Title:       l.Title,
		Description: l.Description,
		DateTime:    l.DateTime,
		VideoLink:   l.VideoLink,
		PDFURL:      l.PDFURL,
		CreatedAt:   l.CreatedAt,
	}
}
