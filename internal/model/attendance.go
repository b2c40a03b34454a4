package model

import (
	"fmt"
	"strings"
	"time"
)

// AttendanceStatus is a student's presence status for one lecture.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

// ParseAttendanceStatus parses a case-insensitive status name.
func ParseAttendanceStatus(raw string) (AttendanceStatus, error) {
	switch s := AttendanceStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return s, nil
	default:
		return "", fmt.Errorf("unknown attendance status %q", raw)
	}
}

// Attendance records one student's status for one lecture.
// (StudentID, LectureID) is unique.
type Attendance struct {
	ID          int64            `json:"id"`
	StudentID   int64            `json:"student_id"`
	LectureID   int64            `json:"lecture_id"`
	Status      AttendanceStatus `json:"status"`
	Notes       string           `json:"notes"`
	CheckInTime time.Time        `json:"check_in_time"`

	// LectureTitle is joined in by list queries.
	LectureTitle string `json:"-"`
}

// AttendanceRequest is the payload for marking attendance.
type AttendanceRequest struct {
	StudentID int64  `json:"student_id" binding:"required,gt=0"`
	Status    string `json:"status" binding:"required,attendance_status"`
	Notes     string `json:"notes" binding:"max=1000"`
}

// AttendanceResponse is an attendance record enriched with the student's display name.
type AttendanceResponse struct {
	ID           int64            `json:"id"`
	StudentID    int64            `json:"student_id"`
	StudentName  string           `json:"student_name"`
	LectureID    int64            `json:"lecture_id"`
	LectureTitle string           `json:"lecture_title"`
	Status       AttendanceStatus `json:"status"`
	Notes        string           `json:"notes,omitempty"`
	CheckInTime  time.Time        `json:"check_in_time"`
}

// AttendanceEvent is published on the live feed after every successful mark.
type AttendanceEvent struct {
	Type       string             `json:"type"`
	Created    bool               `json:"created"`
	Attendance AttendanceResponse `json:"attendance"`
}
