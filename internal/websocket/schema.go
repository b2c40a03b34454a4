package websocket

import (
	"encoding/json"

	"github.com/edupulse/class-service/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionMark Action = "mark"
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// MarkRequest is sent by the lecturer to mark one student from the live roster.
type MarkRequest struct {
	Action    Action `json:"action"`
	StudentID int64  `json:"student_id"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot   Event = "snapshot"
	EventAttendance Event = "attendance"
	EventMarked     Event = "marked"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// SnapshotResponse carries the lecture's attendance at connect time.
type SnapshotResponse struct {
	Event      Event                      `json:"event"`
	LectureID  int64                      `json:"lecture_id"`
	Attendance []model.AttendanceResponse `json:"attendance"`
}

// AttendanceResponse forwards a feed event. Data is the raw published payload.
type AttendanceResponse struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// MarkedResponse acknowledges a mark sent over this connection.
type MarkedResponse struct {
	Event      Event                    `json:"event"`
	Attendance model.AttendanceResponse `json:"attendance"`
}

// ErrorResponse reports a rejected action. Code mirrors the HTTP API error codes.
type ErrorResponse struct {
	Event  Event             `json:"event"`
	Code   string            `json:"code,omitempty"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
