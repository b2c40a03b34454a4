package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/edupulse/class-service/internal/middleware"
	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/response"
	"github.com/edupulse/class-service/internal/service"
	"github.com/edupulse/class-service/internal/validator"
	ws "github.com/edupulse/class-service/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MarkLimiter bounds how often one principal may mark attendance.
type MarkLimiter interface {
	AllowPrincipal(p model.Principal) bool
}

// WSHandler serves the live attendance roster over WebSocket. The lecturer
// receives every mark as it happens and may mark students over the same socket.
type WSHandler struct {
	feed              *service.AttendanceFeed
	lectureService    *service.LectureService
	attendanceService *service.AttendanceService
	limiter           MarkLimiter
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. A nil feed serves the snapshot and
// marks without relaying other clients' marks.
func NewWSHandler(
	feed *service.AttendanceFeed,
	lectureService *service.LectureService,
	attendanceService *service.AttendanceService,
	limiter MarkLimiter,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		feed:              feed,
		lectureService:    lectureService,
		attendanceService: attendanceService,
		limiter:           limiter,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// AttendanceStream godoc
// WS /ws/v1/lectures/:id/attendance
func (h *WSHandler) AttendanceStream(c *gin.Context) {
	lectureID, ok := paramID(c, "id")
	if !ok {
		return
	}

	p := middleware.GetPrincipal(c)
	// Authorize before upgrading so failures are plain HTTP errors.
	if _, err := h.lectureService.AuthorizeAttendanceFeed(c.Request.Context(), lectureID, p); err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	wsLog := h.log.With().
		Int64("lecture_id", lectureID).
		Int64("user_id", p.UserID).
		Logger()

	snapshot, err := h.attendanceService.GetAttendanceForLecture(ctx, lectureID, "")
	if err != nil {
		wsLog.Error().Err(err).Msg("Snapshot failed")
		_ = conn.WriteError("failed to load attendance")
		return
	}
	if err := conn.WriteTyped(ws.SnapshotResponse{Event: ws.EventSnapshot, LectureID: lectureID, Attendance: snapshot}); err != nil {
		return
	}

	if h.feed != nil {
		pubsub := h.feed.Subscribe(ctx, lectureID)
		defer pubsub.Close()
		go h.forward(ctx, conn, pubsub.Channel())
	}

	wsLog.Info().Msg("Lecturer connected")

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = conn.WriteError("malformed message")
			continue
		}

		switch env.Action {
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionMark:
			h.handleMark(ctx, conn, wsLog, lectureID, p, data)
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			_ = conn.WriteError("unknown action: " + string(env.Action))
		}
	}
}

// forward relays feed messages to the socket until ctx ends or a write fails.
func (h *WSHandler) forward(ctx context.Context, conn *ws.Conn, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteTyped(ws.AttendanceResponse{Event: ws.EventAttendance, Data: json.RawMessage(msg.Payload)}); err != nil {
				return
			}
		}
	}
}

// handleMark applies the rules of the HTTP mark route: lecturers only, the
// shared per-principal budget, and the same payload validation.
func (h *WSHandler) handleMark(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, lectureID int64, p model.Principal, data []byte) {
	if p.Role != model.RoleLecturer {
		_ = conn.WriteFailure(string(response.ErrForbidden), "only lecturers may mark attendance", nil)
		return
	}
	if h.limiter != nil && !h.limiter.AllowPrincipal(p) {
		_ = conn.WriteFailure(string(response.ErrRateLimitExceeded), response.GetMessage(response.ErrRateLimitExceeded), nil)
		return
	}

	var msg ws.MarkRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		_ = conn.WriteFailure(string(response.ErrInvalidPayload), "malformed mark request", nil)
		return
	}
	req := model.AttendanceRequest{
		StudentID: msg.StudentID,
		Status:    msg.Status,
		Notes:     msg.Notes,
	}
	if fields := validator.Validate(&req); fields != nil {
		_ = conn.WriteFailure(string(response.ErrValidation), response.GetMessage(response.ErrValidation), fields)
		return
	}

	attendance, err := h.attendanceService.MarkAttendance(ctx, lectureID, req, p)
	if err != nil {
		status, code, text := describe(err)
		if status == http.StatusInternalServerError {
			wsLog.Error().Err(err).Int64("student_id", req.StudentID).Msg("Mark over WebSocket failed")
		} else {
			wsLog.Debug().Err(err).Int64("student_id", req.StudentID).Msg("Mark over WebSocket rejected")
		}
		_ = conn.WriteFailure(string(code), text, nil)
		return
	}

	_ = conn.WriteTyped(ws.MarkedResponse{Event: ws.EventMarked, Attendance: *attendance})
}
