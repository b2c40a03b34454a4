package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/edupulse/class-service/internal/middleware"
	"github.com/edupulse/class-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler streams live attendance marks to the owning lecturer over SSE.
type MonitorHandler struct {
	feed           *service.AttendanceFeed
	lectureService *service.LectureService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(feed *service.AttendanceFeed, lectureService *service.LectureService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		feed:           feed,
		lectureService: lectureService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// StreamAttendance godoc
// GET /api/v1/classes/lectures/:id/attendance/stream
// Forwards every attendance event of the lecture as an SSE data frame.
func (h *MonitorHandler) StreamAttendance(c *gin.Context) {
	lectureID, ok := paramID(c, "id")
	if !ok {
		return
	}

	p := middleware.GetPrincipal(c)
	if _, err := h.lectureService.AuthorizeAttendanceFeed(c.Request.Context(), lectureID, p); err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	pubsub := h.feed.Subscribe(reqCtx, lectureID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	h.log.Info().Int64("lecture_id", lectureID).Int64("user_id", p.UserID).Msg("Attached to attendance stream")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Int64("lecture_id", lectureID).Int64("user_id", p.UserID).Msg("Detached from attendance stream")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(c, []byte(msg.Payload))

		case <-keepAliveTicker.C:
			writeSSE(c, pingPayload)
		}
	}
}

func writeSSE(c *gin.Context, payload []byte) {
	_, _ = c.Writer.Write([]byte("data: "))
	_, _ = c.Writer.Write(payload)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
