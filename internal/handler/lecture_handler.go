package handler

import (
	"net/http"

	"github.com/edupulse/class-service/internal/middleware"
	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/response"
	"github.com/edupulse/class-service/internal/service"
	"github.com/edupulse/class-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LectureHandler handles lecture scheduling and queries.
type LectureHandler struct {
	lectureService *service.LectureService
	log            zerolog.Logger
}

// NewLectureHandler creates a new LectureHandler.
func NewLectureHandler(lectureService *service.LectureService, log zerolog.Logger) *LectureHandler {
	return &LectureHandler{
		lectureService: lectureService,
		log:            log.With().Str("component", "lecture_handler").Logger(),
	}
}

// ScheduleLecture godoc
// POST /api/v1/classes/:id/lectures
func (h *LectureHandler) ScheduleLecture(c *gin.Context) {
	classID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.LectureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lecture, err := h.lectureService.ScheduleLecture(c.Request.Context(), classID, req, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"lecture": lecture})
}

// ListLectures godoc
// GET /api/v1/classes/:id/lectures
func (h *LectureHandler) ListLectures(c *gin.Context) {
	classID, ok := paramID(c, "id")
	if !ok {
		return
	}

	lectures, err := h.lectureService.GetLecturesByClass(c.Request.Context(), classID)
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lectures": lectures})
}

// CountLectures godoc
// GET /api/v1/classes/lectures/count
func (h *LectureHandler) CountLectures(c *gin.Context) {
	count, err := h.lectureService.CountLectures(c.Request.Context())
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// GetLecture godoc
// GET /api/v1/classes/lectures/:id
func (h *LectureHandler) GetLecture(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	lecture, err := h.lectureService.GetLectureByID(c.Request.Context(), id)
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lecture": lecture})
}

// UpdateLecture godoc
// PUT /api/v1/classes/lectures/:id
func (h *LectureHandler) UpdateLecture(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.LectureRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lecture, err := h.lectureService.UpdateLecture(c.Request.Context(), id, req, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lecture": lecture})
}

// DeleteLecture godoc
// DELETE /api/v1/classes/lectures/:id
// Fails with 409 once attendance has been recorded.
func (h *LectureHandler) DeleteLecture(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.lectureService.DeleteLecture(c.Request.Context(), id, middleware.GetPrincipal(c)); err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "lecture deleted successfully"})
}
