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

// AttendanceHandler handles marking and listing attendance.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
	log               zerolog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
		log:               log.With().Str("component", "attendance_handler").Logger(),
	}
}

// MarkAttendance godoc
// POST /api/v1/classes/lectures/:id/attendance
// Upserts the (student, lecture) record; repeated marks update it.
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	lectureID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.AttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attendance, err := h.attendanceService.MarkAttendance(c.Request.Context(), lectureID, req, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": attendance})
}

// ListLectureAttendance godoc
// GET /api/v1/classes/lectures/:id/attendance?status=PRESENT
func (h *AttendanceHandler) ListLectureAttendance(c *gin.Context) {
	lectureID, ok := paramID(c, "id")
	if !ok {
		return
	}

	records, err := h.attendanceService.GetAttendanceForLecture(c.Request.Context(), lectureID, c.Query("status"))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// GetMyAttendance godoc
// GET /api/v1/classes/lectures/:id/attendance/me
func (h *AttendanceHandler) GetMyAttendance(c *gin.Context) {
	lectureID, ok := paramID(c, "id")
	if !ok {
		return
	}

	record, err := h.attendanceService.GetMyAttendanceForLecture(c.Request.Context(), lectureID, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// ListStudentAttendance godoc
// GET /api/v1/classes/students/:studentId/attendance?status=ABSENT
func (h *AttendanceHandler) ListStudentAttendance(c *gin.Context) {
	studentID, ok := paramID(c, "studentId")
	if !ok {
		return
	}

	records, err := h.attendanceService.GetAttendanceForStudent(c.Request.Context(), studentID, c.Query("status"), middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}
