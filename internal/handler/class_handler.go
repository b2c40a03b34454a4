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

// ClassHandler handles class management and class queries.
type ClassHandler struct {
	classService *service.ClassService
	log          zerolog.Logger
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, log zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classService: classService,
		log:          log.With().Str("component", "class_handler").Logger(),
	}
}

// CreateClass godoc
// POST /api/v1/classes
// Creates an ACTIVE class owned by the acting lecturer.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.CreateClass(c.Request.Context(), req, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// ListClasses godoc
// GET /api/v1/classes?status=ACTIVE
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.GetAllClasses(c.Request.Context(), c.Query("status"))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// GetClass godoc
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.GetClassByID(c.Request.Context(), id)
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// UpdateClass godoc
// PUT /api/v1/classes/:id
// Only the owning lecturer may update.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.UpdateClass(c.Request.Context(), id, req, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// DeleteClass godoc
// DELETE /api/v1/classes/:id
// Archives the class; lectures and attendance are kept.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.classService.DeleteClass(c.Request.Context(), id, middleware.GetPrincipal(c)); err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "class archived successfully"})
}

// RestoreClass godoc
// POST /api/v1/classes/:id/restore
func (h *ClassHandler) RestoreClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.RestoreClass(c.Request.Context(), id, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// ListClassesByGrade godoc
// GET /api/v1/classes/grade/:gradeId?status=ACTIVE
func (h *ClassHandler) ListClassesByGrade(c *gin.Context) {
	gradeID, ok := paramID(c, "gradeId")
	if !ok {
		return
	}

	classes, err := h.classService.GetClassesByGrade(c.Request.Context(), gradeID, c.Query("status"))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// ListClassesByLecturer godoc
// GET /api/v1/classes/lecturer/:lecturerId
func (h *ClassHandler) ListClassesByLecturer(c *gin.Context) {
	lecturerID, ok := paramID(c, "lecturerId")
	if !ok {
		return
	}

	classes, err := h.classService.GetClassesByLecturer(c.Request.Context(), lecturerID, middleware.GetPrincipal(c))
	if err != nil {
		failWithServiceError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}
