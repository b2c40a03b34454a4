package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/edupulse/class-service/internal/response"
	"github.com/edupulse/class-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// domainCodes pins specific service errors to their API codes. Errors not
// listed here fall back to the code of their kind.
var domainCodes = []struct {
	err  error
	code response.ErrCode
}{
	{service.ErrClassNotFound, response.ErrClassNotFound},
	{service.ErrLectureNotFound, response.ErrLectureNotFound},
	{service.ErrAttendanceNotFound, response.ErrAttendanceNotFound},
	{service.ErrGradeNotFound, response.ErrGradeNotFound},
	{service.ErrStudentNotFound, response.ErrStudentNotFound},
	{service.ErrPrincipalRequired, response.ErrPrincipalRequired},
	{service.ErrLecturerInvalid, response.ErrLecturerInvalid},
	{service.ErrNotClassOwner, response.ErrNotClassOwner},
	{service.ErrNotSelf, response.ErrNotSelf},
	{service.ErrLectureInPast, response.ErrLectureInPast},
	{service.ErrClassNotActive, response.ErrClassNotActive},
	{service.ErrClassNotArchived, response.ErrClassNotActive},
	{service.ErrInvalidAttendanceStatus, response.ErrInvalidStatus},
	{service.ErrInvalidClassStatus, response.ErrInvalidStatus},
	{service.ErrLectureHasAttendance, response.ErrDependencyExists},
}

// failWithServiceError maps a service error onto the response envelope.
// Unknown errors are logged and reported as 500.
func failWithServiceError(c *gin.Context, log zerolog.Logger, err error) {
	status, code, msg := describe(err)
	switch status {
	case http.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, status, code)
		return
	case http.StatusBadGateway:
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("Upstream unavailable")
	}
	response.FailWithMessage(c, status, code, msg)
}

// describe resolves the status, API code and public message of a service error.
func describe(err error) (int, response.ErrCode, string) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		return status, code, response.GetMessage(code)
	}
	for _, dc := range domainCodes {
		if errors.Is(err, dc.err) {
			code = dc.code
			break
		}
	}
	return status, code, messageOf(err, code)
}

func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrPrincipalRequired):
		return http.StatusUnauthorized, response.ErrPrincipalRequired
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden, response.ErrForbidden
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway, response.ErrUpstreamUnavailable
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, response.ErrConflict
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// messageOf keeps upstream details out of the response body.
func messageOf(err error, code response.ErrCode) string {
	if code == response.ErrUpstreamUnavailable {
		return response.GetMessage(code)
	}
	if msg := service.PublicMessage(err); msg != "" {
		return msg
	}
	return response.GetMessage(code)
}

// paramID parses a positive int64 path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
