package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edupulse/class-service/internal/response"
	"github.com/edupulse/class-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailWithServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   response.ErrCode
		wantMsg    string
	}{
		{"class not found", service.ErrClassNotFound, http.StatusNotFound, response.ErrClassNotFound, "class not found"},
		{"no principal", service.ErrPrincipalRequired, http.StatusUnauthorized, response.ErrPrincipalRequired, ""},
		{"not owner", service.ErrNotClassOwner, http.StatusForbidden, response.ErrNotClassOwner, ""},
		{"lecturer invalid wrapped", fmt.Errorf("%w: role STUDENT", service.ErrLecturerInvalid), http.StatusForbidden, response.ErrLecturerInvalid, "lecturer invalid"},
		{"generic validation", service.ErrInvalidDateRange, http.StatusBadRequest, response.ErrValidation, "start date must not be after end date"},
		{"in the past", service.ErrLectureInPast, http.StatusBadRequest, response.ErrLectureInPast, ""},
		{"upstream", fmt.Errorf("%w: dial tcp", service.ErrIdentityUnavailable), http.StatusBadGateway, response.ErrUpstreamUnavailable, response.GetMessage(response.ErrUpstreamUnavailable)},
		{"conflict", service.ErrLectureHasAttendance, http.StatusConflict, response.ErrDependencyExists, ""},
		{"unknown", errors.New("pool closed"), http.StatusInternalServerError, response.ErrInternal, response.GetMessage(response.ErrInternal)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			failWithServiceError(c, zerolog.Nop(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Error.Message)
			}
			assert.NotEmpty(t, body.Metadata.RequestID)
		})
	}
}

func TestParamID(t *testing.T) {
	for raw, wantOK := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := paramID(c, "id")
		assert.Equal(t, wantOK, ok, raw)
		if !ok {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	}
}
