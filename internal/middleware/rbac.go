package middleware

import (
	"net/http"
	"slices"

	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole checks that the acting user holds one of the given roles.
// Must run after RequirePrincipal.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if !p.Authenticated() {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrPrincipalRequired)
			return
		}

		if slices.Contains(roles, p.Role) {
			c.Next()
			return
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
	}
}
