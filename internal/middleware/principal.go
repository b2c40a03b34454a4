package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/edupulse/class-service/internal/identity"
	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	// ContextKeyPrincipal is the Gin context key for the acting user.
	ContextKeyPrincipal = "principal"

	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

var errNoCredentials = errors.New("no bearer token or user headers")

// UsernameResolver looks up a user by username. Implemented by identity.Client.
type UsernameResolver interface {
	ResolveUsername(ctx context.Context, username string) (*model.UserView, error)
}

// gatewayClaims are the claims the API gateway puts into bearer tokens.
// Signatures are verified at the gateway; this service only reads them.
type gatewayClaims struct {
	UserID   int64  `json:"user_id,omitempty"`
	Role     string `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// RequirePrincipal establishes the acting user from a bearer token (header or
// ?token= for EventSource and WebSocket clients) or from gateway headers.
// The bearer token is forwarded to identity lookups made during the request.
func RequirePrincipal(users UsernameResolver, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "principal_middleware").Logger()
	parser := jwt.NewParser()

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := bearerToken(c)
		if token != "" {
			ctx = identity.WithBearerToken(ctx, token)
		}

		p, err := principalFrom(ctx, c, parser, token, users)
		switch {
		case errors.Is(err, errNoCredentials):
			response.AbortFail(c, http.StatusUnauthorized, response.ErrPrincipalRequired)
			return
		case errors.Is(err, identity.ErrUnavailable):
			log.Warn().Err(err).Msg("Username resolution failed")
			response.AbortFail(c, http.StatusBadGateway, response.ErrUpstreamUnavailable)
			return
		case err != nil:
			log.Debug().Err(err).Msg("Rejected credentials")
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextKeyPrincipal, p)
		c.Next()
	}
}

// GetPrincipal retrieves the acting user from the Gin context.
// The zero Principal is returned when none was established.
func GetPrincipal(c *gin.Context) model.Principal {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return model.Principal{}
	}
	p, _ := val.(model.Principal)
	return p
}

func principalFrom(ctx context.Context, c *gin.Context, parser *jwt.Parser, token string, users UsernameResolver) (model.Principal, error) {
	if token != "" {
		return principalFromToken(ctx, parser, token, users)
	}

	rawID := c.GetHeader(HeaderUserID)
	if rawID == "" {
		return model.Principal{}, errNoCredentials
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return model.Principal{}, errors.New("malformed user id header")
	}
	return model.Principal{UserID: id, Role: identity.NormalizeRole(c.GetHeader(HeaderUserRole))}, nil
}

func principalFromToken(ctx context.Context, parser *jwt.Parser, token string, users UsernameResolver) (model.Principal, error) {
	var claims gatewayClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return model.Principal{}, err
	}

	id := claims.UserID
	if id == 0 {
		if n, err := strconv.ParseInt(claims.Subject, 10, 64); err == nil {
			id = n
		}
	}
	if id > 0 {
		return model.Principal{UserID: id, Role: identity.NormalizeRole(claims.Role)}, nil
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	if username == "" || users == nil {
		return model.Principal{}, errors.New("token carries no user")
	}
	user, err := users.ResolveUsername(ctx, username)
	if err != nil {
		return model.Principal{}, err
	}
	return model.Principal{UserID: user.ID, Role: user.Role}, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Fallback for EventSource (SSE) and WebSocket, which cannot send headers
	return c.Query("token")
}
