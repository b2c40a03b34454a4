// Package identity resolves lecturer, student and grade ids against the
// external identity service. Results are never cached across calls.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/edupulse/class-service/internal/model"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound means the identity service does not know the id.
	ErrNotFound = errors.New("identity not found")
	// ErrInvalidRole means the user exists but does not hold the required role.
	ErrInvalidRole = errors.New("identity has unexpected role")
	// ErrUnavailable means the identity service could not be reached or answered with a server error.
	ErrUnavailable = errors.New("identity service unavailable")
)

// maxBodyBytes caps how much of an identity response is decoded.
const maxBodyBytes = 1 << 20

// Client is an HTTP client for the identity service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Client. baseURL must not carry a trailing slash.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "identity_client").Logger(),
	}
}

// ResolveGrade fetches GET grade/{id}.
func (c *Client) ResolveGrade(ctx context.Context, gradeID int64) (*model.GradeView, error) {
	var grade model.GradeView
	if err := c.get(ctx, "/grade/"+strconv.FormatInt(gradeID, 10), &grade); err != nil {
		return nil, fmt.Errorf("resolve grade %d: %w", gradeID, err)
	}
	return &grade, nil
}

// ResolveLecturer fetches GET lecturer/{id} and requires role LECTURER.
func (c *Client) ResolveLecturer(ctx context.Context, userID int64) (*model.UserView, error) {
	user, err := c.resolveUser(ctx, "/lecturer/", userID, model.RoleLecturer)
	if err != nil {
		return nil, fmt.Errorf("resolve lecturer %d: %w", userID, err)
	}
	return user, nil
}

// ResolveStudent fetches GET student/{id} and requires role STUDENT.
func (c *Client) ResolveStudent(ctx context.Context, userID int64) (*model.UserView, error) {
	user, err := c.resolveUser(ctx, "/student/", userID, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("resolve student %d: %w", userID, err)
	}
	return user, nil
}

// ResolveUsername fetches GET user-by-username/{username}. Only the principal
// middleware uses it; the core never resolves by username.
func (c *Client) ResolveUsername(ctx context.Context, username string) (*model.UserView, error) {
	var user model.UserView
	if err := c.get(ctx, "/user-by-username/"+url.PathEscape(username), &user); err != nil {
		return nil, fmt.Errorf("resolve username %q: %w", username, err)
	}
	user.Role = NormalizeRole(string(user.Role))
	return &user, nil
}

func (c *Client) resolveUser(ctx context.Context, prefix string, userID int64, want model.Role) (*model.UserView, error) {
	var user model.UserView
	if err := c.get(ctx, prefix+strconv.FormatInt(userID, 10), &user); err != nil {
		return nil, err
	}
	user.Role = NormalizeRole(string(user.Role))
	if user.Role != want {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrInvalidRole, user.Role, want)
	}
	return &user, nil
}

// NormalizeRole upper-cases a role name and strips a Spring-style ROLE_ prefix.
func NormalizeRole(raw string) model.Role {
	return model.Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ROLE_"))
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Identity lookup")

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: identity service rejected id (status %d)", ErrInvalidRole, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}
