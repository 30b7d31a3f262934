package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserIDLocalKey is the fiber locals key holding the authenticated user id.
const UserIDLocalKey = "user_id"

// ErrUnauthenticated is returned by SessionProvider implementations when the
// session token is missing, expired, or unknown.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionProvider resolves a session token to a user id. The concrete
// provider lives outside this service; handlers only ever see the resolved
// user id.
type SessionProvider interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// Auth authenticates requests by resolving the session header through the
// provider and stashing the user id in locals.
func Auth(provider SessionProvider, sessionHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(sessionHeader)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing session token")
		}

		userID, err := provider.Resolve(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid session token")
			}
			return fiber.NewError(fiber.StatusBadGateway, "session provider unavailable")
		}

		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user id stored by Auth.
func UserIDFromCtx(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(UserIDLocalKey).(uuid.UUID)
	return id, ok
}

// HTTPSessionProvider resolves sessions against an external auth service over
// HTTP.
type HTTPSessionProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSessionProvider creates a provider for the auth service at baseURL.
func NewHTTPSessionProvider(baseURL string) *HTTPSessionProvider {
	return &HTTPSessionProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *HTTPSessionProvider) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/session", nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("call session provider: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return uuid.Nil, ErrUnauthenticated
	default:
		return uuid.Nil, fmt.Errorf("session provider returned %d", resp.StatusCode)
	}

	var body struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.Nil, fmt.Errorf("decode session response: %w", err)
	}
	if body.UserID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return body.UserID, nil
}
