package middleware

import (
	"context"
	"strings"

	"nestaway/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionParser resolves a session token to its subject user id.
type SessionParser interface {
	Parse(token string) (string, error)
}

// SessionToken extracts the session from the named cookie, falling back to a Bearer header.
func SessionToken(c *fiber.Ctx, cookieName string) string {
	if tok := c.Cookies(cookieName); tok != "" {
		return tok
	}
	if scheme, tok, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " "); ok && scheme == "Bearer" {
		return strings.TrimSpace(tok)
	}
	return ""
}

// SessionRequired rejects requests without a valid session with 401 and
// stores the subject in c.Locals("userID") and the user context otherwise.
func SessionRequired(parser SessionParser, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := SessionToken(c, cookieName)
		if tok == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authenticated"))
		}

		userID, err := parser.Parse(tok)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token"))
		}

		c.Locals("userID", userID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
		return c.Next()
	}
}

// CurrentUserID returns the id stored by SessionRequired.
func CurrentUserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("userID").(string)
	return id, ok && id != ""
}
