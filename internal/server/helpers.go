package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/session"

	"github.com/gofiber/fiber/v2"
)

// authStatus maps auth failures onto HTTP statuses. Every user-correctable
// auth failure is a 400, including an unknown account on login.
func authStatus(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeUpstream, models.CodeInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// resourceStatus maps listing and profile failures onto HTTP statuses.
func resourceStatus(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeValidation, models.CodeUnverified, models.CodeConflict:
		return fiber.StatusBadRequest
	case models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respond writes err with status, logging server-side failures with their cause.
func respond(c *fiber.Ctx, status int, err error) error {
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("code", models.ErrorCode(err)),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// emailKey scopes verification rate limits to the submitted address.
func emailKey(c *fiber.Ctx) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return c.FormValue("email")
	}
	return models.NormalizeEmail(body.Email)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, tok session.Token) {
	c.Cookie(&fiber.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
