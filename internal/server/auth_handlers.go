package server

import (
	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/service"

	"github.com/gofiber/fiber/v2"
)

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
// @Summary Create an account
// @Description Registers an unverified user and emails a 6-digit verification code.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{firstName=string,lastName=string,email=string,password=string} true "Signup request"
// @Success 200 {object} object{msg=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.authService.Signup(c.UserContext(), req)
	if err != nil {
		return respond(c, authStatus(err), err)
	}
	return c.JSON(fiber.Map{"msg": msg})
}

// Verify handles POST /api/auth/verify
// @Summary Verify an email address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,code=string} true "Verification request"
// @Success 200 {object} object{msg=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/verify [post]
func (s *Server) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.authService.Verify(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return respond(c, authStatus(err), err)
	}
	return c.JSON(fiber.Map{"msg": msg})
}

// ResendCode handles POST /api/auth/resend-code
// @Summary Send a new verification code
// @Description Always reports success for a well-formed address.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Resend request"
// @Success 200 {object} object{msg=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /auth/resend-code [post]
func (s *Server) ResendCode(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.authService.ResendCode(c.UserContext(), req.Email)
	if err != nil {
		return respond(c, authStatus(err), err)
	}
	return c.JSON(fiber.Map{"msg": msg})
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Sets the httpOnly session cookie for a verified user.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{user=models.PublicUser,session=object{expiresAt=string}}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	res, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, authStatus(err), err)
	}

	s.setSessionCookie(c, res.Token)
	return c.JSON(fiber.Map{
		"user":    res.User,
		"session": fiber.Map{"expiresAt": res.Token.ExpiresAt},
	})
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} object{msg=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"msg": service.MsgLoggedOut})
}

// Home handles GET /api/auth/home
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} object{user=models.PublicUser}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/home [get]
func (s *Server) Home(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	user, err := s.authService.CurrentUser(c.UserContext(), userID)
	if err != nil {
		return respond(c, resourceStatus(err), err)
	}
	return c.JSON(fiber.Map{"user": user})
}
