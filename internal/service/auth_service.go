// Package service holds the NestAway business operations behind the HTTP handlers.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"nestaway/internal/featureflags"
	"nestaway/internal/mailer"
	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/observability"
	"nestaway/internal/repository"
	"nestaway/internal/session"
	"nestaway/internal/validation"
	"nestaway/internal/verification"

	"golang.org/x/crypto/bcrypt"
)

// Messages returned by successful auth operations.
const (
	MsgSignedUp   = "Account created. Check your email for the code."
	MsgVerified   = "Email verified successfully"
	MsgCodeResent = "Verification code sent. Check your email."
	MsgLoggedOut  = "Logged out"
)

// DefaultCodeTTL is how long a verification code stays valid.
const DefaultCodeTTL = 10 * time.Minute

type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginResult is a successful login: the public user and the issued session.
type LoginResult struct {
	User  models.PublicUser
	Token session.Token
}

// AuthService owns signup, email verification and login.
type AuthService struct {
	users    repository.UserRepository
	codes    verification.Registry
	mail     mailer.Sender
	sessions *session.Manager
	flags    *featureflags.Manager
	codeTTL  time.Duration
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	codes verification.Registry,
	mail mailer.Sender,
	sessions *session.Manager,
	flags *featureflags.Manager,
	codeTTL time.Duration,
) *AuthService {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &AuthService{
		users:    users,
		codes:    codes,
		mail:     mail,
		sessions: sessions,
		flags:    flags,
		codeTTL:  codeTTL,
		now:      time.Now,
	}
}

func recordAuth(event string, err error) {
	result := observability.ResultOK
	if err != nil {
		result = strings.ToLower(models.ErrorCode(err))
	}
	observability.AuthEvents.WithLabelValues(event, result).Inc()
}

// Signup registers an unverified user and emails them a verification code.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (msg string, err error) {
	span, ctx := observability.NewSpan(ctx, "auth.signup")
	defer func() {
		span.SetError(err)
		span.End()
		recordAuth("signup", err)
	}()

	in.Email = models.NormalizeEmail(in.Email)
	missing := map[string]string{}
	for field, value := range map[string]string{
		"firstName": in.FirstName, "lastName": in.LastName, "email": in.Email, "password": in.Password,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return "", models.NewMissingFieldsError(missing)
	}
	if err := validation.ValidateName("firstName", in.FirstName); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("lastName", in.LastName); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return "", models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", models.NewConflictError("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	user := &models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Password:  string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	if err := s.issueCode(ctx, in.Email); err != nil {
		return "", err
	}
	return MsgSignedUp, nil
}

// issueCode stores a fresh code for email, replacing any previous one, and mails it.
func (s *AuthService) issueCode(ctx context.Context, email string) error {
	code, err := verification.GenerateCode()
	if err != nil {
		return models.NewInternalError(err)
	}

	span, spanCtx := observability.StartClientSpan(ctx, "verification", "put")
	err = s.codes.Put(spanCtx, email, verification.Entry{Code: code, ExpiresAt: s.now().Add(s.codeTTL)})
	span.SetError(err)
	span.End()
	if err != nil {
		return models.NewUpstreamError("Failed to store verification code", err)
	}

	if err := s.mail.SendVerificationCode(ctx, email, code); err != nil {
		return models.NewUpstreamError("Failed to send verification email", err)
	}
	return nil
}

// Verify consumes the code for email and marks the account verified.
func (s *AuthService) Verify(ctx context.Context, email, code string) (msg string, err error) {
	span, ctx := observability.NewSpan(ctx, "auth.verify")
	defer func() {
		span.SetError(err)
		span.End()
		recordAuth("verify", err)
	}()

	email = models.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		missing := map[string]string{}
		if email == "" {
			missing["email"] = "required"
		}
		if code == "" {
			missing["code"] = "required"
		}
		return "", models.NewMissingFieldsError(missing)
	}

	entry, err := s.codes.Get(ctx, email)
	if err != nil {
		return "", models.NewUpstreamError("Failed to read verification code", err)
	}
	if entry == nil {
		return "", models.NewNotFoundMessage("No verification code found")
	}
	if entry.Expired(s.now()) {
		return "", models.NewExpiredError("Code expired")
	}
	if entry.Code != code {
		return "", models.NewInvalidCodeError("Invalid code")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", models.NewNotFoundMessage("User not found")
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return "", err
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		// Verified already; the stale entry expires on its own.
		middleware.Logger.WarnContext(ctx, "failed to delete verification code",
			slog.String("error", err.Error()))
	}
	return MsgVerified, nil
}

// ResendCode replaces the code for email and mails the new one. It succeeds
// for unknown emails too, so callers cannot probe for registered addresses.
func (s *AuthService) ResendCode(ctx context.Context, email string) (msg string, err error) {
	span, ctx := observability.NewSpan(ctx, "auth.resend_code")
	defer func() {
		span.SetError(err)
		span.End()
		recordAuth("resend_code", err)
	}()

	email = models.NormalizeEmail(email)
	if email == "" {
		return "", models.NewMissingFieldsError(map[string]string{"email": "required"})
	}
	if err := validation.ValidateEmail(email); err != nil {
		return "", models.NewValidationError(err.Error())
	}

	if s.flags.Enabled(featureflags.ResendRequiresAccount, email) {
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		if user == nil {
			return MsgCodeResent, nil
		}
	}

	if err := s.issueCode(ctx, email); err != nil {
		return "", err
	}
	return MsgCodeResent, nil
}

// Login checks credentials and issues a session for a verified user.
func (s *AuthService) Login(ctx context.Context, email, password string) (res *LoginResult, err error) {
	span, ctx := observability.NewSpan(ctx, "auth.login")
	defer func() {
		span.SetError(err)
		span.End()
		recordAuth("login", err)
	}()

	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		missing := map[string]string{}
		if email == "" {
			missing["email"] = "required"
		}
		if password == "" {
			missing["password"] = "required"
		}
		return nil, models.NewMissingFieldsError(missing)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("User not found")
	}
	if !user.Verified {
		return nil, models.NewUnverifiedError("Email not verified")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewInvalidCredentialsError("Invalid password")
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{User: user.Public(), Token: token}, nil
}

// CurrentUser resolves the session subject to its public projection.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Not authenticated")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}
