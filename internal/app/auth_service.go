package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"iga-community/internal/mailer"
	"iga-community/internal/model"
	"iga-community/internal/pkg/jwtutil"
	"iga-community/internal/pkg/passwords"
	"iga-community/internal/repository"
)

const (
	minPasswordLength = 8
	minAge            = 4
)

var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrInvalidAge        = errors.New("invalid age")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInvalidSession    = errors.New("invalid or expired session")
	ErrUserNotFound      = errors.New("user not found")
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	UpdatePassword(ctx context.Context, email, hash, salt string) (bool, error)
}

type ResetTokenLedger interface {
	Save(ctx context.Context, jti, email string) error
	Consume(ctx context.Context, jti string) (string, bool, error)
}

type AuthConfig struct {
	JWTSecret       string
	JWTExpiration   time.Duration
	ResetExpiration time.Duration
	PublicURL       string
}

type AuthService struct {
	users  UserStore
	resets ResetTokenLedger
	mailer mailer.Mailer
	cfg    AuthConfig
	logger *slog.Logger
}

// SignupInput mirrors the signup form. Age is the raw form value; it may
// arrive as a JSON number or a numeric string.
type SignupInput struct {
	FirstName    string
	LastName     string
	Email        string
	Age          string
	Password     string
	SchoolOrWork string
	Location     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

// ForgotPasswordResult tells the caller which neutral message to show.
// Sent is false for unknown addresses.
type ForgotPasswordResult struct {
	Sent bool
}

func NewAuthService(users UserStore, resets ResetTokenLedger, m mailer.Mailer, cfg AuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		resets: resets,
		mailer: m,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := normalizeEmail(input.Email)
	schoolOrWork := strings.TrimSpace(input.SchoolOrWork)
	location := strings.TrimSpace(input.Location)
	rawAge := strings.TrimSpace(input.Age)

	if firstName == "" || lastName == "" || email == "" || rawAge == "" ||
		input.Password == "" || schoolOrWork == "" || location == "" {
		return nil, ErrMissingFields
	}

	age, err := parseAge(rawAge)
	if err != nil {
		return nil, err
	}
	if len([]rune(input.Password)) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, salt, err := passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Age:          age,
		SchoolOrWork: schoolOrWork,
		Location:     location,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !passwords.Verify(input.Password, user.PasswordHash, user.PasswordSalt) {
		return nil, ErrInvalidCredential
	}

	token, _, err := jwtutil.GenerateToken(s.cfg.JWTSecret, s.cfg.JWTExpiration, user.ID, user.Email, jwtutil.PurposeSession)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ForgotPassword issues a single-use reset token and mails a link to
// origin/reset-password. origin falls back to the configured public URL.
func (s *AuthService) ForgotPassword(ctx context.Context, email, origin string) (*ForgotPasswordResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &ForgotPasswordResult{Sent: false}, nil
	}

	token, claims, err := jwtutil.GenerateToken(s.cfg.JWTSecret, s.cfg.ResetExpiration, user.ID, user.Email, jwtutil.PurposePasswordReset)
	if err != nil {
		return nil, err
	}
	if err := s.resets.Save(ctx, claims.ID, user.Email); err != nil {
		return nil, err
	}

	link := s.resetLink(origin, token)
	err = s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Reset your International Girls Academy password",
		Body: fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in %d minutes.\n\n%s\n",
			user.FirstName, int(s.cfg.ResetExpiration.Minutes()), link),
	})
	if err != nil {
		return nil, fmt.Errorf("send reset email failed: %w", err)
	}
	return &ForgotPasswordResult{Sent: true}, nil
}

// UpdatePassword accepts a session token or an unused reset token. Reset
// tokens are consumed whether or not the update succeeds.
func (s *AuthService) UpdatePassword(ctx context.Context, token, password string) error {
	if len([]rune(password)) < minPasswordLength {
		return ErrWeakPassword
	}

	claims, err := jwtutil.ParseToken(s.cfg.JWTSecret, token)
	if err != nil {
		return ErrInvalidSession
	}

	email := normalizeEmail(claims.Email)
	switch claims.Purpose {
	case jwtutil.PurposeSession:
	case jwtutil.PurposePasswordReset:
		issuedFor, ok, err := s.resets.Consume(ctx, claims.ID)
		if err != nil {
			return err
		}
		if !ok || issuedFor != email {
			return ErrInvalidSession
		}
	default:
		return ErrInvalidSession
	}

	hash, salt, err := passwords.Hash(password)
	if err != nil {
		return err
	}
	updated, err := s.users.UpdatePassword(ctx, email, hash, salt)
	if err != nil {
		return err
	}
	if !updated {
		s.logger.WarnContext(ctx, "password update matched no user", slog.String("email", email))
	}
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) resetLink(origin, token string) string {
	base := strings.TrimSpace(origin)
	if base == "" {
		base = s.cfg.PublicURL
	}
	return strings.TrimRight(base, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// parseAge accepts any numeric text that denotes a whole number of at least
// minAge ("12", "12.0", " 7 ").
func parseAge(raw string) (int, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f < minAge || f > math.MaxInt32 {
		return 0, ErrInvalidAge
	}
	return int(f), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
