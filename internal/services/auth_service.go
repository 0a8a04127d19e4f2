package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/castlehq/checkmate/internal/models"
	"github.com/castlehq/checkmate/internal/providers/google"
	pgrepo "github.com/castlehq/checkmate/internal/repositories/postgres"
	"github.com/castlehq/checkmate/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GoogleSignIn(ctx context.Context, idToken string) (*models.User, string, error)
}

type authService struct {
	users    pgrepo.UserRepository
	verifier google.Verifier
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users pgrepo.UserRepository, verifier google.Verifier, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		users:    users,
		verifier: verifier,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	const op = "AuthService.Register"

	var details []utils.FieldError
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		details = append(details, utils.FieldError{Field: "username", Message: "is required"})
	}
	if email == "" || !strings.Contains(email, "@") {
		details = append(details, utils.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(password) < 8 {
		details = append(details, utils.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if len(details) > 0 {
		return nil, "", utils.EV(op, "invalid registration data", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", utils.E(utils.CodeConflict, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to check email", err)
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", utils.E(utils.CodeConflict, op, "username already taken", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to check username", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u, err := s.users.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return u, tok, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "AuthService.Login"

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return nil, "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	// Federated accounts have no password to check.
	if u.PasswordHash == "" || utils.CheckPassword(u.PasswordHash, password) != nil {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return u, tok, nil
}

func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (*models.User, string, error) {
	const op = "AuthService.GoogleSignIn"

	if s.verifier == nil {
		return nil, "", utils.E(utils.CodeUnavailable, op, "google sign-in is not configured", nil)
	}

	p, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid google token", err)
	}

	u, err := s.users.GetByGoogleID(ctx, p.Sub)
	switch {
	case err == nil:
		// known federated user
	case errors.Is(err, utils.ErrNotFound):
		u, err = s.linkOrCreateGoogleUser(ctx, p)
		if err != nil {
			return nil, "", utils.E(utils.CodeInternal, op, "failed to create google user", err)
		}
	default:
		return nil, "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return u, tok, nil
}

// linkOrCreateGoogleUser attaches the google id to an existing account with
// the same email, or registers a fresh federated user (empty password hash).
func (s *authService) linkOrCreateGoogleUser(ctx context.Context, p *google.Profile) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, strings.ToLower(p.Email))
	if err == nil {
		if err := s.users.LinkGoogle(ctx, existing.ID, p.Sub, p.Name, p.Picture); err != nil {
			return nil, err
		}
		return s.users.GetByID(ctx, existing.ID)
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	sub := p.Sub
	return s.users.Create(ctx, &models.User{
		Username:   usernameFromEmail(p.Email),
		Email:      strings.ToLower(p.Email),
		Name:       p.Name,
		PictureURL: p.Picture,
		GoogleID:   &sub,
		Role:       models.RoleUser,
		CreatedAt:  time.Now().UTC(),
	})
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return local
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func (s *authService) issueToken(u *models.User) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Role: string(u.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
