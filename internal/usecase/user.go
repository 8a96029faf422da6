package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/email"
	"github.com/aidarbek/todochat/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 6
)

var validate = validator.New()

type UserUsecase struct {
	users    repository.UserRepository
	mail     email.Sender
	jwtKey   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewUserUsecase(users repository.UserRepository, mail email.Sender, jwtKey []byte, tokenTTL time.Duration, logger *slog.Logger) *UserUsecase {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserUsecase{
		users:    users,
		mail:     mail,
		jwtKey:   jwtKey,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "user_usecase"),
	}
}

// Register validates the credentials, hashes the password and persists
// the user. A welcome email is best-effort: a send failure is logged,
// never surfaced to the caller.
func (u *UserUsecase) Register(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if err := validate.Var(emailAddr, "required,email"); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, emailAddr, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := u.mail.Send(ctx, user.Email, "Welcome to todochat",
		"<p>Your account is ready. Sign in with your email to get started.</p>",
	); err != nil {
		u.logger.ErrorContext(ctx, "welcome email", "error", err)
	}

	return user, nil
}

// Authenticate fails the same way for an unknown email and a wrong
// password so callers can't probe which emails are registered.
func (u *UserUsecase) Authenticate(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs a token for the user and records it in a single
// insert, so concurrent logins can't lose each other's sessions.
func (u *UserUsecase) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	expiresAt := now.Add(u.tokenTTL)
	claims := jwt.MapClaims{
		"sub":    user.ID,
		"access": domain.TokenAccessAuth,
		"iat":    now.Unix(),
		"exp":    expiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := u.users.AddToken(ctx, user.ID, domain.TokenAccessAuth, signed, expiresAt); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

// ResolveToken maps a raw token string back to its user. The signature
// check alone is not enough: the token must still be present in the
// user's session list, which is how logout revokes otherwise-valid
// tokens.
func (u *UserUsecase) ResolveToken(ctx context.Context, rawToken string) (*domain.User, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return u.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, domain.ErrTokenInvalid
	}
	access, ok := claims["access"].(string)
	if !ok || access != domain.TokenAccessAuth {
		return nil, domain.ErrTokenInvalid
	}

	held, err := u.users.HasToken(ctx, userID, access, rawToken)
	if err != nil {
		return nil, fmt.Errorf("check token: %w", err)
	}
	if !held {
		return nil, domain.ErrTokenInvalid
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// RevokeToken removes one session. Revoking a token that is already
// gone succeeds.
func (u *UserUsecase) RevokeToken(ctx context.Context, user *domain.User, rawToken string) error {
	if err := u.users.RemoveToken(ctx, user.ID, rawToken); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
