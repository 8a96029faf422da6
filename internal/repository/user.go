package repository

import (
	"context"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
)

// Usecases depend on interfaces, not concrete implementations, so the
// Postgres repos can be swapped for in-memory fakes in tests.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// AddToken and RemoveToken are single-statement writes: issuance
	// and revocation never read-modify-write a token list.
	AddToken(ctx context.Context, userID, access, token string, expiresAt time.Time) error
	HasToken(ctx context.Context, userID, access, token string) (bool, error)
	RemoveToken(ctx context.Context, userID, token string) error
	DeleteExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
