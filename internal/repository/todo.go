package repository

import (
	"context"

	"github.com/aidarbek/todochat/internal/domain"
)

// Every read and write is scoped to the owning user; a todo that exists
// but belongs to someone else behaves exactly like a missing one.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Todo, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Todo, error)
	Update(ctx context.Context, id, userID string, todo *domain.Todo) (*domain.Todo, error)
	Delete(ctx context.Context, id, userID string) (*domain.Todo, error)
}
