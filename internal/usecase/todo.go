package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/repository"
	"github.com/google/uuid"
)

type TodoUsecase struct {
	repo repository.TodoRepository
	// now is swappable so tests can pin completion timestamps.
	now func() time.Time
}

func NewTodoUsecase(repo repository.TodoRepository) *TodoUsecase {
	return &TodoUsecase{repo: repo, now: time.Now}
}

func (u *TodoUsecase) Create(ctx context.Context, ownerID, text string) (*domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	todo, err := u.repo.Create(ctx, &domain.Todo{
		UserID:    ownerID,
		Text:      text,
		Completed: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

func (u *TodoUsecase) ListForOwner(ctx context.Context, ownerID string) ([]*domain.Todo, error) {
	todos, err := u.repo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (u *TodoUsecase) GetForOwner(ctx context.Context, ownerID, id string) (*domain.Todo, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	todo, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

// UpdateInput is a partial update; nil fields are left as they are.
type UpdateInput struct {
	Text      *string
	Completed *bool
}

func (u *TodoUsecase) UpdateForOwner(ctx context.Context, ownerID, id string, input UpdateInput) (*domain.Todo, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	todo, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return nil, domain.ErrEmptyText
		}
		todo.Text = text
	}
	// CompletedAt changes only on a completed transition; re-sending
	// completed=true keeps the original timestamp.
	if input.Completed != nil && *input.Completed != todo.Completed {
		todo.Completed = *input.Completed
		if todo.Completed {
			completedAt := u.now()
			todo.CompletedAt = &completedAt
		} else {
			todo.CompletedAt = nil
		}
	}

	updated, err := u.repo.Update(ctx, id, ownerID, todo)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return updated, nil
}

func (u *TodoUsecase) DeleteForOwner(ctx context.Context, ownerID, id string) (*domain.Todo, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	todo, err := u.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("delete todo: %w", err)
	}
	return todo, nil
}

// validateID rejects malformed IDs before they reach the database. A
// malformed ID reports the same not-found error as a missing row, so
// responses reveal nothing about why the lookup failed.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTodoNotFound
	}
	return nil
}
