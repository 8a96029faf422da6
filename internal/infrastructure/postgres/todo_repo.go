package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TodoRepository struct {
	pool *pgxpool.Pool
}

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	query := `
		INSERT INTO todos (user_id, text, completed, completed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, text, completed, completed_at, created_at`

	row := r.pool.QueryRow(ctx, query, todo.UserID, todo.Text, todo.Completed, todo.CompletedAt)
	return scanTodo(row)
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	query := `
		SELECT id, user_id, text, completed, completed_at, created_at
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*domain.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	query := `
		SELECT id, user_id, text, completed, completed_at, created_at
		FROM todos
		WHERE id = $1 AND user_id = $2`

	return scanTodo(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *TodoRepository) Update(ctx context.Context, id, userID string, todo *domain.Todo) (*domain.Todo, error) {
	query := `
		UPDATE todos
		SET text = $3, completed = $4, completed_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, text, completed, completed_at, created_at`

	row := r.pool.QueryRow(ctx, query, id, userID, todo.Text, todo.Completed, todo.CompletedAt)
	return scanTodo(row)
}

func (r *TodoRepository) Delete(ctx context.Context, id, userID string) (*domain.Todo, error) {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, text, completed, completed_at, created_at`

	return scanTodo(r.pool.QueryRow(ctx, query, id, userID))
}

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var t domain.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}
	return &t, nil
}
