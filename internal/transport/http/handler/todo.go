package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aidarbek/todochat/internal/authctx"
	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/usecase"
	"github.com/gin-gonic/gin"
)

type todoUsecaser interface {
	Create(ctx context.Context, ownerID, text string) (*domain.Todo, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*domain.Todo, error)
	GetForOwner(ctx context.Context, ownerID, id string) (*domain.Todo, error)
	UpdateForOwner(ctx context.Context, ownerID, id string, input usecase.UpdateInput) (*domain.Todo, error)
	DeleteForOwner(ctx context.Context, ownerID, id string) (*domain.Todo, error)
}

type TodoHandler struct {
	todoUsecase todoUsecaser
	logger      *slog.Logger
}

func NewTodoHandler(todoUsecase todoUsecaser, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todoUsecase: todoUsecase, logger: logger.With("component", "todo_handler")}
}

type createTodoRequest struct {
	Text string `json:"text"`
}

type updateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// todoResponse keeps the wire field names existing clients depend on.
type todoResponse struct {
	ID          string     `json:"_id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Creator     string     `json:"_creator"`
}

func toTodoResponse(t *domain.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Text:        t.Text,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Creator:     t.UserID,
	}
}

// POST /todos
func (h *TodoHandler) Create(c *gin.Context) {
	user, ok := authctx.User(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todoUsecase.Create(c.Request.Context(), user.ID, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoResponse(todo))
}

// GET /todos
func (h *TodoHandler) List(c *gin.Context) {
	user, ok := authctx.User(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	todos, err := h.todoUsecase.ListForOwner(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, toTodoResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"todos": out})
}

// GET /todos/:id
func (h *TodoHandler) GetByID(c *gin.Context) {
	user, ok := authctx.User(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	todo, err := h.todoUsecase.GetForOwner(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"todo": toTodoResponse(todo)})
}

// PATCH /todos/:id
func (h *TodoHandler) Update(c *gin.Context) {
	user, ok := authctx.User(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todoUsecase.UpdateForOwner(c.Request.Context(), user.ID, c.Param("id"), usecase.UpdateInput{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"todo": toTodoResponse(todo)})
}

// DELETE /todos/:id
// Responds with the record that was removed.
func (h *TodoHandler) Delete(c *gin.Context) {
	user, ok := authctx.User(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	todo, err := h.todoUsecase.DeleteForOwner(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"todo": toTodoResponse(todo)})
}

// writeError maps usecase failures to the response contract: not-found
// is a bare 404 (nothing about whether the id was malformed or absent),
// validation is 400 with detail, anything else is 500.
func (h *TodoHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyText):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.ErrorContext(c.Request.Context(), "todo operation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
