package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/transport/http/handler"
	"github.com/aidarbek/todochat/internal/usecase"
	"github.com/gin-gonic/gin"
)

type fakeTodoUsecase struct {
	create         func(ctx context.Context, ownerID, text string) (*domain.Todo, error)
	listForOwner   func(ctx context.Context, ownerID string) ([]*domain.Todo, error)
	getForOwner    func(ctx context.Context, ownerID, id string) (*domain.Todo, error)
	updateForOwner func(ctx context.Context, ownerID, id string, input usecase.UpdateInput) (*domain.Todo, error)
	deleteForOwner func(ctx context.Context, ownerID, id string) (*domain.Todo, error)
}

func (u *fakeTodoUsecase) Create(ctx context.Context, ownerID, text string) (*domain.Todo, error) {
	return u.create(ctx, ownerID, text)
}

func (u *fakeTodoUsecase) ListForOwner(ctx context.Context, ownerID string) ([]*domain.Todo, error) {
	return u.listForOwner(ctx, ownerID)
}

func (u *fakeTodoUsecase) GetForOwner(ctx context.Context, ownerID, id string) (*domain.Todo, error) {
	return u.getForOwner(ctx, ownerID, id)
}

func (u *fakeTodoUsecase) UpdateForOwner(ctx context.Context, ownerID, id string, input usecase.UpdateInput) (*domain.Todo, error) {
	return u.updateForOwner(ctx, ownerID, id, input)
}

func (u *fakeTodoUsecase) DeleteForOwner(ctx context.Context, ownerID, id string) (*domain.Todo, error) {
	return u.deleteForOwner(ctx, ownerID, id)
}

const testTodoID = "a1b2c3d4-e5f6-4789-9abc-def012345678"

func newTodoEngine(uc *fakeTodoUsecase) *gin.Engine {
	h := handler.NewTodoHandler(uc, slog.Default())
	r := gin.New()
	todos := r.Group("/todos", withSession(sessionUser, "tok"))
	todos.POST("", h.Create)
	todos.GET("", h.List)
	todos.GET("/:id", h.GetByID)
	todos.PATCH("/:id", h.Update)
	todos.DELETE("/:id", h.Delete)
	return r
}

func TestCreateTodo_ScopedToSessionUser(t *testing.T) {
	uc := &fakeTodoUsecase{
		create: func(_ context.Context, ownerID, text string) (*domain.Todo, error) {
			if ownerID != sessionUser.ID {
				t.Errorf("owner = %q, want session user", ownerID)
			}
			return &domain.Todo{ID: testTodoID, UserID: ownerID, Text: text}, nil
		},
	}

	w := postJSON(t, newTodoEngine(uc), "/todos", map[string]string{"text": "buy milk"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["text"] != "buy milk" {
		t.Errorf("text = %v", body["text"])
	}
	if body["completed"] != false {
		t.Errorf("completed = %v, want false", body["completed"])
	}
	if body["completedAt"] != nil {
		t.Errorf("completedAt = %v, want null", body["completedAt"])
	}
	if body["_creator"] != sessionUser.ID {
		t.Errorf("_creator = %v", body["_creator"])
	}
}

func TestCreateTodo_EmptyTextReturns400(t *testing.T) {
	uc := &fakeTodoUsecase{
		create: func(_ context.Context, _, _ string) (*domain.Todo, error) {
			return nil, domain.ErrEmptyText
		},
	}

	w := postJSON(t, newTodoEngine(uc), "/todos", map[string]string{"text": ""})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListTodos_WrapsInTodosField(t *testing.T) {
	uc := &fakeTodoUsecase{
		listForOwner: func(_ context.Context, ownerID string) ([]*domain.Todo, error) {
			return []*domain.Todo{
				{ID: testTodoID, UserID: ownerID, Text: "first"},
				{ID: "b2c3d4e5-f6a7-4890-abcd-ef0123456789", UserID: ownerID, Text: "second"},
			}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	newTodoEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Todos []map[string]any `json:"todos"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(body.Todos) != 2 {
		t.Fatalf("todos length = %d, want 2", len(body.Todos))
	}
	if body.Todos[0]["text"] != "first" {
		t.Errorf("first todo text = %v", body.Todos[0]["text"])
	}
}

func TestGetTodo_NotFoundReturns404EmptyBody(t *testing.T) {
	uc := &fakeTodoUsecase{
		getForOwner: func(_ context.Context, _, _ string) (*domain.Todo, error) {
			return nil, domain.ErrTodoNotFound
		},
	}

	// "12345" is a malformed id; the response is indistinguishable
	// from a missing record.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos/12345", nil)
	newTodoEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestUpdateTodo_PassesPatchThrough(t *testing.T) {
	completedAt := time.Now()
	uc := &fakeTodoUsecase{
		updateForOwner: func(_ context.Context, ownerID, id string, input usecase.UpdateInput) (*domain.Todo, error) {
			if input.Text == nil || *input.Text != "updated" {
				t.Errorf("patch text = %v", input.Text)
			}
			if input.Completed == nil || !*input.Completed {
				t.Errorf("patch completed = %v", input.Completed)
			}
			return &domain.Todo{
				ID: id, UserID: ownerID, Text: *input.Text,
				Completed: true, CompletedAt: &completedAt,
			}, nil
		},
	}

	raw := []byte(`{"text":"updated","completed":true}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/todos/"+testTodoID, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	newTodoEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Todo map[string]any `json:"todo"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Todo["completed"] != true {
		t.Errorf("completed = %v", body.Todo["completed"])
	}
	if body.Todo["completedAt"] == nil {
		t.Error("completedAt missing")
	}
}

func TestDeleteTodo_ReturnsDeletedRecord(t *testing.T) {
	uc := &fakeTodoUsecase{
		deleteForOwner: func(_ context.Context, ownerID, id string) (*domain.Todo, error) {
			return &domain.Todo{ID: id, UserID: ownerID, Text: "gone"}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/todos/"+testTodoID, nil)
	newTodoEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Todo map[string]any `json:"todo"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Todo["_id"] != testTodoID {
		t.Errorf("_id = %v, want %q", body.Todo["_id"], testTodoID)
	}
}

// Server faults are reported as server errors, never folded into 400.
func TestTodoHandlers_UnexpectedErrorReturns500(t *testing.T) {
	uc := &fakeTodoUsecase{
		listForOwner: func(_ context.Context, _ string) ([]*domain.Todo, error) {
			return nil, errors.New("db down")
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	newTodoEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
