package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aidarbek/todochat/internal/authctx"
	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// userUsecaser is the subset of UserUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type userUsecaser interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	IssueToken(ctx context.Context, user *domain.User) (string, error)
	RevokeToken(ctx context.Context, user *domain.User, rawToken string) error
}

type UserHandler struct {
	userUsecase userUsecaser
	logger      *slog.Logger
}

func NewUserHandler(userUsecase userUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		logger:      logger.With("component", "user_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse is the public view of a user. The password hash and
// token list are never serialized. Field names match the wire contract
// clients already depend on.
type userResponse struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// POST /users
// Registers and immediately signs in: the new session token is returned
// in the x-auth response header.
func (h *UserHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userUsecase.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail),
			errors.Is(err, domain.ErrPasswordTooShort),
			errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.ErrorContext(c.Request.Context(), "register user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	token, err := h.userUsecase.IssueToken(c.Request.Context(), user)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Header(middleware.AuthHeader, token)
	c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

// POST /users/login
// A failed login returns 400 with an empty body: no detail about which
// check failed, and no x-auth header.
func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	user, err := h.userUsecase.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.Status(http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "authenticate user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	token, err := h.userUsecase.IssueToken(c.Request.Context(), user)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Header(middleware.AuthHeader, token)
	c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := authctx.User(c.Request.Context())
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

// DELETE /users/me/token
// Revokes the session the request authenticated with.
func (h *UserHandler) Logout(c *gin.Context) {
	user, ok := authctx.User(c.Request.Context())
	token, okToken := authctx.Token(c.Request.Context())
	if !ok || !okToken {
		c.Status(http.StatusUnauthorized)
		return
	}

	if err := h.userUsecase.RevokeToken(c.Request.Context(), user, token); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "revoke token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusOK)
}
