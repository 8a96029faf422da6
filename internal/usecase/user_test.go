package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create              func(ctx context.Context, email, passwordHash string) (*domain.User, error)
	findByID            func(ctx context.Context, id string) (*domain.User, error)
	findByEmail         func(ctx context.Context, email string) (*domain.User, error)
	addToken            func(ctx context.Context, userID, access, token string, expiresAt time.Time) error
	hasToken            func(ctx context.Context, userID, access, token string) (bool, error)
	removeToken         func(ctx context.Context, userID, token string) error
	deleteExpiredTokens func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	return r.create(ctx, email, passwordHash)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) AddToken(ctx context.Context, userID, access, token string, expiresAt time.Time) error {
	return r.addToken(ctx, userID, access, token, expiresAt)
}

func (r *fakeUserRepo) HasToken(ctx context.Context, userID, access, token string) (bool, error) {
	return r.hasToken(ctx, userID, access, token)
}

func (r *fakeUserRepo) RemoveToken(ctx context.Context, userID, token string) error {
	return r.removeToken(ctx, userID, token)
}

func (r *fakeUserRepo) DeleteExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteExpiredTokens(ctx, cutoff)
}

type fakeMailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeMailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

func newUserUsecase(repo *fakeUserRepo) *usecase.UserUsecase {
	return usecase.NewUserUsecase(repo, &fakeMailSender{}, []byte(testJWTKey), time.Hour, slog.Default())
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

var testUser = &domain.User{ID: "3f0b9a46-9a3d-4a8e-9f91-2d8b6a51d001", Email: "test@example.com"}

// ---- Register ----

func TestRegister_HashesPasswordAndLowercasesEmail(t *testing.T) {
	var capturedEmail, capturedHash string

	repo := &fakeUserRepo{
		create: func(_ context.Context, email, passwordHash string) (*domain.User, error) {
			capturedEmail = email
			capturedHash = passwordHash
			return &domain.User{ID: testUser.ID, Email: email}, nil
		},
	}

	user, err := newUserUsecase(repo).Register(context.Background(), "  Test@Example.COM ", "testabcd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedEmail != "test@example.com" {
		t.Errorf("persisted email = %q, want lowercased trimmed", capturedEmail)
	}
	if capturedHash == "testabcd" {
		t.Fatal("password persisted in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(capturedHash), []byte("testabcd")); err != nil {
		t.Errorf("persisted hash does not verify against the password: %v", err)
	}
	if user.Email != "test@example.com" {
		t.Errorf("user email = %q", user.Email)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _, _ string) (*domain.User, error) {
			t.Fatal("create must not be called for invalid email")
			return nil, nil
		},
	}

	_, err := newUserUsecase(repo).Register(context.Background(), "abcd", "testabcd")
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Errorf("want ErrInvalidEmail, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _, _ string) (*domain.User, error) {
			t.Fatal("create must not be called for short password")
			return nil, nil
		},
	}

	_, err := newUserUsecase(repo).Register(context.Background(), "a@b.com", "abcd")
	if !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Errorf("want ErrPasswordTooShort, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	_, err := newUserUsecase(repo).Register(context.Background(), "a@b.com", "testabcd")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegister_MailFailureDoesNotFailRegistration(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, email, _ string) (*domain.User, error) {
			return &domain.User{ID: testUser.ID, Email: email}, nil
		},
	}
	mail := &fakeMailSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("smtp unavailable")
		},
	}
	u := usecase.NewUserUsecase(repo, mail, []byte(testJWTKey), time.Hour, slog.Default())

	if _, err := u.Register(context.Background(), "a@b.com", "testabcd"); err != nil {
		t.Errorf("register failed on mail error: %v", err)
	}
}

// ---- Authenticate ----

func TestAuthenticate_UnknownEmailAndWrongPasswordFailIdentically(t *testing.T) {
	stored := &domain.User{ID: testUser.ID, Email: testUser.Email, PasswordHash: hashOf(t, "correct-horse")}

	unknown := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	wrongPassword := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return stored, nil
		},
	}

	_, errUnknown := newUserUsecase(unknown).Authenticate(context.Background(), "nobody@example.com", "whatever")
	_, errWrong := newUserUsecase(wrongPassword).Authenticate(context.Background(), testUser.Email, "not-the-password")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", errWrong)
	}
}

func TestAuthenticate_ValidCredentials(t *testing.T) {
	stored := &domain.User{ID: testUser.ID, Email: testUser.Email, PasswordHash: hashOf(t, "correct-horse")}
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return stored, nil
		},
	}

	user, err := newUserUsecase(repo).Authenticate(context.Background(), testUser.Email, "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != testUser.ID {
		t.Errorf("user ID = %q, want %q", user.ID, testUser.ID)
	}
}

// ---- IssueToken ----

func TestIssueToken_SignsAndStoresToken(t *testing.T) {
	var storedUserID, storedAccess, storedToken string

	repo := &fakeUserRepo{
		addToken: func(_ context.Context, userID, access, token string, _ time.Time) error {
			storedUserID, storedAccess, storedToken = userID, access, token
			return nil
		},
	}

	signed, err := newUserUsecase(repo).IssueToken(context.Background(), testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if storedToken != signed {
		t.Error("stored token differs from the returned one")
	}
	if storedUserID != testUser.ID || storedAccess != domain.TokenAccessAuth {
		t.Errorf("stored (%q, %q), want (%q, %q)", storedUserID, storedAccess, testUser.ID, domain.TokenAccessAuth)
	}

	token, parseErr := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected method")
		}
		return []byte(testJWTKey), nil
	})
	if parseErr != nil || !token.Valid {
		t.Fatalf("returned token is invalid: %v", parseErr)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("could not cast claims")
	}
	if claims["sub"] != testUser.ID {
		t.Errorf("sub = %v, want %q", claims["sub"], testUser.ID)
	}
	if claims["access"] != domain.TokenAccessAuth {
		t.Errorf("access = %v, want %q", claims["access"], domain.TokenAccessAuth)
	}
}

// ---- ResolveToken ----

func issueFor(t *testing.T, repo *fakeUserRepo, user *domain.User) string {
	t.Helper()
	token, err := newUserUsecase(repo).IssueToken(context.Background(), user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestResolveToken_ValidAndHeld(t *testing.T) {
	repo := &fakeUserRepo{
		addToken: func(_ context.Context, _, _, _ string, _ time.Time) error { return nil },
		hasToken: func(_ context.Context, userID, access, _ string) (bool, error) {
			return userID == testUser.ID && access == domain.TokenAccessAuth, nil
		},
		findByID: func(_ context.Context, _ string) (*domain.User, error) {
			return testUser, nil
		},
	}
	token := issueFor(t, repo, testUser)

	user, err := newUserUsecase(repo).ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != testUser.ID {
		t.Errorf("resolved user = %q, want %q", user.ID, testUser.ID)
	}
}

func TestResolveToken_MalformedString(t *testing.T) {
	repo := &fakeUserRepo{
		hasToken: func(_ context.Context, _, _, _ string) (bool, error) {
			t.Fatal("store must not be consulted for a malformed token")
			return false, nil
		},
	}

	_, err := newUserUsecase(repo).ResolveToken(context.Background(), "tttttttttttt")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestResolveToken_ForeignSignature(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":    testUser.ID,
		"access": domain.TokenAccessAuth,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("different-key-that-is-32-chars!!"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	repo := &fakeUserRepo{}
	_, resolveErr := newUserUsecase(repo).ResolveToken(context.Background(), foreign)
	if !errors.Is(resolveErr, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", resolveErr)
	}
}

func TestResolveToken_RevokedToken(t *testing.T) {
	repo := &fakeUserRepo{
		addToken: func(_ context.Context, _, _, _ string, _ time.Time) error { return nil },
		// Validly signed, but no longer in the session list.
		hasToken: func(_ context.Context, _, _, _ string) (bool, error) {
			return false, nil
		},
	}
	token := issueFor(t, repo, testUser)

	_, err := newUserUsecase(repo).ResolveToken(context.Background(), token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

// ---- RevokeToken ----

func TestRevokeToken_RemovesSession(t *testing.T) {
	var removedUserID, removedToken string
	repo := &fakeUserRepo{
		removeToken: func(_ context.Context, userID, token string) error {
			removedUserID, removedToken = userID, token
			return nil
		},
	}

	if err := newUserUsecase(repo).RevokeToken(context.Background(), testUser, "some-token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removedUserID != testUser.ID || removedToken != "some-token" {
		t.Errorf("removed (%q, %q)", removedUserID, removedToken)
	}
}
