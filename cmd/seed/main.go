// seed inserts two test users (with live auth tokens) and a couple of
// todos into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/email"
	"github.com/aidarbek/todochat/internal/infrastructure/postgres"
	"github.com/aidarbek/todochat/internal/usecase"
)

type userSpec struct {
	email    string
	password string
}

var users = []userSpec{
	{"gmail@test.local", "gmailtest"},
	{"yahoo@test.local", "yahootest"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	userRepo := postgres.NewUserRepository(pool)
	todoRepo := postgres.NewTodoRepository(pool)
	userUsecase := usecase.NewUserUsecase(
		userRepo, email.NewSender("local", "", "", logger),
		[]byte(jwtSecret), 24*time.Hour, logger,
	)
	todoUsecase := usecase.NewTodoUsecase(todoRepo)

	fmt.Println("Seeding local database")
	fmt.Println()

	var firstUserID string
	for i, spec := range users {
		user, err := userUsecase.Register(ctx, spec.email, spec.password)
		if errors.Is(err, domain.ErrEmailTaken) {
			// Idempotent re-runs: log in instead of registering.
			user, err = userUsecase.Authenticate(ctx, spec.email, spec.password)
		}
		if err != nil {
			log.Fatalf("seed user %s: %v", spec.email, err)
		}

		token, err := userUsecase.IssueToken(ctx, user)
		if err != nil {
			log.Fatalf("issue token for %s: %v", spec.email, err)
		}

		if i == 0 {
			firstUserID = user.ID
		}
		fmt.Printf("  User:  %s\n", user.Email)
		fmt.Printf("  ID:    %s\n", user.ID)
		fmt.Printf("  Token: %s\n", token)
		fmt.Println()
	}

	first, err := todoUsecase.Create(ctx, firstUserID, "first test todo")
	if err != nil {
		log.Fatalf("seed todo: %v", err)
	}
	second, err := todoUsecase.Create(ctx, firstUserID, "second test todo")
	if err != nil {
		log.Fatalf("seed todo: %v", err)
	}
	completed := true
	if _, err := todoUsecase.UpdateForOwner(ctx, firstUserID, second.ID,
		usecase.UpdateInput{Completed: &completed},
	); err != nil {
		log.Fatalf("complete seed todo: %v", err)
	}

	fmt.Printf("  Todos created for %s: %s, %s\n", users[0].email, first.ID, second.ID)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  export TOKEN=<token printed above>")
	fmt.Println("  curl -s http://localhost:8080/todos -H \"x-auth: $TOKEN\"")
	fmt.Println("  curl -s http://localhost:8080/users/me -H \"x-auth: $TOKEN\"")
}
