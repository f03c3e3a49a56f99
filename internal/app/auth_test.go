package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/domain"
	"benefits-points-service/internal/infra/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuthFixture()

	record, err := auth.Register(ctx, app.RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Test.dev",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if record.Email != "alice@test.dev" {
		t.Fatalf("expected normalized email, got %q", record.Email)
	}
	if record.Points != 0 || len(record.MissionsCompleted) != 0 {
		t.Fatalf("expected fresh record, got %+v", record)
	}

	token, logged, err := auth.Login(ctx, "alice@test.dev", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != record.ID {
		t.Fatalf("expected same user, got %s vs %s", logged.ID, record.ID)
	}

	userID, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != record.ID {
		t.Fatalf("expected token for %s, got %s", record.ID, userID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth := newAuthFixture()

	if _, err := auth.Register(ctx, app.RegisterInput{Name: "Alice", Email: "alice@test.dev", Password: "s3cret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := auth.Login(ctx, "alice@test.dev", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@test.dev", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth := newAuthFixture()

	if _, err := auth.Register(ctx, app.RegisterInput{Name: "Alice", Email: "alice@test.dev", Password: "s3cret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Same address in a different case is still taken.
	if _, err := auth.Register(ctx, app.RegisterInput{Name: "Mallory", Email: "ALICE@test.dev", Password: "other"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	auth := newAuthFixture()

	if _, err := auth.VerifyToken("not-a-token"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func newAuthFixture() *app.AuthService {
	return app.NewAuthService(memory.NewUserStore(), []byte("test-secret"), time.Hour)
}
