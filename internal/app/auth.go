package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"benefits-points-service/internal/domain"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login. Tokens are HS256 JWTs
// carrying the user id and email.
type AuthService struct {
	store    UserStore
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(store UserStore, secret []byte, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{store: store, secret: secret, tokenTTL: tokenTTL, now: time.Now}
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Register creates a fresh user record with zero points and empty
// mission/chest sets. Emails are unique case-insensitively.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.UserRecord, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" || input.Name == "" {
		return domain.UserRecord{}, fmt.Errorf("name, email and password are required")
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return domain.UserRecord{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserRecord{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	record := domain.UserRecord{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      string(hash),
		Name:              strings.TrimSpace(input.Name),
		Phone:             strings.TrimSpace(input.Phone),
		MissionsCompleted: []string{},
		ChestsOpened:      []string{},
	}
	return s.store.Create(ctx, record)
}

// Login verifies credentials and returns a signed token plus the record.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.UserRecord, error) {
	record, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.UserRecord{}, domain.ErrInvalidCredentials
		}
		return "", domain.UserRecord{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
		return "", domain.UserRecord{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"id":    record.ID,
		"email": record.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.UserRecord{}, fmt.Errorf("sign token: %w", err)
	}
	return token, record, nil
}

// VerifyToken validates a bearer token and returns the user id it was
// issued for.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrInvalidCredentials
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", domain.ErrInvalidCredentials
	}
	return id, nil
}

// NormalizeEmail lowercases and trims an email for case-insensitive lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
