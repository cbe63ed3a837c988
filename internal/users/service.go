package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"study-assistant/internal/shared/apperr"
	"study-assistant/internal/shared/auth"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a password account.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return User{}, apperr.Validation("Name, email, and password are required")
	}
	if len(password) < auth.MinPasswordLength {
		return User{}, apperr.Validation("Password must be at least 6 characters long")
	}
	if len(password) > auth.MaxPasswordBytes {
		return User{}, apperr.Validation("Password must be at most 72 bytes long")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, apperr.Internal("An error occurred during registration", err)
	}
	now := s.now()
	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     ProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, &apperr.Error{Kind: apperr.KindConflict, Message: "User with this email already exists", Cause: err}
		}
		return User{}, apperr.Storage("An error occurred during registration", err)
	}
	return user, nil
}

// Login checks credentials. Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return User{}, apperr.Validation("Email and password are required")
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return User{}, apperr.Storage("An error occurred during login", err)
	}
	if err != nil || auth.CheckPassword(user.PasswordHash, password) != nil {
		return User{}, &apperr.Error{Kind: apperr.KindAuth, Message: "Invalid email or password", Cause: auth.ErrInvalidCredentials}
	}
	return user, nil
}

// UpsertFromOAuth links a verified provider profile to an account by email.
func (s *Service) UpsertFromOAuth(ctx context.Context, provider, email, name, image string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return User{}, apperr.Validation("OAuth profile has no email")
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}
	now := s.now()
	user, err := s.Repo.UpsertOAuth(ctx, User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Image:     image,
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return User{}, apperr.Storage("Failed to save user", err)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, apperr.Storage("Failed to load user", err)
	}
	return user, nil
}

// Identity is the token subject for a user.
func (u User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Picture: u.Image}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
