package users

import "context"

// Repo persists users. Emails are stored lower-cased and are unique.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// UpsertOAuth creates the user or refreshes name and image of the
	// account with the same email, returning the stored row.
	UpsertOAuth(ctx context.Context, user User) (User, error)
}
