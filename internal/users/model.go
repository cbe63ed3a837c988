package users

import "time"

// Providers a user can sign in with.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User is an account. PasswordHash is empty for OAuth-only accounts.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash,omitempty"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	Provider     string    `json:"provider" bson:"provider"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
