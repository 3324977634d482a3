package user

import "context"

// Repository defines the persistence operations for users.
type Repository interface {
	// Create stores u and returns it with its assigned ID and timestamps.
	// It fails with errx.Conflict when the email is already registered.
	Create(ctx context.Context, u User) (User, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}
