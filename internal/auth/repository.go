package auth

import "context"

// UserRepository abstracts user storage so the service can be tested
// against an in-memory implementation.
type UserRepository interface {
	// Save inserts the user and fills in its generated ID.
	Save(ctx context.Context, user *User) error
	// FindByUsername returns (nil, nil) when no such user exists.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByID returns (nil, nil) when no such user exists.
	FindByID(ctx context.Context, id int) (*User, error)
	List(ctx context.Context) ([]User, error)
	// ListByRole returns active users with the given role.
	ListByRole(ctx context.Context, role string) ([]User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int, hashed string) error
	Delete(ctx context.Context, id int) error
	LogOperation(ctx context.Context, log OperationLog) error
}
