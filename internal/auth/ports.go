package auth

import "context"

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=auth

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
