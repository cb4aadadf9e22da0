package auth

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyExists is returned when signing up with a taken email.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials covers a wrong email and a wrong password
	// alike so login failures do not reveal which one was off.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a storefront account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
