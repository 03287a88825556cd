package entity

import (
	"context"
	"errors"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

var ErrUserNotFound = errors.New("user not found")

// Identity is what the identity provider tells us about the caller. It is trusted as is.
type Identity struct {
	UserID              string
	Role                Role
	FreelancerProfileID string
}

// User holds the contact data needed to reach a customer outside the app.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
}
