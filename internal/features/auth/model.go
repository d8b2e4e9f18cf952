package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountInactive    = errors.New("account inactive")
	ErrInvalidRole        = errors.New("invalid role")
	ErrMissingFields      = errors.New("email and password are required")
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Account is a login identity. Roles gate write access to inventory and imports.
type Account struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Roles        []string  `json:"roles" bson:"roles"`
	Status       string    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type RegisterRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}
