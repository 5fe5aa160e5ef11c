package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RegisterRequest carries sign-up data. Password is accepted for form parity but
// never stored.
type RegisterRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password"`
	Role      UserRole `json:"role" validate:"required,oneof=student admin"`
	Matricula *string  `json:"matricula,omitempty"`
	Curso     *string  `json:"curso,omitempty"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        User      `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}

// Actor identifies who performs a mutation.
type Actor struct {
	ID   string
	Name string
	Role UserRole
}

// ActorFromClaims converts token claims to an actor.
func ActorFromClaims(c *JWTClaims) Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{ID: c.UserID, Name: c.Name, Role: c.Role}
}

// ActorFromUser converts a principal to an actor.
func ActorFromUser(u *User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}
