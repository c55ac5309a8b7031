package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the signup payload.
type RegisterRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Bio           string `json:"bio"`
	PreferredMode string `json:"preferred_mode"`
	AvailableTime string `json:"available_time"`
}

// LoginRequest holds credentials for authenticating a student.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the issued token and the authenticated profile.
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int64      `json:"expires_in"`
	IssuedAt    time.Time  `json:"issued_at"`
	Student     StudentRef `json:"student"`
}

// JWTClaims is the access-token payload.
type JWTClaims struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}
