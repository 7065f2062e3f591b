package models

import "github.com/google/uuid"

// AuthSession is the token pair handed to a client after login or refresh.
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}

// AuthUser is the user object returned by the auth endpoints.
type AuthUser struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Profile *Profile  `json:"profile"`
}

// Registration is the input of a sign-up.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Username string `json:"username" validate:"required,min=3,max=30,username"`
}

// Login is the input of a sign-in.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
