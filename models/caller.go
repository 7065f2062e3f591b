package models

import "github.com/google/uuid"

// Caller is the authenticated identity a request acts as. Token is the raw
// bearer token, TokenID its jti and SessionID the login session it belongs to.
type Caller struct {
	UserID    uuid.UUID
	Email     string
	Token     string
	TokenID   string
	SessionID string
}

func (c Caller) IsZero() bool {
	return c.UserID == uuid.Nil
}
