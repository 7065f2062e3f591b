package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Audience and Role match what Supabase puts in its own access tokens so
	// that row level security policies see the same claims.
	Audience = "authenticated"
	Role     = "authenticated"

	useAccess  = "access"
	useRefresh = "refresh"
)

var ErrWrongTokenUse = errors.New("token used for the wrong purpose")

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	Use       string `json:"token_use"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Pair is a freshly issued access and refresh token.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	SessionID        string
}

// TokenManager signs and verifies HS256 tokens with the project JWT secret.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue creates a token pair for userID. An empty sessionID starts a new session.
func (m *TokenManager) Issue(userID uuid.UUID, email, sessionID string) (Pair, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := m.now()

	access, err := m.sign(userID, email, sessionID, useAccess, now, m.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := m.sign(userID, email, sessionID, useRefresh, now, m.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(m.accessTTL),
		RefreshExpiresAt: now.Add(m.refreshTTL),
		SessionID:        sessionID,
	}, nil
}

func (m *TokenManager) sign(userID uuid.UUID, email, sessionID, use string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Email:     email,
		Role:      Role,
		SessionID: sessionID,
		Use:       use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyAccess validates an access token. Errors wrap the jwt sentinels
// (jwt.ErrTokenExpired, jwt.ErrTokenMalformed, ...).
func (m *TokenManager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, useAccess)
}

func (m *TokenManager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(token, useRefresh)
}

func (m *TokenManager) verify(tokenString, use string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Use != use {
		return nil, fmt.Errorf("%w: %w", jwt.ErrTokenInvalidClaims, ErrWrongTokenUse)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}
