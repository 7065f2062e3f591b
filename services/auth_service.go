package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/devconnect-app/backend/auth"
	"github.com/devconnect-app/backend/database"
	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuthService struct {
	store   database.Store
	tokens  *auth.TokenManager
	revoked auth.RevocationStore
}

func NewAuthService(store database.Store, tokens *auth.TokenManager, revoked auth.RevocationStore) *AuthService {
	if revoked == nil {
		revoked = auth.NopRevocationStore{}
	}
	return &AuthService{store: store, tokens: tokens, revoked: revoked}
}

// Register creates the credential and profile of a new user in one
// transaction and signs them in.
func (s *AuthService) Register(ctx context.Context, in models.Registration) (models.AuthUser, models.AuthSession, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := checkInput(in); err != nil {
		return models.AuthUser{}, models.AuthSession{}, err
	}

	anon := s.store.Anon()
	if _, err := anon.Credentials().FindByEmail(ctx, in.Email); err == nil {
		return models.AuthUser{}, models.AuthSession{}, errs.NewConflictError("email is already registered")
	} else if !errors.Is(err, database.ErrNotFound) {
		return models.AuthUser{}, models.AuthSession{}, errs.FromStore("find", "credential", err)
	}

	taken, err := anon.Profiles().UsernameTaken(ctx, in.Username, uuid.Nil)
	if err != nil {
		return models.AuthUser{}, models.AuthSession{}, errs.FromStore("check", "username", err)
	}
	if taken {
		return models.AuthUser{}, models.AuthSession{}, errs.NewConflictError("username is already taken")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.AuthUser{}, models.AuthSession{}, errs.NewInternalErrorWithCause("unable to hash password", err)
	}

	profile := &models.Profile{
		ID:       uuid.New(),
		FullName: in.FullName,
		Username: in.Username,
		Email:    in.Email,
	}
	caller := models.Caller{UserID: profile.ID, Email: profile.Email}
	err = s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		if err := tx.Profiles().Create(ctx, profile); err != nil {
			return err
		}
		return tx.Credentials().Create(ctx, &models.Credential{
			UserID:       profile.ID,
			Email:        profile.Email,
			PasswordHash: hash,
		})
	})
	if err != nil {
		return models.AuthUser{}, models.AuthSession{}, errs.FromStore("create", "user", err)
	}

	log.Info().Str("userID", profile.ID.String()).Msg("user registered")
	session, err := s.issue(profile.ID, profile.Email, "")
	if err != nil {
		return models.AuthUser{}, models.AuthSession{}, err
	}
	return models.AuthUser{ID: profile.ID, Email: profile.Email, Profile: profile}, session, nil
}

func (s *AuthService) Login(ctx context.Context, in models.Login) (models.AuthUser, models.AuthSession, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := checkInput(in); err != nil {
		return models.AuthUser{}, models.AuthSession{}, err
	}

	credential, err := s.store.Anon().Credentials().FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return models.AuthUser{}, models.AuthSession{}, errs.FromStore("find", "credential", err)
	}

	hash := ""
	if credential != nil {
		hash = credential.PasswordHash
	}
	ok, err := auth.CheckPassword(hash, in.Password)
	if err != nil {
		return models.AuthUser{}, models.AuthSession{}, errs.NewInternalErrorWithCause("unable to verify password", err)
	}
	if !ok {
		return models.AuthUser{}, models.AuthSession{}, errs.NewInvalidCredentialsError()
	}

	session, err := s.issue(credential.UserID, credential.Email, "")
	if err != nil {
		return models.AuthUser{}, models.AuthSession{}, err
	}
	return models.AuthUser{ID: credential.UserID, Email: credential.Email, Profile: credential.Profile}, session, nil
}

// Logout revokes the caller's access token and the session it belongs to,
// which also invalidates every refresh token of that session.
func (s *AuthService) Logout(ctx context.Context, caller models.Caller) error {
	if caller.IsZero() {
		return errs.NewMissingTokenError()
	}
	if caller.TokenID != "" {
		if err := s.revoked.Revoke(ctx, caller.TokenID, s.tokens.AccessTTL()); err != nil {
			return errs.NewSessionStoreError(err)
		}
	}
	if caller.SessionID != "" {
		if err := s.revoked.Revoke(ctx, caller.SessionID, s.tokens.RefreshTTL()); err != nil {
			return errs.NewSessionStoreError(err)
		}
	}
	log.Info().Str("userID", caller.UserID.String()).Msg("user logged out")
	return nil
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.AuthSession, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return models.AuthSession{}, errs.NewMissingRequiredFieldError("refresh_token")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return models.AuthSession{}, errs.Translate(err)
	}
	if err := s.checkRevoked(ctx, claims.ID, claims.SessionID); err != nil {
		return models.AuthSession{}, err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return models.AuthSession{}, errs.NewSessionStoreError(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return models.AuthSession{}, errs.NewInvalidTokenError()
	}
	return s.issue(userID, claims.Email, claims.SessionID)
}

func (s *AuthService) CurrentUser(ctx context.Context, caller models.Caller) (models.AuthUser, error) {
	if caller.IsZero() {
		return models.AuthUser{}, errs.NewMissingTokenError()
	}
	profile, err := s.store.Anon().Profiles().FindByID(ctx, caller.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return models.AuthUser{}, errs.NewNotFoundError("Profile")
	}
	if err != nil {
		return models.AuthUser{}, errs.FromStore("find", "profile", err)
	}
	return models.AuthUser{ID: caller.UserID, Email: caller.Email, Profile: profile}, nil
}

// Authenticate resolves a bearer access token to the caller it identifies.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Caller, error) {
	if token == "" {
		return models.Caller{}, errs.NewMissingTokenError()
	}
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return models.Caller{}, errs.Translate(err)
	}
	if err := s.checkRevoked(ctx, claims.ID, claims.SessionID); err != nil {
		return models.Caller{}, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return models.Caller{}, errs.NewInvalidTokenError()
	}
	return models.Caller{
		UserID:    userID,
		Email:     claims.Email,
		Token:     token,
		TokenID:   claims.ID,
		SessionID: claims.SessionID,
	}, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, ids ...string) error {
	revoked, err := s.revoked.IsRevoked(ctx, ids...)
	if err != nil {
		return errs.NewSessionStoreError(err)
	}
	if revoked {
		return errs.NewRevokedTokenError()
	}
	return nil
}

func (s *AuthService) issue(userID uuid.UUID, email, sessionID string) (models.AuthSession, error) {
	pair, err := s.tokens.Issue(userID, email, sessionID)
	if err != nil {
		return models.AuthSession{}, errs.NewInternalErrorWithCause("unable to issue session", err)
	}
	return models.AuthSession{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		ExpiresAt:    pair.AccessExpiresAt.Unix(),
	}, nil
}
