package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devconnect-app/backend/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by repository lookups that match no row.
var ErrNotFound = gorm.ErrRecordNotFound

var ErrNoCaller = errors.New("caller-scoped session requires an authenticated caller")

// Session is the set of repositories bound to one connection or transaction.
type Session interface {
	Profiles() ProfileRepository
	Credentials() CredentialRepository
	Projects() ProjectRepository
	Comments() CommentRepository
	Likes() LikeRepository
}

// Store hands out sessions. Anon serves public reads; AsCaller runs fn in a
// single transaction under the caller's identity so that row-level security
// policies apply to every statement.
type Store interface {
	Anon() Session
	AsCaller(ctx context.Context, caller models.Caller, fn func(Session) error) error
}

type Database struct {
	db   *gorm.DB
	role string
}

type Option func(*Database)

// WithRole sets the Postgres role assumed inside caller-scoped transactions.
// An empty role keeps the connection's own role.
func WithRole(role string) Option {
	return func(d *Database) {
		d.role = role
	}
}

// New wraps a GORM connection. By default caller-scoped transactions switch
// to the Supabase "authenticated" role.
func New(db *gorm.DB, opts ...Option) Database {
	d := Database{db: db, role: "authenticated"}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d Database) DB() *gorm.DB {
	return d.db
}

func (d Database) Anon() Session {
	return newSession(d.db)
}

func (d Database) AsCaller(ctx context.Context, caller models.Caller, fn func(Session) error) error {
	if caller.IsZero() {
		return ErrNoCaller
	}

	claims, err := json.Marshal(map[string]string{
		"sub":   caller.UserID.String(),
		"role":  "authenticated",
		"email": caller.Email,
	})
	if err != nil {
		return fmt.Errorf("encoding jwt claims: %w", err)
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT set_config('request.jwt.claims', ?, true)", string(claims)).Error; err != nil {
			return fmt.Errorf("setting request claims: %w", err)
		}
		if d.role != "" {
			if err := tx.Exec(fmt.Sprintf("SET LOCAL ROLE %q", d.role)).Error; err != nil {
				return fmt.Errorf("assuming role %s: %w", d.role, err)
			}
		}
		return fn(newSession(tx))
	})
}

// Ping checks the primary connection.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type session struct {
	profileRepo    *ProfileRepo
	credentialRepo *CredentialRepo
	projectRepo    *ProjectRepo
	commentRepo    *CommentRepo
	likeRepo       *LikeRepo
}

func newSession(db *gorm.DB) session {
	return session{
		profileRepo:    NewProfileRepo(db),
		credentialRepo: NewCredentialRepo(db),
		projectRepo:    NewProjectRepo(db),
		commentRepo:    NewCommentRepo(db),
		likeRepo:       NewLikeRepo(db),
	}
}

// Accessor methods for each repository

func (s session) Profiles() ProfileRepository {
	return s.profileRepo
}

func (s session) Credentials() CredentialRepository {
	return s.credentialRepo
}

func (s session) Projects() ProjectRepository {
	return s.projectRepo
}

func (s session) Comments() CommentRepository {
	return s.commentRepo
}

func (s session) Likes() LikeRepository {
	return s.likeRepo
}
