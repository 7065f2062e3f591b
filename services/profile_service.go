package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/devconnect-app/backend/database"
	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/pagination"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const activeWindow = 30 * 24 * time.Hour

type ProfileService struct {
	store database.Store
	now   func() time.Time
}

func NewProfileService(store database.Store) *ProfileService {
	return &ProfileService{store: store, now: time.Now}
}

// List returns the public projection of the matching profiles.
func (s *ProfileService) List(ctx context.Context, search string, page, limit int) (models.Page[models.PublicProfile], error) {
	w := pagination.Normalize(page, limit, -1)
	search = strings.TrimSpace(search)
	repo := s.store.Anon().Profiles()

	var rows []models.Profile
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = repo.List(gctx, search, w.Limit, w.Offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.Count(gctx, search)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Page[models.PublicProfile]{}, errs.FromStore("list", "profiles", err)
	}

	items := make([]models.PublicProfile, 0, len(rows))
	for i := range rows {
		items = append(items, models.NewPublicProfile(&rows[i]))
	}

	return models.Page[models.PublicProfile]{
		Items:   items,
		Total:   total,
		Page:    w.Page,
		Limit:   w.Limit,
		Offset:  w.Offset,
		HasMore: pagination.HasMore(w.Offset, w.Limit, total),
	}, nil
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (models.PublicProfile, error) {
	profile, err := s.store.Anon().Profiles().FindByID(ctx, id)
	if err != nil {
		return models.PublicProfile{}, profileLookupError(err)
	}
	return models.NewPublicProfile(profile), nil
}

// Update changes the caller's own profile. Only the set fields are written.
func (s *ProfileService) Update(ctx context.Context, caller models.Caller, in models.ProfileChanges) (*models.Profile, error) {
	if caller.IsZero() {
		return nil, errs.NewMissingTokenError()
	}
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	changes := in.Columns()
	if len(changes) == 0 {
		return nil, errs.NewValidationError("no fields to update", map[string]string{})
	}

	if in.Username != nil {
		taken, err := s.store.Anon().Profiles().UsernameTaken(ctx, *in.Username, caller.UserID)
		if err != nil {
			return nil, errs.FromStore("check", "username", err)
		}
		if taken {
			return nil, errs.NewConflictError("username is already taken")
		}
	}

	var updated *models.Profile
	err := s.store.AsCaller(ctx, caller, func(tx database.Session) error {
		n, err := tx.Profiles().Update(ctx, caller.UserID, changes)
		if err != nil {
			return err
		}
		if n == 0 {
			return database.ErrNotFound
		}
		updated, err = tx.Profiles().FindByID(ctx, caller.UserID)
		return err
	})
	if err != nil {
		return nil, profileLookupError(err)
	}
	return updated, nil
}

// Stats counts all profiles, those updated in the last 30 days and those
// created since the start of the current month.
func (s *ProfileService) Stats(ctx context.Context) (models.ProfileStats, error) {
	now := s.now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats, err := s.store.Anon().Profiles().Stats(ctx, now.Add(-activeWindow), startOfMonth)
	if err != nil {
		return models.ProfileStats{}, errs.FromStore("count", "profiles", err)
	}
	return stats, nil
}

func profileLookupError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return errs.NewNotFoundError("Profile")
	}
	return errs.FromStore("access", "profile", err)
}
