package database

import (
	"context"
	"fmt"

	"github.com/devconnect-app/backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// claimSub is the caller id placed by AsCaller; it matches auth.uid() on Supabase.
const claimSub = `(nullif(current_setting('request.jwt.claims', true), '')::json ->> 'sub')::uuid`

// rowLevelSecurity enables RLS on every table and (re)creates its policies.
// Reads are public; writes require the row to belong to the caller. Comment
// counters are maintained by any authenticated user, so comment updates are
// open to the authenticated role.
var rowLevelSecurity = []string{
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = 'authenticated') THEN
			CREATE ROLE authenticated NOLOGIN;
		END IF;
	END $$`,
	`GRANT USAGE ON SCHEMA public TO authenticated`,
	`GRANT SELECT, INSERT, UPDATE, DELETE ON profiles, auth_credentials, projects, comments, comment_likes TO authenticated`,

	`ALTER TABLE profiles ENABLE ROW LEVEL SECURITY`,
	`DROP POLICY IF EXISTS profiles_select ON profiles`,
	`CREATE POLICY profiles_select ON profiles FOR SELECT USING (true)`,
	`DROP POLICY IF EXISTS profiles_insert ON profiles`,
	`CREATE POLICY profiles_insert ON profiles FOR INSERT TO authenticated WITH CHECK (id = ` + claimSub + `)`,
	`DROP POLICY IF EXISTS profiles_update ON profiles`,
	`CREATE POLICY profiles_update ON profiles FOR UPDATE TO authenticated USING (id = ` + claimSub + `)`,

	`ALTER TABLE auth_credentials ENABLE ROW LEVEL SECURITY`,
	`DROP POLICY IF EXISTS auth_credentials_insert ON auth_credentials`,
	`CREATE POLICY auth_credentials_insert ON auth_credentials FOR INSERT TO authenticated WITH CHECK (user_id = ` + claimSub + `)`,

	`ALTER TABLE projects ENABLE ROW LEVEL SECURITY`,
	`DROP POLICY IF EXISTS projects_select ON projects`,
	`CREATE POLICY projects_select ON projects FOR SELECT USING (true)`,
	`DROP POLICY IF EXISTS projects_insert ON projects`,
	`CREATE POLICY projects_insert ON projects FOR INSERT TO authenticated WITH CHECK (author_id = ` + claimSub + `)`,
	`DROP POLICY IF EXISTS projects_update ON projects`,
	`CREATE POLICY projects_update ON projects FOR UPDATE TO authenticated USING (author_id = ` + claimSub + `)`,
	`DROP POLICY IF EXISTS projects_delete ON projects`,
	`CREATE POLICY projects_delete ON projects FOR DELETE TO authenticated USING (author_id = ` + claimSub + `)`,

	`ALTER TABLE comments ENABLE ROW LEVEL SECURITY`,
	`DROP POLICY IF EXISTS comments_select ON comments`,
	`CREATE POLICY comments_select ON comments FOR SELECT USING (true)`,
	`DROP POLICY IF EXISTS comments_insert ON comments`,
	`CREATE POLICY comments_insert ON comments FOR INSERT TO authenticated WITH CHECK (author_id = ` + claimSub + `)`,
	`DROP POLICY IF EXISTS comments_update ON comments`,
	`CREATE POLICY comments_update ON comments FOR UPDATE TO authenticated USING (true)`,

	`ALTER TABLE comment_likes ENABLE ROW LEVEL SECURITY`,
	`DROP POLICY IF EXISTS comment_likes_select ON comment_likes`,
	`CREATE POLICY comment_likes_select ON comment_likes FOR SELECT USING (true)`,
	`DROP POLICY IF EXISTS comment_likes_insert ON comment_likes`,
	`CREATE POLICY comment_likes_insert ON comment_likes FOR INSERT TO authenticated WITH CHECK (user_id = ` + claimSub + `)`,
	`DROP POLICY IF EXISTS comment_likes_delete ON comment_likes`,
	`CREATE POLICY comment_likes_delete ON comment_likes FOR DELETE TO authenticated USING (user_id = ` + claimSub + `)`,
}

// Migrate creates or updates every table and, when withRLS is set, the row
// level security policies caller-scoped sessions rely on.
func Migrate(ctx context.Context, db *gorm.DB, withRLS bool) error {
	db = db.WithContext(ctx)

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("enabling pgcrypto: %w", err)
	}

	log.Info().Msg("migrating models")
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("migrating models: %w", err)
	}

	if !withRLS {
		log.Warn().Msg("row level security policies skipped")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range rowLevelSecurity {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("applying row level security: %w", err)
			}
		}
		log.Info().Int("statements", len(rowLevelSecurity)).Msg("row level security applied")
		return nil
	})
}
