package models

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column Mismatch Report Usage:

Compares the live columns of every table against the `column:` gorm tags of
the corresponding model and lists the columns no struct field accounts for.

	devconnect column-report

Example output:

	table=comments mismatched=[edited_at]
	table=profiles all columns accounted for
	total mismatched columns=1
*/

// AllModels lists every persisted model in dependency order.
func AllModels() []any {
	return []any{
		&Profile{},
		&Credential{},
		&Project{},
		&Comment{},
		&CommentLike{},
	}
}

// tableModels maps table names to their model struct.
func tableModels() map[string]any {
	return map[string]any{
		Profile{}.TableName():     Profile{},
		Credential{}.TableName():  Credential{},
		Project{}.TableName():     Project{},
		Comment{}.TableName():     Comment{},
		CommentLike{}.TableName(): CommentLike{},
	}
}

// GenerateModels writes typed query helpers for every model into outPath.
// The schema must already be migrated.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	db = db.Session(&gorm.Session{
		Logger:                 logger.Default.LogMode(logger.Info),
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(AllModels()...)

	if _, err := GenerateColumnMismatchReport(db); err != nil {
		return err
	}

	g.Execute()
	log.Info().Str("outPath", outPath).Msg("model generation complete")
	return nil
}

// ColumnReport maps a table to the columns its model does not declare.
// Tables that do not exist yet are listed in Missing.
type ColumnReport struct {
	Mismatches map[string][]string
	Missing    []string
}

func (r ColumnReport) Total() int {
	total := 0
	for _, cols := range r.Mismatches {
		total += len(cols)
	}
	return total
}

// GenerateColumnMismatchReport logs and returns the columns present in the
// database but not accounted for in the Go models.
func GenerateColumnMismatchReport(db *gorm.DB) (ColumnReport, error) {
	report := ColumnReport{Mismatches: make(map[string][]string)}

	tables := tableModels()
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, tableName := range names {
		dbColumns, err := getTableColumns(db, tableName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				report.Missing = append(report.Missing, tableName)
				log.Warn().Str("table", tableName).Msg("table does not exist yet")
				continue
			}
			return report, err
		}

		mismatches := findColumnMismatches(dbColumns, getModelFields(tables[tableName]))
		if len(mismatches) > 0 {
			report.Mismatches[tableName] = mismatches
			log.Warn().Str("table", tableName).Strs("mismatched", mismatches).Msg("columns not accounted for in model")
		} else {
			log.Info().Str("table", tableName).Msg("all columns accounted for")
		}
	}

	log.Info().Int("total", report.Total()).Msg("column mismatch report complete")
	return report, nil
}

// getTableColumns retrieves column names from a database table
func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`

	err := db.Raw(query, tableName).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}

	if len(columns) == 0 {
		var tableExists bool
		tableQuery := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = CURRENT_SCHEMA()
				AND table_name = ?
			)
		`
		if err := db.Raw(tableQuery, tableName).Scan(&tableExists).Error; err != nil {
			return nil, fmt.Errorf("error checking if table %s exists: %w", tableName, err)
		}

		if !tableExists {
			return nil, fmt.Errorf("table %s does not exist", tableName)
		}
	}

	return columns, nil
}

// getModelFields extracts column names from the gorm tags of a struct
func getModelFields(model any) []string {
	var fields []string
	t := reflect.TypeOf(model)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip embedded structs; associations have no column tag
		if field.Anonymous {
			continue
		}

		if columnName := extractColumnNameFromGormTag(field.Tag.Get("gorm")); columnName != "" {
			fields = append(fields, columnName)
		}
	}

	return fields
}

func extractColumnNameFromGormTag(gormTag string) string {
	for _, part := range strings.Split(gormTag, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "column:") {
			return strings.TrimPrefix(part, "column:")
		}
	}
	return ""
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
