// Package persistence provides database storage implementations.
package persistence

import (
	"errors"

	"github.com/helixml/briefer/domain/repository"
	"github.com/helixml/briefer/internal/database"
)

// ErrInsertFailed indicates the store accepted an insert but returned no
// identity for it. It is distinct from a transport or SQL error.
var ErrInsertFailed = errors.New("insert returned no record")

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(
		&TranscriptModel{},
		&IcebreakerModel{},
	)
}

// recentOptions orders newest first and narrows to one company, matched
// case-insensitively, when company is non-empty. A limit of zero or less
// returns every match.
func recentOptions(company string, limit int) []repository.Option {
	options := []repository.Option{repository.WithOrderDesc("id")}
	if company != "" {
		options = append(options, repository.WithFoldedCondition("company_name", company))
	}
	if limit > 0 {
		options = append(options, repository.WithLimit(limit))
	}
	return options
}
