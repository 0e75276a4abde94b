package database

import (
	"fmt"

	"github.com/helixml/briefer/domain/repository"
	"gorm.io/gorm"
)

// ApplyOptions translates repository options into GORM clauses.
func ApplyOptions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	q := repository.Build(options...)

	db = applyConditions(db, q)

	for _, ord := range q.Orders() {
		dir := "ASC"
		if !ord.Ascending() {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", ord.Field(), dir))
	}

	if q.LimitValue() > 0 {
		db = db.Limit(q.LimitValue())
	}

	return db
}

// ApplyConditions applies only WHERE conditions, for DELETE.
func ApplyConditions(db *gorm.DB, options ...repository.Option) *gorm.DB {
	return applyConditions(db, repository.Build(options...))
}

func applyConditions(db *gorm.DB, q repository.Query) *gorm.DB {
	for _, cond := range q.Conditions() {
		if cond.Folded() {
			db = db.Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", cond.Field()), cond.Value())
			continue
		}
		db = db.Where(fmt.Sprintf("%s = ?", cond.Field()), cond.Value())
	}
	return db
}
