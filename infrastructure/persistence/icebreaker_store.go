package persistence

import (
	"context"

	"github.com/helixml/briefer/domain/icebreaker"
	"github.com/helixml/briefer/domain/repository"
	"github.com/helixml/briefer/internal/database"
)

// IcebreakerStore implements icebreaker.Store using GORM.
type IcebreakerStore struct {
	database.Repository[icebreaker.Icebreaker, IcebreakerModel]
}

// NewIcebreakerStore creates a new IcebreakerStore.
func NewIcebreakerStore(db database.Database) IcebreakerStore {
	return IcebreakerStore{
		Repository: database.NewRepository[icebreaker.Icebreaker, IcebreakerModel](db, IcebreakerMapper{}, "icebreaker"),
	}
}

// Insert stores an icebreaker and returns it with its assigned id.
func (s IcebreakerStore) Insert(ctx context.Context, i icebreaker.Icebreaker) (icebreaker.Icebreaker, error) {
	stored, err := s.Create(ctx, i)
	if err != nil {
		return icebreaker.Icebreaker{}, err
	}
	if stored.ID() == 0 {
		return icebreaker.Icebreaker{}, ErrInsertFailed
	}
	return stored, nil
}

// FindAll returns every icebreaker ordered by id. An empty table yields an
// empty, non-nil slice.
func (s IcebreakerStore) FindAll(ctx context.Context) ([]icebreaker.Icebreaker, error) {
	return s.Find(ctx, repository.WithOrderAsc("id"))
}

// FindRecent returns up to limit icebreakers, newest first, optionally for a
// single company.
func (s IcebreakerStore) FindRecent(ctx context.Context, company string, limit int) ([]icebreaker.Icebreaker, error) {
	return s.Find(ctx, recentOptions(company, limit)...)
}

// DeleteByID removes the icebreaker with the given id and reports how many
// rows were removed.
func (s IcebreakerStore) DeleteByID(ctx context.Context, id int64) (int64, error) {
	return s.DeleteBy(ctx, repository.WithID(id))
}
