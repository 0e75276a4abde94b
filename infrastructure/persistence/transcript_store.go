package persistence

import (
	"context"

	"github.com/helixml/briefer/domain/repository"
	"github.com/helixml/briefer/domain/transcript"
	"github.com/helixml/briefer/internal/database"
)

// TranscriptStore implements transcript.Store using GORM.
type TranscriptStore struct {
	database.Repository[transcript.Transcript, TranscriptModel]
}

// NewTranscriptStore creates a new TranscriptStore.
func NewTranscriptStore(db database.Database) TranscriptStore {
	return TranscriptStore{
		Repository: database.NewRepository[transcript.Transcript, TranscriptModel](db, TranscriptMapper{}, "transcript"),
	}
}

// Insert stores a transcript and returns it with its assigned id.
func (s TranscriptStore) Insert(ctx context.Context, t transcript.Transcript) (transcript.Transcript, error) {
	stored, err := s.Create(ctx, t)
	if err != nil {
		return transcript.Transcript{}, err
	}
	if stored.ID() == 0 {
		return transcript.Transcript{}, ErrInsertFailed
	}
	return stored, nil
}

// FindAll returns every transcript ordered by id. An empty table yields an
// empty, non-nil slice.
func (s TranscriptStore) FindAll(ctx context.Context) ([]transcript.Transcript, error) {
	return s.Find(ctx, repository.WithOrderAsc("id"))
}

// FindRecent returns up to limit transcripts, newest first, optionally for a
// single company.
func (s TranscriptStore) FindRecent(ctx context.Context, company string, limit int) ([]transcript.Transcript, error) {
	return s.Find(ctx, recentOptions(company, limit)...)
}

// DeleteByID removes the transcript with the given id and reports how many
// rows were removed.
func (s TranscriptStore) DeleteByID(ctx context.Context, id int64) (int64, error) {
	return s.DeleteBy(ctx, repository.WithID(id))
}
