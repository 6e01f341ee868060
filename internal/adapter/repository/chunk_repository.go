package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

const maxKeywordTerms = 8

// ChunkRepository handles chunk metadata persistence. Embeddings are
// stored separately in the embedded vector store.
type ChunkRepository struct {
	db *gorm.DB
}

// NewChunkRepository creates a new chunk repository.
func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// UpsertBatch inserts or replaces chunks by their content-addressed ID,
// making re-chunking a submission idempotent.
func (r *ChunkRepository) UpsertBatch(ctx context.Context, chunks []*entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "start_secs", "end_secs", "char_count"}),
		}).
		Create(chunks).Error
}

// ListBySubmissionID lists all chunks for a submission in ordinal order.
func (r *ChunkRepository) ListBySubmissionID(ctx context.Context, submissionID uuid.UUID) ([]*entities.Chunk, error) {
	var chunks []*entities.Chunk
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("ordinal ASC").
		Find(&chunks).Error
	return chunks, err
}

// ListUnembedded lists chunks awaiting an embedding pass.
func (r *ChunkRepository) ListUnembedded(ctx context.Context, limit int) ([]*entities.Chunk, error) {
	var chunks []*entities.Chunk
	if limit == 0 {
		limit = 100
	}
	err := r.db.WithContext(ctx).
		Where("embedded = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&chunks).Error
	return chunks, err
}

// MarkEmbedded flags chunks as having a stored vector.
func (r *ChunkRepository) MarkEmbedded(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entities.Chunk{}).
		Where("id IN ?", chunkIDs).
		Update("embedded", true).Error
}

// GetByIDs fetches chunks by their content-addressed IDs, preserving no
// particular order — callers re-sort by the ID list themselves.
func (r *ChunkRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Chunk, error) {
	var chunks []*entities.Chunk
	if len(ids) == 0 {
		return chunks, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&chunks).Error
	return chunks, err
}

// DeleteBySubmissionID removes all chunks for a submission, used when a
// submission is re-ingested and its old chunk set must be superseded.
func (r *ChunkRepository) DeleteBySubmissionID(ctx context.Context, submissionID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("submission_id = ?", submissionID).Delete(&entities.Chunk{}).Error
}

// CountAll counts every persisted chunk, the collection size the health
// endpoint reports.
func (r *ChunkRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Chunk{}).Count(&count).Error
	return count, err
}

// SearchByKeywords scans for chunks whose text contains any of the given
// keywords, capped to the first maxKeywordTerms to bound query size.
func (r *ChunkRepository) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*entities.Chunk, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if len(keywords) > maxKeywordTerms {
		keywords = keywords[:maxKeywordTerms]
	}
	if limit == 0 {
		limit = 100
	}

	query := r.db.WithContext(ctx).Model(&entities.Chunk{})
	for i, kw := range keywords {
		cond := "text ILIKE ?"
		arg := "%" + kw + "%"
		if i == 0 {
			query = query.Where(cond, arg)
		} else {
			query = query.Or(cond, arg)
		}
	}

	var chunks []*entities.Chunk
	err := query.Limit(limit).Find(&chunks).Error
	return chunks, err
}
