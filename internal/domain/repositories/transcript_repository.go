package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// TranscriptRepository persists ASR output.
type TranscriptRepository interface {
	Create(ctx context.Context, t *entities.Transcript) error
	Update(ctx context.Context, t *entities.Transcript) error
	GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*entities.Transcript, error)
	GetByExternalJobID(ctx context.Context, externalJobID string) (*entities.Transcript, error)
}

// AudioArtifactRepository persists artifact-store bookkeeping rows.
type AudioArtifactRepository interface {
	Create(ctx context.Context, a *entities.AudioArtifact) error
	GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*entities.AudioArtifact, error)
	MarkMirrored(ctx context.Context, id uuid.UUID) error
}

// ChunkRepository persists chunk metadata; embeddings themselves live in
// the vector store, not the relational job store.
type ChunkRepository interface {
	UpsertBatch(ctx context.Context, chunks []*entities.Chunk) error
	ListBySubmissionID(ctx context.Context, submissionID uuid.UUID) ([]*entities.Chunk, error)
	ListUnembedded(ctx context.Context, limit int) ([]*entities.Chunk, error)
	MarkEmbedded(ctx context.Context, chunkIDs []string) error
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Chunk, error)
	DeleteBySubmissionID(ctx context.Context, submissionID uuid.UUID) error

	// SearchByKeywords performs a lexical scan for chunks containing any of
	// the given keywords, feeding the retrieval engine's text-search leg.
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*entities.Chunk, error)

	// CountAll counts every indexed chunk, the collection size reported by
	// the health endpoint.
	CountAll(ctx context.Context) (int64, error)
}
