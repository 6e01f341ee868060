package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RetrievalVariant selects the search strategy used to answer a query. The
// four variants form a strict feature ladder: each adds one stage over the
// previous rather than swapping strategies outright.
type RetrievalVariant string

const (
	// VariantSemantic runs the vector-similarity leg alone.
	VariantSemantic RetrievalVariant = "semantic"
	// VariantHybrid blends the vector and lexical legs.
	VariantHybrid RetrievalVariant = "hybrid"
	// VariantHybridRerank adds a reranking pass over the blended results.
	VariantHybridRerank RetrievalVariant = "hybrid+rerank"
	// VariantRewriteHybridRerank adds LLM query rewriting and reciprocal
	// rank fusion across the rewritten variants ahead of hybrid+rerank.
	VariantRewriteHybridRerank RetrievalVariant = "rewrite+hybrid+rerank"
)

// QueryEvent records one question asked of the retrieval engine along with
// the answer it produced, for auditing and evaluation.
type QueryEvent struct {
	ID               uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AskedBy          string                             `json:"asked_by,omitempty" gorm:"type:varchar(255);index"`
	QueryText        string                             `json:"query_text" gorm:"type:text;not null"`
	RewrittenQueries []string                           `json:"rewritten_queries,omitempty" gorm:"type:jsonb;serializer:json"`
	Variant          RetrievalVariant                   `json:"variant" gorm:"type:varchar(16);not null"`
	ResultChunkIDs   []string                           `json:"result_chunk_ids,omitempty" gorm:"type:jsonb;serializer:json"`
	Answer           string                             `json:"answer" gorm:"type:text"`
	LatencyMs        int64                              `json:"latency_ms"`
	Refused          bool                               `json:"refused" gorm:"default:false"`
	Metadata         datatypes.JSONType[map[string]any] `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time                          `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for GORM.
func (QueryEvent) TableName() string {
	return "query_events"
}

// NewQueryEvent starts a query-event record before retrieval executes.
func NewQueryEvent(queryText, askedBy string, variant RetrievalVariant) *QueryEvent {
	return &QueryEvent{
		ID:        uuid.New(),
		QueryText: queryText,
		AskedBy:   askedBy,
		Variant:   variant,
	}
}
