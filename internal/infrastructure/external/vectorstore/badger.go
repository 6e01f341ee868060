package vectorstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

const chunkVectorPrefix = "vec:"

// Store is an embedded, filesystem-backed vector store: chunk embeddings
// live under the artifact store's data root so the whole retrieval index
// travels with a single tarball of that directory, with no external
// vector database dependency.
type Store struct {
	db *badger.DB
}

// record is the on-disk representation of one chunk's embedding.
type record struct {
	SubmissionID string    `json:"submission_id"`
	Vector       []float32 `json:"vector"`
}

// Open opens (creating if necessary) the vector store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vector store directory: %w", err)
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert stores or replaces a chunk's embedding. Called after every embed
// batch so re-embedding a chunk is idempotent.
func (s *Store) Upsert(chunkID, submissionID string, vector []float32) error {
	rec := record{SubmissionID: submissionID, Vector: vector}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(chunkVectorPrefix+chunkID), data)
	})
}

// Delete removes a chunk's embedding, used when a submission is
// re-ingested and its stale chunks must not be searchable.
func (s *Store) Delete(chunkID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(chunkVectorPrefix + chunkID))
	})
}

// Match is one vector-search hit.
type Match struct {
	ChunkID string
	Score   float32
}

// Search performs a brute-force cosine-similarity scan over all stored
// embeddings and returns the top-k matches. Adequate for the corpus sizes
// this pipeline targets; a larger deployment would swap this store for an
// ANN index without touching the retrieval engine's interface.
func (s *Store) Search(query []float32, topK int) ([]Match, error) {
	var matches []Match

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkVectorPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()
			chunkID := bytes.TrimPrefix(key, []byte(chunkVectorPrefix))

			var rec record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			if len(rec.Vector) == 0 {
				continue
			}

			score := cosineSimilarity(query, rec.Vector)
			matches = append(matches, Match{ChunkID: string(chunkID), Score: score})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
