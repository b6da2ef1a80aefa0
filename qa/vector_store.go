package qa

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// VectorStore retrieves the chunks of one document most similar to a
// question embedding, ordered by descending similarity.
type VectorStore interface {
	SimilarChunks(ctx context.Context, documentID uuid.UUID, embedding []float32, limit int) ([]SourceChunk, error)
}

type PostgresVectorStore struct {
	pool *pgxpool.Pool
}

func NewPostgresVectorStore(pool *pgxpool.Pool) *PostgresVectorStore {
	return &PostgresVectorStore{pool: pool}
}

// SimilarChunks runs a cosine nearest-neighbor query scoped to a single
// document. Reported similarity is 1 - cosine distance, rounded to four
// decimal places, so identical vectors score 1.0.
func (s *PostgresVectorStore) SimilarChunks(ctx context.Context, documentID uuid.UUID, embedding []float32, limit int) ([]SourceChunk, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is empty")
	}
	if limit <= 0 {
		limit = 5
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := limit * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT
            content,
            chunk_index,
            (embedding <=> $2::vector) AS distance
        FROM shipment_chunks
        WHERE document_id = $1
        ORDER BY embedding <=> $2::vector
        LIMIT $3
    `, documentID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]SourceChunk, 0)
	for rows.Next() {
		var item SourceChunk
		var distance float64
		if scanErr := rows.Scan(&item.Text, &item.ChunkIndex, &distance); scanErr != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", scanErr)
		}
		item.SimilarityScore = round4(1 - distance)
		results = append(results, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return results, nil
}

var _ VectorStore = (*PostgresVectorStore)(nil)
