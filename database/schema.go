package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureDocumentSchema creates the document and chunk tables used by the
// ingestion and retrieval pipelines. Raw text is kept on the document row so
// structured extraction can run over the full document rather than chunks.
func EnsureDocumentSchema(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		`CREATE TABLE IF NOT EXISTS shipment_documents (
			id UUID PRIMARY KEY,
			filename TEXT NOT NULL,
			sha256 TEXT NOT NULL,
			raw_text TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS shipment_chunks (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES shipment_documents(id) ON DELETE CASCADE,
			chunk_index INT NOT NULL,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(document_id, chunk_index)
		)`, dimension),
		"CREATE INDEX IF NOT EXISTS idx_shipment_chunks_document ON shipment_chunks(document_id)",
		"CREATE INDEX IF NOT EXISTS idx_shipment_chunks_embedding ON shipment_chunks USING ivfflat (embedding vector_cosine_ops)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
