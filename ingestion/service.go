package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pgvector/pgvector-go"

	"github.com/haulstack/freight-assistant/database"
	"github.com/haulstack/freight-assistant/embeddings"
	"github.com/haulstack/freight-assistant/knowledge"
)

type Service struct {
	pool         *pgxpool.Pool
	driver       neo4j.DriverWithContext
	embedder     embeddings.Embedder
	logger       *log.Logger
	dimension    int
	chunkSize    int
	chunkOverlap int
}

// Result summarizes a completed document ingest.
type Result struct {
	DocumentID uuid.UUID
	Filename   string
	NumChunks  int
}

func NewService(pool *pgxpool.Pool, driver neo4j.DriverWithContext, embedder embeddings.Embedder, logger *log.Logger, dimension, chunkSize, chunkOverlap int) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}

	return &Service{
		pool:         pool,
		driver:       driver,
		embedder:     embedder,
		logger:       logger,
		dimension:    dimension,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// IngestDocument parses, segments, embeds, and stores a single uploaded
// document. Re-uploading byte-identical content returns the already stored
// document instead of re-indexing it.
func (s *Service) IngestDocument(ctx context.Context, filename string, data []byte) (result Result, err error) {
	if s.embedder == nil {
		return Result{}, fmt.Errorf("embedder not configured")
	}
	if err := database.EnsureDocumentSchema(ctx, s.pool, s.dimension); err != nil {
		return Result{}, fmt.Errorf("ensure schema: %w", err)
	}

	rawText, err := ExtractText(filename, data)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(rawText) == "" {
		return Result{}, fmt.Errorf("no text could be extracted from the document")
	}

	chunks := Segment(rawText, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return Result{}, fmt.Errorf("document produced no valid chunks after processing")
	}

	hash := sha256.Sum256(data)
	hashHex := hex.EncodeToString(hash[:])

	if existing, ok, lookupErr := s.lookupByHash(ctx, hashHex); lookupErr != nil {
		return Result{}, lookupErr
	} else if ok {
		s.logger.Printf("document %s already ingested as %s", filename, existing.DocumentID)
		return existing, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return Result{}, fmt.Errorf("embedding count mismatch: have %d chunks, %d embeddings", len(chunks), len(vectors))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Result{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Printf("rollback error: %v", rbErr)
			}
		}
	}()

	docID := uuid.New()
	if _, err = tx.Exec(ctx, `
		INSERT INTO shipment_documents (id, filename, sha256, raw_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, docID, filename, hashHex, rawText); err != nil {
		return Result{}, fmt.Errorf("insert document: %w", err)
	}

	for _, chunk := range chunks {
		vec := pgvector.NewVector(vectors[chunk.Index])
		if _, err = tx.Exec(ctx, `
			INSERT INTO shipment_chunks (id, document_id, chunk_index, content, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, uuid.New(), docID, chunk.Index, chunk.Text, vec); err != nil {
			return Result{}, fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit transaction: %w", err)
	}

	if s.driver != nil {
		doc := knowledge.Document{
			ID:         docID.String(),
			Filename:   filename,
			ChunkCount: len(chunks),
		}
		if syncErr := knowledge.SyncDocument(ctx, s.driver, doc); syncErr != nil {
			s.logger.Printf("sync knowledge graph: %v", syncErr)
		}
	}

	s.logger.Printf("ingested %s as %s (%d chunks)", filename, docID, len(chunks))
	return Result{DocumentID: docID, Filename: filename, NumChunks: len(chunks)}, nil
}

func (s *Service) lookupByHash(ctx context.Context, hashHex string) (Result, bool, error) {
	var (
		docID    uuid.UUID
		filename string
		count    int
	)
	err := s.pool.QueryRow(ctx, `
		SELECT d.id, d.filename, COUNT(c.id)
		FROM shipment_documents d
		LEFT JOIN shipment_chunks c ON c.document_id = d.id
		WHERE d.sha256 = $1
		GROUP BY d.id, d.filename
	`, hashHex).Scan(&docID, &filename, &count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Result{}, false, nil
		}
		return Result{}, false, fmt.Errorf("query document by hash: %w", err)
	}
	return Result{DocumentID: docID, Filename: filename, NumChunks: count}, true, nil
}

// DocumentText loads the stored raw text of a document for structured
// extraction.
func DocumentText(ctx context.Context, pool *pgxpool.Pool, docID uuid.UUID) (string, error) {
	var rawText string
	err := pool.QueryRow(ctx, "SELECT raw_text FROM shipment_documents WHERE id = $1", docID).Scan(&rawText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("document %s not found", docID)
		}
		return "", fmt.Errorf("query document text: %w", err)
	}
	return rawText, nil
}

// DocumentExists reports whether a document has been ingested.
func DocumentExists(ctx context.Context, pool *pgxpool.Pool, docID uuid.UUID) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM shipment_documents WHERE id = $1)", docID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query document existence: %w", err)
	}
	return exists, nil
}
