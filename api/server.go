// Package api exposes the document question-answering workflows over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/haulstack/freight-assistant/config"
	"github.com/haulstack/freight-assistant/database"
	"github.com/haulstack/freight-assistant/embeddings"
	"github.com/haulstack/freight-assistant/extraction"
	"github.com/haulstack/freight-assistant/ingestion"
	"github.com/haulstack/freight-assistant/knowledge"
	"github.com/haulstack/freight-assistant/llm"
	"github.com/haulstack/freight-assistant/qa"
)

// maxUploadBytes bounds multipart uploads; rate confirmations and BOLs are
// small, so 32 MiB is generous.
const maxUploadBytes = 32 << 20

// Server exposes HTTP handlers for the core freight-assistant workflows.
type Server struct {
	cfg     config.Config
	logger  *log.Logger
	handler http.Handler
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	NumChunks  int    `json:"num_chunks"`
	Message    string `json:"message"`
}

type askRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
	TopK       int    `json:"top_k"`
}

type extractRequest struct {
	DocumentID string `json:"document_id"`
}

type extractResponse struct {
	DocumentID      string            `json:"document_id"`
	ShipmentData    extraction.Record `json:"shipment_data"`
	ConfidenceScore float64           `json:"confidence_score"`
	ExtractionNotes []string          `json:"extraction_notes"`
}

type clearRequest struct {
	Confirm bool `json:"confirm"`
}

type shipmentsResponse struct {
	Shipments []shipmentSummary `json:"shipments"`
}

type shipmentSummary struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ShipmentID string `json:"shipment_id,omitempty"`
	Carrier    string `json:"carrier,omitempty"`
	Shipper    string `json:"shipper,omitempty"`
	Consignee  string `json:"consignee,omitempty"`
	Rate       string `json:"rate,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// New constructs a Server that serves the HTTP API using the provided configuration.
func New(cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{cfg: cfg, logger: logger}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/documents", s.handleUpload)
	mux.HandleFunc("/v1/ask", s.handleAsk)
	mux.HandleFunc("/v1/extract", s.handleExtract)
	mux.HandleFunc("/v1/shipments", s.handleShipments)
	mux.HandleFunc("/v1/clear", s.handleClear)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("file field is required: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	if ingestion.DetectFormat(header.Filename) == ingestion.FormatUnknown {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s (supported: .pdf, .txt, .md)", header.Filename))
		return
	}

	ctx := r.Context()

	pgPool, err := database.NewPostgresPool(ctx, s.cfg.PostgresDSN)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("postgres connection: %w", err))
		return
	}
	defer pgPool.Close()

	neo4jDriver, err := database.NewNeo4jDriver(ctx, s.cfg.Neo4jURI, s.cfg.Neo4jUser, s.cfg.Neo4jPass)
	if err != nil {
		s.logger.Printf("neo4j unavailable, skipping graph sync: %v", err)
		neo4jDriver = nil
	} else {
		defer neo4jDriver.Close(ctx)
	}

	embedder, err := embeddings.NewEmbedder(s.cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("embedder setup: %w", err))
		return
	}

	svc := ingestion.NewService(pgPool, neo4jDriver, embedder, s.logger, s.cfg.Embeddings.Dimension, s.cfg.ChunkSize, s.cfg.ChunkOverlap)

	result, err := svc.IngestDocument(ctx, header.Filename, data)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("ingestion failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		DocumentID: result.DocumentID.String(),
		Filename:   result.Filename,
		NumChunks:  result.NumChunks,
		Message:    "document processed successfully",
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	docID, err := uuid.Parse(strings.TrimSpace(req.DocumentID))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid document_id: %w", err))
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	ctx := r.Context()

	pgPool, err := database.NewPostgresPool(ctx, s.cfg.PostgresDSN)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("postgres connection: %w", err))
		return
	}
	defer pgPool.Close()

	exists, err := ingestion.DocumentExists(ctx, pgPool, docID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !exists {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("document %s not found", docID))
		return
	}

	embedder, err := embeddings.NewEmbedder(s.cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("embedder setup: %w", err))
		return
	}

	svc := qa.NewService(qa.NewPostgresVectorStore(pgPool), embedder, s.llmClient(), topK, s.cfg.ConfidenceThreshold, s.logger)

	answer, err := svc.Ask(ctx, docID, req.Question)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("answer question: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	docID, err := uuid.Parse(strings.TrimSpace(req.DocumentID))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid document_id: %w", err))
		return
	}

	ctx := r.Context()

	pgPool, err := database.NewPostgresPool(ctx, s.cfg.PostgresDSN)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("postgres connection: %w", err))
		return
	}
	defer pgPool.Close()

	rawText, err := ingestion.DocumentText(ctx, pgPool, docID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	svc := extraction.NewService(s.llmClient(), s.logger)
	result := svc.ExtractShipment(ctx, rawText)

	if neo4jDriver, graphErr := database.NewNeo4jDriver(ctx, s.cfg.Neo4jURI, s.cfg.Neo4jUser, s.cfg.Neo4jPass); graphErr != nil {
		s.logger.Printf("neo4j unavailable, skipping shipment sync: %v", graphErr)
	} else {
		if syncErr := knowledge.SyncShipment(ctx, neo4jDriver, docID.String(), result.Record); syncErr != nil {
			s.logger.Printf("sync shipment graph: %v", syncErr)
		}
		neo4jDriver.Close(ctx)
	}

	s.writeJSON(w, http.StatusOK, extractResponse{
		DocumentID:      docID.String(),
		ShipmentData:    result.Record,
		ConfidenceScore: result.Confidence,
		ExtractionNotes: result.Notes,
	})
}

func (s *Server) handleShipments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx := r.Context()

	neo4jDriver, err := database.NewNeo4jDriver(ctx, s.cfg.Neo4jURI, s.cfg.Neo4jUser, s.cfg.Neo4jPass)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("neo4j connection: %w", err))
		return
	}
	defer neo4jDriver.Close(ctx)

	summaries, err := knowledge.DocumentShipments(ctx, neo4jDriver)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := shipmentsResponse{Shipments: make([]shipmentSummary, len(summaries))}
	for i, sum := range summaries {
		resp.Shipments[i] = shipmentSummary{
			DocumentID: sum.DocumentID,
			Filename:   sum.Filename,
			ShipmentID: sum.ShipmentID,
			Carrier:    sum.Carrier,
			Shipper:    sum.Shipper,
			Consignee:  sum.Consignee,
			Rate:       sum.Rate,
			Currency:   sum.Currency,
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req clearRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if !req.Confirm {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("confirm must be true to clear data"))
		return
	}

	ctx := r.Context()

	pgPool, err := database.NewPostgresPool(ctx, s.cfg.PostgresDSN)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("postgres connection: %w", err))
		return
	}
	defer pgPool.Close()

	if _, err := pgPool.Exec(ctx, "TRUNCATE shipment_chunks, shipment_documents"); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("truncate postgres tables: %w", err))
		return
	}
	s.logger.Println("cleared Postgres shipment_documents and shipment_chunks")

	neo4jDriver, err := database.NewNeo4jDriver(ctx, s.cfg.Neo4jURI, s.cfg.Neo4jUser, s.cfg.Neo4jPass)
	if err != nil {
		s.logger.Printf("neo4j unavailable, skipping graph purge: %v", err)
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "document data cleared"})
		return
	}
	defer neo4jDriver.Close(ctx)

	session := neo4jDriver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if err := purgeNeo4j(ctx, session); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("clear neo4j: %w", err))
		return
	}

	s.logger.Println("Neo4j documents and shipments cleared")

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "document data cleared"})
}

// llmClient builds the configured LLM client. A missing or broken LLM
// configuration is not fatal; callers fall back to extractive answering and
// pattern extraction.
func (s *Server) llmClient() llm.Client {
	if s.cfg.LLM.Provider == config.ProviderNone {
		return nil
	}
	client, err := llm.NewClient(s.cfg)
	if err != nil {
		s.logger.Printf("llm unavailable, using fallbacks: %v", err)
		return nil
	}
	return client
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}

func purgeNeo4j(ctx context.Context, session neo4j.SessionWithContext) error {
	queries := []string{
		"MATCH (s:Shipment) DETACH DELETE s",
		"MATCH (d:Document) DETACH DELETE d",
		"MATCH (c:Carrier) DETACH DELETE c",
		"MATCH (p:Party) DETACH DELETE p",
		"MATCH (e:Equipment) DETACH DELETE e",
	}

	for _, query := range queries {
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return err
		}
		if _, err := result.Consume(ctx); err != nil {
			return err
		}
	}

	return nil
}
