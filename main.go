package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/haulstack/freight-assistant/api"
	"github.com/haulstack/freight-assistant/config"
	"github.com/haulstack/freight-assistant/database"
	"github.com/haulstack/freight-assistant/embeddings"
	"github.com/haulstack/freight-assistant/extraction"
	"github.com/haulstack/freight-assistant/ingestion"
	"github.com/haulstack/freight-assistant/knowledge"
	"github.com/haulstack/freight-assistant/llm"
	"github.com/haulstack/freight-assistant/qa"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "extract":
		extractCmd(cfg, logger, os.Args[2:])
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.ListenAddr, "address for the HTTP API to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := &http.Server{
		Addr:              *addr,
		Handler:           api.New(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	file := flags.String("file", "", "path to a PDF, TXT, or Markdown document")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	if strings.TrimSpace(*file) == "" {
		logger.Fatal("--file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatalf("read document: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	neo4jDriver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
	if err != nil {
		logger.Printf("neo4j unavailable, skipping graph sync: %v", err)
		neo4jDriver = nil
	} else {
		defer neo4jDriver.Close(ctx)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	svc := ingestion.NewService(pgPool, neo4jDriver, embedder, logger, cfg.Embeddings.Dimension, cfg.ChunkSize, cfg.ChunkOverlap)
	logger.Printf("ingesting %s using %s/%s embeddings", *file, strings.ToUpper(cfg.Embeddings.Provider), cfg.Embeddings.Model)

	result, err := svc.IngestDocument(ctx, baseName(*file), data)
	if err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}

	fmt.Printf("document_id: %s\nchunks: %d\n", result.DocumentID, result.NumChunks)
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	docIDArg := flags.String("document", "", "document id returned by ingest")
	question := flags.String("question", "", "question to ask about the document")
	topK := flags.Int("top-k", cfg.TopK, "number of context chunks to retrieve")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}

	docID, err := uuid.Parse(strings.TrimSpace(*docIDArg))
	if err != nil {
		logger.Fatalf("invalid --document: %v", err)
	}

	if strings.TrimSpace(*question) == "" {
		fmt.Print("Enter your question: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			*question = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Fatalf("read question: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	svc := qa.NewService(qa.NewPostgresVectorStore(pgPool), embedder, optionalLLM(cfg, logger), *topK, cfg.ConfidenceThreshold, logger)

	answer, err := svc.Ask(ctx, docID, *question)
	if err != nil {
		logger.Fatalf("ask failed: %v", err)
	}

	fmt.Println(answer.Answer)
	fmt.Printf("\nConfidence: %.4f\n", answer.ConfidenceScore)
	if answer.GuardrailTriggered {
		fmt.Printf("Guardrail: %s\n", answer.GuardrailMessage)
	}
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for idx, source := range answer.Sources {
			fmt.Printf("%d. chunk %d (similarity %.4f)\n", idx+1, source.ChunkIndex, source.SimilarityScore)
		}
	}
}

func extractCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("extract", flag.ExitOnError)
	docIDArg := flags.String("document", "", "document id returned by ingest")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse extract flags: %v", err)
	}

	docID, err := uuid.Parse(strings.TrimSpace(*docIDArg))
	if err != nil {
		logger.Fatalf("invalid --document: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	rawText, err := ingestion.DocumentText(ctx, pgPool, docID)
	if err != nil {
		logger.Fatalf("load document: %v", err)
	}

	svc := extraction.NewService(optionalLLM(cfg, logger), logger)
	result := svc.ExtractShipment(ctx, rawText)

	if neo4jDriver, graphErr := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass); graphErr != nil {
		logger.Printf("neo4j unavailable, skipping shipment sync: %v", graphErr)
	} else {
		if syncErr := knowledge.SyncShipment(ctx, neo4jDriver, docID.String(), result.Record); syncErr != nil {
			logger.Printf("sync shipment graph: %v", syncErr)
		}
		neo4jDriver.Close(ctx)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("encode extraction result: %v", err)
	}
	fmt.Println(string(encoded))
}

func clearCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	confirmed := flags.Bool("confirm", false, "skip confirmation prompt")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse clear flags: %v", err)
	}

	if !*confirmed {
		fmt.Print("This will permanently delete ingested documents from Postgres and Neo4j. Continue? [y/N]: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Fatalf("read confirmation: %v", err)
			}
			logger.Println("clear aborted")
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			logger.Println("clear aborted")
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	if _, err := pgPool.Exec(ctx, "TRUNCATE shipment_chunks, shipment_documents"); err != nil {
		logger.Fatalf("truncate postgres tables: %v", err)
	}
	logger.Println("cleared Postgres shipment_documents and shipment_chunks")

	neo4jDriver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
	if err != nil {
		logger.Printf("neo4j unavailable, skipping graph purge: %v", err)
		return
	}
	defer neo4jDriver.Close(ctx)

	session := neo4jDriver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if err := purgeNeo4j(ctx, session); err != nil {
		logger.Fatalf("clear neo4j: %v", err)
	}

	logger.Println("Neo4j documents and shipments cleared")
}

// optionalLLM returns nil when no usable LLM is configured; callers fall
// back to extractive answering and pattern extraction.
func optionalLLM(cfg config.Config, logger *log.Logger) llm.Client {
	if cfg.LLM.Provider == config.ProviderNone {
		return nil
	}
	client, err := llm.NewClient(cfg)
	if err != nil {
		logger.Printf("llm unavailable, using fallbacks: %v", err)
		return nil
	}
	return client
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

func baseName(path string) string {
	idx := strings.LastIndexAny(path, "/\\")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func printUsage() {
	fmt.Println("Usage: freight-assistant <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Start the HTTP API")
	fmt.Println("  ingest   Ingest a logistics document (use --file to point at a PDF, TXT, or Markdown file)")
	fmt.Println("  ask      Ask a question about an ingested document")
	fmt.Println("  extract  Extract structured shipment data from an ingested document")
	fmt.Println("  clear    Remove ingested documents from Postgres/Neo4j")
}
