package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lexdraft/lexdraft/internal/api"
	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/docio"
	"github.com/lexdraft/lexdraft/internal/draft"
	"github.com/lexdraft/lexdraft/internal/llm"
	"github.com/lexdraft/lexdraft/internal/match"
	"github.com/lexdraft/lexdraft/internal/oracle"
	"github.com/lexdraft/lexdraft/internal/sqlite"
	"github.com/lexdraft/lexdraft/internal/template"
	"github.com/lexdraft/lexdraft/internal/websearch"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("lexdraft: .env file not loaded", "error", err)
	} else {
		logger.Info("lexdraft: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite template catalog")
	templatesDir := flag.String("templates-dir", filepath.Join("data", "templates"), "directory for generated template markdown files")
	exportsDir := flag.String("exports-dir", filepath.Join("data", "exports"), "directory for rendered draft artifacts")
	uploadDir := flag.String("upload-dir", "", "directory for uploaded source documents")
	chunkSize := flag.Int("chunk-size", envInt("CHUNK_SIZE", template.DefaultChunkSize), "extraction window size in characters")
	chunkOverlap := flag.Int("chunk-overlap", envInt("CHUNK_OVERLAP", template.DefaultChunkOverlap), "overlap between extraction windows")
	confidence := flag.Float64("confidence-threshold", envFloat("MIN_CONFIDENCE_THRESHOLD", match.DefaultConfidenceThreshold), "minimum match confidence before web search escalation")
	flag.Parse()

	logger.Info("lexdraft: startup initiated", "addr", *addr, "db", *dbPath)

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		logger.Error("lexdraft: store initialization failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	provider := llm.NewProvider()
	logger.Info("lexdraft: llm provider ready", "provider", provider.Name())

	llmOracle := oracle.New(provider)
	search := websearch.NewFromEnv()
	if search.Available() {
		logger.Info("lexdraft: web search configured")
	} else {
		logger.Info("lexdraft: web search not configured; escalation disabled")
	}

	extractor := template.NewExtractor(llmOracle, template.ExtractorConfig{
		ChunkSize:    *chunkSize,
		ChunkOverlap: *chunkOverlap,
	})
	ingestor := template.NewIngestor(extractor, provider, docio.NewExtractor(), store, *templatesDir)
	matcher := match.NewService(provider, llmOracle, search, store, match.Config{
		ConfidenceThreshold: *confidence,
	})
	drafts := draft.NewService(store, llmOracle, llmOracle, docio.NewRenderer(*exportsDir))

	cfg := api.DefaultConfig()
	if trimmed := strings.TrimSpace(*uploadDir); trimmed != "" {
		cfg.UploadRoot = trimmed
	}
	server := api.NewServer(ingestor, store, matcher, drafts, &cfg)

	logger.Info("lexdraft: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("lexdraft: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultDBPath() string {
	return filepath.Join("data", "catalog.db")
}

func envInt(name string, fallback int) int {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
