package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Crawl / ingestion
	SiteRoot      string
	DataDir       string
	CrawlMaxPages int // 0 means unbounded
	CrawlDelayMS  int
	FetchTimeout  int // seconds
	UserAgent     string
	IngestCron    string // empty disables scheduled re-ingestion

	// Segmentation
	ChunkSize    int
	ChunkOverlap int

	// Gemini
	GeminiAPIKey    string
	EmbeddingsModel string
	GenerationModel string
	MaxOutputTokens int

	// Vector store
	VectorBackend    string // "mongo" or "memory"
	MongoURI         string
	DBName           string
	VectorCollection string
	VectorIndexName  string
	VectorDimensions int
	StoreTimeout     int // seconds
	UpsertBatchSize  int

	// Retrieval
	RetrieveUnique int
	RetrieveFetch  int

	// Redis answer cache (empty URL disables caching)
	RedisURL       string
	RedisPassword  string
	RedisDB        int
	AnswerCacheTTL int // seconds

	// HTTP surface
	Port            string
	GinMode         string
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow int

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		SiteRoot:      getEnv("SITE_ROOT", "https://childprotection.gov.lk/"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		CrawlMaxPages: getEnvInt("CRAWL_MAX_PAGES", 500),
		CrawlDelayMS:  getEnvInt("CRAWL_DELAY_MS", 500),
		FetchTimeout:  getEnvInt("FETCH_TIMEOUT_SECONDS", 20),
		UserAgent:     getEnv("CRAWL_USER_AGENT", "ncpa-assist/1.0 (+https://childprotection.gov.lk)"),
		IngestCron:    getEnv("INGEST_CRON", ""),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 100),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		GenerationModel: getEnv("GENERATION_MODEL", "gemini-2.0-flash"),
		MaxOutputTokens: getEnvInt("MAX_OUTPUT_TOKENS", 512),

		VectorBackend:    getEnv("VECTOR_BACKEND", "mongo"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017/ncpa_assist"),
		DBName:           getEnv("DB_NAME", "ncpa_assist"),
		VectorCollection: getEnv("VECTOR_COLLECTION", "doc_chunks"),
		VectorIndexName:  getEnv("MONGODB_VECTOR_INDEX", "doc_chunks_vector"),
		VectorDimensions: getEnvInt("VECTOR_DIM", 768),
		StoreTimeout:     getEnvInt("STORE_TIMEOUT_SECONDS", 60),
		UpsertBatchSize:  getEnvInt("UPSERT_BATCH_SIZE", 100),

		RetrieveUnique: getEnvInt("RETRIEVE_UNIQUE", 4),
		RetrieveFetch:  getEnvInt("RETRIEVE_FETCH", 8),

		RedisURL:       getEnv("REDIS_URL", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		AnswerCacheTTL: getEnvInt("ANSWER_CACHE_TTL", 3600),

		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	// A stride of zero would keep the segmenter from advancing.
	if cfg.ChunkOverlap < 0 || cfg.ChunkSize <= cfg.ChunkOverlap {
		return nil, fmt.Errorf("CHUNK_SIZE (%d) must be greater than CHUNK_OVERLAP (%d) and overlap must be >= 0",
			cfg.ChunkSize, cfg.ChunkOverlap)
	}

	switch cfg.VectorBackend {
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the mongo vector backend")
		}
	case "memory":
		// No external service needed.
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND: %s", cfg.VectorBackend)
	}

	if !strings.HasPrefix(cfg.SiteRoot, "http://") && !strings.HasPrefix(cfg.SiteRoot, "https://") {
		return nil, fmt.Errorf("SITE_ROOT must be an absolute http(s) URL: %s", cfg.SiteRoot)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
