package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"legal-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	DBPool          DBPool

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	AnalysisProvider       string
	AnalysisBackendURL     string
	HealthCheckTimeout     time.Duration
	DemoDelay              time.Duration
	AnalysisTimeout        time.Duration
	AnalysisMaxRetries     int
	AnalysisRetryBaseDelay time.Duration
	OpenAIAPIKey           string
	OpenAIBaseURL          string
	LLMModel               string
	MaxUploadBytes         int64

	AnalyzeRatePerMinute float64
	AnalyzeRateBurst     int

	JWTSecret   string
	SQSQueueURL string

	LogLevel  string
	LogFormat string
}

// DBPool carries optional pool overrides. Zero values keep the pool defaults.
type DBPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	ConnectAttempts int
}

// Load reads configuration with the precedence environment > CONFIG_FILE > defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	src := source{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		values, err := loadYAMLFile(path)
		if err != nil {
			telemetry.Warn("config.file_ignored", map[string]any{"path": path, "error": err})
		} else {
			src.file = values
		}
	}
	return src.build()
}

type source struct {
	file map[string]string
}

func (s source) build() Config {
	env := normalizeEnv(s.get("ENV", "dev"))
	dbURL := s.get("DATABASE_URL", "")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	pool := DBPool{
		MaxOpenConns:    s.getInt("DB_MAX_OPEN_CONNS", 0),
		MaxIdleConns:    s.getInt("DB_MAX_IDLE_CONNS", 0),
		ConnMaxLifetime: s.getDuration("DB_CONN_MAX_LIFETIME", 0),
		ConnMaxIdleTime: s.getDuration("DB_CONN_MAX_IDLE_TIME", 0),
		PingTimeout:     s.getDuration("DB_PING_TIMEOUT", 0),
		ConnectAttempts: s.getInt("DB_CONNECT_ATTEMPTS", 0),
	}

	return Config{
		Port:            s.get("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(s.get("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		DBPool:          pool,

		ObjectStoreType: normalizeStoreType(s.get("OBJECT_STORE", "local")),
		LocalStoreDir:   s.get("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       s.get("AWS_REGION", ""),
		S3Bucket:        s.get("S3_BUCKET", ""),
		S3Prefix:        s.get("S3_PREFIX", ""),
		SSEKMSKeyID:     s.get("SSE_KMS_KEY_ID", ""),
		MinioEndpoint:   s.get("MINIO_ENDPOINT", ""),
		MinioAccessKey:  s.get("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  s.get("MINIO_SECRET_KEY", ""),
		MinioBucket:     s.get("MINIO_BUCKET", "legal-documents"),
		MinioUseSSL:     s.getBool("MINIO_USE_SSL", false),

		AnalysisProvider:       normalizeProvider(s.get("ANALYSIS_PROVIDER", "remote")),
		AnalysisBackendURL:     s.get("ANALYSIS_BACKEND_URL", "http://localhost:8000"),
		HealthCheckTimeout:     s.getDuration("HEALTH_CHECK_TIMEOUT", 3*time.Second),
		DemoDelay:              s.getDuration("DEMO_DELAY", 1500*time.Millisecond),
		AnalysisTimeout:        s.getDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		AnalysisMaxRetries:     s.getInt("ANALYSIS_MAX_RETRIES", 0),
		AnalysisRetryBaseDelay: s.getDuration("ANALYSIS_RETRY_BASE_DELAY", 300*time.Millisecond),
		OpenAIAPIKey:           s.get("OPENAI_API_KEY", ""),
		OpenAIBaseURL:          s.get("OPENAI_BASE_URL", ""),
		LLMModel:               s.get("LLM_MODEL", "gpt-4o-mini"),
		MaxUploadBytes:         int64(s.getInt("MAX_UPLOAD_BYTES", 10<<20)),

		AnalyzeRatePerMinute: s.getFloat("RATE_LIMIT_ANALYZE_PER_MIN", 30),
		AnalyzeRateBurst:     s.getInt("RATE_LIMIT_ANALYZE_BURST", 5),

		JWTSecret:   s.get("JWT_SECRET", ""),
		SQSQueueURL: s.get("SQS_QUEUE_URL", ""),

		LogLevel:  strings.ToLower(s.get("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(s.get("LOG_FORMAT", "json")),
	}
}

func (s source) get(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val, ok := s.file[key]; ok && val != "" {
		return val
	}
	return def
}

func (s source) getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		// bare integers are milliseconds
		ms, intErr := strconv.Atoi(raw)
		if intErr != nil {
			telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "error": err})
			return def
		}
		return time.Duration(ms) * time.Millisecond
	}
	return val
}

func (s source) getInt(key string, def int) int {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "error": err})
		return def
	}
	return val
}

func (s source) getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "error": err})
		return def
	}
	return val
}

func (s source) getBool(key string, def bool) bool {
	raw := strings.TrimSpace(s.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "error": err})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai", "llm":
		return "openai"
	case "demo", "mock":
		return "demo"
	default:
		return "remote"
	}
}
