package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"study-assistant/internal/shared/telemetry"
)

const mib = 1 << 20

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string

	ObjectStoreType   string
	LocalStoreDir     string
	PublicUploadsPath string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	S3PublicBaseURL   string
	SSEKMSKeyID       string
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOBucket       string
	MinIOUseSSL       bool

	RecordStore   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LLMProvider  string
	LLMModel     string
	GeminiAPIKey string
	OpenAIAPIKey string
	LLMTimeout   time.Duration

	UploadMaxBytes      int64
	ScanMaxBytes        int64
	ImageUploadMaxBytes int64

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	ServiceName  string
	OTelEndpoint string
	OTelInsecure bool
}

// Load reads configuration from environment variables with sensible defaults.
// Values from CONFIG_FILE sit between the environment and the defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	l := loader{file: loadConfigFile(os.Getenv("CONFIG_FILE"))}
	env := normalizeEnv(l.get("ENV", "dev"))
	dbURL := l.get("DATABASE_URL", "")

	cfg := Config{
		Port:            l.get("PORT", "8080"),
		Env:             env,
		LogLevel:        l.get("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(l.get("CORS_ALLOW_ORIGINS", "http://localhost:3000")),

		ObjectStoreType:   normalizeStoreType(l.get("OBJECT_STORE", "local")),
		LocalStoreDir:     l.get("LOCAL_STORE_DIR", "./data/uploads"),
		PublicUploadsPath: l.get("PUBLIC_UPLOADS_PATH", "/uploads"),
		AWSRegion:         l.get("AWS_REGION", ""),
		S3Bucket:          l.get("S3_BUCKET", ""),
		S3Prefix:          l.get("S3_PREFIX", "uploads"),
		S3PublicBaseURL:   l.get("S3_PUBLIC_BASE_URL", ""),
		SSEKMSKeyID:       l.get("SSE_KMS_KEY_ID", ""),
		MinIOEndpoint:     l.get("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey:    l.get("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    l.get("MINIO_SECRET_KEY", ""),
		MinIOBucket:       l.get("MINIO_BUCKET", "study-assistant"),
		MinIOUseSSL:       l.getBool("MINIO_USE_SSL", false),

		RecordStore:   normalizeRecordStore(l.get("RECORD_STORE", ""), dbURL),
		DatabaseURL:   dbURL,
		MongoURI:      l.get("MONGODB_URI", ""),
		MongoDatabase: l.get("MONGODB_DATABASE", "study_assistant"),

		RedisAddr:     l.get("REDIS_ADDR", ""),
		RedisPassword: l.get("REDIS_PASSWORD", ""),
		RedisDB:       l.getInt("REDIS_DB", 0),
		CacheTTL:      l.getDuration("CACHE_TTL", 5*time.Minute),

		LLMProvider:  normalizeLLMProvider(l.get("LLM_PROVIDER", "gemini")),
		LLMModel:     l.get("LLM_MODEL", "gemini-1.5-flash"),
		GeminiAPIKey: l.get("GEMINI_API_KEY", ""),
		OpenAIAPIKey: l.get("OPENAI_API_KEY", ""),
		LLMTimeout:   time.Duration(l.getInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,

		UploadMaxBytes:      l.getInt64("UPLOAD_MAX_BYTES", 10*mib),
		ScanMaxBytes:        l.getInt64("SCAN_MAX_BYTES", 10*mib),
		ImageUploadMaxBytes: l.getInt64("IMAGE_UPLOAD_MAX_BYTES", 5*mib),

		JWTSecret:    l.get("JWT_SECRET", ""),
		TokenTTL:     l.getDuration("TOKEN_TTL", 7*24*time.Hour),
		CookieSecure: l.getBool("COOKIE_SECURE", env == "production"),

		GoogleClientID:     l.get("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: l.get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  l.get("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      l.get("UI_REDIRECT_URL", ""),

		ServiceName:  l.get("OTEL_SERVICE_NAME", "study-assistant"),
		OTelEndpoint: l.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelInsecure: l.getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	if env == "production" && cfg.RecordStore == "postgres" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "env": env})
	}
	if env == "production" && cfg.JWTSecret == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "JWT_SECRET", "env": env})
	}

	return cfg
}

type loader struct {
	file map[string]string
}

func (l loader) get(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val, ok := l.file[key]; ok && val != "" {
		return val
	}
	return def
}

func (l loader) getInt(key string, def int) int {
	raw := strings.TrimSpace(l.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "error": err})
		return def
	}
	return val
}

func (l loader) getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(l.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func (l loader) getBool(key string, def bool) bool {
	raw := strings.TrimSpace(l.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func (l loader) getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(l.get(key, ""))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "error": err})
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

func normalizeRecordStore(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "mongo", "mongodb":
		return "mongo"
	case "memory":
		return "memory"
	}
	if strings.TrimSpace(dbURL) != "" {
		return "postgres"
	}
	return "memory"
}

func normalizeLLMProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "openai":
		return "openai"
	case "local":
		return "local"
	default:
		return "none"
	}
}
