package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration. It is loaded once at startup and
// passed into component constructors; nothing reads the environment afterwards.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	OpenAIAPIKey string
	OpenAIModel  string

	FirecrawlAPIKey string

	RequestTimeout  time.Duration
	MaxCVUploadSize int64
	MaxJobTextChars int

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string

	TemplateKey  string
	DefaultCVKey string

	SenderName string
	// RecipientIndentTwips overrides the recipient block indent derived from
	// the template's date paragraph. Zero means "derive from template".
	RecipientIndentTwips int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	openAIKey := os.Getenv("OPENAI_API_KEY")
	if env == "production" && openAIKey == "" {
		log.Printf("OPENAI_API_KEY is required in production")
	}

	return Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  env,
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		OpenAIAPIKey:         openAIKey,
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-5-mini"),
		FirecrawlAPIKey:      os.Getenv("FIRECRAWL_API_KEY"),
		RequestTimeout:       getDurationSeconds("REQUEST_TIMEOUT_SECONDS", 30*time.Second),
		MaxCVUploadSize:      getInt64("MAX_CV_UPLOAD_BYTES", 8_000_000),
		MaxJobTextChars:      getInt("MAX_JOB_TEXT_CHARS", 25_000),
		ObjectStoreType:      normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:        getEnv("LOCAL_STORE_DIR", "./assets"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		TemplateKey:          getEnv("TEMPLATE_KEY", "template.docx"),
		DefaultCVKey:         getEnv("DEFAULT_CV_KEY", "default_cv.pdf"),
		SenderName:           getEnv("SENDER_NAME", "Andri Heeb"),
		RecipientIndentTwips: getInt("RECIPIENT_INDENT_TWIPS", 0),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getDurationSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return time.Duration(parsed) * time.Second
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
	default:
		return "local"
	}
}
