package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	S3PathStyle     bool
	SSEKMSKeyID     string

	LLMProvider      string
	LLMModel         string
	LLMTemperature   float32
	LLMTimeout       time.Duration
	LLMBaseURL       string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	OpenRouterAPIKey string
	PromptDir        string

	DatabaseURL string

	RecordSinks            []string
	RecordFailurePolicy    string
	SheetsCredentialsJSON  string
	SheetsCredentialsFile  string
	SheetsSpreadsheetTitle string
	SheetsSpreadsheetID    string

	SessionTTL          time.Duration
	MaxUploadBytes      int64
	CompletionRateLimit float64
	CompletionBurst     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	provider := normalizeProvider(getEnv("LLM_PROVIDER", "openai"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3PathStyle:     getEnvBool("S3_FORCE_PATH_STYLE", false),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		LLMProvider:      provider,
		LLMModel:         getEnv("LLM_MODEL", defaultModel(provider)),
		LLMTemperature:   float32(getEnvFloat("LLM_TEMPERATURE", 0.7)),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		LLMBaseURL:       getEnv("LLM_BASE_URL", ""),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		PromptDir:        getEnv("PROMPT_DIR", ""),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RecordSinks:            splitAndTrim(strings.ToLower(getEnv("RECORD_SINKS", "memory"))),
		RecordFailurePolicy:    strings.ToLower(getEnv("RECORD_FAILURE_POLICY", "warn")),
		SheetsCredentialsJSON:  os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"),
		SheetsCredentialsFile:  os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE"),
		SheetsSpreadsheetTitle: getEnv("GOOGLE_SHEETS_TITLE", "Banco de Curriculos"),
		SheetsSpreadsheetID:    getEnv("GOOGLE_SHEETS_ID", ""),

		SessionTTL:          getEnvDuration("SESSION_TTL", 2*time.Hour),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		CompletionRateLimit: getEnvFloat("COMPLETION_RATE_PER_SECOND", 0.2),
		CompletionBurst:     getEnvInt("COMPLETION_BURST", 5),
	}
}

// Validate reports configuration problems that must stop the process at startup.
func (c Config) Validate() error {
	var errs []error
	if c.APIKey() == "" {
		errs = append(errs, fmt.Errorf("%s is required for LLM_PROVIDER=%s", apiKeyEnv(c.LLMProvider), c.LLMProvider))
	}
	for _, sink := range c.RecordSinks {
		switch sink {
		case "memory":
		case "sql":
			if strings.TrimSpace(c.DatabaseURL) == "" {
				errs = append(errs, errors.New("DATABASE_URL is required for RECORD_SINKS=sql"))
			}
		case "sheets":
			if strings.TrimSpace(c.SheetsCredentialsJSON) == "" && strings.TrimSpace(c.SheetsCredentialsFile) == "" {
				errs = append(errs, errors.New("GOOGLE_SHEETS_CREDENTIALS_JSON or GOOGLE_SHEETS_CREDENTIALS_FILE is required for RECORD_SINKS=sheets"))
			}
			if strings.TrimSpace(c.SheetsSpreadsheetTitle) == "" && strings.TrimSpace(c.SheetsSpreadsheetID) == "" {
				errs = append(errs, errors.New("GOOGLE_SHEETS_TITLE or GOOGLE_SHEETS_ID is required for RECORD_SINKS=sheets"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown record sink %q", sink))
		}
	}
	if len(c.RecordSinks) == 0 {
		errs = append(errs, errors.New("RECORD_SINKS must name at least one sink"))
	}
	switch c.RecordFailurePolicy {
	case "warn", "fail":
	default:
		errs = append(errs, fmt.Errorf("RECORD_FAILURE_POLICY must be warn or fail, got %q", c.RecordFailurePolicy))
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("S3_BUCKET is required for OBJECT_STORE=s3"))
	}
	return errors.Join(errs...)
}

// APIKey returns the secret for the configured completion provider.
func (c Config) APIKey() string {
	switch c.LLMProvider {
	case "gemini":
		return strings.TrimSpace(c.GeminiAPIKey)
	case "openrouter":
		return strings.TrimSpace(c.OpenRouterAPIKey)
	default:
		return strings.TrimSpace(c.OpenAIAPIKey)
	}
}

// SheetsCredentials returns the service-account JSON, reading the file variant if needed.
func (c Config) SheetsCredentials() ([]byte, error) {
	if raw := strings.TrimSpace(c.SheetsCredentialsJSON); raw != "" {
		return []byte(raw), nil
	}
	data, err := os.ReadFile(c.SheetsCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	return data, nil
}

func apiKeyEnv(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "openrouter":
		return "openai/gpt-4o-mini"
	default:
		return "gpt-4o"
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool %q, using %v", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		log.Printf("config %s invalid float %q, using %v", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
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

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "openrouter":
		return "openrouter"
	default:
		return "openai"
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
