package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for fragment and export blobs.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// OpenAIConfig holds settings for the transcription and summarization engines.
type OpenAIConfig struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	SummaryModel       string
	MaxRetries         int
	TimeoutSec         int
}

// RecordingConfig holds the pipeline's admission and plan limits.
type RecordingConfig struct {
	// MaxFragmentBytes is the per-upload payload ceiling.
	MaxFragmentBytes int64
	// FreeMaxMinutes / PremiumMaxMinutes are the recording ceilings per tier.
	FreeMaxMinutes    int
	PremiumMaxMinutes int
	// BarrierMaxAttempts bounds the wait for trailing fragment uploads at end
	// of recording. See ProcessingCoordinator.
	BarrierMaxAttempts int
}

// ExportConfig points at the external document render service.
type ExportConfig struct {
	RenderURL    string
	TimeoutSec   int
	URLExpirySec int
}

// BillingConfig points at the external billing collaborator. An empty URL
// downgrades usage reporting to log output.
type BillingConfig struct {
	UsageURL   string
	TimeoutSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	OpenAI    OpenAIConfig
	Recording RecordingConfig
	Export    ExportConfig
	Billing   BillingConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port: getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			BaseURL:            getEnv("OPENAI_BASE_URL", ""),
			TranscriptionModel: getEnv("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
			SummaryModel:       getEnv("OPENAI_SUMMARY_MODEL", "gpt-4o-mini"),
			MaxRetries:         getEnvInt("OPENAI_MAX_RETRIES", 2),
			TimeoutSec:         getEnvInt("OPENAI_TIMEOUT_SEC", 120),
		},
		Recording: RecordingConfig{
			MaxFragmentBytes:   int64(getEnvInt("MAX_FRAGMENT_BYTES", 25*1024*1024)),
			FreeMaxMinutes:     getEnvInt("FREE_MAX_MINUTES", 30),
			PremiumMaxMinutes:  getEnvInt("PREMIUM_MAX_MINUTES", 120),
			BarrierMaxAttempts: getEnvInt("END_BARRIER_MAX_ATTEMPTS", 6),
		},
		Export: ExportConfig{
			RenderURL:    getEnv("EXPORT_RENDER_URL", ""),
			TimeoutSec:   getEnvInt("EXPORT_TIMEOUT_SEC", 60),
			URLExpirySec: getEnvInt("EXPORT_URL_EXPIRY_SEC", 86400),
		},
		Billing: BillingConfig{
			UsageURL:   getEnv("BILLING_USAGE_URL", ""),
			TimeoutSec: getEnvInt("BILLING_TIMEOUT_SEC", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
