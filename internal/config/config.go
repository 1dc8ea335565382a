package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Storage StorageConfig
	OCR     OCRConfig
	Vision  VisionConfig
	Merge   MergeConfig
	Queue   QueueConfig
	CORS    CORSConfig
	Auth    AuthConfig
	Output  OutputConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds database connection settings. Driver is "pgx" for Postgres
// (server mode) or "sqlite" for local single-binary runs.
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the connection string for the configured driver.
func (d *DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings for uploaded PDFs and artifacts.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// StorageConfig selects the object storage backend. Driver is "s3" (server
// deployments) or "local" for filesystem storage rooted at LocalDir.
type StorageConfig struct {
	Driver   string `mapstructure:"driver"`
	LocalDir string `mapstructure:"local_dir"`
}

// OCRConfig holds settings for the OCR text pass.
type OCRConfig struct {
	Tesseract string `mapstructure:"tesseract"`
	Pdftoppm  string `mapstructure:"pdftoppm"`
	Language  string `mapstructure:"language"`
	DPI       int    `mapstructure:"dpi"`
	PSM       int    `mapstructure:"psm"`
	PageLimit int    `mapstructure:"page_limit"`
}

// VisionConfig holds settings for the vision-LLM pass.
type VisionConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	APIDelaySecs int    `mapstructure:"api_delay_secs"`
}

// ResolveAPIKey returns the configured API key, falling back to the
// provider's conventional environment variables.
func (v *VisionConfig) ResolveAPIKey() string {
	if v.APIKey != "" {
		return v.APIKey
	}
	switch v.Provider {
	case "mistral":
		return os.Getenv("MISTRAL_API_KEY")
	default:
		if key := os.Getenv("DASHSCOPE_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("QWEN_API_KEY")
	}
}

// MergeConfig holds merge and repair settings.
type MergeConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds API auth settings. An empty secret disables auth.
type AuthConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Expiry time.Duration `mapstructure:"expiry"`
}

// OutputConfig holds local artifact output settings.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from environment variables with the BRFIQ_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BRFIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.driver", "pgx")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "brfiq")
	v.SetDefault("db.password", "brfiq_secret")
	v.SetDefault("db.name", "brfiq_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "brfiq.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "eu-north-1")
	v.SetDefault("s3.bucket", "brfiq-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Storage defaults
	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.local_dir", "storage")

	// OCR defaults
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.language", "swe")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("ocr.page_limit", 0)

	// Vision defaults
	v.SetDefault("vision.provider", "qwen")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.default_model", "")
	v.SetDefault("vision.max_retries", 3)
	v.SetDefault("vision.timeout_secs", 120)
	v.SetDefault("vision.api_delay_secs", 5)

	// Merge defaults
	v.SetDefault("merge.confidence_threshold", 50)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 2)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Auth defaults
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "brfiq")
	v.SetDefault("auth.expiry", "168h")

	// Output defaults
	v.SetDefault("output.dir", "results")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "BRFIQ_SERVER_PORT",
		"server.read_timeout":        "BRFIQ_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "BRFIQ_SERVER_WRITE_TIMEOUT",
		"server.environment":         "BRFIQ_SERVER_ENVIRONMENT",
		"db.driver":                  "BRFIQ_DB_DRIVER",
		"db.host":                    "BRFIQ_DB_HOST",
		"db.port":                    "BRFIQ_DB_PORT",
		"db.user":                    "BRFIQ_DB_USER",
		"db.password":                "BRFIQ_DB_PASSWORD",
		"db.name":                    "BRFIQ_DB_NAME",
		"db.sslmode":                 "BRFIQ_DB_SSLMODE",
		"db.path":                    "BRFIQ_DB_PATH",
		"db.max_open":                "BRFIQ_DB_MAX_OPEN",
		"db.max_idle":                "BRFIQ_DB_MAX_IDLE",
		"s3.region":                  "BRFIQ_S3_REGION",
		"s3.bucket":                  "BRFIQ_S3_BUCKET",
		"s3.endpoint":                "BRFIQ_S3_ENDPOINT",
		"s3.access_key":              "BRFIQ_S3_ACCESS_KEY",
		"s3.secret_key":              "BRFIQ_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "BRFIQ_S3_MAX_FILE_SIZE_MB",
		"storage.driver":             "BRFIQ_STORAGE_DRIVER",
		"storage.local_dir":          "BRFIQ_STORAGE_LOCAL_DIR",
		"ocr.tesseract":              "BRFIQ_OCR_TESSERACT",
		"ocr.pdftoppm":               "BRFIQ_OCR_PDFTOPPM",
		"ocr.language":               "BRFIQ_OCR_LANGUAGE",
		"ocr.dpi":                    "BRFIQ_OCR_DPI",
		"ocr.psm":                    "BRFIQ_OCR_PSM",
		"ocr.page_limit":             "BRFIQ_OCR_PAGE_LIMIT",
		"vision.provider":            "BRFIQ_VISION_PROVIDER",
		"vision.api_key":             "BRFIQ_VISION_API_KEY",
		"vision.default_model":       "BRFIQ_VISION_DEFAULT_MODEL",
		"vision.max_retries":         "BRFIQ_VISION_MAX_RETRIES",
		"vision.timeout_secs":        "BRFIQ_VISION_TIMEOUT_SECS",
		"vision.api_delay_secs":      "BRFIQ_VISION_API_DELAY_SECS",
		"merge.confidence_threshold": "BRFIQ_MERGE_CONFIDENCE_THRESHOLD",
		"queue.poll_interval_secs":   "BRFIQ_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":          "BRFIQ_QUEUE_MAX_RETRIES",
		"queue.concurrency":          "BRFIQ_QUEUE_CONCURRENCY",
		"cors.allowed_origins":       "BRFIQ_CORS_ALLOWED_ORIGINS",
		"auth.secret":                "BRFIQ_AUTH_SECRET",
		"auth.issuer":                "BRFIQ_AUTH_ISSUER",
		"auth.expiry":                "BRFIQ_AUTH_EXPIRY",
		"output.dir":                 "BRFIQ_OUTPUT_DIR",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated origins arrive as a single string through env vars.
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	return &cfg, nil
}
