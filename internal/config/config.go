package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
	FileField   string `yaml:"file_field"`
	Greeting    string `yaml:"greeting"`
}

// StorageConfig selects where uploads and converted files are kept.
// Driver is either "disk" (default) or "minio".
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	UploadDir string `yaml:"upload_dir"`
}

// DatabaseConfig holds PostgreSQL database connection settings.
// Conversion records are only kept when Host is set.
type DatabaseConfig struct {
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Name               string `yaml:"name"`
	SSLMode            string `yaml:"sslmode"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
}

// Enabled reports whether a database has been configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ConverterConfig configures the conversion engines.
// Engine is "auto" (pick by format), "libreoffice" or "remote".
type ConverterConfig struct {
	Engine          string        `yaml:"engine"`
	SofficePath     string        `yaml:"soffice_path"`
	ChromePath      string        `yaml:"chrome_path"`
	ChromeNoSandbox bool          `yaml:"chrome_no_sandbox"`
	RemoteURL       string        `yaml:"remote_url"`
	Timeout         time.Duration `yaml:"timeout"`
	Validate        bool          `yaml:"validate"`
}

// CacheConfig configures the optional Redis cache of converted PDFs.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	RedisHost string        `yaml:"redis_host"`
	PDFDB     int           `yaml:"redis_pdf_db"`
	RateDB    int           `yaml:"redis_rate_db"`
	TTL       time.Duration `yaml:"ttl"`
}

// RateLimitConfig configures the optional per-client request limiter.
type RateLimitConfig struct {
	Limit    int           `yaml:"limit"`
	Interval time.Duration `yaml:"interval"`
}

// TelemetryConfig configures OpenTelemetry tracing. Exporter, endpoint and
// sampler come from the standard OTEL_* environment variables.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	Disabled    bool   `yaml:"disabled"`
}

// LoggerConfig holds log output settings.
type LoggerConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Timezone   string `yaml:"timezone"`
}

// AppConfig is the centralized configuration struct for the application.
// Values come from an optional YAML file (CONFIG_PATH) and are overridden by
// environment variables.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Converter ConverterConfig `yaml:"converter"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logger    LoggerConfig    `yaml:"logger"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Defaults returns the configuration used when nothing else is provided.
func Defaults() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:        "5000",
			BodyLimitMB: 512,
			FileField:   "Doc_to_Pdf",
			Greeting:    "Hello Docs",
		},
		Storage: StorageConfig{
			Driver:    "disk",
			UploadDir: "./uploads",
		},
		Database: DatabaseConfig{
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
		},
		Converter: ConverterConfig{
			Engine:      "auto",
			SofficePath: "soffice",
			Timeout:     2 * time.Minute,
			Validate:    true,
		},
		Cache: CacheConfig{
			RedisHost: "127.0.0.1:6379",
			PDFDB:     1,
			RateDB:    0,
			TTL:       24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Interval: time.Minute,
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Timezone:   "UTC",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "docconvert",
		},
	}
}

// Load reads CONFIG_PATH (if set) and then applies environment overrides.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	cfg := Defaults()
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		fileCfg, err := LoadFrom(p)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom reads a YAML configuration file on top of Defaults.
func LoadFrom(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.FileField == "" {
		return fmt.Errorf("upload file field is required")
	}
	if c.Server.BodyLimitMB <= 0 {
		return fmt.Errorf("body limit must be positive, got %d", c.Server.BodyLimitMB)
	}
	switch c.Storage.Driver {
	case "disk":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload dir is required for disk storage")
		}
	case "minio":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Converter.Engine {
	case "auto", "libreoffice":
	case "remote":
		if c.Converter.RemoteURL == "" {
			return fmt.Errorf("remote converter url is required")
		}
	default:
		return fmt.Errorf("unknown converter engine %q", c.Converter.Engine)
	}
	if c.Converter.Timeout < 0 {
		return fmt.Errorf("converter timeout must not be negative")
	}
	if c.RateLimit.Limit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit.Limit > 0 && c.RateLimit.Interval <= 0 {
		return fmt.Errorf("rate limit interval must be positive")
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *AppConfig) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Location returns the timezone used for log timestamps, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Logger.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyEnv(c *AppConfig) {
	c.Server.Host = getEnv("APP_HOST", c.Server.Host)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.BodyLimitMB = getEnvInt("BODY_LIMIT_MB", c.Server.BodyLimitMB)
	c.Server.FileField = getEnv("UPLOAD_FIELD", c.Server.FileField)
	c.Server.Greeting = getEnv("GREETING", c.Server.Greeting)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", c.Database.ConnMaxLifetimeSec)

	c.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", c.MinIO.Endpoint)
	c.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", c.MinIO.AccessKey)
	c.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", c.MinIO.SecretKey)
	c.MinIO.Bucket = getEnv("MINIO_BUCKET", c.MinIO.Bucket)
	c.MinIO.Prefix = getEnv("MINIO_PREFIX", c.MinIO.Prefix)
	c.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", c.MinIO.UseSSL)

	c.Converter.Engine = getEnv("CONVERTER_ENGINE", c.Converter.Engine)
	c.Converter.SofficePath = getEnv("SOFFICE_PATH", c.Converter.SofficePath)
	c.Converter.ChromePath = getEnv("CHROME_BIN", c.Converter.ChromePath)
	c.Converter.ChromeNoSandbox = getEnvBool("CHROME_NO_SANDBOX", c.Converter.ChromeNoSandbox)
	c.Converter.RemoteURL = getEnv("CONVERTER_URL", c.Converter.RemoteURL)
	c.Converter.Timeout = getEnvDuration("CONVERT_TIMEOUT", c.Converter.Timeout)
	c.Converter.Validate = getEnvBool("CONVERT_VALIDATE", c.Converter.Validate)

	c.Cache.Enabled = getEnvBool("CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.RedisHost = getEnv("REDIS_HOST", c.Cache.RedisHost)
	c.Cache.PDFDB = getEnvInt("REDIS_PDF_DB", c.Cache.PDFDB)
	c.Cache.RateDB = getEnvInt("REDIS_RATE_DB", c.Cache.RateDB)
	c.Cache.TTL = getEnvDuration("CACHE_TTL", c.Cache.TTL)

	c.RateLimit.Limit = getEnvInt("RATE_LIMIT", c.RateLimit.Limit)
	c.RateLimit.Interval = getEnvDuration("RATE_LIMIT_INTERVAL", c.RateLimit.Interval)

	c.Logger.File = getEnv("LOG_FILE", c.Logger.File)
	c.Logger.Level = getEnv("LOG_LEVEL", c.Logger.Level)
	c.Logger.Timezone = getEnv("LOG_TIMEZONE", c.Logger.Timezone)

	c.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Telemetry.Disabled = getEnvBool("OTEL_SDK_DISABLED", c.Telemetry.Disabled)
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
