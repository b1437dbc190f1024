package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Import   ImportConfig   `yaml:"import"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	AutoMigrate    bool   `yaml:"auto_migrate"`
	MaxConnections int    `yaml:"max_connections"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CountTTL time.Duration `yaml:"count_ttl"`
}

type ImportConfig struct {
	BatchSize        int           `yaml:"batch_size"`
	HeaderRows       int           `yaml:"header_rows"`
	MaxFileSize      int64         `yaml:"max_file_size"`
	MaxWorkbookSize  int64         `yaml:"max_workbook_size"`
	Workers          int           `yaml:"workers"`
	QueueSize        int           `yaml:"queue_size"`
	DrainTimeout     time.Duration `yaml:"drain_timeout"`
	UploadDir        string        `yaml:"upload_dir"`
	ChunkDir         string        `yaml:"chunk_dir"`
	ReconcileOnStart *bool         `yaml:"reconcile_on_start"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Users     []UserConfig  `yaml:"users"`
}

// UserConfig is a login account. PasswordHash is a bcrypt hash.
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file named by CONFIG_PATH (config.yaml by default),
// applies environment overrides and fills defaults. A missing file is not an
// error.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	c.Server.Port = parseIntEnv("PORT", c.Server.Port)
	c.Import.Workers = parseIntEnv("IMPORT_WORKERS", c.Import.Workers)
	c.Import.BatchSize = parseIntEnv("IMPORT_BATCH_SIZE", c.Import.BatchSize)
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Redis.CountTTL <= 0 {
		c.Redis.CountTTL = 5 * time.Minute
	}
	if c.Import.BatchSize <= 0 {
		c.Import.BatchSize = 10000
	}
	if c.Import.HeaderRows <= 0 {
		c.Import.HeaderRows = 1
	}
	if c.Import.MaxFileSize <= 0 {
		c.Import.MaxFileSize = 1 << 30
	}
	if c.Import.MaxWorkbookSize <= 0 {
		c.Import.MaxWorkbookSize = 256 << 20
	}
	if c.Import.Workers <= 0 {
		c.Import.Workers = runtime.NumCPU()
	}
	if c.Import.QueueSize <= 0 {
		c.Import.QueueSize = 500
	}
	if c.Import.DrainTimeout <= 0 {
		c.Import.DrainTimeout = 30 * time.Second
	}
	if c.Import.UploadDir == "" {
		c.Import.UploadDir = "tmp/uploads"
	}
	if c.Import.ChunkDir == "" {
		c.Import.ChunkDir = "tmp/chunk_uploads"
	}
	if c.Import.ReconcileOnStart == nil {
		enabled := true
		c.Import.ReconcileOnStart = &enabled
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func parseIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
