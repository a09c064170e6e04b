package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		ExposeErrors   bool          `yaml:"expose_errors"`
	} `yaml:"server"`
	Model struct {
		Path          string `yaml:"path"`
		MetadataPath  string `yaml:"metadata_path"`
		LibraryPath   string `yaml:"library_path"`
		DownloadDir   string `yaml:"download_dir"`
		S3Region      string `yaml:"s3_region"`
		MaxUploadSize int64  `yaml:"max_upload_size"`
	} `yaml:"model"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Seed   bool   `yaml:"seed"`
	} `yaml:"database"`
	Cache struct {
		Backend string        `yaml:"backend"`
		Size    int           `yaml:"size"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Web struct {
		Root string `yaml:"root"`
	} `yaml:"web"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Port = 8000
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.ExposeErrors = true

	c.Model.Path = "models/electronics_model.onnx"
	c.Model.MetadataPath = "models/electronics_metadata.json"
	c.Model.DownloadDir = os.TempDir()
	c.Model.S3Region = "us-west-2"
	c.Model.MaxUploadSize = 10 << 20

	c.Database.Driver = "sqlite"
	c.Database.DSN = "marketplace.db"

	c.Cache.Backend = "memory"
	c.Cache.Size = 256
	c.Cache.TTL = time.Hour

	c.Web.Root = "."

	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.MaxSizeMB = 50
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	return &c
}

// Load reads .env (if any), the YAML file at path (if it exists) on top of
// the defaults, and finally applies environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // ok if missing

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Model.Path, "MODEL_PATH")
	setString(&c.Model.MetadataPath, "MODEL_METADATA")
	setString(&c.Model.LibraryPath, "ORT_LIBRARY")
	setString(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setString(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required for the redis backend")
	}
	if c.Model.Path == "" || c.Model.MetadataPath == "" {
		return errors.New("model.path and model.metadata_path are required")
	}
	if c.Model.MaxUploadSize <= 0 {
		return fmt.Errorf("model.max_upload_size must be positive, got %d", c.Model.MaxUploadSize)
	}
	return nil
}
