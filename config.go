package imecore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/imecore/blobstore"
	"github.com/hupe1980/imecore/blobstore/minio"
	"github.com/hupe1980/imecore/blobstore/s3"
	"github.com/hupe1980/imecore/resource"
)

// Config is the file form of the Open options.
//
//	source:
//	  kind: s3
//	  bucket: ime-data
//	  prefix: releases/
//	  name: imecore.data
//	cache_dir: /var/cache/imecore
//	connector_cache_size: 4096
//	log:
//	  level: info
//	  format: json
//	resources:
//	  io_limit_bytes_per_sec: 67108864
type Config struct {
	Source             SourceConfig   `yaml:"source"`
	Magic              string         `yaml:"magic"`
	VerifyChecksums    *bool          `yaml:"verify_checksums"`
	CacheDir           string         `yaml:"cache_dir"`
	ConnectorCacheSize int            `yaml:"connector_cache_size" validate:"gte=0,lte=1048576"`
	Log                LogConfig      `yaml:"log"`
	Resources          ResourceConfig `yaml:"resources"`
}

// SourceConfig selects the data set.
type SourceConfig struct {
	Kind string `yaml:"kind" validate:"required,oneof=local s3 minio"`

	// Path is the data file for kind local.
	Path string `yaml:"path" validate:"required_if=Kind local"`

	// Bucket, Prefix and Name locate the blob for kinds s3 and minio.
	Bucket string `yaml:"bucket" validate:"required_unless=Kind local"`
	Prefix string `yaml:"prefix"`
	Name   string `yaml:"name" validate:"required_unless=Kind local"`

	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint" validate:"required_if=Kind minio"`
	UsePathStyle bool   `yaml:"use_path_style"`
	Secure       bool   `yaml:"secure"`

	// AccessKeyEnv and SecretKeyEnv name the environment variables holding
	// MinIO credentials.
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json none"`
}

// ResourceConfig mirrors resource.Config.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes" validate:"gte=0"`
	MaxLoadWorkers     int64 `yaml:"max_load_workers" validate:"gte=0,lte=64"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec" validate:"gte=0"`
	IOBurstBytes       int   `yaml:"io_burst_bytes" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imecore: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("imecore: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("imecore: config cannot be nil")
	}
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Report the first failure.
	e := validationErrs[0]
	field := e.Namespace()
	switch e.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Errorf("imecore: config %s: field is required", field)
	case "oneof":
		return fmt.Errorf("imecore: config %s: must be one of [%s], got %q", field, e.Param(), e.Value())
	case "gte":
		return fmt.Errorf("imecore: config %s: must be at least %s", field, e.Param())
	case "lte":
		return fmt.Errorf("imecore: config %s: must not exceed %s", field, e.Param())
	default:
		return fmt.Errorf("imecore: config %s: validation failed (%s)", field, e.Tag())
	}
}

// Logger returns the logger described by the log section.
func (c *Config) Logger() *Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	switch c.Log.Format {
	case "json":
		return NewJSONLogger(level)
	case "none":
		return NoopLogger()
	default:
		return NewTextLogger(level)
	}
}

// Options converts the configuration into Open options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithLogger(c.Logger()),
		WithMagic(c.Magic),
	}
	if c.VerifyChecksums != nil {
		opts = append(opts, WithVerifyChecksums(*c.VerifyChecksums))
	}
	if c.ConnectorCacheSize > 0 {
		opts = append(opts, WithConnectorCacheSize(c.ConnectorCacheSize))
	}
	if c.CacheDir != "" && c.Source.Kind != "local" {
		opts = append(opts, WithCacheDir(c.CacheDir))
	}
	if c.Resources != (ResourceConfig{}) {
		opts = append(opts, WithResourceController(resource.NewController(resource.Config{
			MemoryLimitBytes:   c.Resources.MemoryLimitBytes,
			MaxLoadWorkers:     c.Resources.MaxLoadWorkers,
			IOLimitBytesPerSec: c.Resources.IOLimitBytesPerSec,
			IOBurstBytes:       c.Resources.IOBurstBytes,
		})))
	}
	return opts
}

// Store constructs the blob store holding the data set. For kind local it is
// the directory containing Path.
func (c *Config) Store(ctx context.Context) (blobstore.BlobStore, error) {
	sc := c.Source
	switch sc.Kind {
	case "local":
		return blobstore.NewLocalStore(filepath.Dir(sc.Path)), nil
	case "s3":
		st, err := s3.New(ctx, sc.Bucket, func(o *s3.Options) {
			o.Prefix = sc.Prefix
			o.Region = sc.Region
			o.Endpoint = sc.Endpoint
			o.UsePathStyle = sc.UsePathStyle
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case "minio":
		st, err := minio.Dial(sc.Endpoint, sc.Bucket, func(o *minio.Options) {
			o.AccessKey = os.Getenv(sc.AccessKeyEnv)
			o.SecretKey = os.Getenv(sc.SecretKeyEnv)
			o.Region = sc.Region
			o.Prefix = sc.Prefix
			o.Secure = sc.Secure
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSource, sc.Kind)
	}
}

// BlobName returns the name of the data set within Store.
func (c *Config) BlobName() string {
	if c.Source.Kind == "local" {
		return filepath.Base(c.Source.Path)
	}
	return c.Source.Name
}

// OpenSource constructs the Source the configuration names.
func (c *Config) OpenSource(ctx context.Context) (Source, error) {
	if c.Source.Kind == "local" {
		return Local(c.Source.Path), nil
	}
	store, err := c.Store(ctx)
	if err != nil {
		return nil, err
	}
	return Remote(store, c.Source.Name), nil
}

// OpenConfig opens the engine described by cfg.
func OpenConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := cfg.OpenSource(ctx)
	if err != nil {
		return nil, err
	}
	return Open(ctx, src, cfg.Options()...)
}
