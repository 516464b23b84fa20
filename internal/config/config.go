package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bix-dev/bixdash/internal/auth"
	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/kv"
)

// DefaultPath is where commands look for the config file.
const DefaultPath = "bixdash.yaml"

// Config represents the top-level bixdash.yaml configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Activity ActivityConfig `yaml:"activity"`
	Server   ServerConfig   `yaml:"server"`
}

// SourceConfig locates transactions.json.
type SourceConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// StorageConfig selects the cache medium.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // leveldb, memory or mongo
	Path     string `yaml:"path,omitempty"`
	MongoURI string `yaml:"mongo_uri,omitempty"`
	MongoDB  string `yaml:"mongo_db,omitempty"`
	Required bool   `yaml:"required"`
}

// CacheConfig controls background maintenance.
type CacheConfig struct {
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

// AuthConfig holds the accepted credential pair.
type AuthConfig struct {
	Email      string   `yaml:"email"`
	Password   string   `yaml:"password"`
	LoginDelay Duration `yaml:"login_delay"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ActivityConfig locates the activity trail. An empty Dir disables it.
type ActivityConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig configures `bixdash serve`.
type ServerConfig struct {
	File string `yaml:"file"`
	Addr string `yaml:"addr"`
}

// Duration is a time.Duration written as text, e.g. "30m".
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", node.Value, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads a bixdash.yaml file from disk. Keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case kv.BackendLevelDB, kv.BackendMemory, kv.BackendMongo:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == kv.BackendLevelDB && c.Storage.Path == "" {
		return errors.New("storage.path is required for leveldb")
	}
	if c.Storage.Backend == kv.BackendMongo && c.Storage.MongoURI == "" {
		return errors.New("storage.mongo_uri is required for mongo")
	}
	if c.Source.URL == "" {
		return errors.New("source.url is required")
	}
	if c.Source.Timeout < 0 || c.Auth.LoginDelay < 0 {
		return errors.New("durations must not be negative")
	}
	if c.Cache.CleanupInterval <= 0 {
		return errors.New("cache.cleanup_interval must be positive")
	}
	return nil
}

// StorageOptions converts the storage section for kv.Open.
func (c *Config) StorageOptions() kv.Options {
	return kv.Options{
		Backend:  c.Storage.Backend,
		Path:     c.Storage.Path,
		MongoURI: c.Storage.MongoURI,
		MongoDB:  c.Storage.MongoDB,
		Required: c.Storage.Required,
	}
}

// Credentials returns the configured credential pair.
func (c *Config) Credentials() auth.Credentials {
	return auth.Credentials{Email: c.Auth.Email, Password: c.Auth.Password}
}

// Default returns a Config pointing at a local `bixdash serve` and
// storing its cache under .bixdash/.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:     "http://localhost:8080",
			Timeout: Duration(10 * time.Second),
		},
		Storage: StorageConfig{
			Backend: kv.BackendLevelDB,
			Path:    ".bixdash/cache",
			MongoDB: "bixdash",
		},
		Cache: CacheConfig{
			CleanupInterval: Duration(cache.DefaultCleanupInterval),
		},
		Auth: AuthConfig{
			Email:      auth.DefaultEmail,
			Password:   auth.DefaultPassword,
			LoginDelay: Duration(auth.DefaultLoginDelay),
		},
		Log: LogConfig{
			Level: "info",
		},
		Activity: ActivityConfig{
			Dir: ".bixdash",
		},
		Server: ServerConfig{
			File: "transactions.json",
			Addr: ":8080",
		},
	}
}
