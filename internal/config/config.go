package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
)

const (
	ImportModeSync  = "sync"
	ImportModeAsync = "async"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Import   *ImportConfig   `mapstructure:"import"`
	Draw     *DrawConfig     `mapstructure:"draw"`

	v  *viper.Viper
	mu sync.Mutex
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type ImportConfig struct {
	Mode           string `mapstructure:"mode"`
	SyncChunkSize  int    `mapstructure:"sync_chunk_size"`
	AsyncChunkSize int    `mapstructure:"async_chunk_size"`
	ErrorLimit     int    `mapstructure:"error_limit"`
	Workers        int    `mapstructure:"workers"`
	MaxFileSize    int64  `mapstructure:"max_file_size"`
}

func (c ImportConfig) Validate() error {
	return validation.ValidateStruct(
		&c,
		validation.Field(&c.Mode, validation.Required, validation.In(ImportModeSync, ImportModeAsync)),
		validation.Field(&c.SyncChunkSize, validation.Required, validation.Min(1)),
		validation.Field(&c.AsyncChunkSize, validation.Required, validation.Min(1)),
		validation.Field(&c.ErrorLimit, validation.Min(0)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxFileSize, validation.Required, validation.Min(int64(1))),
	)
}

// NeedsRestart reports whether next changes settings that are fixed at
// startup: the chunk queue's worker count and the upload size limit.
func (c ImportConfig) NeedsRestart(next ImportConfig) bool {
	return c.Workers != next.Workers || c.MaxFileSize != next.MaxFileSize
}

type DrawConfig struct {
	// AllowWithoutPrizes enables the legacy behavior: raffles without prize
	// assignments award position previous_winners+1 and have no draw cap.
	AllowWithoutPrizes bool `mapstructure:"allow_without_prizes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db", "sorteos")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("import.mode", ImportModeSync)
	v.SetDefault("import.sync_chunk_size", 500)
	v.SetDefault("import.async_chunk_size", 1000)
	v.SetDefault("import.error_limit", 200)
	v.SetDefault("import.workers", 4)
	v.SetDefault("import.max_file_size", 50<<20)
	v.SetDefault("draw.allow_without_prizes", false)
}

// Load reads the YAML file at path. Environment variables override file values,
// with "." replaced by "_" (IMPORT_MODE, POSTGRES_HOST, ...).
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{v: v}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Import.Validate(); err != nil {
		return nil, fmt.Errorf("invalid import config -> %w", err)
	}

	return conf, nil
}

// WatchImport reloads the import section whenever the config file changes and
// hands every valid new value to fn. Invalid edits are reported through onErr
// and leave the previous settings in place.
func (c *AppConfig) WatchImport(fn func(ImportConfig), onErr func(error)) {
	if c.v == nil {
		return
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		var next ImportConfig
		if err := c.v.UnmarshalKey("import", &next); err != nil {
			onErr(fmt.Errorf("c.v.UnmarshalKey -> %w", err))
			return
		}

		if err := next.Validate(); err != nil {
			onErr(fmt.Errorf("invalid import config in %s -> %w", e.Name, err))
			return
		}

		c.mu.Lock()
		c.Import = &next
		c.mu.Unlock()

		fn(next)
	})
	c.v.WatchConfig()
}
