// Package config is the application's root configuration, loaded from
// config.yaml and CAMPUSGRAPH_* environment variables via viper.
package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Neo4j     Neo4jConfig     `mapstructure:"neo4j"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// ColorConfig defines the color settings for different log levels.
// These are used for console output to make logs more readable.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" json:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" json:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" json:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" json:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" json:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" json:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" json:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" json:"level" yaml:"level"`
	Format      string      `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" json:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" json:"colors" yaml:"colors"`
}

// Neo4jConfig holds settings for the graph database connection.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// RecommendConfig holds the tunables for the recommendation engine.
type RecommendConfig struct {
	// SuggestionLimit is the default number of friend suggestions
	// returned when the caller does not supply a limit.
	SuggestionLimit int `mapstructure:"suggestion_limit"`
	// MaxDepth bounds network expansion traversal depth.
	MaxDepth int `mapstructure:"max_depth"`
	// NetworkCap bounds the number of person entries a network
	// expansion returns after deduplication.
	NetworkCap int `mapstructure:"network_cap"`
}

// SetDefaults registers default values so the app can run with a
// minimal config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "campusgraph")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("neo4j.uri", "neo4j://127.0.0.1:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("recommend.suggestion_limit", 10)
	v.SetDefault("recommend.max_depth", 5)
	v.SetDefault("recommend.network_cap", 50)
}

// Validate checks the configuration for values the application cannot
// run with.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri must be set")
	}
	if c.Neo4j.Database == "" {
		return fmt.Errorf("neo4j.database must be set")
	}
	if c.Recommend.SuggestionLimit <= 0 {
		return fmt.Errorf("recommend.suggestion_limit must be positive, got %d", c.Recommend.SuggestionLimit)
	}
	if c.Recommend.MaxDepth <= 0 {
		return fmt.Errorf("recommend.max_depth must be positive, got %d", c.Recommend.MaxDepth)
	}
	if c.Recommend.NetworkCap <= 0 {
		return fmt.Errorf("recommend.network_cap must be positive, got %d", c.Recommend.NetworkCap)
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Set stores an already-built configuration. Used by the root command
// after validation and by tests.
func Set(cfg *Config) {
	instance = cfg
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
