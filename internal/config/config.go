package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	GitHub        GitHubConfig        `yaml:"github" mapstructure:"github"`
	StackExchange StackExchangeConfig `yaml:"stackexchange" mapstructure:"stackexchange"`
	WebSearch     WebSearchConfig     `yaml:"websearch" mapstructure:"websearch"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	Scoring       ScoringConfig       `yaml:"scoring" mapstructure:"scoring"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the profile store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// GitHubConfig holds GitHub API settings.
type GitHubConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// StackExchangeConfig holds Stack Exchange API settings.
type StackExchangeConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Site    string `yaml:"site" mapstructure:"site"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// WebSearchConfig holds the reader/search API settings used by the web search
// and professional-network collectors.
type WebSearchConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
	ReaderBaseURL string `yaml:"reader_base_url" mapstructure:"reader_base_url"`
}

// SearchConfig bounds one orchestration run.
type SearchConfig struct {
	MaxSources          int `yaml:"max_sources" mapstructure:"max_sources"`
	MaxRecordsPerSource int `yaml:"max_records_per_source" mapstructure:"max_records_per_source"`
	DefaultBudgetSecs   int `yaml:"default_budget_secs" mapstructure:"default_budget_secs"`
	DefaultLimit        int `yaml:"default_limit" mapstructure:"default_limit"`
}

// ScoringConfig configures the scoring engine.
type ScoringConfig struct {
	// WeightsFile optionally overrides the compiled-in weights and synonym
	// map with a YAML file.
	WeightsFile string `yaml:"weights_file" mapstructure:"weights_file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SOURCING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so AutomaticEnv can bind them.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "sourcing.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("github.token", "")
	v.SetDefault("stackexchange.key", "")
	v.SetDefault("websearch.key", "")
	v.SetDefault("scoring.weights_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("stackexchange.base_url", "https://api.stackexchange.com/2.3")
	v.SetDefault("stackexchange.site", "stackoverflow")
	v.SetDefault("websearch.search_base_url", "https://s.jina.ai")
	v.SetDefault("websearch.reader_base_url", "https://r.jina.ai")
	v.SetDefault("search.max_sources", 4)
	v.SetDefault("search.max_records_per_source", 20)
	v.SetDefault("search.default_budget_secs", 60)
	v.SetDefault("search.default_limit", 50)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
