package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Scoring  ScoringConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	LLM      LLMConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

// ProviderConfig configures the external threat-news search API.
type ProviderConfig struct {
	URL           string
	APIKey        string
	TimeoutSec    int
	MaxResults    int
	FetchDelayMS  int
}

type ScoringConfig struct {
	SeverityFilter        int
	ArticlesPerTopic      int
	HighSeverityThreshold float64
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type SQLiteConfig struct {
	Path string
}

type LLMConfig struct {
	Enabled     bool
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cyberpulse")

	viper.SetEnvPrefix("CYBERPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(cfg *Config) error {
	if cfg.Scoring.SeverityFilter < 1 || cfg.Scoring.SeverityFilter > 10 {
		return fmt.Errorf("scoring.severityFilter must be in [1,10], got %d", cfg.Scoring.SeverityFilter)
	}
	if cfg.Scoring.ArticlesPerTopic < 5 || cfg.Scoring.ArticlesPerTopic > 100 {
		return fmt.Errorf("scoring.articlesPerTopic must be in [5,100], got %d", cfg.Scoring.ArticlesPerTopic)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("provider.url", "https://api.cyberpulse.local/api/search")
	viper.SetDefault("provider.timeoutSec", 30)
	viper.SetDefault("provider.maxResults", 100)
	viper.SetDefault("provider.fetchDelayMS", 1000)

	viper.SetDefault("scoring.severityFilter", 3)
	viper.SetDefault("scoring.articlesPerTopic", 15)
	viper.SetDefault("scoring.highSeverityThreshold", 7)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 900)

	viper.SetDefault("sqlite.path", "./data/cyberpulse.db")

	viper.SetDefault("llm.enabled", false)
	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.maxTokens", 512)
	viper.SetDefault("llm.timeoutSec", 60)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
