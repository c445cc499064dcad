package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       App       `mapstructure:"app"`
	Search    Search    `mapstructure:"search"`
	AI        AI        `mapstructure:"ai"`
	Knowledge Knowledge `mapstructure:"knowledge"`
	Fetch     Fetch     `mapstructure:"fetch"`
	Email     Email     `mapstructure:"email"`
	Digest    Digest    `mapstructure:"digest"`
}

// App holds general application configuration.
type App struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
}

// Search holds search provider configuration.
type Search struct {
	SerperAPIKey string `mapstructure:"serper_api_key"`
	MaxResults   int    `mapstructure:"max_results"`
	Timeout      string `mapstructure:"timeout"`
}

// AI holds language model configuration.
type AI struct {
	Gemini Gemini `mapstructure:"gemini"`
}

// Gemini holds Google Gemini configuration.
type Gemini struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Knowledge holds knowledge-base lookup configuration.
type Knowledge struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// Fetch holds outbound page-fetch configuration.
type Fetch struct {
	AllowOutbound bool   `mapstructure:"allow_outbound"`
	MaxChars      int    `mapstructure:"max_chars"`
	Timeout       string `mapstructure:"timeout"`
}

// Email holds digest email configuration.
type Email struct {
	SMTPHost    string `mapstructure:"smtp_host"`
	SMTPPort    int    `mapstructure:"smtp_port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	Recipient   string `mapstructure:"recipient"`
}

// Digest holds weekly digest tuning.
type Digest struct {
	// PreviousWeeks is how many prior digests feed cross-week dedup.
	PreviousWeeks int `mapstructure:"previous_weeks"`
}

// Capabilities captures which external dependencies are configured. Absence
// of a credential is a first-class state, not an error; components branch on
// these flags instead of reading the environment themselves.
type Capabilities struct {
	SearchEnabled        bool
	LanguageModelEnabled bool
	KnowledgeBaseEnabled bool
	OutboundFetchEnabled bool
	EmailEnabled         bool
}

// Capabilities derives the capability set from the loaded configuration.
func (c *Config) Capabilities() Capabilities {
	return Capabilities{
		SearchEnabled:        c.Search.SerperAPIKey != "",
		LanguageModelEnabled: c.AI.Gemini.APIKey != "",
		KnowledgeBaseEnabled: c.Knowledge.Enabled,
		OutboundFetchEnabled: c.Fetch.AllowOutbound,
		EmailEnabled:         c.Email.SMTPHost != "",
	}
}

var globalConfig *Config

// Load loads configuration from an optional config file, the environment,
// and a .env file when present.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".limelight")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix("limelight")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Raw provider env vars win over file settings so a bare environment
	// still works without a config file.
	if key := os.Getenv("SERPER_API_KEY"); key != "" {
		cfg.Search.SerperAPIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.AI.Gemini.APIKey = key
	}
	if os.Getenv("ALLOW_SOURCE_FETCH") == "true" {
		cfg.Fetch.AllowOutbound = true
	}
	if os.Getenv("ALLOW_WIKIDATA_LOOKUP") == "false" {
		cfg.Knowledge.Enabled = false
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return cfg
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.data_dir", ".limelight")
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.timeout", "20s")

	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.max_tokens", 800)
	viper.SetDefault("ai.gemini.temperature", 0.4)

	viper.SetDefault("knowledge.enabled", true)
	viper.SetDefault("knowledge.base_url", "https://www.wikidata.org")

	viper.SetDefault("fetch.allow_outbound", false)
	viper.SetDefault("fetch.max_chars", 12000)
	viper.SetDefault("fetch.timeout", "15s")

	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.from_name", "Limelight")

	viper.SetDefault("digest.previous_weeks", 6)
}
