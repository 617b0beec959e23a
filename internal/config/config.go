package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Cache      CacheConfig
	Style      StyleConfig
	Aggregator AggregatorConfig
	Engines    EnginesConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	BindAddr     string
	Port         int
	MetricsPort  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	PublicDir    string
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	RedisURL  string
	TTL       time.Duration
	OpTimeout time.Duration
}

// StyleConfig holds the site presentation defaults
type StyleConfig struct {
	Theme       string
	Colorscheme string
}

// AggregatorConfig holds aggregation tuning configuration
type AggregatorConfig struct {
	UpstreamEngines         []string
	RandomDelay             time.Duration
	Debug                   bool
	EngineTimeout           time.Duration
	MaxResultsPerEngine     int
	EnableCircuitBreaker    bool
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
}

// EnginesConfig holds per-engine endpoint configuration
type EnginesConfig struct {
	DuckDuckGoBaseURL string
	SearxNGBaseURL    string
	BraveAPIKey       string
	BraveBaseURL      string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			BindAddr:     getEnv("BIND_ADDR", "127.0.0.1"),
			Port:         getIntEnv("PORT", 8080),
			MetricsPort:  getIntEnv("METRICS_PORT", 9090),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT_MS", 5000) * time.Millisecond,
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT_MS", 30000) * time.Millisecond,
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT_MS", 60000) * time.Millisecond,
			PublicDir:    getEnv("PUBLIC_DIR", ""),
		},
		Cache: CacheConfig{
			RedisURL:  getEnv("REDIS_URL", "redis://127.0.0.1:6379"),
			TTL:       getDurationEnv("CACHE_TTL_SECONDS", 600) * time.Second,
			OpTimeout: getDurationEnv("CACHE_OP_TIMEOUT_MS", 500) * time.Millisecond,
		},
		Style: StyleConfig{
			Theme:       getEnv("THEME", "simple"),
			Colorscheme: getEnv("COLORSCHEME", "catppuccin-mocha"),
		},
		Aggregator: AggregatorConfig{
			UpstreamEngines:         getListEnv("UPSTREAM_ENGINES", "duckduckgo,searxng"),
			RandomDelay:             getDurationEnv("RANDOM_DELAY_SECONDS", 0) * time.Second,
			Debug:                   getBoolEnv("DEBUG", false),
			EngineTimeout:           getDurationEnv("ENGINE_TIMEOUT_MS", 10000) * time.Millisecond,
			MaxResultsPerEngine:     getIntEnv("MAX_RESULTS_PER_ENGINE", 20),
			EnableCircuitBreaker:    getBoolEnv("ENABLE_CIRCUIT_BREAKER", true),
			CircuitBreakerThreshold: getIntEnv("CIRCUIT_BREAKER_THRESHOLD", 5),
			CircuitBreakerTimeout:   getDurationEnv("CIRCUIT_BREAKER_TIMEOUT_SEC", 30) * time.Second,
		},
		Engines: EnginesConfig{
			DuckDuckGoBaseURL: getEnv("DUCKDUCKGO_BASE_URL", "https://html.duckduckgo.com"),
			SearxNGBaseURL:    getEnv("SEARXNG_BASE_URL", "https://searx.be"),
			BraveAPIKey:       getEnv("BRAVE_API_KEY", ""),
			BraveBaseURL:      getEnv("BRAVE_BASE_URL", "https://api.search.brave.com/res/v1"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if len(c.Aggregator.UpstreamEngines) == 0 {
		return fmt.Errorf("UPSTREAM_ENGINES cannot be empty")
	}

	if c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL cannot be empty")
	}

	// Brave needs a subscription token to answer at all
	if c.Engines.BraveAPIKey == "" && c.hasDefaultEngine("brave") {
		log.Println("WARNING: BRAVE_API_KEY not set. The brave engine will fail on every request")
	}

	return nil
}

func (c *Config) hasDefaultEngine(name string) bool {
	for _, engine := range c.Aggregator.UpstreamEngines {
		if engine == name {
			return true
		}
	}
	return false
}

// Helper functions to get environment variables with defaults

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid integer value for %s: %s. Using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getBoolEnv(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid boolean value for %s: %s. Using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid duration value for %s: %s. Using default: %d", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}

	return time.Duration(value)
}

func getListEnv(key, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	var values []string
	for _, item := range strings.Split(valueStr, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			values = append(values, item)
		}
	}
	return values
}
