package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxRetries  int
	Port        int
	CORSOrigin  string

	Dataset      DatasetConfig
	Directions   DirectionsConfig
	Participants ParticipantsConfig
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

func WithCORSOrigin(origin string) Option {
	return func(c *Config) {
		c.CORSOrigin = origin
	}
}

func WithDataset(d DatasetConfig) Option {
	return func(c *Config) {
		c.Dataset = d
	}
}

func WithDirections(d DirectionsConfig) Option {
	return func(c *Config) {
		c.Directions = d
	}
}

func WithParticipants(p ParticipantsConfig) Option {
	return func(c *Config) {
		c.Participants = p
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:  "production",
		LogLevel:     zerolog.InfoLevel,
		HTTPTimeout:  10 * time.Second,
		MaxRetries:   3,
		Port:         defaultPort,
		CORSOrigin:   "*",
		Dataset:      defaultDatasetConfig(),
		Directions:   defaultDirectionsConfig(),
		Participants: defaultParticipantsConfig(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// LoadFromEnv loads configuration from a .env file, when present, and the
// process environment. Variables already set in the environment win.
func LoadFromEnv() *Config {
	_ = godotenv.Load()

	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithPort(getEnvInt("PORT", defaultPort)),
		WithCORSOrigin(getEnvOrDefault("CORS_ORIGIN", "*")),
		WithDataset(datasetConfigFromEnv()),
		WithDirections(directionsConfigFromEnv()),
		WithParticipants(participantsConfigFromEnv()),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
