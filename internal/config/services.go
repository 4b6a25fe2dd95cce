package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultPort                 = 5000
	defaultBarsFile             = "bars.xlsx"
	defaultDirectionsBaseURL    = "https://maps.googleapis.com"
	defaultDirectionsCacheSize  = 500
	defaultDirectionsTTLMinutes = 10
	defaultParticipantsTable    = "participants"
	defaultNATSSubject          = "participants.saved"

	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// DatasetConfig says where the bar dataset is read from. An S3 bucket takes
// precedence over the local file.
type DatasetConfig struct {
	File       string
	S3Bucket   string
	S3Key      string
	S3Endpoint string
}

func (d DatasetConfig) UseS3() bool {
	return d.S3Bucket != ""
}

type DirectionsConfig struct {
	APIKey          string
	BaseURL         string
	EnableCache     bool
	CacheSize       int
	CacheTTLMinutes int
}

func (d DirectionsConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLMinutes) * time.Minute
}

type ParticipantsConfig struct {
	Backend        string
	Table          string
	DatabaseURL    string
	EnsureSchema   bool
	DynamoEndpoint string
	NATSURL        string
	NATSSubject    string
}

func defaultDatasetConfig() DatasetConfig {
	return DatasetConfig{
		File:  defaultBarsFile,
		S3Key: defaultBarsFile,
	}
}

func defaultDirectionsConfig() DirectionsConfig {
	return DirectionsConfig{
		BaseURL:         defaultDirectionsBaseURL,
		EnableCache:     true,
		CacheSize:       defaultDirectionsCacheSize,
		CacheTTLMinutes: defaultDirectionsTTLMinutes,
	}
}

func defaultParticipantsConfig() ParticipantsConfig {
	return ParticipantsConfig{
		Backend:      BackendPostgres,
		Table:        defaultParticipantsTable,
		EnsureSchema: true,
		NATSSubject:  defaultNATSSubject,
	}
}

func datasetConfigFromEnv() DatasetConfig {
	return DatasetConfig{
		File:       getEnvOrDefault("BARS_FILE", defaultBarsFile),
		S3Bucket:   os.Getenv("BARS_S3_BUCKET"),
		S3Key:      getEnvOrDefault("BARS_S3_KEY", defaultBarsFile),
		S3Endpoint: os.Getenv("BARS_S3_ENDPOINT"),
	}
}

func directionsConfigFromEnv() DirectionsConfig {
	config := DirectionsConfig{
		APIKey:          os.Getenv("GOOGLE_API_KEY"),
		BaseURL:         getEnvOrDefault("DIRECTIONS_BASE_URL", defaultDirectionsBaseURL),
		EnableCache:     getEnvBool("DIRECTIONS_CACHE_ENABLED", true),
		CacheSize:       getEnvInt("DIRECTIONS_CACHE_SIZE", defaultDirectionsCacheSize),
		CacheTTLMinutes: getEnvInt("DIRECTIONS_CACHE_TTL_MINUTES", defaultDirectionsTTLMinutes),
	}

	if config.APIKey == "" {
		log.Warn().Msg("GOOGLE_API_KEY is not set, directions requests will be rejected by the provider")
	}
	log.Debug().
		Str("BaseURL", config.BaseURL).
		Bool("EnableCache", config.EnableCache).
		Int("CacheSize", config.CacheSize).
		Int("CacheTTLMinutes", config.CacheTTLMinutes).
		Msg("Directions configuration loaded")

	return config
}

func participantsConfigFromEnv() ParticipantsConfig {
	backend := strings.ToLower(getEnvOrDefault("PARTICIPANT_STORE", BackendPostgres))
	if backend != BackendPostgres && backend != BackendDynamoDB {
		log.Warn().Str("key", "PARTICIPANT_STORE").Str("value", backend).Msg("Unknown participant store, using postgres")
		backend = BackendPostgres
	}

	return ParticipantsConfig{
		Backend:        backend,
		Table:          getEnvOrDefault("PARTICIPANTS_TABLE", defaultParticipantsTable),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		EnsureSchema:   getEnvBool("PARTICIPANTS_ENSURE_SCHEMA", true),
		DynamoEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		NATSURL:        os.Getenv("NATS_URL"),
		NATSSubject:    getEnvOrDefault("NATS_SUBJECT", defaultNATSSubject),
	}
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
