// Package config loads the benchmark settings from the environment and the
// optional query descriptor file.
package config

import (
	"errors"
	"os"
)

const defaultMongoDatabase = "copybench"

// Config holds all configuration for the application,
// typically loaded from environment variables.
type Config struct {
	SourceConnString string
	DestConnString   string

	// Results are persisted to MongoDB only when MongoConnString is set.
	MongoConnString string
	MongoDatabase   string

	LogLevel string
	LogFile  string
}

// LoadConfig loads application settings from environment variables
// (which should be populated by the .env file in main.go).
func LoadConfig() (*Config, error) {
	source := os.Getenv("SOURCE_DATABASE_URL")
	if source == "" {
		return nil, errors.New("SOURCE_DATABASE_URL environment variable not set")
	}

	dest := os.Getenv("DESTINATION_DATABASE_URL")
	if dest == "" {
		return nil, errors.New("DESTINATION_DATABASE_URL environment variable not set")
	}

	return &Config{
		SourceConnString: source,
		DestConnString:   dest,
		MongoConnString:  os.Getenv("MONGO_CONNECTION_STRING"),
		MongoDatabase:    getenv("MONGO_DATABASE", defaultMongoDatabase),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
