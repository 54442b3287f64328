// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the BAIZE_* settings.
type Config struct {
	// Logging
	LogLevel string

	// Geometry
	MeshCells    int
	CutterMargin float64

	// Table description file (.yaml or .baize). Empty means the standard table.
	TablePath string

	// Viewport
	Width  int
	Height int
}

// Load reads the settings, falling back to defaults for unset or invalid values.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		LogLevel: getEnv("BAIZE_LOG_LEVEL", "info"),

		MeshCells:    getEnvInt("BAIZE_MESH_CELLS", 200),
		CutterMargin: getEnvFloat("BAIZE_CUTTER_MARGIN", 0.01),

		TablePath: getEnv("BAIZE_TABLE", ""),

		Width:  getEnvInt("BAIZE_WIDTH", 1280),
		Height: getEnvInt("BAIZE_HEIGHT", 800),
	}
}

// InitLogger configures the standard logrus logger. An unknown level
// falls back to info and is reported once the logger is set up.
func InitLogger(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		log.WithError(err).Warn("unknown log level, using info")
		return
	}
	log.SetLevel(lvl)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}
