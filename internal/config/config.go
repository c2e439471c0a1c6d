// Package config reads the service configuration from the environment.
//
// A .env file in the working directory is loaded first, so local settings
// can live next to the binary.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port          int
	UploadDir     string
	OutputDir     string
	MaxUploadSize int64
	MaxFiles      int
	LogLevel      string
	LogFormat     string
	DatabasePath  string
	AuthDisabled  bool
	JobTTL        time.Duration
	// EngineWasmPath, when set, serves compress and linearize from a WASI
	// module instead of the native engine.
	EngineWasmPath string
}

// Load reads the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		UploadDir:      str(getenv, "UPLOAD_DIR", "uploads"),
		OutputDir:      str(getenv, "OUTPUT_DIR", "output"),
		LogLevel:       str(getenv, "LOG_LEVEL", "info"),
		LogFormat:      str(getenv, "LOG_FORMAT", "json"),
		DatabasePath:   str(getenv, "DATABASE_PATH", "pdftools.db"),
		EngineWasmPath: getenv("ENGINE_WASM_PATH"),
	}

	var err error
	if cfg.Port, err = integer(getenv, "PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.MaxFiles, err = integer(getenv, "MAX_FILES", 20); err != nil {
		return nil, err
	}
	size, err := integer(getenv, "MAX_UPLOAD_SIZE", 50<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadSize = int64(size)

	if v := getenv("API_AUTH_DISABLED"); v != "" {
		if cfg.AuthDisabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("API_AUTH_DISABLED: %w", err)
		}
	}
	cfg.JobTTL = 10 * time.Minute
	if v := getenv("JOB_TTL"); v != "" {
		if cfg.JobTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("JOB_TTL: %w", err)
		}
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT: %d is out of range", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	return cfg, nil
}

func str(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func integer(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
