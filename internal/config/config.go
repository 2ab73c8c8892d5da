package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aouyang1/go-rforecaster/engine"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var ErrInvalidValue = errors.New("invalid configuration value")

// Config holds the command line tool configuration
type Config struct {
	RscriptPath   string        `env:"RSCRIPT_PATH" envDefault:"Rscript"`
	EngineTimeout time.Duration `env:"ENGINE_TIMEOUT" envDefault:"2m"`
	EngineRate    float64       `env:"ENGINE_RATE" envDefault:"0"` // process launches per second
	EngineRetries int           `env:"ENGINE_RETRIES" envDefault:"2"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load initializes configuration from environment variables, reading a .env file first when
// one exists. Variables that are set but cannot be parsed are reported as ErrInvalidValue.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	defaults := engine.NewDefaultOptions()
	cfg := &Config{
		RscriptPath: getEnvWithDefault("RSCRIPT_PATH", defaults.RscriptPath),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
	}

	var errs [3]error
	cfg.EngineTimeout, errs[0] = getEnvDurationWithDefault("ENGINE_TIMEOUT", defaults.Timeout)
	cfg.EngineRate, errs[1] = getEnvFloatWithDefault("ENGINE_RATE", defaults.RateLimit)
	cfg.EngineRetries, errs[2] = getEnvIntWithDefault("ENGINE_RETRIES", int(defaults.Retries))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EngineOptions converts the configuration into options for the statistical engine
func (c *Config) EngineOptions() *engine.Options {
	opt := engine.NewDefaultOptions()
	opt.RscriptPath = c.RscriptPath
	opt.Timeout = c.EngineTimeout
	opt.RateLimit = c.EngineRate
	if c.EngineRetries >= 0 {
		opt.Retries = uint64(c.EngineRetries)
	}
	return opt
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not an integer, %w", key, value, ErrInvalidValue)
	}
	return intValue, nil
}

func getEnvFloatWithDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a number, %w", key, value, ErrInvalidValue)
	}
	return floatValue, nil
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	durValue, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a duration, %w", key, value, ErrInvalidValue)
	}
	return durValue, nil
}
