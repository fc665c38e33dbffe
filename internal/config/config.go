package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
)

// Config holds all run settings, populated from environment variables.
// Command-line flags override individual fields after Load.
type Config struct {
	InputFile string `env:"SUNTABLE_FILE" validate:"required"`

	// Field and Granularity are the two run choices. Empty means the user is
	// prompted. Unrecognized values are passed through unchanged.
	Field       string `env:"SUNTABLE_FIELD"`
	Granularity string `env:"SUNTABLE_GRANULARITY"`

	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=json text"`

	// MetricsTextfile, when set, receives the run counters in Prometheus
	// text format for a node-exporter textfile collector.
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report failures by environment variable name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		InputFile:       sharedcfg.EnvOrDefault("SUNTABLE_FILE", "sunrisesunset.csv"),
		Field:           sharedcfg.EnvOrDefault("SUNTABLE_FIELD", ""),
		Granularity:     sharedcfg.EnvOrDefault("SUNTABLE_GRANULARITY", ""),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "text")),
		MetricsTextfile: sharedcfg.EnvOrDefault("METRICS_TEXTFILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have a fixed set of legal values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Errorf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Errorf("invalid %s %q: want one of %s", fe.Field(), fe.Value(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Errorf("invalid %s", fe.Field()))
		}
	}
	return errors.Join(msgs...)
}
