package cliconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bft-labs/lumberjack/internal/domain"
)

const (
	// DefaultStoreURL is the document store used when none is configured.
	DefaultStoreURL = "http://localhost:9200"

	// DefaultSuffixLayout formats the event time into a daily collection suffix.
	DefaultSuffixLayout = "2006.01.02"
)

// Config holds CLI configuration for lumberjack.
type Config struct {
	StoreURL string `toml:"store_url" validate:"required,url"`
	Username string `toml:"username"`
	Password string `toml:"password"`

	IndexPrefix     string        `toml:"index_prefix"`
	Interval        time.Duration `toml:"interval" validate:"gt=0"`
	MaxQueueLength  int           `toml:"max_queue_length" validate:"gte=0"`
	FallbackLogFile string        `toml:"fallback_log_file"`
	ExceptionLimit  int           `toml:"exception_limit" validate:"gte=0"`

	HTTPTimeout time.Duration `toml:"http_timeout" validate:"gte=0"`
	ListenAddr  string        `toml:"listen_addr" validate:"omitempty,hostname_port"`
	LogLevel    string        `toml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`

	TypeTag      string `toml:"type_tag" validate:"required"`
	SuffixLayout string `toml:"suffix_layout" validate:"required"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		StoreURL:        DefaultStoreURL,
		IndexPrefix:     "logs-",
		Interval:        30 * time.Second,
		FallbackLogFile: "lumberjack-fallback.log",
		ExceptionLimit:  100,
		HTTPTimeout:     15 * time.Second,
		LogLevel:        "info",
		TypeTag:         "log",
		SuffixLayout:    DefaultSuffixLayout,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the configuration and normalizes the store URL.
// Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	c.StoreURL = strings.TrimRight(c.StoreURL, "/")

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fmt.Sprintf("%s %q is not a valid URL", fe.Field(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s %q must be host:port", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gt":
		return fe.Field() + " must be positive"
	case "gte":
		return fe.Field() + " must not be negative"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// ParseInterval converts a configured interval to a duration.
// Integers and floats are seconds; strings are either a number of seconds
// or a Go duration such as "1m30s".
func ParseInterval(v any) (time.Duration, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return x, nil
	case int:
		return time.Duration(x) * time.Second, nil
	case int64:
		return time.Duration(x) * time.Second, nil
	case float64:
		return time.Duration(x * float64(time.Second)), nil
	case string:
		if x == "" {
			return 0, nil
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(x)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q", x)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid interval type %T", v)
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not changed.
// Zero is a valid value.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setInterval parses and sets an interval if present and flag not changed.
func (s *configSetter) setInterval(flag string, value any, dst *time.Duration) error {
	if value == nil || s.changed[flag] {
		return nil
	}
	d, err := ParseInterval(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if d == 0 {
		return nil
	}
	*dst = d
	return nil
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}
