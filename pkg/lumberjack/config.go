package lumberjack

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bft-labs/lumberjack/internal/app"
	"github.com/bft-labs/lumberjack/internal/domain"
)

// Config holds the dispatcher and store settings.
type Config struct {
	// StoreURL is the base URL of the document store. Required unless a
	// BulkWriter is injected with WithBulkWriter.
	StoreURL string `validate:"omitempty,url"`

	// Username and Password enable basic auth.
	Username string
	Password string

	// IndexPrefix is prepended to every collection suffix.
	IndexPrefix string

	// Interval is the maximum time between flushes. Default: 30s.
	Interval time.Duration `validate:"gte=0"`

	// MaxQueueLength triggers a flush when reached. 0 disables it.
	MaxQueueLength int `validate:"gte=0"`

	// FallbackLogFile receives batches that could not be delivered.
	// Empty means such batches are dropped and counted as lost.
	FallbackLogFile string

	// HTTPTimeout bounds one bulk request. Default: 15s.
	HTTPTimeout time.Duration `validate:"gte=0"`

	// ExceptionLimit bounds the retained loop errors. Default: 100.
	ExceptionLimit int `validate:"gte=0"`
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = app.DefaultInterval
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	if c.ExceptionLimit == 0 {
		c.ExceptionLimit = app.DefaultExceptionLimit
	}
	c.StoreURL = strings.TrimRight(c.StoreURL, "/")
}

var validate = validator.New()

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) dispatcherConfig() app.DispatcherConfig {
	return app.DispatcherConfig{
		IndexPrefix:     c.IndexPrefix,
		Interval:        c.Interval,
		MaxQueueLength:  c.MaxQueueLength,
		FallbackLogFile: c.FallbackLogFile,
		ExceptionLimit:  c.ExceptionLimit,
	}
}
