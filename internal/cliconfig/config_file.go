package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config in TOML-friendly types. Interval accepts seconds
// or a duration string, and pointers distinguish an explicit zero from unset.
type FileConfig struct {
	StoreURL        string `toml:"store_url"`
	Username        string `toml:"username"`
	Password        string `toml:"password"`
	IndexPrefix     string `toml:"index_prefix"`
	Interval        any    `toml:"interval"`
	MaxQueueLength  *int   `toml:"max_queue_length"`
	FallbackLogFile string `toml:"fallback_log_file"`
	ExceptionLimit  *int   `toml:"exception_limit"`
	HTTPTimeout     string `toml:"http_timeout"`
	ListenAddr      string `toml:"listen_addr"`
	LogLevel        string `toml:"log_level"`
	TypeTag         string `toml:"type_tag"`
	SuffixLayout    string `toml:"suffix_layout"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.lumberjack/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".lumberjack", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("store-url", fc.StoreURL, &cfg.StoreURL)
	s.setString("username", fc.Username, &cfg.Username)
	s.setString("password", fc.Password, &cfg.Password)
	s.setString("index-prefix", fc.IndexPrefix, &cfg.IndexPrefix)
	s.setString("fallback-log-file", fc.FallbackLogFile, &cfg.FallbackLogFile)
	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("type-tag", fc.TypeTag, &cfg.TypeTag)
	s.setString("suffix-layout", fc.SuffixLayout, &cfg.SuffixLayout)

	if err := s.setInterval("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("max-queue-length", fc.MaxQueueLength, &cfg.MaxQueueLength)
	s.setInt("exception-limit", fc.ExceptionLimit, &cfg.ExceptionLimit)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
