package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "LUMBERJACK_"

// ApplyEnvConfig applies configuration from environment variables (LUMBERJACK_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(key string) string { return os.Getenv(EnvPrefix + key) }

	s.setString("store-url", env("STORE_URL"), &cfg.StoreURL)
	s.setString("username", env("USERNAME"), &cfg.Username)
	s.setString("password", env("PASSWORD"), &cfg.Password)
	s.setString("index-prefix", env("INDEX_PREFIX"), &cfg.IndexPrefix)
	s.setString("fallback-log-file", env("FALLBACK_LOG_FILE"), &cfg.FallbackLogFile)
	s.setString("listen", env("LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("type-tag", env("TYPE_TAG"), &cfg.TypeTag)
	s.setString("suffix-layout", env("SUFFIX_LAYOUT"), &cfg.SuffixLayout)

	if v := env("INTERVAL"); v != "" {
		if err := s.setInterval("interval", v, &cfg.Interval); err != nil {
			return err
		}
	}
	if err := s.setDuration("http-timeout", env("HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("max-queue-length", env("MAX_QUEUE_LENGTH"), &cfg.MaxQueueLength); err != nil {
		return err
	}
	if err := s.setIntFromString("exception-limit", env("EXCEPTION_LIMIT"), &cfg.ExceptionLimit); err != nil {
		return err
	}

	return nil
}
