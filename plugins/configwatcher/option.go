package configwatcher

import "github.com/bft-labs/lumberjack/pkg/lumberjack"

// WithConfigWatcher returns a lumberjack Option that enables config file
// watching. Changes to interval and max_queue_length in the file are applied
// without a restart.
//
// Usage:
//
//	lj, err := lumberjack.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/lumberjack/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) lumberjack.Option {
	plugin := New(cfg)
	return lumberjack.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a lumberjack Option that watches the
// default config path with a 100ms debounce.
//
// Usage:
//
//	lj, err := lumberjack.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() lumberjack.Option {
	return WithConfigWatcher(DefaultConfig())
}
