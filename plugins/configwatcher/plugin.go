// Package configwatcher provides config file monitoring for lumberjack.
// When enabled, it watches the TOML config file and applies changes to
// interval and max_queue_length to the running dispatcher.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/lumberjack/internal/cliconfig"
	"github.com/bft-labs/lumberjack/pkg/log"
	"github.com/bft-labs/lumberjack/pkg/lumberjack"
)

// Plugin implements config watching functionality.
// Only the flush policy is reloaded; other settings need a restart.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	interval       time.Duration
	maxQueueLength int
	policy         lumberjack.PolicySetter
	logger         lumberjack.Logger
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	debounce       *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML file to watch.
	// Default: ~/.lumberjack/config.toml
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the config file.
func (p *Plugin) Initialize(ctx context.Context, cfg lumberjack.PluginConfig) error {
	p.mu.Lock()
	p.policy = cfg.Policy
	p.logger = cfg.Logger
	p.interval = cfg.Config.Interval
	p.maxQueueLength = cfg.Config.MaxQueueLength
	p.mu.Unlock()

	if p.path == "" || p.policy == nil {
		p.logger.Warn("config watcher disabled: no config path or policy target")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload reads the file and applies a changed flush policy.
// A file that fails to parse leaves the current policy in place.
func (p *Plugin) reload() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("config reload failed, keeping current policy", log.Err(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	interval := p.interval
	if fc.Interval != nil {
		d, err := cliconfig.ParseInterval(fc.Interval)
		if err != nil || d <= 0 {
			p.logger.Warn("config reload: invalid interval, keeping current policy",
				log.Any("interval", fc.Interval))
			return
		}
		interval = d
	}

	maxQueueLength := p.maxQueueLength
	if fc.MaxQueueLength != nil {
		if *fc.MaxQueueLength < 0 {
			p.logger.Warn("config reload: negative max_queue_length, keeping current policy")
			return
		}
		maxQueueLength = *fc.MaxQueueLength
	}

	if interval == p.interval && maxQueueLength == p.maxQueueLength {
		return
	}

	p.interval = interval
	p.maxQueueLength = maxQueueLength
	p.policy.SetPolicy(interval, maxQueueLength)
	p.logger.Info("flush policy reloaded",
		log.Duration("interval", interval),
		log.Int("max_queue_length", maxQueueLength),
	)
}

// Ensure Plugin implements lumberjack.Plugin.
var _ lumberjack.Plugin = (*Plugin)(nil)
