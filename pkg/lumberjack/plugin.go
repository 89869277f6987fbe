package lumberjack

import (
	"context"
	"time"
)

// Plugin extends a Lumberjack instance. Plugins are initialized in
// registration order on Start and shut down in reverse order on Stop.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PolicySetter changes the flush policy of a running dispatcher.
type PolicySetter interface {
	SetPolicy(interval time.Duration, maxQueueLength int)
}

// PluginConfig is passed to Plugin.Initialize.
type PluginConfig struct {
	Config Config
	Logger Logger

	// Policy applies flush policy changes.
	Policy PolicySetter
}
