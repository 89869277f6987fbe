package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/lumberjack/internal/cliconfig"
	"github.com/bft-labs/lumberjack/internal/ingest"
	"github.com/bft-labs/lumberjack/internal/server"
	"github.com/bft-labs/lumberjack/pkg/handler"
	"github.com/bft-labs/lumberjack/pkg/log"
	"github.com/bft-labs/lumberjack/pkg/lumberjack"
	"github.com/bft-labs/lumberjack/plugins/configwatcher"
)

const helpDescription = `
Batch documents into a search/document store without blocking producers.

Records are read as NDJSON ({"suffix","type","body"} per line) from stdin or a
file, and optionally over HTTP. They are flushed in bulk every interval, when
the queue reaches max-queue-length, or on POST /v1/flush. If the store is
unreachable the batch is appended to the fallback log file.

Configuration comes from the config file, then LUMBERJACK_* environment
variables (a .env file is loaded first), then flags.
`

var exampleUsage = strings.TrimSpace(`
  tail -F app.ndjson | lumberjack --store-url http://localhost:9200 --index-prefix logs-
  lumberjack --config $HOME/.lumberjack/config.toml --listen :8080 --input ""
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var (
		cfgPath      string
		envFile      string
		input        string
		indexOwnLogs bool
		watchConfig  bool
	)

	console := log.ConsoleLogger(os.Stderr, zerolog.InfoLevel)

	root := &cobra.Command{
		Use:     "lumberjack",
		Short:   "Batch documents into a document store with a local fallback file",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			level, err := log.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			console = console.Level(level)

			logCfg := cfg
			if logCfg.Password != "" {
				logCfg.Password = "*****"
			}
			console.Info().Interface("config", logCfg).Msg("configuration")

			return run(cmd.Context(), cfg, runOptions{
				configFile:   cfgFile,
				watchConfig:  watchConfig && haveFile,
				input:        input,
				indexOwnLogs: indexOwnLogs,
				console:      console,
			})
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.lumberjack/config.toml)")
	root.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading LUMBERJACK_* variables")
	root.Flags().StringVar(&input, "input", "-", `NDJSON input file, "-" for stdin, "" to disable`)
	root.Flags().BoolVar(&indexOwnLogs, "index-own-logs", false, "also ship lumberjack's own info+ logs through the dispatcher")
	root.Flags().BoolVar(&watchConfig, "watch-config", true, "reload interval and max-queue-length when the config file changes")

	root.Flags().StringVar(&cfg.StoreURL, "store-url", cfg.StoreURL, "document store base URL")
	root.Flags().StringVar(&cfg.Username, "username", cfg.Username, "basic auth username")
	root.Flags().StringVar(&cfg.Password, "password", cfg.Password, "basic auth password")
	root.Flags().StringVar(&cfg.IndexPrefix, "index-prefix", cfg.IndexPrefix, "prefix prepended to every collection suffix")
	root.Flags().DurationVar(&cfg.Interval, "interval", cfg.Interval, "maximum time between flushes")
	root.Flags().IntVar(&cfg.MaxQueueLength, "max-queue-length", cfg.MaxQueueLength, "flush when this many records are queued (0 disables)")
	root.Flags().StringVar(&cfg.FallbackLogFile, "fallback-log-file", cfg.FallbackLogFile, "file receiving batches the store could not accept")
	root.Flags().IntVar(&cfg.ExceptionLimit, "exception-limit", cfg.ExceptionLimit, "number of loop errors retained for inspection")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout of one bulk request")
	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address for ingestion, health and metrics (empty disables)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.TypeTag, "type-tag", cfg.TypeTag, "document type for input lines without one and for own logs")
	root.Flags().StringVar(&cfg.SuffixLayout, "suffix-layout", cfg.SuffixLayout, "time layout of the collection suffix for own logs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		console.Error().Err(err).Msg("lumberjack")
		stop()
		os.Exit(1)
	}
}

type runOptions struct {
	configFile   string
	watchConfig  bool
	input        string
	indexOwnLogs bool
	console      zerolog.Logger
}

// run starts the dispatcher and its front ends, and blocks until a signal
// arrives or, without an HTTP listener, the input is exhausted.
func run(ctx context.Context, cfg cliconfig.Config, o runOptions) error {
	dispatcherLog := log.NewZerologAdapterWithLogger(o.console)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []lumberjack.Option{
		lumberjack.WithLogger(dispatcherLog),
		lumberjack.WithMetrics(reg),
	}
	if o.watchConfig {
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{Path: o.configFile}))
	}

	lj, err := lumberjack.New(lumberjack.Config{
		StoreURL:        cfg.StoreURL,
		Username:        cfg.Username,
		Password:        cfg.Password,
		IndexPrefix:     cfg.IndexPrefix,
		Interval:        cfg.Interval,
		MaxQueueLength:  cfg.MaxQueueLength,
		FallbackLogFile: cfg.FallbackLogFile,
		HTTPTimeout:     cfg.HTTPTimeout,
		ExceptionLimit:  cfg.ExceptionLimit,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create lumberjack: %w", err)
	}

	// Front ends log through appLog. The dispatcher keeps the console-only
	// logger so its own messages are never re-enqueued.
	appLogger := o.console
	if o.indexOwnLogs {
		shipper := handler.New(lj, handler.Config{
			TypeTag:      cfg.TypeTag,
			SuffixLayout: cfg.SuffixLayout,
			MinLevel:     zerolog.InfoLevel,
		})
		appLogger = o.console.Output(zerolog.MultiLevelWriter(
			zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
			shipper,
		))
	}
	appLog := log.NewZerologAdapterWithLogger(appLogger)

	if err := lj.Start(ctx); err != nil {
		return fmt.Errorf("start lumberjack: %w", err)
	}

	var srv *server.Server
	if cfg.ListenAddr != "" {
		srv = server.New(server.Config{
			Addr:            cfg.ListenAddr,
			FallbackLogFile: cfg.FallbackLogFile,
			Gatherer:        reg,
		}, lj, appLog)
		if err := srv.Start(); err != nil {
			_ = lj.Stop()
			return err
		}
	}

	inputDone := make(chan struct{})
	if o.input != "" {
		go func() {
			defer close(inputDone)
			readInput(ctx, o.input, lj, cfg.TypeTag, appLog)
		}()
	} else {
		close(inputDone)
	}

	select {
	case <-ctx.Done():
		appLog.Info("received signal, stopping")
	case <-inputDone:
		if srv != nil {
			<-ctx.Done()
			appLog.Info("received signal, stopping")
		} else {
			appLog.Info("input exhausted, stopping")
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("http server shutdown", log.Err(err))
		}
		cancel()
	}

	stopErr := lj.Stop()

	if excs := lj.Exceptions(); len(excs) > 0 {
		o.console.Warn().
			Str("captured", humanize.Comma(int64(len(excs)))).
			AnErr("last", lj.LastException()).
			Msg("dispatcher recorded errors")
	}
	if stopErr != nil {
		return fmt.Errorf("stop lumberjack: %w", stopErr)
	}
	return nil
}

func readInput(ctx context.Context, path string, sink ingest.Enqueuer, defaultType string, logger log.Logger) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			logger.Error("open input", log.Err(err))
			return
		}
		defer f.Close()
		r = f
	}

	start := time.Now()
	stats, err := ingest.NewReader(sink, defaultType, logger).Read(ctx, r)
	if err != nil && ctx.Err() == nil {
		logger.Error("read input", log.Err(err))
	}
	logger.Info("input finished",
		log.Count("enqueued", int64(stats.Enqueued)),
		log.Count("skipped", int64(stats.Skipped)),
		log.String("started", humanize.Time(start)),
	)
}
