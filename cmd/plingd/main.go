// Package main is the entry point for the plingd notification daemon.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pling-project/pling/internal/audio"
	"github.com/pling-project/pling/internal/config"
	"github.com/pling-project/pling/internal/daemon"
	"github.com/pling-project/pling/internal/dbus"
	"github.com/pling-project/pling/internal/event"
	"github.com/pling-project/pling/internal/imaging"
	"github.com/pling-project/pling/internal/registry"
	"github.com/pling-project/pling/internal/store"
)

var (
	// Build-time variables
	version = "dev"
)

// options collects the file locations the daemon works against.
type options struct {
	configFile string
	cacheFile  string
	stateFile  string
	imageDir   string
}

func main() {
	configFile := flag.String("config", store.DefaultConfigFile(), "Path to the configuration file")
	cacheFile := flag.String("cache-file", store.DefaultCacheFile(), "Path to the notification cache file")
	stateFile := flag.String("state-file", store.DefaultStateFile(), "Path to the shared state file")
	imageDir := flag.String("image-dir", store.DefaultImageDir(), "Directory for decoded notification images")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("plingd version", version)
		os.Exit(0)
	}

	// Config is loaded before the logger exists because it carries the
	// log level; a load failure degrades to defaults and is logged once
	// the logger is up.
	cfg, cfgErr := config.Load(*configFile)
	if cfgErr != nil {
		cfg = config.Default()
	}

	level := slog.LevelInfo
	if l, err := cfg.LogLevel(); err == nil {
		level = l
	}
	if *logLevel != "" {
		if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid log level %q, using %s\n", *logLevel, level)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting plingd", "version", version)
	if cfgErr != nil {
		logger.Warn("failed to load config, using defaults", "path", *configFile, "error", cfgErr)
	}

	opts := options{
		configFile: *configFile,
		cacheFile:  *cacheFile,
		stateFile:  *stateFile,
		imageDir:   *imageDir,
	}

	if err := run(logger, cfg, opts); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}

	logger.Info("plingd stopped")
}

func run(logger *slog.Logger, cfg *config.Config, opts options) error {
	// Notification cache, written after every mutation.
	cache := store.NewCache(opts.cacheFile)

	// Shared runtime state (do-not-disturb), written by the CLI.
	state, err := store.LoadSharedState(opts.stateFile)
	if err != nil {
		logger.Warn("failed to load shared state", "path", opts.stateFile, "error", err)
		state = store.DefaultSharedState()
	}
	logger.Info("shared state loaded", "do_not_disturb", state.DoNotDisturb)

	images := imaging.NewResolver(opts.imageDir, imaging.NewPNGEncoder(),
		logger.With("component", "imaging"))

	// The server doubles as the registry's signal emitter, so it exists
	// before the registry even though it starts after.
	server := dbus.NewServer(logger.With("component", "dbus"))
	info := dbus.DefaultServerInfo()
	info.Version = version
	server.SetServerInfo(info)

	reg := registry.New(registry.Options{
		PopupTimeout: cfg.Popup.Timeout.Duration(),
	}, registry.Deps{
		Store:   cache,
		Images:  images,
		Events:  event.NewBus(),
		Signals: server,
		Logger:  logger.With("component", "registry"),
	})

	if err := reg.Restore(); err != nil {
		logger.Warn("failed to restore notifications", "path", opts.cacheFile, "error", err)
	}
	reg.SetDoNotDisturb(state.DoNotDisturb)

	// Notification sounds, driven by registry events.
	player := audio.NewPlayer(logger.With("component", "audio"))
	sounds := audio.NewSounds(player, reg, logger.With("component", "audio"))
	sounds.Configure(cfg)
	sounds.Attach(reg.Events())
	defer sounds.Close()

	server.SetHandler(reg)
	if err := server.Start(); err != nil {
		if !errors.Is(err, dbus.ErrBusNameTaken) {
			return fmt.Errorf("failed to start notification service: %w", err)
		}
		logger.Warn("another notification daemon owns the bus name, continuing without bus export",
			"name", dbus.BusName)
	}
	defer func() { _ = server.Stop() }()

	notifier := daemon.NewInternalNotifier(reg, logger.With("component", "notifier"))

	// React to do-not-disturb toggles written by the CLI.
	stateWatcher := watchFile(logger, opts.stateFile, func() {
		newState, err := store.LoadSharedState(opts.stateFile)
		if err != nil {
			logger.Warn("failed to reload shared state", "error", err)
			return
		}
		if newState.DoNotDisturb == reg.DoNotDisturb() {
			return
		}
		reg.SetDoNotDisturb(newState.DoNotDisturb)

		source := ""
		if last := newState.LastTransition(); last != nil {
			source = last.Source
		}
		notifier.NotifyDnDChanged(newState.DoNotDisturb, source)
	})
	if stateWatcher != nil {
		defer func() { _ = stateWatcher.Stop() }()
	}

	// Hot-reload the configuration.
	configWatcher := watchFile(logger, opts.configFile, func() {
		newCfg, err := config.Load(opts.configFile)
		if err != nil {
			logger.Warn("failed to reload config", "path", opts.configFile, "error", err)
			notifier.NotifyConfigError(err)
			return
		}
		reg.SetPopupTimeout(newCfg.Popup.Timeout.Duration())
		sounds.Configure(newCfg)
		logger.Info("configuration reloaded", "path", opts.configFile)
		notifier.NotifyConfigReloaded()
	})
	if configWatcher != nil {
		defer func() { _ = configWatcher.Stop() }()
	}

	logger.Info("plingd ready", "bus_name", dbus.BusName, "notifications", reg.Len())

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	return nil
}

// watchFile starts a debounced watcher on path. Watcher failures are not
// fatal; the daemon runs without hot reload for that file and returns nil.
func watchFile(logger *slog.Logger, path string, onChange func()) *daemon.FileWatcher {
	w, err := daemon.NewFileWatcher(path, logger.With("component", "watcher"))
	if err != nil {
		logger.Warn("failed to create file watcher", "path", path, "error", err)
		return nil
	}
	w.SetChangeCallback(onChange)
	if err := w.Start(); err != nil {
		logger.Warn("failed to watch file", "path", path, "error", err)
		_ = w.Stop()
		return nil
	}
	return w
}
