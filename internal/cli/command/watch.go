package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/fabmesh-go/internal/cli/config"
	"github.com/yndnr/fabmesh-go/internal/fabric/loopback"
	"github.com/yndnr/fabmesh-go/internal/fabric/md"
	"github.com/yndnr/fabmesh-go/internal/infra/confloader"
	"github.com/yndnr/fabmesh-go/internal/infra/shutdown"
	"github.com/yndnr/fabmesh-go/internal/telemetry/logger"
	"github.com/yndnr/fabmesh-go/internal/telemetry/metric"
)

// WatchCommand returns the metrics watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Serve fabric metrics and poll resource discovery until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "component",
				Aliases: []string{"C"},
				Usage:   "Component to open",
				Value:   loopback.Name,
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Metrics listen address (defaults to the configured address)",
			},
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Discovery poll interval",
				Value:   10 * time.Second,
			},
		},
		Action: watchRun,
	}
}

func watchRun(c *cli.Context) error {
	log := logger.Default()
	cfg := GetConfig(c)

	entry, err := lookupComponent(c, c.String("component"))
	if err != nil {
		return err
	}

	device := entry.Component().Name()
	if rscs, err := entry.Component().QueryMDResources(); err == nil && len(rscs) > 0 {
		device = rscs[0].MDName
	}

	promReg := prometheus.NewRegistry()
	metrics := metric.NewFabric(promReg)

	flags := ParseGlobalFlags(c)
	h, err := md.Open(entry, device, nil, md.Options{
		DebugIdentity: flags.DebugIdentity,
		Logger:        log,
		Metrics:       metrics,
	})
	if err != nil {
		return err
	}

	addr := c.String("metrics-addr")
	if addr == "" {
		addr = cfg.Metrics.Address
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(promReg))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// Poll discovery so the gauges and counters stay current.
	interval := c.Duration("interval")
	pollDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.QueryResources()
			case <-pollDone:
				return
			}
		}
	}()

	// Reload logging settings when the CLI config file changes.
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	configPath := flags.Config
	if configPath == "" {
		configPath = cliconfig.DefaultConfigPath()
	}
	if err := watcher.Watch(configPath); err != nil {
		log.Warn("config watch disabled", "path", configPath, "error", err)
	} else {
		watcher.OnChange(func(path string) {
			reloaded, err := cliconfig.Load(configPath)
			if err != nil {
				log.Error("config reload failed", "path", path, "error", err)
				return
			}
			logger.SetLevel(reloaded.Log.Level)
			log.Info("configuration reloaded", "path", path, "level", reloaded.Log.Level)
		})
		watcher.StartAsync()
	}

	sh := shutdown.NewHandler(10 * time.Second)
	sh.OnShutdown(func(ctx context.Context) error {
		h.Close()
		return nil
	})
	sh.OnShutdown(func(ctx context.Context) error {
		close(pollDone)
		return watcher.Stop()
	})
	sh.OnShutdown(func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	})

	log.Info("watching fabric", "component", entry.Component().Name(), "interval", interval)
	return sh.Wait()
}
