package config

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Config is the operator's own configuration, distinct from the per-beacon
// configuration carried on MeshBeacon specs.
type Config struct {
	// MetricsAddr is the bind address for the Prometheus endpoint.
	MetricsAddr string `json:"metricsAddr,omitempty"`
	// ProbeAddr is the bind address for health and readiness probes.
	ProbeAddr string `json:"probeAddr,omitempty"`
	// LeaderElection enables manager leader election.
	LeaderElection bool `json:"leaderElection,omitempty"`
	// WatchNamespace restricts the operator to one namespace; empty watches all.
	WatchNamespace string `json:"watchNamespace,omitempty"`
	// ReadyCheckIntervalSeconds is the waypoint readiness poll cadence.
	ReadyCheckIntervalSeconds int32 `json:"readyCheckIntervalSeconds,omitempty"`
	// TracingEndpoint is a default OTLP endpoint used when a beacon does not
	// declare its own.
	TracingEndpoint string `json:"tracingEndpoint,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MetricsAddr:               ":8080",
		ProbeAddr:                 ":8081",
		ReadyCheckIntervalSeconds: 10,
	}
}

// Load reads the config file at path, filling unset fields from Default.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if len(path) == 0 {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config file %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %s", path)
	}
	if len(cfg.MetricsAddr) == 0 {
		cfg.MetricsAddr = Default().MetricsAddr
	}
	if len(cfg.ProbeAddr) == 0 {
		cfg.ProbeAddr = Default().ProbeAddr
	}
	if cfg.ReadyCheckIntervalSeconds <= 0 {
		cfg.ReadyCheckIntervalSeconds = Default().ReadyCheckIntervalSeconds
	}
	return cfg, nil
}

// Watch reloads the config file on change and hands the result to apply.
// Only fields safe to change at runtime should be consumed from reloads;
// bind addresses are fixed once the manager starts.
func Watch(ctx context.Context, path string, log logr.Logger, apply func(Config)) error {
	if len(path) == 0 {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating config watcher")
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "watching config file %s", path)
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					log.Error(err, "ignoring invalid config reload")
					continue
				}
				log.Info("reloaded config", "path", path)
				apply(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error(err, "config watcher error")
			}
		}
	}()
	return nil
}
