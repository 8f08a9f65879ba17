package command

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cohortdb/cohortdb-go/internal/core/cluster"
	"github.com/cohortdb/cohortdb-go/internal/core/domain"
	"github.com/cohortdb/cohortdb-go/internal/infra/confloader"
	"github.com/cohortdb/cohortdb-go/internal/infra/shutdown"
	"github.com/cohortdb/cohortdb-go/internal/telemetry/metric"
)

// ConnectCommand returns the connect command.
func ConnectCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "bootstrap against a seed node and wait for a leader",
		ArgsUsage: "[SERVER]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "stay attached and report leader changes until interrupted",
			},
		},
		Action: connectAction,
	}
}

func connectAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	if server := c.Args().First(); server != "" {
		flags.Server = server
	}

	exec, registry, err := buildExecutor(flags)
	if err != nil {
		return err
	}

	leader, err := awaitLeader(c.Context, exec, flags.WaitForLeader)
	if err != nil {
		exec.Close()
		return fmt.Errorf("connect failed: %w", err)
	}
	fmt.Printf("Connected to %s, leader is %s\n", flags.Server, leader.URL)

	if !c.Bool("watch") {
		exec.Close()
		return nil
	}

	return watchLeader(exec, registry, flags)
}

// watchLeader blocks until interrupted: it prints leader changes as the
// background topology refresher observes them, hot-reloads dispatch
// conventions from flags.ConfigFile on every write, and optionally serves
// Prometheus metrics, then closes exec.
func watchLeader(exec *cluster.Executor, registry *metric.Registry, flags *GlobalFlags) error {
	if err := registry.Register(metric.NewClusterStateCollector(
		func() int { return len(exec.Nodes()) },
		func() bool { return exec.Leader() != nil },
	)); err != nil {
		PrintError("registering cluster state collector: %v", err)
	}

	handler := shutdown.NewHandler(5 * time.Second)
	handler.OnShutdown(func(context.Context) error {
		exec.Close()
		return nil
	})

	if watcher, err := watchConfigFile(flags.ConfigFile, exec); err != nil {
		PrintError("watching %s: %v", flags.ConfigFile, err)
	} else if watcher != nil {
		handler.OnShutdown(func(context.Context) error { return watcher.Stop() })
	}

	var metricsServer *http.Server
	if flags.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", registry.Handler())
		metricsServer = &http.Server{Addr: flags.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				PrintError("metrics server: %v", err)
			}
		}()
		handler.OnShutdown(func(ctx context.Context) error { return metricsServer.Shutdown(ctx) })
		fmt.Printf("serving metrics on %s/metrics\n", flags.MetricsAddr)
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		var lastLeader string
		for {
			select {
			case <-ticker.C:
				if l := exec.Leader(); l != nil && l.URL != lastLeader {
					lastLeader = l.URL
					fmt.Printf("leader is now %s\n", l.URL)
				}
			case <-stop:
				return
			}
		}
	}()

	err := handler.Wait()
	close(stop)
	return err
}

// watchConfigFile attaches a confloader.Watcher to path, reloading
// FailoverBehavior and FailoverServers into exec.Conventions() on every
// write. Returns a nil watcher (and nil error) when path is empty.
func watchConfigFile(path string, exec *cluster.Executor) (*confloader.Watcher, error) {
	if path == "" {
		return nil, nil
	}

	watcher, err := confloader.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		return nil, err
	}
	watcher.OnChange(func(changed string) {
		loader := confloader.NewLoader(confloader.WithConfigFile(path))
		if err := loader.LoadFile(path); err != nil {
			PrintError("reloading %s: %v", path, err)
			return
		}
		cfg := loader.LoadClusterConfig()
		conv := exec.Conventions()
		if cfg.FailoverBehavior != "" {
			conv.SetFailoverBehavior(domain.FailoverBehavior(cfg.FailoverBehavior))
		}
		if len(cfg.FailoverServers) > 0 {
			conv.SetFailoverServers(cfg.FailoverServers)
		}
		fmt.Printf("reloaded cluster conventions from %s\n", changed)
	})
	watcher.StartAsync()
	return watcher, nil
}

// awaitLeader dispatches a single no-op read through the executor, which
// is enough to force leader discovery, then returns whichever node the
// executor now believes is the leader.
func awaitLeader(ctx context.Context, exec *cluster.Executor, timeout time.Duration) (*domain.NodeDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := exec.Execute(ctx, cluster.MethodGet, func(ctx context.Context, node *domain.NodeDescriptor) (any, error) {
		return nil, nil
	}); err != nil {
		return nil, err
	}

	leader := exec.Leader()
	if leader == nil {
		return nil, fmt.Errorf("no leader known after dispatch")
	}
	return leader, nil
}
