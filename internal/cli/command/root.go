package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cohortdb/cohortdb-go/internal/core/cluster"
	"github.com/cohortdb/cohortdb-go/internal/core/domain"
	"github.com/cohortdb/cohortdb-go/internal/infra/buildinfo"
	"github.com/cohortdb/cohortdb-go/internal/infra/confloader"
	"github.com/cohortdb/cohortdb-go/internal/infra/httptransport"
	"github.com/cohortdb/cohortdb-go/internal/infra/topologystore"
	"github.com/cohortdb/cohortdb-go/internal/telemetry/logger"
	"github.com/cohortdb/cohortdb-go/internal/telemetry/metric"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "cohortdb-cli",
		Usage:   "cohortdb-go cluster-aware client command-line tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ConnectCommand(),
			StatusCommand(),
			PingCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "seed node URL to bootstrap the cluster topology from",
			EnvVars: []string{"COHORTDB_SERVER"},
		},
		&cli.StringFlag{
			Name:    "api-key-id",
			Aliases: []string{"k"},
			Usage:   "API key ID for authentication",
			EnvVars: []string{"COHORTDB_API_KEY_ID"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"K"},
			Usage:   "API key secret for authentication",
			EnvVars: []string{"COHORTDB_API_KEY"},
		},
		&cli.DurationFlag{
			Name:  "wait-for-leader",
			Usage: "how long to wait for a known leader before giving up",
			Value: 5 * time.Second,
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "directory for the on-disk topology cache; empty disables persistence",
			EnvVars: []string{"COHORTDB_CACHE_DIR"},
		},
		&cli.StringFlag{
			Name:    "config-file",
			Usage:   "YAML file providing cluster.* dispatch conventions (failover_behavior, wait_for_leader_timeout, replication_destinations_topology_timeout, failover_servers)",
			EnvVars: []string{"COHORTDB_CONFIG_FILE"},
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "address to serve Prometheus /metrics on (connect --watch only); empty disables it",
			EnvVars: []string{"COHORTDB_METRICS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (only table is rendered)",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "enable verbose logging",
		},
	}
}

// GlobalFlags holds the parsed global flags shared by every command.
type GlobalFlags struct {
	Server        string
	APIKeyID      string
	APIKey        string
	WaitForLeader time.Duration
	CacheDir      string
	ConfigFile    string
	MetricsAddr   string
	Output        string
	Verbose       bool

	waitForLeaderSet bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:           c.String("server"),
		APIKeyID:         c.String("api-key-id"),
		APIKey:           c.String("api-key"),
		WaitForLeader:    c.Duration("wait-for-leader"),
		CacheDir:         c.String("cache-dir"),
		ConfigFile:       c.String("config-file"),
		MetricsAddr:      c.String("metrics-addr"),
		Output:           c.String("output"),
		Verbose:          c.Bool("verbose"),
		waitForLeaderSet: c.IsSet("wait-for-leader"),
	}
}

// buildExecutor wires a cluster.Executor from global flags: an httptransport
// client, an optional on-disk topology cache, a structured logger, and a
// Prometheus metrics registry. Every command that talks to the cluster goes
// through this. Dispatch conventions follow CLI flag > env > config file >
// compiled default, with confloader.Loader handling the latter three.
func buildExecutor(flags *GlobalFlags) (*cluster.Executor, *metric.Registry, error) {
	if flags.Server == "" {
		return nil, nil, fmt.Errorf("--server is required (or set COHORTDB_SERVER)")
	}

	level := "info"
	if flags.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "json", Output: os.Stderr})
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	var cache cluster.TopologyCache
	if flags.CacheDir != "" {
		bc, err := topologystore.NewBadgerCache(topologystore.Config{Dir: flags.CacheDir}, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("open topology cache: %w", err)
		}
		cache = bc
	}

	registry := metric.NewRegistry()
	transport := httptransport.NewClient(httptransport.Config{})

	node := &domain.NodeDescriptor{URL: flags.Server}
	if flags.APIKeyID != "" || flags.APIKey != "" {
		node.Credentials = httptransport.Credentials{KeyID: flags.APIKeyID, Key: flags.APIKey}
	}

	conv := cluster.NewConventions(conventionOptions(flags)...)

	return cluster.NewExecutor(node, conv, cache, transport.FetchTopology, asClusterLogger(log), registry, nil), registry, nil
}

// conventionOptions loads the cluster.* configuration surface via
// confloader (file, then env) and turns it into ConventionsOption values,
// letting an explicitly-passed --wait-for-leader flag win over the loaded
// file/env value for that one field.
func conventionOptions(flags *GlobalFlags) []cluster.ConventionsOption {
	loader := confloader.NewLoader(confloader.WithConfigFile(flags.ConfigFile))
	if flags.ConfigFile != "" {
		if err := loader.LoadFile(flags.ConfigFile); err != nil {
			PrintError("loading %s: %v", flags.ConfigFile, err)
		}
	}
	if err := loader.LoadEnv(); err != nil {
		PrintError("loading cluster config from environment: %v", err)
	}
	cfg := loader.LoadClusterConfig()

	var opts []cluster.ConventionsOption
	switch {
	case flags.waitForLeaderSet:
		opts = append(opts, cluster.WithWaitForLeaderTimeout(flags.WaitForLeader))
	case cfg.WaitForLeaderTimeout != 0:
		opts = append(opts, cluster.WithWaitForLeaderTimeout(cfg.WaitForLeaderTimeout))
	default:
		opts = append(opts, cluster.WithWaitForLeaderTimeout(flags.WaitForLeader))
	}
	if cfg.ReplicationDestinationsTopologyTimeout != 0 {
		opts = append(opts, cluster.WithReplicationDestinationsTopologyTimeout(cfg.ReplicationDestinationsTopologyTimeout))
	}
	if cfg.FailoverBehavior != "" {
		opts = append(opts, cluster.WithFailoverBehavior(domain.FailoverBehavior(cfg.FailoverBehavior)))
	}
	if len(cfg.FailoverServers) > 0 {
		opts = append(opts, cluster.WithFailoverServers(cfg.FailoverServers...))
	}
	return opts
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
