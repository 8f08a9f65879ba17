package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cohortdb/cohortdb-go/internal/core/cluster"
	"github.com/cohortdb/cohortdb-go/internal/infra/httptransport"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "issue one GET through the executor and report latency",
		ArgsUsage: "[PATH]",
		Action:    pingAction,
	}
}

func pingAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	path := c.Args().First()
	if path == "" {
		path = "/"
	}

	exec, _, err := buildExecutor(flags)
	if err != nil {
		return err
	}
	defer exec.Close()

	transport := httptransport.NewClient(httptransport.Config{})
	operation := transport.Operation(httptransport.Request{Method: cluster.MethodGet, Path: path}, exec.Conventions().Snapshot().FailoverBehavior)

	ctx, cancel := context.WithTimeout(c.Context, flags.WaitForLeader)
	defer cancel()

	start := time.Now()
	_, err = exec.Execute(ctx, cluster.MethodGet, operation)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("ping failed after %s: %w", elapsed, err)
	}

	leader := exec.Leader()
	target := "unknown"
	if leader != nil {
		target = leader.URL
	}
	fmt.Printf("ping %s via %s: %s\n", path, target, elapsed)
	return nil
}
