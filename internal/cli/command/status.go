package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cohortdb/cohortdb-go/internal/cli/output"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "show the known cluster topology, leader, and failure counts",
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	exec, _, err := buildExecutor(flags)
	if err != nil {
		return err
	}
	defer exec.Close()

	if _, err := awaitLeader(c.Context, exec, flags.WaitForLeader); err != nil {
		PrintError("waiting for leader: %v", err)
	}

	leader := exec.Leader()
	nodes := exec.Nodes()

	table := &output.Table{Headers: []string{"URL", "LEADER", "FAILURES"}}
	for _, node := range nodes {
		isLeader := "false"
		if leader != nil && node.Equal(leader) {
			isLeader = "true"
		}
		table.AddRow(node.URL, isLeader, fmt.Sprintf("%d", exec.FailureCount(node.URL)))
	}
	return table.Render(os.Stdout)
}
