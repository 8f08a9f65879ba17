// Package command provides CLI command definitions for cohortdb-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: root command, global flags, Executor lifecycle
//   - connect.go: bootstraps an Executor against a seed URL and awaits a leader
//   - status.go: prints the known NodeList, leader, and per-node failure counts
//   - ping.go: dispatches one operation through Execute and reports latency
//
// Commands follow a consistent pattern: parse global flags, build their
// own Executor from them (buildExecutor), call into it, and format output.
package command
