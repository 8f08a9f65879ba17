// Package main provides the entry point for cohortdb-cli.
//
// cohortdb-cli is a thin command-line wrapper around the executor: it
// bootstraps a cluster.Executor from global flags and exposes it through
// three subcommands.
//
// Usage:
//
//	cohortdb-cli connect http://localhost:8080
//	cohortdb-cli --server http://localhost:8080 status
//	cohortdb-cli --server http://localhost:8080 ping /healthz
package main
