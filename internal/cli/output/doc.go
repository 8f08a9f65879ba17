// Package output provides output formatting for cohortdb-cli.
package output
