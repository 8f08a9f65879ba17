// Package shutdown provides graceful shutdown for cohortdb-go.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Timeout-based forced shutdown
//   - Cleanup callback registration
//   - Shutdown coordination
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { exec.Close(); return nil })
//	h.Wait() // blocks until SIGINT/SIGTERM, then runs hooks
package shutdown
