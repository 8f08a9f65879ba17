package command

import (
	"github.com/cohortdb/cohortdb-go/internal/core/cluster"
	"github.com/cohortdb/cohortdb-go/internal/telemetry/logger"
)

// clusterLogger adapts telemetry/logger.Logger to cluster.Logger. The two
// interfaces differ only in what With returns (each refers to its own
// package's Logger type), so they aren't structurally identical and need
// this thin wrapper.
type clusterLogger struct {
	inner logger.Logger
}

func asClusterLogger(l logger.Logger) cluster.Logger {
	return clusterLogger{inner: l}
}

func (c clusterLogger) Debug(msg string, args ...any) { c.inner.Debug(msg, args...) }
func (c clusterLogger) Info(msg string, args ...any)  { c.inner.Info(msg, args...) }
func (c clusterLogger) Warn(msg string, args ...any)  { c.inner.Warn(msg, args...) }
func (c clusterLogger) Error(msg string, args ...any) { c.inner.Error(msg, args...) }
func (c clusterLogger) With(args ...any) cluster.Logger {
	return clusterLogger{inner: c.inner.With(args...)}
}
