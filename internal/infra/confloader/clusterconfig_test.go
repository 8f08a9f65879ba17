package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_LoadClusterConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
cluster:
  failover_behavior: "ReadFromAllWriteToLeader"
  wait_for_leader_timeout: "10s"
  replication_destinations_topology_timeout: "3s"
  failover_servers:
    - "http://f1:8080"
    - "http://f2:8080"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	l := NewLoader(WithConfigFile(configPath))
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	cfg := l.LoadClusterConfig()
	if cfg.FailoverBehavior != "ReadFromAllWriteToLeader" {
		t.Errorf("FailoverBehavior = %q, want %q", cfg.FailoverBehavior, "ReadFromAllWriteToLeader")
	}
	if cfg.WaitForLeaderTimeout != 10*time.Second {
		t.Errorf("WaitForLeaderTimeout = %v, want 10s", cfg.WaitForLeaderTimeout)
	}
	if cfg.ReplicationDestinationsTopologyTimeout != 3*time.Second {
		t.Errorf("ReplicationDestinationsTopologyTimeout = %v, want 3s", cfg.ReplicationDestinationsTopologyTimeout)
	}
	if len(cfg.FailoverServers) != 2 || cfg.FailoverServers[0] != "http://f1:8080" {
		t.Errorf("FailoverServers = %v, want [http://f1:8080 http://f2:8080]", cfg.FailoverServers)
	}
}

func TestLoader_LoadClusterConfig_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
cluster:
  failover_behavior: "ReadFromAllWriteToLeader"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("COHORTDB_CLUSTER_FAILOVER_BEHAVIOR", "ReadFromLeaderWriteToLeaderWithFailovers")

	l := NewLoader(WithConfigFile(configPath))
	if err := l.LoadFile(configPath); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	cfg := l.LoadClusterConfig()
	if cfg.FailoverBehavior != "ReadFromLeaderWriteToLeaderWithFailovers" {
		t.Errorf("FailoverBehavior = %q, want env value to win", cfg.FailoverBehavior)
	}
}

func TestLoader_LoadClusterConfig_MissingKeysAreZero(t *testing.T) {
	l := NewLoader()
	cfg := l.LoadClusterConfig()
	if cfg.FailoverBehavior != "" {
		t.Errorf("expected empty FailoverBehavior, got %q", cfg.FailoverBehavior)
	}
	if cfg.WaitForLeaderTimeout != 0 {
		t.Errorf("expected zero WaitForLeaderTimeout, got %v", cfg.WaitForLeaderTimeout)
	}
	if len(cfg.FailoverServers) != 0 {
		t.Errorf("expected no failover servers, got %v", cfg.FailoverServers)
	}
}
