package topologystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

// ErrClosed is returned by BadgerCache methods after Close.
var ErrClosed = errors.New("topologystore: cache closed")

// Config configures a BadgerCache.
type Config struct {
	// Dir is the Badger data directory. Required.
	Dir string

	// GCInterval is how often the background value-log GC runs.
	// Defaults to 10 minutes.
	GCInterval time.Duration

	// GCThreshold is the minimum discardable ratio passed to
	// badger.DB.RunValueLogGC. Defaults to 0.5.
	GCThreshold float64

	// SyncWrites enables fsync after every write, trading latency for
	// durability. A topology cache is a convenience, not a source of
	// truth, so the default is false.
	SyncWrites bool
}

func (c Config) withDefaults() Config {
	if c.GCInterval <= 0 {
		c.GCInterval = 10 * time.Minute
	}
	if c.GCThreshold <= 0 {
		c.GCThreshold = 0.5
	}
	return c
}

// cachedNode is the persisted shape of a domain.NodeDescriptor.
// Credentials are intentionally omitted.
type cachedNode struct {
	URL      string `json:"url"`
	IsLeader bool   `json:"is_leader"`
}

// BadgerCache implements cluster.TopologyCache on top of a Badger
// key-value store. Each serverHash maps to one JSON-encoded entry.
type BadgerCache struct {
	db     *badger.DB
	logger *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerCache opens (or creates) a Badger-backed topology cache at
// cfg.Dir.
func NewBadgerCache(cfg Config, logger *slog.Logger) (*BadgerCache, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("topologystore: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("topologystore: open db: %w", err)
	}

	c := &BadgerCache{
		db:     db,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go c.gcLoop(cfg.GCInterval, cfg.GCThreshold)

	logger.Info("topology cache opened", "dir", cfg.Dir)
	return c, nil
}

// Load returns the cached topology for serverHash, or a nil NodeList
// (with a nil error) if nothing has been cached yet.
func (c *BadgerCache) Load(serverHash string) (domain.NodeList, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(serverHash))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("topologystore: load %s: %w", serverHash, err)
	}
	if raw == nil {
		return nil, nil
	}

	var cached []cachedNode
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("topologystore: decode %s: %w", serverHash, err)
	}

	nodes := make(domain.NodeList, 0, len(cached))
	for _, cn := range cached {
		nd := &domain.NodeDescriptor{URL: cn.URL}
		if cn.IsLeader {
			nd.ClusterInfo = &domain.ClusterInfo{IsLeader: true}
		}
		nodes = append(nodes, nd)
	}
	return nodes, nil
}

// Save persists nodes under serverHash, replacing any prior entry.
func (c *BadgerCache) Save(serverHash string, nodes domain.NodeList) error {
	cached := make([]cachedNode, 0, len(nodes))
	for _, n := range nodes {
		cached = append(cached, cachedNode{URL: n.URL, IsLeader: n.IsLeader()})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("topologystore: encode %s: %w", serverHash, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(serverHash), raw)
	})
	if err != nil {
		return fmt.Errorf("topologystore: save %s: %w", serverHash, err)
	}
	return nil
}

// Close stops the background GC loop and closes the underlying Badger
// database.
func (c *BadgerCache) Close() error {
	close(c.stopCh)
	<-c.doneCh

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("topologystore: close db: %w", err)
	}
	return nil
}

func (c *BadgerCache) gcLoop(interval time.Duration, threshold float64) {
	defer close(c.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				if err := c.db.RunValueLogGC(threshold); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						c.logger.Warn("topology cache gc failed", "error", err)
					}
					break
				}
			}
		case <-c.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
