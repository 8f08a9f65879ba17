package topologystore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

func newTestCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := NewBadgerCache(Config{Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, c.Close())
	})
	return c
}

func TestBadgerCacheLoadMissReturnsNilWithoutError(t *testing.T) {
	c := newTestCache(t)

	nodes, err := c.Load("no-such-hash")
	require.NoError(t, err)
	require.Nil(t, nodes)
}

func TestBadgerCacheSaveThenLoadRoundTrips(t *testing.T) {
	c := newTestCache(t)

	original := domain.NodeList{
		{URL: "http://node-a:8080", ClusterInfo: &domain.ClusterInfo{IsLeader: true}},
		{URL: "http://node-b:8080"},
		{URL: "http://node-c:8080"},
	}

	require.NoError(t, c.Save("hash-1", original))

	loaded, err := c.Load("hash-1")
	require.NoError(t, err)
	require.True(t, original.Equal(loaded))
}

func TestBadgerCacheSaveOverwritesPriorEntry(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Save("hash-1", domain.NodeList{
		{URL: "http://node-a:8080", ClusterInfo: &domain.ClusterInfo{IsLeader: true}},
	}))
	require.NoError(t, c.Save("hash-1", domain.NodeList{
		{URL: "http://node-b:8080", ClusterInfo: &domain.ClusterInfo{IsLeader: true}},
	}))

	loaded, err := c.Load("hash-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "http://node-b:8080", loaded[0].URL)
}

func TestBadgerCacheSurvivesReopenOverSameDirectory(t *testing.T) {
	dir := t.TempDir()

	c1, err := NewBadgerCache(Config{Dir: dir}, nil)
	require.NoError(t, err)

	original := domain.NodeList{
		{URL: "http://node-a:8080", ClusterInfo: &domain.ClusterInfo{IsLeader: true}},
		{URL: "http://node-b:8080"},
	}
	require.NoError(t, c1.Save("hash-1", original))
	require.NoError(t, c1.Close())

	c2, err := NewBadgerCache(Config{Dir: dir}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c2.Close()) })

	loaded, err := c2.Load("hash-1")
	require.NoError(t, err)
	require.True(t, original.Equal(loaded))
}

func TestBadgerCacheKeysAreIsolatedByServerHash(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Save("hash-a", domain.NodeList{{URL: "http://a:8080"}}))
	require.NoError(t, c.Save("hash-b", domain.NodeList{{URL: "http://b:8080"}}))

	loadedA, err := c.Load("hash-a")
	require.NoError(t, err)
	require.Len(t, loadedA, 1)
	require.Equal(t, "http://a:8080", loadedA[0].URL)

	loadedB, err := c.Load("hash-b")
	require.NoError(t, err)
	require.Len(t, loadedB, 1)
	require.Equal(t, "http://b:8080", loadedB[0].URL)
}

func TestBadgerCacheDropsCredentialsOnPersist(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Save("hash-1", domain.NodeList{
		{URL: "http://node-a:8080", Credentials: "should-not-survive"},
	}))

	loaded, err := c.Load("hash-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Nil(t, loaded[0].Credentials)
}
