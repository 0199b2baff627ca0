package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	c.ObserveOperation("stop", "all-down", 2*time.Second)
	c.ObserveOperation("stop", "all-down", time.Second)
	c.ObserveOperation("stop", "force-removed", time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(c.operations.WithLabelValues("stop", "all-down")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.operations.WithLabelValues("stop", "force-removed")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestAddRemoved(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	c.AddRemoved(3)
	c.AddRemoved(0)
	c.AddRemoved(-1)

	assert.InDelta(t, 3, testutil.ToFloat64(c.removed), 0)
}

func TestNewWithRegistry_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewWithRegistry(registry)
	require.NoError(t, err)

	_, err = NewWithRegistry(registry)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.ObserveOperation("restart", "restarted", 4*time.Second)
	c.AddRemoved(2)

	path := filepath.Join(t.TempDir(), "composectl.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `composectl_operations_total{operation="restart",outcome="restarted"} 1`)
	assert.Contains(t, text, "composectl_containers_removed_total 2")
	assert.Contains(t, text, "composectl_operation_duration_seconds_count{operation=\"restart\"} 1")
}

func TestWriteTextfile_EmptyPathIsNoop(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.NoError(t, c.WriteTextfile(""))
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Error(t, c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
