package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jaredcasper/DALI/threadpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var _ PoolStats = (*threadpool.Pool)(nil)

type fakeStats struct {
	size, queued, active, pending int
}

func (s fakeStats) Size() int          { return s.size }
func (s fakeStats) QueueLen() int      { return s.queued }
func (s fakeStats) ActiveWorkers() int { return s.active }
func (s fakeStats) PendingErrors() int { return s.pending }

func TestCollector(t *testing.T) {
	subject := NewCollector(fakeStats{size: 4, queued: 7, active: 2, pending: 1})

	expected := `
# HELP threadpool_active_workers Workers currently executing a work item.
# TYPE threadpool_active_workers gauge
threadpool_active_workers 2
# HELP threadpool_pending_errors Captured worker errors not yet drained by WaitForWork.
# TYPE threadpool_pending_errors gauge
threadpool_pending_errors 1
# HELP threadpool_queue_length Work items submitted but not yet picked up by a worker.
# TYPE threadpool_queue_length gauge
threadpool_queue_length 7
# HELP threadpool_workers Number of workers in the pool.
# TYPE threadpool_workers gauge
threadpool_workers 4
`
	require.NoError(t, testutil.CollectAndCompare(subject, strings.NewReader(expected)))
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(fakeStats{})))
}

func TestCollectorObservesPool(t *testing.T) {
	pool, err := threadpool.New(4)
	require.NoError(t, err)
	defer pool.Close()

	subject := NewCollector(pool)
	workers := `
# HELP threadpool_workers Number of workers in the pool.
# TYPE threadpool_workers gauge
threadpool_workers 4
`
	require.NoError(t, testutil.CollectAndCompare(subject, strings.NewReader(workers), "threadpool_workers"))

	require.NoError(t, pool.Submit(func(int) error { return errors.New("boom") }))
	require.NoError(t, pool.WaitForWork(false))

	pending := `
# HELP threadpool_pending_errors Captured worker errors not yet drained by WaitForWork.
# TYPE threadpool_pending_errors gauge
threadpool_pending_errors 1
`
	require.NoError(t, testutil.CollectAndCompare(subject, strings.NewReader(pending), "threadpool_pending_errors"))
}
