// Package metrics exposes pool state to Prometheus.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// PoolStats is the read surface the collector scrapes. *threadpool.Pool
// satisfies it.
type PoolStats interface {
	Size() int
	QueueLen() int
	ActiveWorkers() int
	PendingErrors() int
}

// Collector reports pool gauges on every scrape. Register it with a
// prometheus.Registry; one Collector observes one pool.
type Collector struct {
	pool PoolStats

	workers *prometheus.Desc
	queued  *prometheus.Desc
	active  *prometheus.Desc
	pending *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(pool PoolStats) *Collector {
	return &Collector{
		pool: pool,
		workers: prometheus.NewDesc(
			"threadpool_workers",
			"Number of workers in the pool.",
			nil, nil,
		),
		queued: prometheus.NewDesc(
			"threadpool_queue_length",
			"Work items submitted but not yet picked up by a worker.",
			nil, nil,
		),
		active: prometheus.NewDesc(
			"threadpool_active_workers",
			"Workers currently executing a work item.",
			nil, nil,
		),
		pending: prometheus.NewDesc(
			"threadpool_pending_errors",
			"Captured worker errors not yet drained by WaitForWork.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workers
	ch <- c.queued
	ch <- c.active
	ch <- c.pending
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(c.pool.Size()))
	ch <- prometheus.MustNewConstMetric(c.queued, prometheus.GaugeValue, float64(c.pool.QueueLen()))
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(c.pool.ActiveWorkers()))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(c.pool.PendingErrors()))
}
