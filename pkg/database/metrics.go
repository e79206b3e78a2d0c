package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatsCollector exports pgxpool connection statistics as Prometheus metrics.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	service string

	acquiredConns *prometheus.Desc
	idleConns     *prometheus.Desc
	totalConns    *prometheus.Desc
	maxConns      *prometheus.Desc
	acquireCount  *prometheus.Desc
	emptyAcquires *prometheus.Desc
	newConns      *prometheus.Desc
}

// NewPoolStatsCollector creates a collector reading stats from the given pool.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	labels := []string{"service"}
	return &PoolStatsCollector{
		pool:    pool,
		service: service,
		acquiredConns: prometheus.NewDesc(
			"db_pool_acquired_connections",
			"Number of currently acquired connections",
			labels, nil,
		),
		idleConns: prometheus.NewDesc(
			"db_pool_idle_connections",
			"Number of currently idle connections",
			labels, nil,
		),
		totalConns: prometheus.NewDesc(
			"db_pool_total_connections",
			"Total number of connections in the pool",
			labels, nil,
		),
		maxConns: prometheus.NewDesc(
			"db_pool_max_connections",
			"Maximum number of connections allowed",
			labels, nil,
		),
		acquireCount: prometheus.NewDesc(
			"db_pool_acquire_count_total",
			"Total number of connection acquires",
			labels, nil,
		),
		emptyAcquires: prometheus.NewDesc(
			"db_pool_empty_acquire_count_total",
			"Total number of acquires that had to wait for a connection",
			labels, nil,
		),
		newConns: prometheus.NewDesc(
			"db_pool_new_connections_total",
			"Total number of new connections created",
			labels, nil,
		),
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredConns
	ch <- c.idleConns
	ch <- c.totalConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.emptyAcquires
	ch <- c.newConns
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()

	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()), c.service)
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()), c.service)
	ch <- prometheus.MustNewConstMetric(c.emptyAcquires, prometheus.CounterValue, float64(stat.EmptyAcquireCount()), c.service)
	ch <- prometheus.MustNewConstMetric(c.newConns, prometheus.CounterValue, float64(stat.NewConnsCount()), c.service)
}

// RegisterPoolMetrics registers a pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
