package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatsCollector exposes pgx pool statistics as gauges, read at
// scrape time. Register it once per process when running on postgres.
type PoolStatsCollector struct {
	pool *pgxpool.Pool

	open    *prometheus.Desc
	inUse   *prometheus.Desc
	idle    *prometheus.Desc
	maxOpen *prometheus.Desc
}

var _ prometheus.Collector = (*PoolStatsCollector)(nil)

func NewPoolStatsCollector(pool *pgxpool.Pool) *PoolStatsCollector {
	fqName := func(name string) string {
		return prometheus.BuildFQName(namespace, "", name)
	}
	return &PoolStatsCollector{
		pool: pool,
		open: prometheus.NewDesc(fqName("db_connections_open"),
			"Total number of open database connections", nil, nil),
		inUse: prometheus.NewDesc(fqName("db_connections_in_use"),
			"Number of database connections currently acquired", nil, nil),
		idle: prometheus.NewDesc(fqName("db_connections_idle"),
			"Number of idle database connections", nil, nil),
		maxOpen: prometheus.NewDesc(fqName("db_connections_max_open"),
			"Maximum number of open database connections allowed", nil, nil),
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.open
	ch <- c.inUse
	ch <- c.idle
	ch <- c.maxOpen
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}

	stat := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.maxOpen, prometheus.GaugeValue, float64(stat.MaxConns()))
}
