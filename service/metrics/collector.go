// Package metrics exposes scheduler counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/boque/service/scheduler"
)

const namespace = "boque"

// StatsSource returns current scheduler counters
type StatsSource interface {
	Stats() scheduler.Stats
}

// Collector reads scheduler stats on every scrape
type Collector struct {
	source    StatsSource
	tasks     *prometheus.Desc
	completed *prometheus.Desc
}

// NewCollector creates a collector over source
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		tasks: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "tasks"),
			"Number of pending or running tasks.", []string{"state"}, nil),
		completed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "tasks_completed_total"),
			"Number of tasks that reached a terminal state.", []string{"state"}, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tasks
	ch <- c.completed
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.GaugeValue, float64(stats.Pending), "pending")
	ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.GaugeValue, float64(stats.Running), "running")
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(stats.Finished), "finished")
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(stats.Failed), "failed")
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(stats.Cancelled), "cancelled")
}

var _ prometheus.Collector = (*Collector)(nil)
