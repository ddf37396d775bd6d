package metrics

import (
	"time"

	"github.com/shepherd-sched/shepherd/pkg/clustermetrics"
)

// Collector periodically mirrors the cluster metrics source into Prometheus
// gauges.
type Collector struct {
	source   *clustermetrics.Source
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new gauge collector over the metrics source.
func NewCollector(source *clustermetrics.Source, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	for node, pct := range c.source.NodePercents() {
		NodeCPUPercent.WithLabelValues(node).Set(pct)
	}
	ClusterCPUPercent.Set(c.source.ClusterCPUPercent())

	if c.source.Available() {
		MetricsSourceAvailable.Set(1)
	} else {
		MetricsSourceAvailable.Set(0)
	}
}
