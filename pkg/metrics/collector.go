package metrics

import (
	"time"

	"github.com/fcrepo-go/lsup/pkg/binstore"
	"github.com/fcrepo-go/lsup/pkg/store"
)

// Collector periodically samples the quad store and binary store and
// publishes the results as gauges, rather than requiring every read
// path to update metrics inline.
type Collector struct {
	env      *store.Environment
	binStore *binstore.Store
	stopCh   chan struct{}
}

// NewCollector creates a metrics collector over a repository's
// environment and binary store.
func NewCollector(env *store.Environment, bin *binstore.Store) *Collector {
	return &Collector{
		env:      env,
		binStore: bin,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic collection on a 15-second interval.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
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

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectStoreMetrics()
	c.collectBinStoreMetrics()
}

func (c *Collector) collectStoreMetrics() {
	if c.env == nil {
		return
	}
	stat, err := c.env.Stat()
	if err != nil {
		return
	}
	TermsTotal.Set(float64(stat.Terms))
	ContextsTotal.Set(float64(stat.Contexts))
}

func (c *Collector) collectBinStoreMetrics() {
	if c.binStore == nil {
		return
	}
	if size, err := c.binStore.Size(); err == nil {
		BinaryBytesTotal.Set(float64(size))
	}
	if count, err := c.binStore.Count(); err == nil {
		BinaryFilesTotal.Set(float64(count))
	}
}
