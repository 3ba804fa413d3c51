// Package metrics exports search counters in the Prometheus text format so a
// node_exporter textfile collector can pick them up after each run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harrison/stemfind/internal/traversal"
)

const namespace = "stemfind"

// Collector holds the counters for one run on a private registry.
type Collector struct {
	registry *prometheus.Registry

	dirsListed prometheus.Counter
	filesSeen  prometheus.Counter
	matches    prometheus.Counter
	listErrors prometheus.Counter
	skipped    prometheus.Counter
	duration   prometheus.Gauge
}

// NewCollector creates a Collector with all series registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		dirsListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directories_listed_total",
			Help:      "Directories successfully listed.",
		}),
		filesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_examined_total",
			Help:      "Regular files whose stem was compared against the term.",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Files whose stem contained the term.",
		}),
		listErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_errors_total",
			Help:      "Directories that could not be listed.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_entries_total",
			Help:      "Entries that were neither regular files nor directories.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall-clock duration of the last search.",
		}),
	}

	c.registry.MustRegister(c.dirsListed, c.filesSeen, c.matches, c.listErrors, c.skipped, c.duration)
	return c
}

// Record adds a finished search to the counters.
func (c *Collector) Record(snap traversal.Snapshot, d time.Duration) {
	c.dirsListed.Add(float64(snap.DirectoriesListed))
	c.filesSeen.Add(float64(snap.FilesExamined))
	c.matches.Add(float64(snap.Matches))
	c.listErrors.Add(float64(snap.ListErrors))
	c.skipped.Add(float64(snap.SkippedEntries))
	c.duration.Set(d.Seconds())
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all series to path, replacing it atomically.
func (c *Collector) WriteTextfile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
