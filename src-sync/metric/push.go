package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// RunStats is what one finished sync run reports.
type RunStats struct {
	Duration    time.Duration
	Events      int
	Occurrences int
	Upcoming    int
	Warnings    int
}

// Push sends the run's metrics to a Pushgateway. The pipeline is a batch
// job, so there is nothing to scrape; one push per run replaces the scrape
// loop a server would have.
func Push(gatewayURL string, stats RunStats) error {
	registry := prometheus.NewRegistry()

	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedsync_last_run_duration_seconds",
		Help: "How long the last sync run took in seconds",
	})
	events := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedsync_feed_events",
		Help: "The number of VEVENT blocks in the fetched feed",
	})
	occurrences := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedsync_resolved_occurrences",
		Help: "The number of occurrences after recurrence expansion",
	})
	upcoming := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedsync_upcoming_entries",
		Help: "The number of entries written to the upcoming schedule",
	})
	warnings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedsync_run_warnings",
		Help: "The number of recoverable warnings in the last run",
	})
	registry.MustRegister(duration, events, occurrences, upcoming, warnings)

	duration.Set(stats.Duration.Seconds())
	events.Set(float64(stats.Events))
	occurrences.Set(float64(stats.Occurrences))
	upcoming.Set(float64(stats.Upcoming))
	warnings.Set(float64(stats.Warnings))

	if err := push.New(gatewayURL, "schedsync").
		Gatherer(registry).
		Push(); err != nil {
		return fmt.Errorf("metric.Push: %w", err)
	}
	return nil
}
