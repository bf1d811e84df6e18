package services

import (
	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricIngestionsTotal = "ingestions_total"
	MetricStepsTotal      = "ingestion_steps_total"
	MetricRowsAppended    = "rows_appended_total"
	MetricPreviewsTotal   = "previews_total"
)

var CounterIngestions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      MetricIngestionsTotal,
		Help:      "Uploads processed, by response status.",
	},
	[]string{
		"status",
	},
)

var CounterSteps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      MetricStepsTotal,
		Help:      "Ingestion steps, by step and outcome.",
	},
	[]string{
		"step",
		"outcome",
	},
)

var CounterRowsAppended = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      MetricRowsAppended,
		Help:      "Data rows written to uploaded tables.",
	},
)

var CounterPreviews = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      MetricPreviewsTotal,
		Help:      "Schema previews, by result.",
	},
	[]string{
		"result",
	},
)

func init() {
	prometheus.MustRegister(CounterIngestions)
	prometheus.MustRegister(CounterSteps)
	prometheus.MustRegister(CounterRowsAppended)
	prometheus.MustRegister(CounterPreviews)
}

// StepOutcomeLabel is the outcome label value of a recorded step
func StepOutcomeLabel(o models.StepOutcome) string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.Succeeded:
		return "succeeded"
	default:
		return "failed"
	}
}

// RecordIngestion counts the response status and every step outcome of one upload.
// rows is the number of data rows written, zero when nothing was materialized.
func RecordIngestion(status string, outcomes []models.StepOutcome, rows int) {
	CounterIngestions.WithLabelValues(status).Inc()
	for _, o := range outcomes {
		CounterSteps.WithLabelValues(string(o.Step), StepOutcomeLabel(o)).Inc()
	}
	if rows > 0 {
		CounterRowsAppended.Add(float64(rows))
	}
}
