package services

import (
	"testing"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordIngestionCountsSteps(t *testing.T) {
	succeeded := testutil.ToFloat64(CounterSteps.WithLabelValues(string(models.StepEntry), "succeeded"))
	failed := testutil.ToFloat64(CounterSteps.WithLabelValues(string(models.StepKeywords), "failed"))
	skipped := testutil.ToFloat64(CounterSteps.WithLabelValues(string(models.StepDataSource), "skipped"))
	statuses := testutil.ToFloat64(CounterIngestions.WithLabelValues(models.StatusSuccess))
	rows := testutil.ToFloat64(CounterRowsAppended)

	RecordIngestion(models.StatusSuccess, []models.StepOutcome{
		{Step: models.StepEntry, Succeeded: true},
		{Step: models.StepKeywords, Detail: "keyword 3 does not exist"},
		{Step: models.StepDataSource, Skipped: true},
	}, 12)

	assert.Equal(t, succeeded+1, testutil.ToFloat64(CounterSteps.WithLabelValues(string(models.StepEntry), "succeeded")))
	assert.Equal(t, failed+1, testutil.ToFloat64(CounterSteps.WithLabelValues(string(models.StepKeywords), "failed")))
	assert.Equal(t, skipped+1, testutil.ToFloat64(CounterSteps.WithLabelValues(string(models.StepDataSource), "skipped")))
	assert.Equal(t, statuses+1, testutil.ToFloat64(CounterIngestions.WithLabelValues(models.StatusSuccess)))
	assert.Equal(t, rows+12, testutil.ToFloat64(CounterRowsAppended))
}

func TestEntryRoutingKey(t *testing.T) {
	complete := &models.EntryCreatedEvent{Steps: []models.StepOutcome{
		{Step: models.StepEntry, Succeeded: true},
		{Step: models.StepKeywords, Skipped: true},
	}}
	partial := &models.EntryCreatedEvent{Steps: []models.StepOutcome{
		{Step: models.StepEntry, Succeeded: true},
		{Step: models.StepMaterialize, Detail: "failed to append 2 rows"},
	}}

	assert.Equal(t, RoutingKeyEntryCreated, EntryRoutingKey(complete))
	assert.Equal(t, RoutingKeyEntryPartial, EntryRoutingKey(partial))
}
