package ingest

import (
	"testing"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	id := 42

	t.Run("all steps succeeded", func(t *testing.T) {
		res := Report(&id, []models.StepOutcome{
			{Step: models.StepEntry, Succeeded: true},
			{Step: models.StepCoAuthors, Skipped: true},
		})
		assert.Equal(t, models.IngestionResponse{Status: models.StatusSuccess, Message: "Created new Entry 42"}, res)
	})

	t.Run("partial failure keeps success status", func(t *testing.T) {
		res := Report(&id, []models.StepOutcome{
			{Step: models.StepEntry, Succeeded: true},
			{Step: models.StepKeywords, Detail: "keyword 7 does not exist"},
			{Step: models.StepDetails, Detail: "second failure"},
		})
		assert.Equal(t, models.StatusSuccess, res.Status)
		assert.Equal(t, "[keywords]: keyword 7 does not exist", res.Message)
	})

	t.Run("entry failure", func(t *testing.T) {
		res := Report(nil, []models.StepOutcome{{Step: models.StepEntry, Detail: "license does not exist"}})
		assert.Equal(t, models.IngestionResponse{Status: models.StatusError, Message: "[entry]: license does not exist"}, res)
	})

	t.Run("no entry and no outcomes", func(t *testing.T) {
		res := Report(nil, nil)
		assert.Equal(t, models.StatusError, res.Status)
		assert.Equal(t, "[entry]: entry was not created", res.Message)
	})
}
