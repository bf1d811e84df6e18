package ingest

import (
	"fmt"

	"github.com/hydrocode-de/metacatalog-ingest/internal/models"
)

// Report aggregates step outcomes into the response sent to the client.
//
// Without an entry the ingestion failed. Once the entry exists the status is success even when
// later steps failed; in that case the first failure becomes the message and later failures are
// only visible in the logs and the published event.
func Report(entryID *int, outcomes []models.StepOutcome) models.IngestionResponse {
	var firstFailure *models.StepOutcome
	for i := range outcomes {
		if outcomes[i].Failed() {
			firstFailure = &outcomes[i]
			break
		}
	}

	if entryID == nil {
		message := fmt.Sprintf("[%s]: entry was not created", models.StepEntry)
		if firstFailure != nil {
			message = firstFailure.Message()
		}
		return models.IngestionResponse{Status: models.StatusError, Message: message}
	}

	if firstFailure != nil {
		return models.IngestionResponse{Status: models.StatusSuccess, Message: firstFailure.Message()}
	}

	return models.IngestionResponse{
		Status:  models.StatusSuccess,
		Message: fmt.Sprintf("Created new Entry %d", *entryID),
	}
}
