package box

import (
	"testing"

	"fabrika-backend/internal/models"
	"fabrika-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneBoxPerBatch(t *testing.T) {
	db := testutil.SetupDB(t)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.Status = models.BatchStatusCompleted
		b.CurrentStage = models.StagePacking
		b.UsableQuantity = 200
	})

	first := models.Box{BatchID: batch.ID, Quantity: 200, Status: models.BoxStatusPacked}
	require.NoError(t, db.Create(&first).Error)

	second := models.Box{BatchID: batch.ID, Quantity: 200, Status: models.BoxStatusPacked}
	err := db.Create(&second).Error
	assert.Error(t, err, "batch_id unique index parti başına tek koliyi garanti eder")
}

func TestToResponseCarriesBatchNumber(t *testing.T) {
	db := testutil.SetupDB(t)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.Status = models.BatchStatusCompleted
		b.CurrentStage = models.StagePacking
		b.UsableQuantity = 150
	})

	b := models.Box{BatchID: batch.ID, Quantity: 150, Status: models.BoxStatusPacked}
	require.NoError(t, db.Create(&b).Error)

	var loaded models.Box
	require.NoError(t, db.Preload("Batch").First(&loaded, b.ID).Error)

	resp := ToResponse(&loaded)
	assert.Equal(t, b.ID, resp.ID)
	assert.Equal(t, batch.ID, resp.BatchID)
	assert.Equal(t, batch.BatchNumber, resp.BatchNumber)
	assert.Equal(t, 150, resp.Quantity)
	assert.Equal(t, models.BoxStatusPacked, resp.Status)
}
