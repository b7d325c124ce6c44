package production

import (
	"testing"
	"time"

	"fabrika-backend/internal/models"
	"fabrika-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func fiberCode(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	return fe.Code
}

func TestCreateLogPendingDoesNotTouchBatch(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageStitching)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.CurrentStage = models.StageStitching
		b.Status = models.BatchStatusInProgress
		b.UsableQuantity = 100
	})

	start := time.Now().Add(-2 * time.Hour)
	log, err := CreateLog(CreateLogInput{
		BatchID:     batch.ID,
		OperatorID:  operator.ID,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		QuantityIn:  intPtr(100),
		QuantityOut: intPtr(98),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, log.ApprovalStatus)
	assert.Equal(t, models.StageStitching, log.Stage, "aşama oluşturma anından damgalanır")

	var fresh models.Batch
	require.NoError(t, db.First(&fresh, batch.ID).Error)
	assert.Equal(t, models.StageStitching, fresh.CurrentStage)
	assert.Equal(t, 100, fresh.UsableQuantity)
	assert.Equal(t, models.BatchStatusInProgress, fresh.Status)
}

func TestCreateLogTerminalStageQuantityRules(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageLabeling)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.CurrentStage = models.StageLabeling
		b.Status = models.BatchStatusInProgress
		b.UsableQuantity = 90
		b.DefectiveQuantity = 10
	})

	start := time.Now().Add(-time.Hour)
	base := CreateLogInput{
		BatchID:    batch.ID,
		OperatorID: operator.ID,
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
	}

	// quantity_in kullanılabilir miktara eşit olmalı
	in := base
	in.QuantityIn = intPtr(50)
	in.QuantityOut = intPtr(50)
	_, err := CreateLog(in)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))

	// quantity_out quantity_in'e eşit olmalı, kayıp yok
	out := base
	out.QuantityIn = intPtr(90)
	out.QuantityOut = intPtr(89)
	_, err = CreateLog(out)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))

	// quantity_in zorunlu
	missing := base
	_, err = CreateLog(missing)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))

	ok := base
	ok.QuantityIn = intPtr(90)
	ok.QuantityOut = intPtr(90)
	log, err := CreateLog(ok)
	require.NoError(t, err)
	assert.Equal(t, models.StageLabeling, log.Stage)
}

func TestCreateLogSectionMismatch(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageCutting)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.CurrentStage = models.StageStitching
		b.Status = models.BatchStatusInProgress
	})

	start := time.Now().Add(-time.Hour)
	_, err := CreateLog(CreateLogInput{
		BatchID:    batch.ID,
		OperatorID: operator.ID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
}

func TestCreateLogRejectsQualityCheckStage(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.CurrentStage = models.StageQualityCheck
		b.Status = models.BatchStatusInProgress
	})

	start := time.Now().Add(-time.Hour)
	_, err := CreateLog(CreateLogInput{
		BatchID:    batch.ID,
		OperatorID: operator.ID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestCreateLogClosedBatch(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageCutting)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.Status = models.BatchStatusCancelled
	})

	start := time.Now().Add(-time.Hour)
	_, err := CreateLog(CreateLogInput{
		BatchID:    batch.ID,
		OperatorID: operator.ID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestCreateLogTimeOrder(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageCutting)
	batch := testutil.CreateBatch(t, db, nil)

	start := time.Now()
	_, err := CreateLog(CreateLogInput{
		BatchID:    batch.ID,
		OperatorID: operator.ID,
		StartTime:  start,
		EndTime:    start.Add(-time.Minute),
	})
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestCreateLogBrokenMachine(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageCutting)
	batch := testutil.CreateBatch(t, db, nil)

	machine := models.Machine{Code: "KES-01", Name: "Kesim-1", Section: models.StageCutting, Status: models.MachineBroken}
	require.NoError(t, db.Create(&machine).Error)

	start := time.Now().Add(-time.Hour)
	_, err := CreateLog(CreateLogInput{
		BatchID:    batch.ID,
		OperatorID: operator.ID,
		MachineID:  &machine.ID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestCreateLogManagerCannotLog(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local", models.StageCutting)
	batch := testutil.CreateBatch(t, db, nil)

	start := time.Now().Add(-time.Hour)
	_, err := CreateLog(CreateLogInput{
		BatchID:    batch.ID,
		OperatorID: manager.ID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
}
