package quality

import (
	"testing"
	"time"

	"fabrika-backend/internal/models"
	"fabrika-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fiberCode(t *testing.T, err error) int {
	t.Helper()
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	return fe.Code
}

func qcBatch(t *testing.T, db *gorm.DB, total int) *models.Batch {
	t.Helper()
	// kesim onayından gelmiş parti: usable = total
	return testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.TotalQuantity = total
		b.UsableQuantity = total
		b.CurrentStage = models.StageQualityCheck
		b.Status = models.BatchStatusInProgress
	})
}

func inspectionInput(batchID, operatorID uint, in, defective int, lines []DefectLine) RecordInspectionInput {
	start := time.Now().Add(-time.Hour)
	return RecordInspectionInput{
		BatchID:           batchID,
		OperatorID:        operatorID,
		StartTime:         start,
		EndTime:           start.Add(30 * time.Minute),
		QuantityIn:        in,
		DefectiveQuantity: defective,
		DefectLines:       lines,
	}
}

func TestRecordInspectionFirstSessionAssignsUsable(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := qcBatch(t, db, 100)

	res, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 10, []DefectLine{
		{Stage: models.StageStitching, DefectCode: "DIK-01", Quantity: 10, Severity: models.SeverityMajor},
	}))
	require.NoError(t, err)

	// ilk seans kesimden taşınan geçici kullanılabilir miktarı sıfırlayıp
	// sayım sonucunu yazar
	assert.Equal(t, 50, res.Batch.UsableQuantity)
	assert.Equal(t, 10, res.Batch.DefectiveQuantity)
	assert.Equal(t, models.StageQualityCheck, res.Batch.CurrentStage, "sayım aşamayı ilerletmez")
	assert.Equal(t, models.ApprovalPending, res.Log.ApprovalStatus)
	require.NotNil(t, res.Log.QuantityOut)
	assert.Equal(t, 50, *res.Log.QuantityOut)

	require.Len(t, res.Defects, 1)
	assert.Equal(t, models.StageStitching, res.Defects[0].Stage)
}

func TestRecordInspectionSecondSessionAdds(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := qcBatch(t, db, 100)

	res, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 10, []DefectLine{
		{Stage: models.StageCutting, DefectCode: "KES-02", Quantity: 10, Severity: models.SeverityMinor},
	}))
	require.NoError(t, err)

	// ilk seans hala onay beklerken ikinci seans açılamaz
	_, err = RecordInspection(inspectionInput(batch.ID, operator.ID, 40, 0, nil))
	assert.Equal(t, fiber.StatusConflict, fiberCode(t, err))

	// ilk seans karara bağlanınca ikinci seans ekler
	require.NoError(t, db.Model(&models.ProductionLog{}).
		Where("id = ?", res.Log.ID).
		Update("approval_status", models.ApprovalApproved).Error)

	res2, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 40, 5, []DefectLine{
		{Stage: models.StageStitching, DefectCode: "DIK-03", Quantity: 5, Severity: models.SeverityCritical},
	}))
	require.NoError(t, err)
	assert.Equal(t, 85, res2.Batch.UsableQuantity, "50 + 35")
	assert.Equal(t, 15, res2.Batch.DefectiveQuantity)
}

func TestRecordInspectionCannotExceedTotal(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := qcBatch(t, db, 100)

	res, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 0, nil))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.ProductionLog{}).
		Where("id = ?", res.Log.ID).
		Update("approval_status", models.ApprovalApproved).Error)

	// 60 sayıldı, 50 daha toplamı aşar; reddedilen seanslar da sayılır
	_, err = RecordInspection(inspectionInput(batch.ID, operator.ID, 50, 0, nil))
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestRecordInspectionLineSumMismatch(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := qcBatch(t, db, 100)

	_, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 10, []DefectLine{
		{Stage: models.StageCutting, DefectCode: "KES-01", Quantity: 4, Severity: models.SeverityMinor},
	}))
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))

	var count int64
	require.NoError(t, db.Model(&models.DefectRecord{}).Count(&count).Error)
	assert.Zero(t, count, "hatalı seans kusur kaydı bırakmaz")
}

func TestRecordInspectionInvalidSeverity(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := qcBatch(t, db, 100)

	_, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 10, []DefectLine{
		{Stage: models.StageCutting, DefectCode: "KES-01", Quantity: 10, Severity: "FELAKET"},
	}))
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestRecordInspectionRejectsLateOriginStage(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := qcBatch(t, db, 100)

	for _, origin := range []models.StageType{models.StageRework, models.StageLabeling, models.StagePacking} {
		_, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 10, []DefectLine{
			{Stage: origin, DefectCode: "X-01", Quantity: 10, Severity: models.SeverityMinor},
		}))
		assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err), "kaynak: %s", origin)
	}
}

func TestRecordInspectionWrongStage(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.CurrentStage = models.StageStitching
		b.Status = models.BatchStatusInProgress
	})

	_, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 0, nil))
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestRecordInspectionSectionRequired(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageStitching)
	batch := qcBatch(t, db, 100)

	_, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 60, 0, nil))
	assert.Equal(t, fiber.StatusForbidden, fiberCode(t, err))
}

func TestRecordInspectionFlipsPendingBatch(t *testing.T) {
	db := testutil.SetupDB(t)
	manager := testutil.CreateManager(t, db, "mgr@fabrika.local")
	operator := testutil.CreateOperator(t, db, manager, "op@fabrika.local", models.StageQualityCheck)
	batch := testutil.CreateBatch(t, db, func(b *models.Batch) {
		b.TotalQuantity = 100
		b.UsableQuantity = 100
		b.CurrentStage = models.StageQualityCheck
		b.Status = models.BatchStatusPending
	})

	res, err := RecordInspection(inspectionInput(batch.ID, operator.ID, 100, 0, nil))
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusInProgress, res.Batch.Status)
}
