package rework

import (
	"fmt"
	"time"

	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateReworkInput struct {
	BatchID          uint
	OperatorID       uint
	ReworkStage      models.StageType
	Quantity         int
	CuredQuantity    int
	ScrappedQuantity int
	StartTime        time.Time
	EndTime          time.Time
}

// AvailableForRework: (parti, kaynak aşama) için tadilata açık kusur havuzu.
// Saklanan bir sayaç değildir; her seferinde kusur kayıtları toplamından
// bekleyen + onaylı tadilat taleplerinin toplamı düşülerek hesaplanır.
// Reddedilen talepler düşülmez, havuza kendiliğinden geri döner.
func AvailableForRework(db *gorm.DB, batchID uint, stage models.StageType) (int, error) {
	var totalDefects int64
	if err := db.Model(&models.DefectRecord{}).
		Where("batch_id = ? AND stage = ?", batchID, stage).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&totalDefects).Error; err != nil {
		return 0, err
	}

	var claimed int64
	if err := db.Model(&models.ReworkRecord{}).
		Where("batch_id = ? AND rework_stage = ? AND approval_status IN ?",
			batchID, stage, []models.ApprovalStatus{models.ApprovalPending, models.ApprovalApproved}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&claimed).Error; err != nil {
		return 0, err
	}

	return int(totalDefects - claimed), nil
}

// hasOverlappingWork: Operatörün verilen zaman aralığıyla çakışan üretim
// veya tadilat kaydı var mı? Çakışma: mevcut.start < yeni.end VE
// mevcut.end > yeni.start
func hasOverlappingWork(db *gorm.DB, operatorID uint, start, end time.Time) (bool, error) {
	var logCount int64
	if err := db.Model(&models.ProductionLog{}).
		Where("operator_id = ? AND start_time < ? AND end_time > ?", operatorID, end, start).
		Count(&logCount).Error; err != nil {
		return false, err
	}
	if logCount > 0 {
		return true, nil
	}

	var reworkCount int64
	if err := db.Model(&models.ReworkRecord{}).
		Where("operator_id = ? AND start_time < ? AND end_time > ?", operatorID, end, start).
		Count(&reworkCount).Error; err != nil {
		return false, err
	}
	return reworkCount > 0, nil
}

// CreateRework: Tadilat talebini PENDING olarak açar. Kritik kural: kalite
// kaydının aksine burada parti miktarlarına DOKUNULMAZ; kullanılabilir/hurda
// mutasyonu yalnızca yönetici onayında uygulanır.
func CreateRework(input CreateReworkInput) (*models.ReworkRecord, error) {
	var operator models.User
	if err := database.DB.First(&operator, "id = ?", input.OperatorID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Operatör bulunamadı")
	}
	if operator.Role != models.RoleOperator {
		return nil, fiber.NewError(fiber.StatusForbidden, "Tadilat kaydını yalnızca operatör girebilir")
	}

	if input.Quantity <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tadilat miktarı 0'dan büyük olmalı")
	}
	if input.CuredQuantity < 0 || input.ScrappedQuantity < 0 ||
		input.CuredQuantity+input.ScrappedQuantity != input.Quantity {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Kurtarılan + hurda, tadilat miktarına eşit olmalı (%d + %d != %d)",
				input.CuredQuantity, input.ScrappedQuantity, input.Quantity))
	}
	if !models.IsReworkableStage(input.ReworkStage) {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Yalnızca kesim ve dikiş kusurları tadilata alınabilir (gelen: %s)", input.ReworkStage))
	}
	if input.EndTime.Before(input.StartTime) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Bitiş zamanı başlangıçtan önce olamaz")
	}

	assigned, err := auth.IsAssignedToSection(operator.ID, input.ReworkStage)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Bölüm ataması kontrol edilemedi")
	}
	if !assigned {
		return nil, fiber.NewError(fiber.StatusForbidden,
			fmt.Sprintf("Yanlış bölüm: operatör %s bölümüne atanmamış", input.ReworkStage))
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var batch models.Batch
	if err := tx.First(&batch, "id = ?", input.BatchID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
	}
	if batch.IsClosed() {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Parti kapalı (%s)", batch.Status))
	}

	overlap, err := hasOverlappingWork(tx, operator.ID, input.StartTime, input.EndTime)
	if err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Zaman çakışması kontrol edilemedi")
	}
	if overlap {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict, "Operatörün bu aralıkla çakışan başka bir kaydı var")
	}

	available, err := AvailableForRework(tx, batch.ID, input.ReworkStage)
	if err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Tadilat havuzu hesaplanamadı")
	}
	if input.Quantity > available {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Tadilat miktarı havuzu aşıyor (istenen: %d, uygun: %d)", input.Quantity, available))
	}

	record := models.ReworkRecord{
		BatchID:          batch.ID,
		ReworkStage:      input.ReworkStage,
		OperatorID:       operator.ID,
		Quantity:         input.Quantity,
		CuredQuantity:    input.CuredQuantity,
		ScrappedQuantity: input.ScrappedQuantity,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		ApprovalStatus:   models.ApprovalPending,
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Tadilat kaydı oluşturulamadı")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Tadilat kaydı kaydedilemedi")
	}

	return &record, nil
}
