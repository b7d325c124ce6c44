package quality

import (
	"fmt"
	"time"

	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DefectLine struct {
	Stage      models.StageType      `json:"stage"` // kusurun kaynağı (ör. CUTTING)
	DefectCode string                `json:"defect_code"`
	Quantity   int                   `json:"quantity"`
	Severity   models.DefectSeverity `json:"severity"`
}

type RecordInspectionInput struct {
	BatchID           uint
	OperatorID        uint
	StartTime         time.Time
	EndTime           time.Time
	QuantityIn        int
	DefectiveQuantity int
	DefectLines       []DefectLine
}

type InspectionResult struct {
	Log     *models.ProductionLog
	Batch   *models.Batch
	Defects []models.DefectRecord
}

// RecordInspection: Kalite kontrol seansını tek transaction içinde kaydeder.
// Üretim kayıtlarının aksine parti miktarları ONAYDA değil BURADA değişir;
// sayım miktar gerçeğini keşfeder, sabit bir tahsisi tüketmez. Oluşan logun
// onayı yalnızca aşamayı ilerletir, miktarlara bir daha dokunmaz.
func RecordInspection(input RecordInspectionInput) (*InspectionResult, error) {
	var operator models.User
	if err := database.DB.First(&operator, "id = ?", input.OperatorID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Operatör bulunamadı")
	}
	if operator.Role != models.RoleOperator {
		return nil, fiber.NewError(fiber.StatusForbidden, "Kalite kaydını yalnızca operatör girebilir")
	}

	assigned, err := auth.IsAssignedToSection(operator.ID, models.StageQualityCheck)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Bölüm ataması kontrol edilemedi")
	}
	if !assigned {
		return nil, fiber.NewError(fiber.StatusForbidden, "Yanlış bölüm: operatör kalite kontrole atanmamış")
	}

	if input.EndTime.Before(input.StartTime) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Bitiş zamanı başlangıçtan önce olamaz")
	}
	if input.QuantityIn <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "quantity_in 0'dan büyük olmalı")
	}
	if input.DefectiveQuantity < 0 || input.DefectiveQuantity > input.QuantityIn {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Kusurlu miktar 0 ile quantity_in arasında olmalı")
	}

	lineTotal := 0
	for _, line := range input.DefectLines {
		if line.Quantity <= 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Kusur satırı miktarı 0'dan büyük olmalı")
		}
		if !models.IsValidSeverity(line.Severity) {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz kusur şiddeti: %s", line.Severity))
		}
		if line.DefectCode == "" {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Kusur kodu zorunlu")
		}
		if !models.IsDefectOriginStage(line.Stage) {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz kusur kaynağı: %s", line.Stage))
		}
		lineTotal += line.Quantity
	}
	if lineTotal != input.DefectiveQuantity {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Kusur satırları toplamı kusurlu miktara eşit olmalı (satırlar: %d, kusurlu: %d)",
				lineTotal, input.DefectiveQuantity))
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Parti, transaction içinde taze okunur
	var batch models.Batch
	if err := tx.First(&batch, "id = ?", input.BatchID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
	}

	if batch.IsClosed() {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Parti kapalı (%s)", batch.Status))
	}
	if batch.CurrentStage != models.StageQualityCheck {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Parti kalite kontrol aşamasında değil (şu an: %s)", batch.CurrentStage))
	}

	// Aynı anda tek sayım seansı
	var pendingCount int64
	if err := tx.Model(&models.ProductionLog{}).
		Where("batch_id = ? AND stage = ? AND approval_status = ?",
			batch.ID, models.StageQualityCheck, models.ApprovalPending).
		Count(&pendingCount).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Bekleyen seans kontrol edilemedi")
	}
	if pendingCount > 0 {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict, "Bu parti için onay bekleyen bir kalite seansı zaten var")
	}

	// Şimdiye kadar sayılan miktar, kalite loglarının quantity_in toplamıdır.
	// Reddedilen seanslar da sayılır: red, miktar mutasyonunu geri almaz.
	var inspected int64
	if err := tx.Model(&models.ProductionLog{}).
		Where("batch_id = ? AND stage = ?", batch.ID, models.StageQualityCheck).
		Select("COALESCE(SUM(quantity_in), 0)").
		Scan(&inspected).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Sayım toplamı hesaplanamadı")
	}

	if int(inspected)+input.QuantityIn > batch.TotalQuantity {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Sayım toplam miktarı aşıyor (sayılan: %d, seans: %d, toplam: %d)",
				inspected, input.QuantityIn, batch.TotalQuantity))
	}

	defects := make([]models.DefectRecord, 0, len(input.DefectLines))
	for _, line := range input.DefectLines {
		d := models.DefectRecord{
			BatchID:    batch.ID,
			Stage:      line.Stage,
			DefectCode: line.DefectCode,
			Quantity:   line.Quantity,
			Severity:   line.Severity,
		}
		if err := tx.Create(&d).Error; err != nil {
			tx.Rollback()
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Kusur kaydı oluşturulamadı")
		}
		defects = append(defects, d)
	}

	// Kesim onayından taşınan geçici kullanılabilir miktar ilk sayımla
	// birlikte yerini sayım sonuçlarına bırakır; sonraki seanslar ekler.
	sessionUsable := input.QuantityIn - input.DefectiveQuantity
	if inspected == 0 {
		batch.UsableQuantity = sessionUsable
	} else {
		batch.UsableQuantity += sessionUsable
	}
	batch.DefectiveQuantity += input.DefectiveQuantity
	if batch.Status == models.BatchStatusPending {
		batch.Status = models.BatchStatusInProgress
	}

	if err := tx.Save(&batch).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Parti güncellenemedi")
	}

	quantityOut := sessionUsable
	log := models.ProductionLog{
		BatchID:        batch.ID,
		Stage:          models.StageQualityCheck,
		OperatorID:     operator.ID,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		QuantityIn:     &input.QuantityIn,
		QuantityOut:    &quantityOut,
		ApprovalStatus: models.ApprovalPending,
	}
	if err := tx.Create(&log).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Kalite kaydı oluşturulamadı")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Kalite seansı kaydedilemedi")
	}

	return &InspectionResult{Log: &log, Batch: &batch, Defects: defects}, nil
}
