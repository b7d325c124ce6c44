package approval

import (
	"fmt"
	"strings"
	"time"

	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ApprovalResult struct {
	Log   *models.ProductionLog
	Batch *models.Batch
	Box   *models.Box // yalnızca son aşama onayında dolar
}

// checkOwnership: Onaylayan/reddeden yönetici, kaydı giren operatörün
// yöneticisi olmalı (sahiplik zinciri).
func checkOwnership(manager *models.User, operatorID uint) error {
	var operator models.User
	if err := database.DB.First(&operator, "id = ?", operatorID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Operatör bilgisi yüklenemedi")
	}
	if operator.ManagerID == nil || *operator.ManagerID != manager.ID {
		return fiber.NewError(fiber.StatusForbidden, "Bu kaydın operatörü sizin operatörünüz değil")
	}
	return nil
}

// checkSection: Yönetici, kaydın ait olduğu bölüme atanmış olmalı
// (bölüm izolasyonu). Sahiplikten bağımsız ikinci kontrol.
func checkSection(manager *models.User, section models.StageType) error {
	assigned, err := auth.IsAssignedToSection(manager.ID, section)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Bölüm ataması kontrol edilemedi")
	}
	if !assigned {
		return fiber.NewError(fiber.StatusForbidden,
			fmt.Sprintf("Bu bölümün onay yetkisi sizde değil (%s)", section))
	}
	return nil
}

// ApproveProductionLog: PENDING logu onaylar ve aynı transaction içinde
// bağlı tek mutasyonu uygular: logun aşaması partinin o anki aşamasına
// eşitse aşama ilerler; son aşamada (PACKING) parti tamamlanır ve koli
// oluşur. Log onayı ile aşama geçişi birlikte başarılı olur ya da birlikte
// geri alınır.
func ApproveProductionLog(logID, managerID uint) (*ApprovalResult, error) {
	var manager models.User
	if err := database.DB.First(&manager, "id = ?", managerID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Yönetici bulunamadı")
	}
	if manager.Role != models.RoleManager {
		return nil, fiber.NewError(fiber.StatusForbidden, "Onay yetkisi yalnızca yöneticidedir")
	}

	var log models.ProductionLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
	}
	if log.ApprovalStatus != models.ApprovalPending {
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Kayıt onay beklemiyor (durum: %s)", log.ApprovalStatus))
	}

	if err := checkOwnership(&manager, log.OperatorID); err != nil {
		return nil, err
	}
	if err := checkSection(&manager, log.Stage); err != nil {
		return nil, err
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Kayıt ve parti transaction içinde taze okunur; yarışan iki onayın
	// aşamayı iki kez ilerletmesini bu okuma + PENDING koşulu engeller
	if err := tx.First(&log, "id = ?", logID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
	}
	if log.ApprovalStatus != models.ApprovalPending {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Kayıt onay beklemiyor (durum: %s)", log.ApprovalStatus))
	}

	var batch models.Batch
	if err := tx.First(&batch, "id = ?", log.BatchID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Parti yüklenemedi")
	}
	if batch.IsClosed() {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Parti kapalı (%s), onay uygulanamaz", batch.Status))
	}

	now := time.Now()
	log.ApprovalStatus = models.ApprovalApproved
	log.ApprovedBy = &manager.ID
	log.ApprovedAt = &now
	if err := tx.Save(&log).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
	}

	result := &ApprovalResult{Log: &log, Batch: &batch}

	// Aşama geçişi yalnızca logun aşaması partinin o anki aşamasıyla
	// eşleşiyorsa uygulanır; bayat loglar yalnızca onaylanmış olur
	if log.Stage == batch.CurrentStage {
		if batch.CurrentStage == models.StageCutting {
			// Hammadde girişte tamamen kullanılabilir kabul edilir,
			// sayım henüz yapılmadı
			batch.UsableQuantity = batch.TotalQuantity
		}

		if batch.CurrentStage == models.StagePacking {
			batch.Status = models.BatchStatusCompleted

			box := models.Box{
				BatchID:  batch.ID,
				Quantity: batch.UsableQuantity,
				Status:   models.BoxStatusPacked,
			}
			if err := tx.Create(&box).Error; err != nil {
				// batch_id unique index: parti başına tek koli
				tx.Rollback()
				return nil, fiber.NewError(fiber.StatusConflict, "Bu parti için koli zaten oluşturulmuş")
			}
			result.Box = &box
		} else {
			next, ok := models.NextStage(batch.CurrentStage)
			if !ok {
				tx.Rollback()
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Sonraki aşama belirlenemedi")
			}
			batch.CurrentStage = next
			batch.Status = models.BatchStatusInProgress
		}

		if err := tx.Save(&batch).Error; err != nil {
			tx.Rollback()
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Parti güncellenemedi")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Onay kaydedilemedi")
	}

	return result, nil
}

// RejectProductionLog: Reddetme yalnızca sahiplik kontrolü ister; bölüm
// eşleşmesi aranmaz. Parti aşamasına ve miktarlarına dokunulmaz.
// Onayla aynı transaction dokusunu taşır: kayıt tx içinde taze okunur,
// PENDING değilse yarışan bir onay/red kazanmıştır ve 409 döner.
func RejectProductionLog(logID, managerID uint, reason string) (*models.ProductionLog, error) {
	var manager models.User
	if err := database.DB.First(&manager, "id = ?", managerID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Yönetici bulunamadı")
	}
	if manager.Role != models.RoleManager {
		return nil, fiber.NewError(fiber.StatusForbidden, "Red yetkisi yalnızca yöneticidedir")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Red gerekçesi zorunlu")
	}

	var log models.ProductionLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
	}
	if log.ApprovalStatus != models.ApprovalPending {
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Kayıt onay beklemiyor (durum: %s)", log.ApprovalStatus))
	}

	if err := checkOwnership(&manager, log.OperatorID); err != nil {
		return nil, err
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&log, "id = ?", logID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusNotFound, "Üretim kaydı bulunamadı")
	}
	if log.ApprovalStatus != models.ApprovalPending {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Kayıt onay beklemiyor (durum: %s)", log.ApprovalStatus))
	}

	var batch models.Batch
	if err := tx.First(&batch, "id = ?", log.BatchID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Parti yüklenemedi")
	}
	if batch.IsClosed() {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Parti kapalı (%s), red uygulanamaz", batch.Status))
	}

	now := time.Now()
	log.ApprovalStatus = models.ApprovalRejected
	log.ApprovedBy = &manager.ID
	log.ApprovedAt = &now
	log.RejectionReason = reason
	if err := tx.Save(&log).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Red kaydedilemedi")
	}

	return &log, nil
}

type ReworkApprovalResult struct {
	Rework *models.ReworkRecord
	Batch  *models.Batch
}

// ApproveRework: Tadilat onayı miktar defterine yazılan TEK noktadır:
// kullanılabilir += kurtarılan, hurda += hurda. Kusurlu miktar azaltılmaz;
// havuz her zaman kusur toplamı − (bekleyen+onaylı tadilat) olarak türetilir.
// Aşama geçişi yoktur.
func ApproveRework(reworkID, managerID uint) (*ReworkApprovalResult, error) {
	var manager models.User
	if err := database.DB.First(&manager, "id = ?", managerID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Yönetici bulunamadı")
	}
	if manager.Role != models.RoleManager {
		return nil, fiber.NewError(fiber.StatusForbidden, "Onay yetkisi yalnızca yöneticidedir")
	}

	var record models.ReworkRecord
	if err := database.DB.First(&record, "id = ?", reworkID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Tadilat kaydı bulunamadı")
	}
	if record.ApprovalStatus != models.ApprovalPending {
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Tadilat onay beklemiyor (durum: %s)", record.ApprovalStatus))
	}

	if err := checkOwnership(&manager, record.OperatorID); err != nil {
		return nil, err
	}
	if err := checkSection(&manager, record.ReworkStage); err != nil {
		return nil, err
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&record, "id = ?", reworkID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusNotFound, "Tadilat kaydı bulunamadı")
	}
	if record.ApprovalStatus != models.ApprovalPending {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Tadilat onay beklemiyor (durum: %s)", record.ApprovalStatus))
	}

	var batch models.Batch
	if err := tx.First(&batch, "id = ?", record.BatchID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Parti yüklenemedi")
	}
	if batch.IsClosed() {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Parti kapalı (%s), onay uygulanamaz", batch.Status))
	}

	now := time.Now()
	record.ApprovalStatus = models.ApprovalApproved
	record.ApprovedBy = &manager.ID
	record.ApprovedAt = &now
	if err := tx.Save(&record).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Tadilat güncellenemedi")
	}

	batch.UsableQuantity += record.CuredQuantity
	batch.ScrappedQuantity += record.ScrappedQuantity
	if err := tx.Save(&batch).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Parti güncellenemedi")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Onay kaydedilemedi")
	}

	return &ReworkApprovalResult{Rework: &record, Batch: &batch}, nil
}

// RejectRework: Sahiplik kontrolü yeterlidir. Miktarlara dokunulmaz;
// reddedilen kayıt PENDING sayılmadığı için havuz kendiliğinden açılır.
// Kayıt tx içinde taze okunur; yarışan bir onay kazandıysa 409 döner.
func RejectRework(reworkID, managerID uint, reason string) (*models.ReworkRecord, error) {
	var manager models.User
	if err := database.DB.First(&manager, "id = ?", managerID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Yönetici bulunamadı")
	}
	if manager.Role != models.RoleManager {
		return nil, fiber.NewError(fiber.StatusForbidden, "Red yetkisi yalnızca yöneticidedir")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Red gerekçesi zorunlu")
	}

	var record models.ReworkRecord
	if err := database.DB.First(&record, "id = ?", reworkID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Tadilat kaydı bulunamadı")
	}
	if record.ApprovalStatus != models.ApprovalPending {
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Tadilat onay beklemiyor (durum: %s)", record.ApprovalStatus))
	}

	if err := checkOwnership(&manager, record.OperatorID); err != nil {
		return nil, err
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.First(&record, "id = ?", reworkID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusNotFound, "Tadilat kaydı bulunamadı")
	}
	if record.ApprovalStatus != models.ApprovalPending {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Tadilat onay beklemiyor (durum: %s)", record.ApprovalStatus))
	}

	var batch models.Batch
	if err := tx.First(&batch, "id = ?", record.BatchID).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Parti yüklenemedi")
	}
	if batch.IsClosed() {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Parti kapalı (%s), red uygulanamaz", batch.Status))
	}

	now := time.Now()
	record.ApprovalStatus = models.ApprovalRejected
	record.ApprovedBy = &manager.ID
	record.ApprovedAt = &now
	record.RejectionReason = reason
	if err := tx.Save(&record).Error; err != nil {
		tx.Rollback()
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Tadilat güncellenemedi")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Red kaydedilemedi")
	}

	return &record, nil
}
