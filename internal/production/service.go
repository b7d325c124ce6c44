package production

import (
	"fmt"
	"time"

	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateLogInput struct {
	BatchID     uint
	OperatorID  uint
	MachineID   *uint
	StartTime   time.Time
	EndTime     time.Time
	QuantityIn  *int
	QuantityOut *int
}

// CreateLog: Operatörün aşama iş kaydını doğrular ve PENDING olarak yazar.
// Parti miktarlarına ve aşamasına burada DOKUNULMAZ; ilerleme yalnızca
// yönetici onayında olur.
func CreateLog(input CreateLogInput) (*models.ProductionLog, error) {
	var operator models.User
	if err := database.DB.First(&operator, "id = ?", input.OperatorID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Operatör bulunamadı")
	}
	if operator.Role != models.RoleOperator {
		return nil, fiber.NewError(fiber.StatusForbidden, "Üretim kaydını yalnızca operatör girebilir")
	}

	var batch models.Batch
	if err := database.DB.First(&batch, "id = ?", input.BatchID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
	}

	if batch.IsClosed() {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Parti kapalı (%s), yeni kayıt girilemez", batch.Status))
	}

	// Kalite kontrol kayıtları kusur satırlarıyla birlikte kendi ucundan girilir
	if batch.CurrentStage == models.StageQualityCheck {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Kalite kontrol kaydı /quality-checks üzerinden girilmelidir")
	}

	assigned, err := auth.IsAssignedToSection(operator.ID, batch.CurrentStage)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Bölüm ataması kontrol edilemedi")
	}
	if !assigned {
		return nil, fiber.NewError(fiber.StatusForbidden,
			fmt.Sprintf("Yanlış bölüm: operatör %s bölümüne atanmamış", batch.CurrentStage))
	}

	if input.EndTime.Before(input.StartTime) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Bitiş zamanı başlangıçtan önce olamaz")
	}

	if input.MachineID != nil {
		var m models.Machine
		if err := database.DB.First(&m, "id = ?", *input.MachineID).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Makine bulunamadı")
		}
		if m.Status != models.MachineOperational {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Makine çalışır durumda değil (%s)", m.Status))
		}
	}

	if input.QuantityIn != nil && *input.QuantityIn < 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "quantity_in negatif olamaz")
	}
	if input.QuantityOut != nil && *input.QuantityOut < 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "quantity_out negatif olamaz")
	}

	// Son işlem aşamalarında (etiketleme, katlama, paketleme) kayıp beklenmez:
	// operatör kullanılabilir havuzun tamamını işlemek zorundadır.
	if models.IsTerminalProcessingStage(batch.CurrentStage) {
		if input.QuantityIn == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("%s aşamasında quantity_in zorunlu", batch.CurrentStage))
		}
		if *input.QuantityIn != batch.UsableQuantity {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("quantity_in kullanılabilir miktara eşit olmalı (beklenen: %d, gelen: %d)",
					batch.UsableQuantity, *input.QuantityIn))
		}
		if input.QuantityOut == nil || *input.QuantityOut != *input.QuantityIn {
			received := "boş"
			if input.QuantityOut != nil {
				received = fmt.Sprintf("%d", *input.QuantityOut)
			}
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("quantity_out quantity_in'e eşit olmalı (beklenen: %d, gelen: %s)",
					*input.QuantityIn, received))
		}
	}

	log := models.ProductionLog{
		BatchID:        batch.ID,
		Stage:          batch.CurrentStage, // oluşturma anından damgalanır
		OperatorID:     operator.ID,
		MachineID:      input.MachineID,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		QuantityIn:     input.QuantityIn,
		QuantityOut:    input.QuantityOut,
		ApprovalStatus: models.ApprovalPending,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Üretim kaydı oluşturulamadı")
	}

	return &log, nil
}
