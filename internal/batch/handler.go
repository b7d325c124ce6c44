package batch

import (
	"fmt"
	"strings"

	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateBatchRequest struct {
	BatchNumber   string `json:"batch_number"` // boş ise otomatik üretilir
	Style         string `json:"style"`
	TotalQuantity int    `json:"total_quantity"`
}

type BatchResponse struct {
	ID                uint               `json:"id"`
	BatchNumber       string             `json:"batch_number"`
	Style             string             `json:"style"`
	TotalQuantity     int                `json:"total_quantity"`
	UsableQuantity    int                `json:"usable_quantity"`
	DefectiveQuantity int                `json:"defective_quantity"`
	ScrappedQuantity  int                `json:"scrapped_quantity"`
	RemainingQuantity int                `json:"remaining_quantity"`
	CurrentStage      models.StageType   `json:"current_stage"`
	Status            models.BatchStatus `json:"status"`
	CreatedAt         string             `json:"created_at"`
}

func ToResponse(b *models.Batch) BatchResponse {
	return BatchResponse{
		ID:                b.ID,
		BatchNumber:       b.BatchNumber,
		Style:             b.Style,
		TotalQuantity:     b.TotalQuantity,
		UsableQuantity:    b.UsableQuantity,
		DefectiveQuantity: b.DefectiveQuantity,
		ScrappedQuantity:  b.ScrappedQuantity,
		RemainingQuantity: b.RemainingQuantity(),
		CurrentStage:      b.CurrentStage,
		Status:            b.Status,
		CreatedAt:         b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/batches
// Parti ilk aşamada (CUTTING), PENDING ve sıfır miktarlarla açılır.
func CreateBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.TotalQuantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "total_quantity 0'dan büyük olmalı")
		}

		batchNumber := strings.TrimSpace(body.BatchNumber)
		if batchNumber == "" {
			batchNumber = fmt.Sprintf("PRT-%s", strings.ToUpper(uuid.NewString()[:8]))
		}

		b := models.Batch{
			BatchNumber:   batchNumber,
			Style:         body.Style,
			TotalQuantity: body.TotalQuantity,
			CurrentStage:  models.StageCutting,
			Status:        models.BatchStatusPending,
			CreatedBy:     manager.ID,
		}

		if err := database.DB.Create(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Parti oluşturulamadı (parti numarası kullanımda olabilir)")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      manager.ID,
			UserName:    manager.Name,
			EntityType:  "batch",
			EntityID:    b.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Parti açıldı: %s, %d adet", b.BatchNumber, b.TotalQuantity),
			After:       b,
		})

		return c.Status(fiber.StatusCreated).JSON(ToResponse(&b))
	}
}

// GET /api/batches?status=&stage=
func ListBatchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Batch{})
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if stage := c.Query("stage"); stage != "" {
			dbq = dbq.Where("current_stage = ?", stage)
		}

		var batches []models.Batch
		if err := dbq.Order("created_at DESC").Find(&batches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Partiler listelenemedi")
		}

		resp := make([]BatchResponse, 0, len(batches))
		for i := range batches {
			resp = append(resp, ToResponse(&batches[i]))
		}
		return c.JSON(resp)
	}
}

type BatchDetailResponse struct {
	BatchResponse
	Logs    []models.ProductionLog `json:"logs"`
	Defects []models.DefectRecord  `json:"defects"`
	Reworks []models.ReworkRecord  `json:"reworks"`
	Box     *models.Box            `json:"box"`
}

// GET /api/batches/:id
func GetBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.Batch
		if err := database.DB.First(&b, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
		}

		detail := BatchDetailResponse{BatchResponse: ToResponse(&b)}

		if err := database.DB.Where("batch_id = ?", b.ID).Order("created_at ASC").Find(&detail.Logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kayıtları yüklenemedi")
		}
		if err := database.DB.Where("batch_id = ?", b.ID).Order("created_at ASC").Find(&detail.Defects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kusur kayıtları yüklenemedi")
		}
		if err := database.DB.Where("batch_id = ?", b.ID).Order("created_at ASC").Find(&detail.Reworks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tadilat kayıtları yüklenemedi")
		}

		var box models.Box
		if err := database.DB.Where("batch_id = ?", b.ID).First(&box).Error; err == nil {
			detail.Box = &box
		}

		return c.JSON(detail)
	}
}

// POST /api/batches/:id/cancel
// İptal terminaldir; parti başka mutasyon kabul etmez.
func CancelBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var b models.Batch
		if err := database.DB.First(&b, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
		}

		if b.Status == models.BatchStatusCompleted {
			return fiber.NewError(fiber.StatusBadRequest, "Tamamlanmış parti iptal edilemez")
		}
		if b.Status == models.BatchStatusCancelled {
			return fiber.NewError(fiber.StatusConflict, "Parti zaten iptal edilmiş")
		}

		before := b
		b.Status = models.BatchStatusCancelled
		if err := database.DB.Save(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parti güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      manager.ID,
			UserName:    manager.Name,
			EntityType:  "batch",
			EntityID:    b.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Parti iptal edildi: %s", b.BatchNumber),
			Before:      before,
			After:       b,
		})

		return c.JSON(ToResponse(&b))
	}
}
