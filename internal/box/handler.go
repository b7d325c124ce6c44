package box

import (
	"fmt"

	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/events"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BoxResponse struct {
	ID          uint             `json:"id"`
	BatchID     uint             `json:"batch_id"`
	BatchNumber string           `json:"batch_number"`
	Quantity    int              `json:"quantity"`
	Status      models.BoxStatus `json:"status"`
	CreatedAt   string           `json:"created_at"`
}

func ToResponse(b *models.Box) BoxResponse {
	return BoxResponse{
		ID:          b.ID,
		BatchID:     b.BatchID,
		BatchNumber: b.Batch.BatchNumber,
		Quantity:    b.Quantity,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/boxes?status=
func ListBoxesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Box{}).Preload("Batch")
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var boxes []models.Box
		if err := dbq.Order("created_at DESC").Find(&boxes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Koliler listelenemedi")
		}

		resp := make([]BoxResponse, 0, len(boxes))
		for i := range boxes {
			resp = append(resp, ToResponse(&boxes[i]))
		}
		return c.JSON(resp)
	}
}

type UpdateBoxStatusRequest struct {
	Status models.BoxStatus `json:"status"`
}

// PUT /api/boxes/:id/status
// Koli durumu yalnızca ileri gider: PACKED -> SHIPPED -> DELIVERED
func UpdateBoxStatusHandler(pub events.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var b models.Box
		if err := database.DB.Preload("Batch").First(&b, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Koli bulunamadı")
		}

		var body UpdateBoxStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if !models.IsValidBoxStatus(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz koli durumu: %s", body.Status))
		}
		if !models.CanTransitionBoxStatus(b.Status, body.Status) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Koli durumu geriye alınamaz (%s -> %s)", b.Status, body.Status))
		}

		before := b
		b.Status = body.Status
		if err := database.DB.Save(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Koli güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      manager.ID,
			UserName:    manager.Name,
			EntityType:  "box",
			EntityID:    b.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Koli durumu güncellendi: %s -> %s", before.Status, b.Status),
			Before:      before,
			After:       b,
		})

		resp := ToResponse(&b)
		pub.Publish(events.EventBoxUpdated, resp)

		return c.JSON(resp)
	}
}
