package quality

import (
	"fmt"
	"time"

	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/batch"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/events"
	"fabrika-backend/internal/models"
	"fabrika-backend/internal/production"

	"github.com/gofiber/fiber/v2"
)

type RecordInspectionRequest struct {
	BatchID           uint         `json:"batch_id"`
	StartTime         string       `json:"start_time"` // "2025-12-09 08:30"
	EndTime           string       `json:"end_time"`
	QuantityIn        int          `json:"quantity_in"`
	DefectiveQuantity int          `json:"defective_quantity"`
	DefectLines       []DefectLine `json:"defect_lines"`
}

type InspectionResponse struct {
	Log     production.LogResponse `json:"log"`
	Batch   batch.BatchResponse    `json:"batch"`
	Defects []models.DefectRecord  `json:"defects"`
}

const timeLayout = "2006-01-02 15:04"

// POST /api/quality-checks
func RecordInspectionHandler(pub events.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		operator, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body RecordInspectionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.BatchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "batch_id zorunlu")
		}

		start, err := time.Parse(timeLayout, body.StartTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_time formatı 'YYYY-MM-DD HH:MM' olmalı")
		}
		end, err := time.Parse(timeLayout, body.EndTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_time formatı 'YYYY-MM-DD HH:MM' olmalı")
		}

		result, err := RecordInspection(RecordInspectionInput{
			BatchID:           body.BatchID,
			OperatorID:        operator.ID,
			StartTime:         start,
			EndTime:           end,
			QuantityIn:        body.QuantityIn,
			DefectiveQuantity: body.DefectiveQuantity,
			DefectLines:       body.DefectLines,
		})
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:     operator.ID,
			UserName:   operator.Name,
			EntityType: "quality_check",
			EntityID:   result.Log.ID,
			Action:     models.AuditActionCreate,
			Description: fmt.Sprintf("Kalite seansı: parti #%d, sayılan %d, kusurlu %d",
				result.Batch.ID, body.QuantityIn, body.DefectiveQuantity),
			After: result.Log,
		})

		pub.Publish(events.EventBatchStatusUpdated, batch.ToResponse(result.Batch))

		return c.Status(fiber.StatusCreated).JSON(InspectionResponse{
			Log:     production.ToResponse(result.Log),
			Batch:   batch.ToResponse(result.Batch),
			Defects: result.Defects,
		})
	}
}

// GET /api/defects?batch_id=&stage=
func ListDefectsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.DefectRecord{})
		if batchID := c.Query("batch_id"); batchID != "" {
			dbq = dbq.Where("batch_id = ?", batchID)
		}
		if stage := c.Query("stage"); stage != "" {
			dbq = dbq.Where("stage = ?", stage)
		}

		var defects []models.DefectRecord
		if err := dbq.Order("created_at DESC").Find(&defects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kusur kayıtları listelenemedi")
		}

		return c.JSON(defects)
	}
}
