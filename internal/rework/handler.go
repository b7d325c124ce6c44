package rework

import (
	"fmt"
	"time"

	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateReworkRequest struct {
	BatchID          uint             `json:"batch_id"`
	ReworkStage      models.StageType `json:"rework_stage"`
	Quantity         int              `json:"quantity"`
	CuredQuantity    int              `json:"cured_quantity"`
	ScrappedQuantity int              `json:"scrapped_quantity"`
	StartTime        string           `json:"start_time"` // "2025-12-09 08:30"
	EndTime          string           `json:"end_time"`
}

type ReworkResponse struct {
	ID               uint                  `json:"id"`
	BatchID          uint                  `json:"batch_id"`
	ReworkStage      models.StageType      `json:"rework_stage"`
	OperatorID       uint                  `json:"operator_id"`
	Quantity         int                   `json:"quantity"`
	CuredQuantity    int                   `json:"cured_quantity"`
	ScrappedQuantity int                   `json:"scrapped_quantity"`
	StartTime        string                `json:"start_time"`
	EndTime          string                `json:"end_time"`
	ApprovalStatus   models.ApprovalStatus `json:"approval_status"`
	CreatedAt        string                `json:"created_at"`
}

const timeLayout = "2006-01-02 15:04"

func ToResponse(r *models.ReworkRecord) ReworkResponse {
	return ReworkResponse{
		ID:               r.ID,
		BatchID:          r.BatchID,
		ReworkStage:      r.ReworkStage,
		OperatorID:       r.OperatorID,
		Quantity:         r.Quantity,
		CuredQuantity:    r.CuredQuantity,
		ScrappedQuantity: r.ScrappedQuantity,
		StartTime:        r.StartTime.Format(timeLayout),
		EndTime:          r.EndTime.Format(timeLayout),
		ApprovalStatus:   r.ApprovalStatus,
		CreatedAt:        r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/reworks
func CreateReworkHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		operator, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateReworkRequest
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

		record, err := CreateRework(CreateReworkInput{
			BatchID:          body.BatchID,
			OperatorID:       operator.ID,
			ReworkStage:      body.ReworkStage,
			Quantity:         body.Quantity,
			CuredQuantity:    body.CuredQuantity,
			ScrappedQuantity: body.ScrappedQuantity,
			StartTime:        start,
			EndTime:          end,
		})
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:     operator.ID,
			UserName:   operator.Name,
			EntityType: "rework",
			EntityID:   record.ID,
			Action:     models.AuditActionCreate,
			Description: fmt.Sprintf("Tadilat talebi: parti #%d, %s, %d adet",
				record.BatchID, record.ReworkStage, record.Quantity),
			After: record,
		})

		return c.Status(fiber.StatusCreated).JSON(ToResponse(record))
	}
}

// GET /api/reworks?batch_id=&status=
func ListReworksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ReworkRecord{})
		if batchID := c.Query("batch_id"); batchID != "" {
			dbq = dbq.Where("batch_id = ?", batchID)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("approval_status = ?", status)
		}

		var records []models.ReworkRecord
		if err := dbq.Order("created_at DESC").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tadilat kayıtları listelenemedi")
		}

		resp := make([]ReworkResponse, 0, len(records))
		for i := range records {
			resp = append(resp, ToResponse(&records[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/batches/:id/rework-pool
// Kaynak aşama başına tadilata açık miktar (türetilmiş değer)
func ReworkPoolHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var b models.Batch
		if err := database.DB.First(&b, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Parti bulunamadı")
		}

		pool := fiber.Map{}
		for _, stage := range models.ReworkableStages {
			available, err := AvailableForRework(database.DB, b.ID, stage)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Tadilat havuzu hesaplanamadı")
			}
			pool[string(stage)] = available
		}

		return c.JSON(fiber.Map{
			"batch_id": b.ID,
			"pool":     pool,
		})
	}
}
