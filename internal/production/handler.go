package production

import (
	"fmt"
	"time"

	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateLogRequest struct {
	BatchID     uint   `json:"batch_id"`
	MachineID   *uint  `json:"machine_id"`
	StartTime   string `json:"start_time"` // "2025-12-09 08:30"
	EndTime     string `json:"end_time"`
	QuantityIn  *int   `json:"quantity_in"`
	QuantityOut *int   `json:"quantity_out"`
}

type LogResponse struct {
	ID             uint                  `json:"id"`
	BatchID        uint                  `json:"batch_id"`
	Stage          models.StageType      `json:"stage"`
	OperatorID     uint                  `json:"operator_id"`
	MachineID      *uint                 `json:"machine_id"`
	StartTime      string                `json:"start_time"`
	EndTime        string                `json:"end_time"`
	QuantityIn     *int                  `json:"quantity_in"`
	QuantityOut    *int                  `json:"quantity_out"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status"`
	CreatedAt      string                `json:"created_at"`
}

const timeLayout = "2006-01-02 15:04"

func ToResponse(l *models.ProductionLog) LogResponse {
	return LogResponse{
		ID:             l.ID,
		BatchID:        l.BatchID,
		Stage:          l.Stage,
		OperatorID:     l.OperatorID,
		MachineID:      l.MachineID,
		StartTime:      l.StartTime.Format(timeLayout),
		EndTime:        l.EndTime.Format(timeLayout),
		QuantityIn:     l.QuantityIn,
		QuantityOut:    l.QuantityOut,
		ApprovalStatus: l.ApprovalStatus,
		CreatedAt:      l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/production-logs
func CreateLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		operator, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateLogRequest
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

		log, err := CreateLog(CreateLogInput{
			BatchID:     body.BatchID,
			OperatorID:  operator.ID,
			MachineID:   body.MachineID,
			StartTime:   start,
			EndTime:     end,
			QuantityIn:  body.QuantityIn,
			QuantityOut: body.QuantityOut,
		})
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      operator.ID,
			UserName:    operator.Name,
			EntityType:  "production_log",
			EntityID:    log.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Üretim kaydı girildi: parti #%d, aşama %s", log.BatchID, log.Stage),
			After:       log,
		})

		return c.Status(fiber.StatusCreated).JSON(ToResponse(log))
	}
}

// GET /api/production-logs?batch_id=&status=&stage=
func ListLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ProductionLog{})
		if batchID := c.Query("batch_id"); batchID != "" {
			dbq = dbq.Where("batch_id = ?", batchID)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("approval_status = ?", status)
		}
		if stage := c.Query("stage"); stage != "" {
			dbq = dbq.Where("stage = ?", stage)
		}

		var logs []models.ProductionLog
		if err := dbq.Order("created_at DESC").Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kayıtları listelenemedi")
		}

		resp := make([]LogResponse, 0, len(logs))
		for i := range logs {
			resp = append(resp, ToResponse(&logs[i]))
		}
		return c.JSON(resp)
	}
}
