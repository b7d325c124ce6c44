package approval

import (
	"fmt"
	"strconv"

	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/auth"
	"fabrika-backend/internal/batch"
	"fabrika-backend/internal/box"
	"fabrika-backend/internal/events"
	"fabrika-backend/internal/models"
	"fabrika-backend/internal/production"
	"fabrika-backend/internal/rework"

	"github.com/gofiber/fiber/v2"
)

type RejectRequest struct {
	Reason string `json:"reason"`
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz kayıt ID")
	}
	return uint(id), nil
}

// POST /api/production-logs/:id/approve
func ApproveProductionLogHandler(pub events.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		logID, err := paramID(c)
		if err != nil {
			return err
		}

		result, err := ApproveProductionLog(logID, manager.ID)
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:     manager.ID,
			UserName:   manager.Name,
			EntityType: "production_log",
			EntityID:   result.Log.ID,
			Action:     models.AuditActionApprove,
			Description: fmt.Sprintf("Üretim kaydı onaylandı: parti #%d, aşama %s",
				result.Log.BatchID, result.Log.Stage),
			After: result.Log,
		})

		// Bildirimler commit SONRASI ve fire-and-forget; yayın hatası
		// onayı geri döndüremez
		pub.Publish(events.EventApprovalUpdated, production.ToResponse(result.Log))
		pub.Publish(events.EventBatchStatusUpdated, batch.ToResponse(result.Batch))

		resp := fiber.Map{
			"log":   production.ToResponse(result.Log),
			"batch": batch.ToResponse(result.Batch),
		}
		if result.Box != nil {
			result.Box.Batch = *result.Batch
			boxResp := box.ToResponse(result.Box)
			pub.Publish(events.EventBoxUpdated, boxResp)
			resp["box"] = boxResp
		}
		return c.JSON(resp)
	}
}

// POST /api/production-logs/:id/reject
func RejectProductionLogHandler(pub events.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		logID, err := paramID(c)
		if err != nil {
			return err
		}

		var body RejectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		log, err := RejectProductionLog(logID, manager.ID, body.Reason)
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:     manager.ID,
			UserName:   manager.Name,
			EntityType: "production_log",
			EntityID:   log.ID,
			Action:     models.AuditActionReject,
			Description: fmt.Sprintf("Üretim kaydı reddedildi: parti #%d, gerekçe: %s",
				log.BatchID, log.RejectionReason),
			After: log,
		})

		pub.Publish(events.EventApprovalUpdated, production.ToResponse(log))

		return c.JSON(production.ToResponse(log))
	}
}

// POST /api/reworks/:id/approve
func ApproveReworkHandler(pub events.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		reworkID, err := paramID(c)
		if err != nil {
			return err
		}

		result, err := ApproveRework(reworkID, manager.ID)
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:     manager.ID,
			UserName:   manager.Name,
			EntityType: "rework",
			EntityID:   result.Rework.ID,
			Action:     models.AuditActionApprove,
			Description: fmt.Sprintf("Tadilat onaylandı: parti #%d, kurtarılan %d, hurda %d",
				result.Rework.BatchID, result.Rework.CuredQuantity, result.Rework.ScrappedQuantity),
			After: result.Rework,
		})

		pub.Publish(events.EventApprovalUpdated, rework.ToResponse(result.Rework))
		pub.Publish(events.EventBatchStatusUpdated, batch.ToResponse(result.Batch))

		return c.JSON(fiber.Map{
			"rework": rework.ToResponse(result.Rework),
			"batch":  batch.ToResponse(result.Batch),
		})
	}
}

// POST /api/reworks/:id/reject
func RejectReworkHandler(pub events.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		reworkID, err := paramID(c)
		if err != nil {
			return err
		}

		var body RejectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		record, err := RejectRework(reworkID, manager.ID, body.Reason)
		if err != nil {
			return err
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:     manager.ID,
			UserName:   manager.Name,
			EntityType: "rework",
			EntityID:   record.ID,
			Action:     models.AuditActionReject,
			Description: fmt.Sprintf("Tadilat reddedildi: parti #%d, gerekçe: %s",
				record.BatchID, record.RejectionReason),
			After: record,
		})

		pub.Publish(events.EventApprovalUpdated, rework.ToResponse(record))

		return c.JSON(rework.ToResponse(record))
	}
}
