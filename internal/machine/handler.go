package machine

import (
	"fmt"

	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MachineRequest struct {
	Code    string               `json:"code"`
	Name    string               `json:"name"`
	Section models.StageType     `json:"section"`
	Status  models.MachineStatus `json:"status"`
}

type MachineResponse struct {
	ID      uint                 `json:"id"`
	Code    string               `json:"code"`
	Name    string               `json:"name"`
	Section models.StageType     `json:"section"`
	Status  models.MachineStatus `json:"status"`
}

func validStatus(s models.MachineStatus) bool {
	return s == models.MachineOperational || s == models.MachineMaintenance || s == models.MachineBroken
}

// POST /api/machines
func CreateMachineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MachineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Code == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Makine kodu ve adı zorunlu")
		}
		if !models.IsValidStage(body.Section) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz bölüm: %s", body.Section))
		}
		if body.Status == "" {
			body.Status = models.MachineOperational
		}
		if !validStatus(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz makine durumu: %s", body.Status))
		}

		m := models.Machine{
			Code:    body.Code,
			Name:    body.Name,
			Section: body.Section,
			Status:  body.Status,
		}

		if err := database.DB.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Makine oluşturulamadı (kod kullanımda olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(m))
	}
}

// GET /api/machines
func ListMachinesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Machine{})
		if section := c.Query("section"); section != "" {
			dbq = dbq.Where("section = ?", section)
		}

		var machines []models.Machine
		if err := dbq.Order("code ASC").Find(&machines).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makineler listelenemedi")
		}

		resp := make([]MachineResponse, 0, len(machines))
		for _, m := range machines {
			resp = append(resp, toResponse(m))
		}
		return c.JSON(resp)
	}
}

// PUT /api/machines/:id
func UpdateMachineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var m models.Machine
		if err := database.DB.First(&m, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Makine bulunamadı")
		}

		var body MachineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != "" {
			m.Name = body.Name
		}
		if body.Section != "" {
			if !models.IsValidStage(body.Section) {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz bölüm: %s", body.Section))
			}
			m.Section = body.Section
		}
		if body.Status != "" {
			if !validStatus(body.Status) {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz makine durumu: %s", body.Status))
			}
			m.Status = body.Status
		}

		if err := database.DB.Save(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makine güncellenemedi")
		}

		return c.JSON(toResponse(m))
	}
}

func toResponse(m models.Machine) MachineResponse {
	return MachineResponse{
		ID:      m.ID,
		Code:    m.Code,
		Name:    m.Name,
		Section: m.Section,
		Status:  m.Status,
	}
}
