package auth

import (
	"fmt"
	"strings"

	"fabrika-backend/internal/audit"
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateOperatorRequest struct {
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Sections []models.StageType `json:"sections"` // opsiyonel ilk atamalar
}

type OperatorResponse struct {
	ID       uint               `json:"id"`
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Sections []models.StageType `json:"sections"`
}

// POST /api/operators
// Yönetici kendi operatörünü oluşturur; sahiplik zinciri burada kurulur.
func CreateOperatorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateOperatorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}

		for _, s := range body.Sections {
			if !models.IsValidStage(s) {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz bölüm: %s", s))
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		operator := models.User{
			ManagerID:    &manager.ID,
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleOperator,
		}

		if err := database.DB.Create(&operator).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Operatör oluşturulamadı (email kullanımda olabilir)")
		}

		for _, s := range body.Sections {
			assignment := models.SectionAssignment{UserID: operator.ID, Section: s}
			if err := database.DB.Create(&assignment).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Bölüm ataması yapılamadı")
			}
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      manager.ID,
			UserName:    manager.Name,
			EntityType:  "user",
			EntityID:    operator.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Operatör oluşturuldu: %s", operator.Email),
			After:       operator,
		})

		return c.Status(fiber.StatusCreated).JSON(OperatorResponse{
			ID:       operator.ID,
			Name:     operator.Name,
			Email:    operator.Email,
			Sections: body.Sections,
		})
	}
}

// GET /api/operators
// Yönetici yalnızca kendi operatörlerini görür.
func ListOperatorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var operators []models.User
		if err := database.DB.
			Where("manager_id = ? AND role = ?", manager.ID, models.RoleOperator).
			Order("name ASC").
			Find(&operators).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Operatörler listelenemedi")
		}

		resp := make([]OperatorResponse, 0, len(operators))
		for _, op := range operators {
			sections, err := AssignedSections(op.ID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Bölüm atamaları yüklenemedi")
			}
			resp = append(resp, OperatorResponse{
				ID:       op.ID,
				Name:     op.Name,
				Email:    op.Email,
				Sections: sections,
			})
		}

		return c.JSON(resp)
	}
}

type AssignSectionRequest struct {
	Section models.StageType `json:"section"`
}

// POST /api/users/:id/sections
// Yönetici kendi operatörüne (veya kendine) bölüm atar.
func AssignSectionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var target models.User
		if err := database.DB.First(&target, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		// Kendi operatörü veya kendisi olmalı
		if target.ID != manager.ID && (target.ManagerID == nil || *target.ManagerID != manager.ID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kullanıcı sizin operatörünüz değil")
		}

		var body AssignSectionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if !models.IsValidStage(body.Section) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Geçersiz bölüm: %s", body.Section))
		}

		assignment := models.SectionAssignment{UserID: target.ID, Section: body.Section}
		if err := database.DB.Create(&assignment).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Bu bölüm zaten atanmış")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user_id": target.ID,
			"section": body.Section,
		})
	}
}

// DELETE /api/users/:id/sections/:section
func RemoveSectionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		manager, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var target models.User
		if err := database.DB.First(&target, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		if target.ID != manager.ID && (target.ManagerID == nil || *target.ManagerID != manager.ID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kullanıcı sizin operatörünüz değil")
		}

		section := models.StageType(c.Params("section"))
		result := database.DB.
			Where("user_id = ? AND section = ?", target.ID, section).
			Delete(&models.SectionAssignment{})
		if result.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bölüm ataması silinemedi")
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Atama bulunamadı")
		}

		return c.JSON(fiber.Map{"message": "Bölüm ataması kaldırıldı"})
	}
}
