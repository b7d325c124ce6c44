package auth

import (
	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CurrentUser: Request'in kullanıcısını veritabanından taze çeker.
// Token içindeki rol bilgisi yetki kontrolü için yeterli değil; atamalar
// ve sahiplik zinciri her istekte güncel halinden okunur.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	userIDVal := c.Locals(CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı bulunamadı")
	}

	return &user, nil
}

// AssignedSections: Kullanıcının atanmış bölümleri
func AssignedSections(userID uint) ([]models.StageType, error) {
	var assignments []models.SectionAssignment
	if err := database.DB.Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return nil, err
	}

	sections := make([]models.StageType, 0, len(assignments))
	for _, a := range assignments {
		sections = append(sections, a.Section)
	}
	return sections, nil
}

// IsAssignedToSection: Kullanıcı ilgili bölüme atanmış mı?
func IsAssignedToSection(userID uint, section models.StageType) (bool, error) {
	var count int64
	err := database.DB.Model(&models.SectionAssignment{}).
		Where("user_id = ? AND section = ?", userID, section).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
