package database

import (
	"fabrika-backend/internal/config"
	"fabrika-backend/internal/logger"
	"fabrika-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config, log *logger.Logger) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Veritabanına bağlanılamadı", "error", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.SectionAssignment{},
		&models.Machine{},
		&models.Batch{},
		&models.ProductionLog{},
		&models.DefectRecord{},
		&models.ReworkRecord{},
		&models.Box{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatal("AutoMigrate hatası", "error", err)
	}

	// Parti başına tek koli: unique index AutoMigrate'te tanımlı ama eski
	// kurulumlarda eksik kalmış olabilir, garantiye al
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_boxes_batch_id ON boxes(batch_id)")

	log.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
