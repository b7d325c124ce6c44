package testutil

import (
	"fmt"
	"testing"

	"fabrika-backend/internal/database"
	"fabrika-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDB: Test başına izole in-memory sqlite açar ve global DB'yi ona
// bağlar. Şema AutoMigrate ile kurulur; test bitince bağlantı kapanır.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		database.DB = prev
	})

	return db
}

func CreateManager(t *testing.T, db *gorm.DB, email string, sections ...models.StageType) *models.User {
	t.Helper()

	manager := &models.User{
		Name:         "Test Yönetici",
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleManager,
	}
	require.NoError(t, db.Create(manager).Error)

	for _, s := range sections {
		require.NoError(t, db.Create(&models.SectionAssignment{UserID: manager.ID, Section: s}).Error)
	}
	return manager
}

func CreateOperator(t *testing.T, db *gorm.DB, manager *models.User, email string, sections ...models.StageType) *models.User {
	t.Helper()

	operator := &models.User{
		ManagerID:    &manager.ID,
		Name:         "Test Operatör",
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleOperator,
	}
	require.NoError(t, db.Create(operator).Error)

	for _, s := range sections {
		require.NoError(t, db.Create(&models.SectionAssignment{UserID: operator.ID, Section: s}).Error)
	}
	return operator
}

func CreateBatch(t *testing.T, db *gorm.DB, mutate func(*models.Batch)) *models.Batch {
	t.Helper()

	b := &models.Batch{
		BatchNumber:   fmt.Sprintf("PRT-%s", t.Name()),
		Style:         "Test Model",
		TotalQuantity: 100,
		CurrentStage:  models.StageCutting,
		Status:        models.BatchStatusPending,
		CreatedBy:     1,
	}
	if mutate != nil {
		mutate(b)
	}
	require.NoError(t, db.Create(b).Error)
	return b
}
