package models

import "time"

// ReworkRecord: Kusurlu havuza karşı yapılan tadilat seansı.
// Oluşturulduğunda parti miktarlarına DOKUNMAZ; kullanılabilir/hurda
// mutasyonu yalnızca onayda uygulanır.
type ReworkRecord struct {
	ID               uint `gorm:"primaryKey"`
	BatchID          uint `gorm:"index;not null"`
	Batch            Batch
	ReworkStage      StageType `gorm:"size:20;not null;index"` // CUTTING veya STITCHING
	OperatorID       uint      `gorm:"index;not null"`
	Operator         User      `gorm:"foreignKey:OperatorID"`
	Quantity         int       `gorm:"not null"`
	CuredQuantity    int       `gorm:"not null"`
	ScrappedQuantity int       `gorm:"not null"`
	StartTime        time.Time `gorm:"not null"`
	EndTime          time.Time `gorm:"not null"`
	ApprovalStatus   ApprovalStatus `gorm:"size:20;not null;index"`
	ApprovedBy       *uint
	ApprovedAt       *time.Time
	RejectionReason  string `gorm:"size:500"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
