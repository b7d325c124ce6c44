package models

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// ProductionLog: Bir aşamadaki tek iş kaydı. Stage alanı oluşturma anında
// partinin o anki aşamasından damgalanır, sonradan yeniden hesaplanmaz.
type ProductionLog struct {
	ID              uint `gorm:"primaryKey"`
	BatchID         uint `gorm:"index;not null"`
	Batch           Batch
	Stage           StageType `gorm:"size:20;not null;index"`
	OperatorID      uint      `gorm:"index;not null"`
	Operator        User      `gorm:"foreignKey:OperatorID"`
	MachineID       *uint
	Machine         *Machine
	StartTime       time.Time `gorm:"not null"`
	EndTime         time.Time `gorm:"not null"`
	QuantityIn      *int
	QuantityOut     *int
	ApprovalStatus  ApprovalStatus `gorm:"size:20;not null;index"`
	ApprovedBy      *uint
	ApprovedAt      *time.Time
	RejectionReason string `gorm:"size:500"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
