package models

import "time"

type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "PENDING"
	BatchStatusInProgress BatchStatus = "IN_PROGRESS"
	BatchStatusCompleted  BatchStatus = "COMPLETED"
	BatchStatusCancelled  BatchStatus = "CANCELLED"
)

// Batch: Hattan geçen üretim partisi. TotalQuantity oluşturma anında sabitlenir,
// sonradan değişmez. Usable/Defective/Scrapped alanlarını yalnızca kalite kaydı
// ve onay işlemleri yazar.
type Batch struct {
	ID                uint   `gorm:"primaryKey"`
	BatchNumber       string `gorm:"size:50;uniqueIndex;not null"` // parti no
	Style             string `gorm:"size:100;not null"`            // model/açıklama
	TotalQuantity     int    `gorm:"not null"`
	UsableQuantity    int    `gorm:"not null;default:0"`
	DefectiveQuantity int    `gorm:"not null;default:0"`
	ScrappedQuantity  int    `gorm:"not null;default:0"`
	CurrentStage      StageType   `gorm:"size:20;not null"`
	Status            BatchStatus `gorm:"size:20;not null"`
	CreatedBy         uint        `gorm:"not null"` // oluşturan yönetici
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AccountedQuantity: Kalite kontrolün şimdiye kadar hesaba kattığı miktar
func (b *Batch) AccountedQuantity() int {
	return b.UsableQuantity + b.DefectiveQuantity
}

// RemainingQuantity: Henüz hesaba katılmamış kapasite
func (b *Batch) RemainingQuantity() int {
	return b.TotalQuantity - b.AccountedQuantity()
}

// IsClosed: COMPLETED veya CANCELLED parti başka mutasyon kabul etmez
func (b *Batch) IsClosed() bool {
	return b.Status == BatchStatusCompleted || b.Status == BatchStatusCancelled
}
