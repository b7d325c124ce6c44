package models

import "time"

type DefectSeverity string

const (
	SeverityMinor    DefectSeverity = "MINOR"
	SeverityMajor    DefectSeverity = "MAJOR"
	SeverityCritical DefectSeverity = "CRITICAL"
)

func IsValidSeverity(s DefectSeverity) bool {
	return s == SeverityMinor || s == SeverityMajor || s == SeverityCritical
}

// DefectRecord: Kalite kontrolde bulunan tek tip kusur kaydı. Kalite logu ile
// aynı transaction içinde oluşturulur; sonradan asla güncellenmez veya
// silinmez (append-only kusur defteri).
type DefectRecord struct {
	ID         uint `gorm:"primaryKey"`
	BatchID    uint `gorm:"index;not null"`
	Batch      Batch
	Stage      StageType `gorm:"size:20;not null;index"` // kusurun kaynağı
	DefectCode string    `gorm:"size:50;not null"`
	Quantity   int       `gorm:"not null"`
	Severity   DefectSeverity `gorm:"size:20;not null"`
	CreatedAt  time.Time
}
