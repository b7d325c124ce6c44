package models

import "time"

type BoxStatus string

const (
	BoxStatusPacked    BoxStatus = "PACKED"
	BoxStatusShipped   BoxStatus = "SHIPPED"
	BoxStatusDelivered BoxStatus = "DELIVERED"
)

// boxStatusOrder: Koli durumu yalnızca ileri gider
var boxStatusOrder = map[BoxStatus]int{
	BoxStatusPacked:    0,
	BoxStatusShipped:   1,
	BoxStatusDelivered: 2,
}

func IsValidBoxStatus(s BoxStatus) bool {
	_, ok := boxStatusOrder[s]
	return ok
}

// CanTransitionBoxStatus: Geriye veya aynı duruma geçiş yok
func CanTransitionBoxStatus(from, to BoxStatus) bool {
	fromIdx, ok1 := boxStatusOrder[from]
	toIdx, ok2 := boxStatusOrder[to]
	return ok1 && ok2 && toIdx > fromIdx
}

// Box: Parti son aşamayı tamamladığında oluşan sevkiyat kolisi.
// BatchID üzerindeki unique index parti başına tek koli garantisidir;
// ikinci oluşturma denemesi storage seviyesinde patlar.
type Box struct {
	ID        uint `gorm:"primaryKey"`
	BatchID   uint `gorm:"uniqueIndex;not null"`
	Batch     Batch
	Quantity  int       `gorm:"not null"` // oluşturma anındaki kullanılabilir miktar
	Status    BoxStatus `gorm:"size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
