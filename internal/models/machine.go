package models

import "time"

type MachineStatus string

const (
	MachineOperational MachineStatus = "operational"
	MachineMaintenance MachineStatus = "maintenance"
	MachineBroken      MachineStatus = "broken"
)

type Machine struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:50;uniqueIndex;not null"`
	Name      string `gorm:"size:100;not null"`
	Section   StageType     `gorm:"size:20;not null"` // makinenin bulunduğu bölüm
	Status    MachineStatus `gorm:"size:20;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
