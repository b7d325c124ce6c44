package models

import "time"

type UserRole string

const (
	RoleManager  UserRole = "manager"
	RoleOperator UserRole = "operator"
)

type User struct {
	ID           uint  `gorm:"primaryKey"`
	ManagerID    *uint // operatörü oluşturan yönetici (sahiplik zinciri)
	Manager      *User `gorm:"foreignKey:ManagerID"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SectionAssignment: Kullanıcının çalışabildiği/onaylayabildiği bölümler.
// Aynı kullanıcıya aynı bölüm bir kez atanır.
type SectionAssignment struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_section"`
	User      User
	Section   StageType `gorm:"size:20;not null;uniqueIndex:idx_user_section"`
	CreatedAt time.Time
}
