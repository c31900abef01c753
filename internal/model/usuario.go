package model

import "time"

// Roles accepted in Usuario.Rol.
const (
	RolVendedor = "vendedor"
	RolAdmin    = "admin"
)

// Usuario stores operators of the ticket office.
// Users that own ventas are never hard-deleted, only deactivated.
type Usuario struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Nombre       string `gorm:"not null"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null;default:'vendedor'"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
