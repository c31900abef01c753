package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CierreCaja is the per-user, per-day reconciliation record.
// At most one row exists per (usuario_id, date(fecha_inicio)); the unique
// index idx_cierres_caja_usuario_fecha enforces it.
//
// FechaInicio is stored as UTC midnight of the calendar day it represents so
// that date(fecha_inicio) is independent of the host time zone.
type CierreCaja struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	UsuarioID       int64           `gorm:"not null"`
	FechaInicio     time.Time       `gorm:"not null"`
	FechaCierre     time.Time       `gorm:"not null"`
	TotalVentas     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	CantidadTickets int             `gorm:"not null;default:0"`
	// Detalle is the human readable breakdown by ticket type.
	Detalle string

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (CierreCaja) TableName() string { return "cierres_caja" }
