package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta is a purchase transaction. It owns one or more tickets; the sale
// flow creates one ticket per call but nothing here assumes a 1:1 relation.
type Venta struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	UsuarioID int64           `gorm:"not null;index"`
	Total     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Anulada   bool            `gorm:"not null;default:false"`
	CreatedAt time.Time

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
	Tickets []Ticket `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }
