package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoTicket is a salable ticket category (e.g. "General", "VIP").
// PuertaID optionally binds the ticket type to the door it opens.
type TipoTicket struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	Nombre    string          `gorm:"uniqueIndex;not null"`
	Precio    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PuertaID  *int64
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time

	Puerta *Puerta `gorm:"foreignKey:PuertaID"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (TipoTicket) TableName() string { return "tipos_ticket" }
