package model

import "time"

// BotonTicket binds a physical input (1–4) to a ticket type so that a press
// prints Cantidad tickets without going through the sale screen.
type BotonTicket struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	Entrada      int   `gorm:"uniqueIndex;not null"`
	TipoTicketID int64 `gorm:"not null"`
	Cantidad     int   `gorm:"not null;default:1"`
	Descripcion  string
	Activo       bool `gorm:"not null;default:true"`
	UpdatedAt    time.Time

	TipoTicket *TipoTicket `gorm:"foreignKey:TipoTicketID"`
}

func (BotonTicket) TableName() string { return "botones_ticket" }
