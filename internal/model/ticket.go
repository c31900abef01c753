package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket is a single QR-coded entry voucher.
// Lifecycle: creado → impreso → usado; anulado is reachable from creado or
// impreso but never once usado is set.
type Ticket struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	VentaID      int64           `gorm:"not null;index"`
	TipoTicketID int64           `gorm:"not null"`
	CodigoQR     string          `gorm:"column:codigo_qr;uniqueIndex;not null"`
	PuertaCodigo *string
	Precio       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Anulado      bool            `gorm:"not null;default:false"`
	Usado        bool            `gorm:"not null;default:false"`
	UsadoAt      *time.Time
	Impreso      bool `gorm:"not null;default:false"`
	ImpresoAt    *time.Time
	CreatedAt    time.Time

	TipoTicket *TipoTicket `gorm:"foreignKey:TipoTicketID"`
}

func (Ticket) TableName() string { return "tickets" }
