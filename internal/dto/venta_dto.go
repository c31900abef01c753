package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha     string `form:"fecha"      validate:"omitempty,datetime=2006-01-02"` // local calendar date; empty = all
	UsuarioID int64  `form:"usuario_id" validate:"min=0"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearVentaRequest creates one sale with one ticket. Total is the price
// charged and is stored as the ticket price.
type CrearVentaRequest struct {
	TipoTicketID int64           `json:"tipo_ticket_id" validate:"required,min=1"`
	Total        decimal.Decimal `json:"total"          validate:"gt=0"`
	CodigoQR     string          `json:"codigo_qr"      validate:"required,max=128"`
	PuertaCodigo *string         `json:"puerta_codigo"  validate:"omitempty,alphanum,max=20"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaReceipt struct {
	VentaID      int64           `json:"venta_id"`
	CodigoQR     string          `json:"codigo_qr"`
	TipoTicketID int64           `json:"tipo_ticket_id"`
	Precio       decimal.Decimal `json:"precio"`
	CreatedAt    time.Time       `json:"created_at"`
}

type TicketResponse struct {
	ID           int64           `json:"id"`
	VentaID      int64           `json:"venta_id"`
	TipoTicketID int64           `json:"tipo_ticket_id"`
	TipoTicket   string          `json:"tipo_ticket,omitempty"`
	CodigoQR     string          `json:"codigo_qr"`
	PuertaCodigo *string         `json:"puerta_codigo"`
	Precio       decimal.Decimal `json:"precio"`
	Anulado      bool            `json:"anulado"`
	Usado        bool            `json:"usado"`
	UsadoAt      *time.Time      `json:"usado_at"`
	Impreso      bool            `json:"impreso"`
	ImpresoAt    *time.Time      `json:"impreso_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

type VentaResponse struct {
	ID        int64            `json:"id"`
	UsuarioID int64            `json:"usuario_id"`
	Total     decimal.Decimal  `json:"total"`
	Anulada   bool             `json:"anulada"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []TicketResponse `json:"tickets"`
}

type MarcarImpresaResponse struct {
	Actualizados int `json:"actualizados"`
}
