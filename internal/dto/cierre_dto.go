package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Closure outcomes reported by UpsertCierre.
const (
	AccionCierreCreado      = "creado"
	AccionCierreActualizado = "actualizado"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CerrarCajaRequest struct {
	// Fecha is the local calendar date to close; empty = today.
	Fecha string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TotalPorTipo struct {
	Nombre   string          `json:"nombre"`
	Cantidad int             `json:"cantidad"`
	Suma     decimal.Decimal `json:"suma"`
}

// Totales is the aggregation of a user's printed, non-annulled tickets for
// one calendar date.
type Totales struct {
	TotalVentas     decimal.Decimal `json:"total_ventas"`
	CantidadTickets int             `json:"cantidad_tickets"`
	Detalle         string          `json:"detalle"`
	PorTipo         []TotalPorTipo  `json:"por_tipo"`
}

type UpsertCierreResponse struct {
	Accion string `json:"accion"` // creado | actualizado
	ID     int64  `json:"id"`
}

type CierreResponse struct {
	ID              int64           `json:"id"`
	UsuarioID       int64           `json:"usuario_id"`
	Usuario         string          `json:"usuario,omitempty"`
	Fecha           string          `json:"fecha"` // YYYY-MM-DD
	FechaCierre     time.Time       `json:"fecha_cierre"`
	TotalVentas     decimal.Decimal `json:"total_ventas"`
	CantidadTickets int             `json:"cantidad_tickets"`
	Detalle         string          `json:"detalle"`
}

type CerrarCajaResponse struct {
	Accion string         `json:"accion"`
	Cierre CierreResponse `json:"cierre"`
}

type CierresPorFechaResponse struct {
	Fecha            string           `json:"fecha"`
	Cierres          []CierreResponse `json:"cierres"`
	TotalVentas      decimal.Decimal  `json:"total_ventas"`
	TotalTickets     int              `json:"total_tickets"`
	CantidadUsuarios int              `json:"cantidad_usuarios"`
}

type ReporteCierreResponse struct {
	Path string `json:"path"`
}
