package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcomes of a delete on records that may have dependents.
const (
	ResultadoEliminado   = "eliminado"
	ResultadoDesactivado = "desactivado"
)

type EliminarResponse struct {
	Resultado string `json:"resultado"`
}

// ─── Puertas ─────────────────────────────────────────────────────────────────

type PuertaRequest struct {
	Nombre         string  `json:"nombre"          validate:"required,max=100"`
	Codigo         string  `json:"codigo"          validate:"required,alphanum,max=20"`
	LectorIP       *string `json:"lector_ip"       validate:"omitempty,ip"`
	LectorPuerto   *int    `json:"lector_puerto"   validate:"omitempty,min=1,max=65535"`
	CanalRele      *int    `json:"canal_rele"      validate:"omitempty,min=1,max=4"`
	TiempoApertura int     `json:"tiempo_apertura" validate:"required,min=1,max=60"`
	Activo         *bool   `json:"activo"`
}

type PuertaResponse struct {
	ID             int64     `json:"id"`
	Nombre         string    `json:"nombre"`
	Codigo         string    `json:"codigo"`
	LectorIP       *string   `json:"lector_ip"`
	LectorPuerto   *int      `json:"lector_puerto"`
	CanalRele      *int      `json:"canal_rele"`
	TiempoApertura int       `json:"tiempo_apertura"`
	Activo         bool      `json:"activo"`
	CreatedAt      time.Time `json:"created_at"`
}

// ─── Relay ───────────────────────────────────────────────────────────────────

type ConfigRelayRequest struct {
	IP         string `json:"ip"           validate:"required,ip"`
	Puerto     int    `json:"puerto"       validate:"required,min=1,max=65535"`
	TimeoutMs  int    `json:"timeout_ms"   validate:"required,min=100,max=60000"`
	Reintentos int    `json:"reintentos"   validate:"min=0,max=10"`
	ModoCanal1 string `json:"modo_canal_1" validate:"required,oneof=NA NC"`
	ModoCanal2 string `json:"modo_canal_2" validate:"required,oneof=NA NC"`
	ModoCanal3 string `json:"modo_canal_3" validate:"required,oneof=NA NC"`
	ModoCanal4 string `json:"modo_canal_4" validate:"required,oneof=NA NC"`
}

type ConfigRelayResponse struct {
	IP         string    `json:"ip"`
	Puerto     int       `json:"puerto"`
	TimeoutMs  int       `json:"timeout_ms"`
	Reintentos int       `json:"reintentos"`
	ModoCanal1 string    `json:"modo_canal_1"`
	ModoCanal2 string    `json:"modo_canal_2"`
	ModoCanal3 string    `json:"modo_canal_3"`
	ModoCanal4 string    `json:"modo_canal_4"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ─── Tipos de ticket ─────────────────────────────────────────────────────────

type TipoTicketRequest struct {
	Nombre   string          `json:"nombre"    validate:"required,max=100"`
	Precio   decimal.Decimal `json:"precio"    validate:"gt=0"`
	PuertaID *int64          `json:"puerta_id" validate:"omitempty,min=1"`
	Activo   *bool           `json:"activo"`
}

type TipoTicketResponse struct {
	ID        int64           `json:"id"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	PuertaID  *int64          `json:"puerta_id"`
	Puerta    string          `json:"puerta,omitempty"`
	Activo    bool            `json:"activo"`
	CreatedAt time.Time       `json:"created_at"`
}

// ─── Botones ─────────────────────────────────────────────────────────────────

type BotonTicketRequest struct {
	Entrada      int    `json:"entrada"        validate:"required,min=1,max=4"`
	TipoTicketID int64  `json:"tipo_ticket_id" validate:"required,min=1"`
	Cantidad     int    `json:"cantidad"       validate:"required,min=1,max=10"`
	Descripcion  string `json:"descripcion"    validate:"max=100"`
	Activo       *bool  `json:"activo"`
}

type BotonTicketResponse struct {
	ID           int64     `json:"id"`
	Entrada      int       `json:"entrada"`
	TipoTicketID int64     `json:"tipo_ticket_id"`
	TipoTicket   string    `json:"tipo_ticket,omitempty"`
	Cantidad     int       `json:"cantidad"`
	Descripcion  string    `json:"descripcion"`
	Activo       bool      `json:"activo"`
	UpdatedAt    time.Time `json:"updated_at"`
}
