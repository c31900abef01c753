package model

import "time"

// Audit actions.
const (
	AccionCrear     = "CREAR"
	AccionModificar = "MODIFICAR"
	AccionEliminar  = "ELIMINAR"
)

// Audited tables.
const (
	TablaPuertas       = "puertas"
	TablaConfigRelay   = "config_relay"
	TablaTiposTicket   = "tipos_ticket"
	TablaBotonesTicket = "botones_ticket"
)

// ConfigLog is an append-only audit entry for administrative configuration
// changes. Snapshots are JSON documents; a CREAR entry only carries
// DatosNuevos, an ELIMINAR entry only DatosAnteriores.
// Rows are never modified; retention removes them in bulk.
type ConfigLog struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Accion          string `gorm:"type:varchar(20);not null"`
	Tabla           string `gorm:"type:varchar(30);not null"`
	RegistroID      int64  `gorm:"not null"`
	Descripcion     string `gorm:"not null"`
	DatosAnteriores *string
	DatosNuevos     *string
	IPOrigen        *string `gorm:"column:ip_origen"`
	CreatedAt       time.Time
}

func (ConfigLog) TableName() string { return "config_log" }
