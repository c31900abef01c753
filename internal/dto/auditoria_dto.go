package dto

import "time"

// Snapshot is a point-in-time copy of an audited record.
type Snapshot map[string]any

// AuditoriaFiltro is bound from the query string of GET /v1/auditoria.
// Desde and Hasta are inclusive local calendar dates.
type AuditoriaFiltro struct {
	Tabla  string `form:"tabla"  validate:"omitempty,oneof=puertas config_relay tipos_ticket botones_ticket"`
	Accion string `form:"accion" validate:"omitempty,oneof=CREAR MODIFICAR ELIMINAR"`
	Desde  string `form:"desde"  validate:"omitempty,datetime=2006-01-02"`
	Hasta  string `form:"hasta"  validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
	Offset int    `form:"offset"           validate:"min=0"`
}

type PurgarAuditoriaRequest struct {
	Dias int `json:"dias" validate:"required,min=1"`
}

type ConfigLogResponse struct {
	ID              int64     `json:"id"`
	Accion          string    `json:"accion"`
	Tabla           string    `json:"tabla"`
	RegistroID      int64     `json:"registro_id"`
	Descripcion     string    `json:"descripcion"`
	DatosAnteriores Snapshot  `json:"datos_anteriores"`
	DatosNuevos     Snapshot  `json:"datos_nuevos"`
	IPOrigen        *string   `json:"ip_origen"`
	CreatedAt       time.Time `json:"created_at"`
}

type AuditoriaListResponse struct {
	Data   []ConfigLogResponse `json:"data"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type EstadisticaAuditoria struct {
	Tabla          string    `json:"tabla"`
	Accion         string    `json:"accion"`
	Cantidad       int64     `json:"cantidad"`
	UltimoRegistro time.Time `json:"ultimo_registro"`
}

type PurgarAuditoriaResponse struct {
	Eliminados int64 `json:"eliminados"`
}
