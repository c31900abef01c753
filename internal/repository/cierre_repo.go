package repository

import (
	"context"

	"boleteria/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TicketCierre is one ticket counted in a cash closure.
type TicketCierre struct {
	TipoTicket string
	Precio     decimal.Decimal
}

type CierreRepository interface {
	TicketsDelDia(ctx context.Context, usuarioID int64, fecha string) ([]TicketCierre, error)
	// Actualizar overwrites the closure of (usuario, date(fecha_inicio))
	// and returns the number of rows updated.
	Actualizar(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) (int64, error)
	Insertar(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) error
	FindByUsuarioFecha(ctx context.Context, tx *gorm.DB, usuarioID int64, fecha string) (*model.CierreCaja, error)
	FindByID(ctx context.Context, id int64) (*model.CierreCaja, error)
	ListByFecha(ctx context.Context, fecha string) ([]model.CierreCaja, error)
	DB() *gorm.DB
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) DB() *gorm.DB { return r.db }

// TicketsDelDia returns the printed, non-annulled tickets of non-annulled
// sales made by usuarioID on the local calendar date fecha (YYYY-MM-DD).
func (r *cierreRepo) TicketsDelDia(ctx context.Context, usuarioID int64, fecha string) ([]TicketCierre, error) {
	var rows []TicketCierre
	err := r.db.WithContext(ctx).
		Table("tickets t").
		Select("tt.nombre AS tipo_ticket, t.precio AS precio").
		Joins("JOIN ventas v ON v.id = t.venta_id").
		Joins("JOIN tipos_ticket tt ON tt.id = t.tipo_ticket_id").
		Where("v.usuario_id = ?", usuarioID).
		Where("date(v.created_at, 'localtime') = ?", fecha).
		Where("t.impreso = ? AND t.anulado = ? AND v.anulada = ?", true, false, false).
		Order("t.id").
		Scan(&rows).Error
	return rows, err
}

func (r *cierreRepo) Actualizar(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) (int64, error) {
	res := tx.WithContext(ctx).Model(&model.CierreCaja{}).
		Where("usuario_id = ? AND date(fecha_inicio) = ?", c.UsuarioID, c.FechaInicio.Format("2006-01-02")).
		Updates(map[string]any{
			"fecha_cierre":     c.FechaCierre,
			"total_ventas":     c.TotalVentas,
			"cantidad_tickets": c.CantidadTickets,
			"detalle":          c.Detalle,
		})
	return res.RowsAffected, res.Error
}

func (r *cierreRepo) Insertar(ctx context.Context, tx *gorm.DB, c *model.CierreCaja) error {
	return tx.WithContext(ctx).Omit("Usuario").Create(c).Error
}

func (r *cierreRepo) FindByUsuarioFecha(ctx context.Context, tx *gorm.DB, usuarioID int64, fecha string) (*model.CierreCaja, error) {
	if tx == nil {
		tx = r.db
	}
	var c model.CierreCaja
	err := tx.WithContext(ctx).
		Where("usuario_id = ? AND date(fecha_inicio) = ?", usuarioID, fecha).
		First(&c).Error
	return &c, err
}

func (r *cierreRepo) FindByID(ctx context.Context, id int64) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := r.db.WithContext(ctx).Preload("Usuario").First(&c, id).Error
	return &c, err
}

func (r *cierreRepo) ListByFecha(ctx context.Context, fecha string) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).
		Preload("Usuario").
		Where("date(fecha_inicio) = ?", fecha).
		Order("usuario_id").
		Find(&cierres).Error
	return cierres, err
}
