package repository

import (
	"context"

	"boleteria/internal/dto"
	"boleteria/internal/model"

	"gorm.io/gorm"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	CreateTicket(ctx context.Context, tx *gorm.DB, t *model.Ticket) error
	FindByID(ctx context.Context, id int64) (*model.Venta, error)
	FindByIDTx(tx *gorm.DB, id int64) (*model.Venta, error)
	TipoTicketActivo(tx *gorm.DB, id int64) (bool, error)
	UsuarioActivo(tx *gorm.DB, id int64) (bool, error)
	MarcarAnulada(ctx context.Context, tx *gorm.DB, id int64) error
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Omit("Tickets", "Usuario").Create(v).Error
}

func (r *ventaRepo) CreateTicket(ctx context.Context, tx *gorm.DB, t *model.Ticket) error {
	return tx.WithContext(ctx).Omit("TipoTicket").Create(t).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id int64) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Tickets.TipoTicket").
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id int64) (*model.Venta, error) {
	var v model.Venta
	err := tx.First(&v, id).Error
	return &v, err
}

// TipoTicketActivo reports whether id names a ticket type that can still be sold.
func (r *ventaRepo) TipoTicketActivo(tx *gorm.DB, id int64) (bool, error) {
	var n int64
	err := tx.Model(&model.TipoTicket{}).Where("id = ? AND activo = ?", id, true).Count(&n).Error
	return n > 0, err
}

func (r *ventaRepo) UsuarioActivo(tx *gorm.DB, id int64) (bool, error) {
	var n int64
	err := tx.Model(&model.Usuario{}).Where("id = ? AND activo = ?", id, true).Count(&n).Error
	return n > 0, err
}

func (r *ventaRepo) MarcarAnulada(ctx context.Context, tx *gorm.DB, id int64) error {
	return tx.WithContext(ctx).Model(&model.Venta{}).Where("id = ?", id).Update("anulada", true).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Fecha != "" {
		q = q.Where("date(created_at, 'localtime') = ?", filter.Fecha)
	}
	if filter.UsuarioID > 0 {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Tickets.TipoTicket").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}
