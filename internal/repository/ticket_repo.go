package repository

import (
	"context"
	"time"

	"boleteria/internal/model"

	"gorm.io/gorm"
)

// TicketRepository holds the lifecycle updates. Every transition is a
// conditional UPDATE so the state machine holds even if a caller skipped
// the pre-check.
type TicketRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Ticket, error)
	FindByQR(ctx context.Context, codigo string) (*model.Ticket, error)
	ListByVenta(ctx context.Context, tx *gorm.DB, ventaID int64) ([]model.Ticket, error)
	MarcarImpresos(ctx context.Context, ventaID int64, at time.Time) (int64, error)
	MarcarUsado(ctx context.Context, id int64, at time.Time) (int64, error)
	Anular(ctx context.Context, id int64) (int64, error)
	AnularPorVenta(ctx context.Context, tx *gorm.DB, ventaID int64) (int64, error)
	DB() *gorm.DB
}

type ticketRepo struct{ db *gorm.DB }

func NewTicketRepository(db *gorm.DB) TicketRepository { return &ticketRepo{db: db} }

func (r *ticketRepo) DB() *gorm.DB { return r.db }

func (r *ticketRepo) FindByID(ctx context.Context, id int64) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.WithContext(ctx).Preload("TipoTicket").First(&t, id).Error
	return &t, err
}

func (r *ticketRepo) FindByQR(ctx context.Context, codigo string) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.WithContext(ctx).Preload("TipoTicket").Where("codigo_qr = ?", codigo).First(&t).Error
	return &t, err
}

func (r *ticketRepo) ListByVenta(ctx context.Context, tx *gorm.DB, ventaID int64) ([]model.Ticket, error) {
	if tx == nil {
		tx = r.db
	}
	var tickets []model.Ticket
	err := tx.WithContext(ctx).Where("venta_id = ?", ventaID).Order("id").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepo) MarcarImpresos(ctx context.Context, ventaID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("venta_id = ? AND impreso = ?", ventaID, false).
		Updates(map[string]any{"impreso": true, "impreso_at": at})
	return res.RowsAffected, res.Error
}

func (r *ticketRepo) MarcarUsado(ctx context.Context, id int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND usado = ? AND anulado = ?", id, false, false).
		Updates(map[string]any{"usado": true, "usado_at": at})
	return res.RowsAffected, res.Error
}

func (r *ticketRepo) Anular(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND usado = ?", id, false).
		Update("anulado", true)
	return res.RowsAffected, res.Error
}

func (r *ticketRepo) AnularPorVenta(ctx context.Context, tx *gorm.DB, ventaID int64) (int64, error) {
	res := tx.WithContext(ctx).Model(&model.Ticket{}).
		Where("venta_id = ? AND usado = ? AND anulado = ?", ventaID, false, false).
		Update("anulado", true)
	return res.RowsAffected, res.Error
}
