package repository

import (
	"context"

	"boleteria/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TipoTicketRepository defines CRUD operations for TipoTicket.
type TipoTicketRepository interface {
	Crear(ctx context.Context, t *model.TipoTicket) error
	Listar(ctx context.Context, soloActivos bool) ([]model.TipoTicket, error)
	ObtenerPorID(ctx context.Context, id int64) (*model.TipoTicket, error)
	Actualizar(ctx context.Context, t *model.TipoTicket) error
	Eliminar(ctx context.Context, id int64) error
	Desactivar(ctx context.Context, id int64) error
	// ContarReferencias counts tickets and button bindings pointing at id.
	ContarReferencias(ctx context.Context, id int64) (int64, error)
}

type tipoTicketRepository struct{ db *gorm.DB }

func NewTipoTicketRepository(db *gorm.DB) TipoTicketRepository {
	return &tipoTicketRepository{db: db}
}

// Crear names its columns so activo=false is inserted as given.
func (r *tipoTicketRepository) Crear(ctx context.Context, t *model.TipoTicket) error {
	return r.db.WithContext(ctx).
		Select("Nombre", "Precio", "PuertaID", "Activo", "CreatedAt").
		Create(t).Error
}

func (r *tipoTicketRepository) Listar(ctx context.Context, soloActivos bool) ([]model.TipoTicket, error) {
	var list []model.TipoTicket
	q := r.db.WithContext(ctx).Preload("Puerta").Order("nombre asc")
	if soloActivos {
		q = q.Where("activo = ?", true)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *tipoTicketRepository) ObtenerPorID(ctx context.Context, id int64) (*model.TipoTicket, error) {
	var t model.TipoTicket
	err := r.db.WithContext(ctx).Preload("Puerta").First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tipoTicketRepository) Actualizar(ctx context.Context, t *model.TipoTicket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error
}

func (r *tipoTicketRepository) Eliminar(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.TipoTicket{}, id).Error
}

func (r *tipoTicketRepository) Desactivar(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.TipoTicket{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *tipoTicketRepository) ContarReferencias(ctx context.Context, id int64) (int64, error) {
	var tickets, botones int64
	if err := r.db.WithContext(ctx).Model(&model.Ticket{}).Where("tipo_ticket_id = ?", id).Count(&tickets).Error; err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.BotonTicket{}).Where("tipo_ticket_id = ?", id).Count(&botones).Error; err != nil {
		return 0, err
	}
	return tickets + botones, nil
}
