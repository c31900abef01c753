package repository

import (
	"context"

	"boleteria/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BotonTicketRepository interface {
	FindByEntrada(ctx context.Context, entrada int) (*model.BotonTicket, error)
	List(ctx context.Context) ([]model.BotonTicket, error)
	Create(ctx context.Context, b *model.BotonTicket) error
	Save(ctx context.Context, b *model.BotonTicket) error
	Delete(ctx context.Context, id int64) error
}

type botonRepo struct{ db *gorm.DB }

func NewBotonTicketRepository(db *gorm.DB) BotonTicketRepository { return &botonRepo{db: db} }

func (r *botonRepo) FindByEntrada(ctx context.Context, entrada int) (*model.BotonTicket, error) {
	var b model.BotonTicket
	err := r.db.WithContext(ctx).Preload("TipoTicket").Where("entrada = ?", entrada).First(&b).Error
	return &b, err
}

func (r *botonRepo) List(ctx context.Context) ([]model.BotonTicket, error) {
	var botones []model.BotonTicket
	err := r.db.WithContext(ctx).Preload("TipoTicket").Order("entrada").Find(&botones).Error
	return botones, err
}

// Create lists its columns, like puertaRepo.Create, so activo=false survives
// the insert.
func (r *botonRepo) Create(ctx context.Context, b *model.BotonTicket) error {
	return r.db.WithContext(ctx).
		Select("Entrada", "TipoTicketID", "Cantidad", "Descripcion", "Activo", "UpdatedAt").
		Create(b).Error
}

// Save overwrites every column of an existing binding.
func (r *botonRepo) Save(ctx context.Context, b *model.BotonTicket) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *botonRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.BotonTicket{}, id).Error
}
