package repository

import (
	"context"

	"boleteria/internal/model"

	"gorm.io/gorm"
)

type PuertaRepository interface {
	Create(ctx context.Context, p *model.Puerta) error
	FindByID(ctx context.Context, id int64) (*model.Puerta, error)
	List(ctx context.Context, incluirInactivas bool) ([]model.Puerta, error)
	Update(ctx context.Context, p *model.Puerta) error
	Delete(ctx context.Context, id int64) error
	Desactivar(ctx context.Context, id int64) error
	// CanalEnUso reports whether another active door uses canal.
	CanalEnUso(ctx context.Context, canal int, exceptoID int64) (bool, error)
	CountTiposTicket(ctx context.Context, puertaID int64) (int64, error)
}

type puertaRepo struct{ db *gorm.DB }

func NewPuertaRepository(db *gorm.DB) PuertaRepository { return &puertaRepo{db: db} }

// Create lists its columns so an explicit activo=false is not replaced by
// the column default.
func (r *puertaRepo) Create(ctx context.Context, p *model.Puerta) error {
	return r.db.WithContext(ctx).
		Select("Nombre", "Codigo", "LectorIP", "LectorPuerto", "CanalRele", "TiempoApertura", "Activo", "CreatedAt").
		Create(p).Error
}

func (r *puertaRepo) FindByID(ctx context.Context, id int64) (*model.Puerta, error) {
	var p model.Puerta
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *puertaRepo) List(ctx context.Context, incluirInactivas bool) ([]model.Puerta, error) {
	var puertas []model.Puerta
	q := r.db.WithContext(ctx).Order("nombre asc")
	if !incluirInactivas {
		q = q.Where("activo = ?", true)
	}
	err := q.Find(&puertas).Error
	return puertas, err
}

func (r *puertaRepo) Update(ctx context.Context, p *model.Puerta) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *puertaRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Puerta{}, id).Error
}

func (r *puertaRepo) Desactivar(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Puerta{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *puertaRepo) CanalEnUso(ctx context.Context, canal int, exceptoID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Puerta{}).
		Where("canal_rele = ? AND activo = ? AND id <> ?", canal, true, exceptoID).
		Count(&n).Error
	return n > 0, err
}

func (r *puertaRepo) CountTiposTicket(ctx context.Context, puertaID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TipoTicket{}).Where("puerta_id = ?", puertaID).Count(&n).Error
	return n, err
}
