package repository

import (
	"context"

	"boleteria/internal/model"

	"gorm.io/gorm"
)

// ConfigRelayRepository reads and writes the singleton relay row.
type ConfigRelayRepository interface {
	Get(ctx context.Context) (*model.ConfigRelay, error)
	Update(ctx context.Context, c *model.ConfigRelay) error
}

type configRelayRepo struct{ db *gorm.DB }

func NewConfigRelayRepository(db *gorm.DB) ConfigRelayRepository { return &configRelayRepo{db: db} }

func (r *configRelayRepo) Get(ctx context.Context) (*model.ConfigRelay, error) {
	var c model.ConfigRelay
	err := r.db.WithContext(ctx).First(&c, model.ConfigRelayID).Error
	return &c, err
}

func (r *configRelayRepo) Update(ctx context.Context, c *model.ConfigRelay) error {
	c.ID = model.ConfigRelayID
	return r.db.WithContext(ctx).Save(c).Error
}
