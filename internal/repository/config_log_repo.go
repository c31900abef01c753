package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"boleteria/internal/dto"
	"boleteria/internal/model"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// EstadisticaConfigLog is one (tabla, accion) group of the audit log.
type EstadisticaConfigLog struct {
	Tabla    string
	Accion   string
	Cantidad int64
	Ultimo   time.Time
}

type ConfigLogRepository interface {
	Create(ctx context.Context, l *model.ConfigLog) error
	List(ctx context.Context, filtro dto.AuditoriaFiltro) ([]model.ConfigLog, error)
	Count(ctx context.Context, filtro dto.AuditoriaFiltro) (int64, error)
	Estadisticas(ctx context.Context) ([]EstadisticaConfigLog, error)
	Historial(ctx context.Context, tabla string, registroID int64) ([]model.ConfigLog, error)
	DeleteOlderThan(ctx context.Context, limite time.Time) (int64, error)
}

type configLogRepo struct{ db *gorm.DB }

func NewConfigLogRepository(db *gorm.DB) ConfigLogRepository { return &configLogRepo{db: db} }

func (r *configLogRepo) Create(ctx context.Context, l *model.ConfigLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *configLogRepo) filtrar(ctx context.Context, f dto.AuditoriaFiltro) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.ConfigLog{})
	if f.Tabla != "" {
		q = q.Where("tabla = ?", f.Tabla)
	}
	if f.Accion != "" {
		q = q.Where("accion = ?", f.Accion)
	}
	if f.Desde != "" {
		q = q.Where("date(created_at, 'localtime') >= ?", f.Desde)
	}
	if f.Hasta != "" {
		q = q.Where("date(created_at, 'localtime') <= ?", f.Hasta)
	}
	return q
}

func (r *configLogRepo) List(ctx context.Context, f dto.AuditoriaFiltro) ([]model.ConfigLog, error) {
	var logs []model.ConfigLog
	err := r.filtrar(ctx, f).
		Order("created_at DESC, id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&logs).Error
	return logs, err
}

func (r *configLogRepo) Count(ctx context.Context, f dto.AuditoriaFiltro) (int64, error) {
	var n int64
	err := r.filtrar(ctx, f).Count(&n).Error
	return n, err
}

func (r *configLogRepo) Estadisticas(ctx context.Context) ([]EstadisticaConfigLog, error) {
	// max() drops the column type, so the timestamp comes back as text.
	var rows []struct {
		Tabla    string
		Accion   string
		Cantidad int64
		Ultimo   string
	}
	err := r.db.WithContext(ctx).Model(&model.ConfigLog{}).
		Select("tabla, accion, count(*) AS cantidad, max(created_at) AS ultimo").
		Group("tabla, accion").
		Order("tabla, accion").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]EstadisticaConfigLog, 0, len(rows))
	for _, row := range rows {
		ultimo, err := parseTimestamp(row.Ultimo)
		if err != nil {
			return nil, err
		}
		out = append(out, EstadisticaConfigLog{
			Tabla:    row.Tabla,
			Accion:   row.Accion,
			Cantidad: row.Cantidad,
			Ultimo:   ultimo,
		})
	}
	return out, nil
}

func (r *configLogRepo) Historial(ctx context.Context, tabla string, registroID int64) ([]model.ConfigLog, error) {
	var logs []model.ConfigLog
	err := r.db.WithContext(ctx).
		Where("tabla = ? AND registro_id = ?", tabla, registroID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

// DeleteOlderThan removes entries created strictly before limite.
// datetime() normalizes both the driver's and CURRENT_TIMESTAMP's formats.
func (r *configLogRepo) DeleteOlderThan(ctx context.Context, limite time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("datetime(created_at) < datetime(?)", limite.UTC().Format("2006-01-02 15:04:05")).
		Delete(&model.ConfigLog{})
	return res.RowsAffected, res.Error
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp no reconocido: %q", s)
}
