package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"boleteria/internal/dto"
	"boleteria/internal/infra"
	"boleteria/internal/model"
	"boleteria/internal/repository"

	"github.com/rs/zerolog/log"
)

var (
	accionesValidas = map[string]bool{
		model.AccionCrear:     true,
		model.AccionModificar: true,
		model.AccionEliminar:  true,
	}
	tablasValidas = map[string]bool{
		model.TablaPuertas:       true,
		model.TablaConfigRelay:   true,
		model.TablaTiposTicket:   true,
		model.TablaBotonesTicket: true,
	}
)

// EntradaAuditoria is one configuration change to record. Antes is the
// record before the change and Despues after it: CREAR carries only Despues,
// ELIMINAR only Antes, MODIFICAR both.
type EntradaAuditoria struct {
	Accion      string
	Tabla       string
	RegistroID  int64
	Descripcion string
	Antes       dto.Snapshot
	Despues     dto.Snapshot
	IPOrigen    *string
}

type AuditoriaService interface {
	Registrar(ctx context.Context, e EntradaAuditoria) (int64, error)
	// RegistrarSeguro records e and never fails: errors are logged and
	// counted. Admin mutations call it after their own commit.
	RegistrarSeguro(ctx context.Context, e EntradaAuditoria)
	Listar(ctx context.Context, f dto.AuditoriaFiltro) (*dto.AuditoriaListResponse, error)
	Contar(ctx context.Context, f dto.AuditoriaFiltro) (int64, error)
	Estadisticas(ctx context.Context) ([]dto.EstadisticaAuditoria, error)
	Historial(ctx context.Context, tabla string, registroID int64) ([]dto.ConfigLogResponse, error)
	Purgar(ctx context.Context, dias int) (int64, error)
}

type auditoriaService struct {
	repo repository.ConfigLogRepository
}

func NewAuditoriaService(repo repository.ConfigLogRepository) AuditoriaService {
	return &auditoriaService{repo: repo}
}

func validarEntrada(e EntradaAuditoria) error {
	fields := map[string]string{}
	if !accionesValidas[e.Accion] {
		fields["accion"] = "oneof"
	}
	if !tablasValidas[e.Tabla] {
		fields["tabla"] = "oneof"
	}
	if e.RegistroID <= 0 {
		fields["registro_id"] = "min"
	}
	if e.Descripcion == "" {
		fields["descripcion"] = "required"
	}
	switch e.Accion {
	case model.AccionCrear:
		if e.Despues == nil {
			fields["datos_nuevos"] = "required"
		}
		if e.Antes != nil {
			fields["datos_anteriores"] = "excluded"
		}
	case model.AccionEliminar:
		if e.Antes == nil {
			fields["datos_anteriores"] = "required"
		}
		if e.Despues != nil {
			fields["datos_nuevos"] = "excluded"
		}
	case model.AccionModificar:
		if e.Antes == nil {
			fields["datos_anteriores"] = "required"
		}
		if e.Despues == nil {
			fields["datos_nuevos"] = "required"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *auditoriaService) Registrar(ctx context.Context, e EntradaAuditoria) (int64, error) {
	if err := validarEntrada(e); err != nil {
		return 0, err
	}
	antes, err := marshalSnapshot(e.Antes)
	if err != nil {
		return 0, err
	}
	despues, err := marshalSnapshot(e.Despues)
	if err != nil {
		return 0, err
	}

	entry := &model.ConfigLog{
		Accion:          e.Accion,
		Tabla:           e.Tabla,
		RegistroID:      e.RegistroID,
		Descripcion:     e.Descripcion,
		DatosAnteriores: antes,
		DatosNuevos:     despues,
		IPOrigen:        e.IPOrigen,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return 0, fmt.Errorf("registrar auditoria: %w", err)
	}
	return entry.ID, nil
}

func (s *auditoriaService) RegistrarSeguro(ctx context.Context, e EntradaAuditoria) {
	// The primary change is already committed; a cancelled request must not
	// drop its audit entry.
	if _, err := s.Registrar(context.WithoutCancel(ctx), e); err != nil {
		infra.AuditoriaErroresTotal.Inc()
		log.Error().
			Err(err).
			Str("accion", e.Accion).
			Str("tabla", e.Tabla).
			Int64("registro_id", e.RegistroID).
			Msg("audit entry could not be written")
	}
}

func normalizarFiltro(f *dto.AuditoriaFiltro) error {
	if f.Limit < 1 {
		f.Limit = 50
	}
	if err := validar(*f); err != nil {
		return err
	}
	if f.Desde != "" && f.Hasta != "" && f.Desde > f.Hasta {
		return nuevaValidacion("desde", "ltefield")
	}
	return nil
}

// Listar returns entries newest first.
func (s *auditoriaService) Listar(ctx context.Context, f dto.AuditoriaFiltro) (*dto.AuditoriaListResponse, error) {
	if err := normalizarFiltro(&f); err != nil {
		return nil, err
	}
	logs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar auditoria: %w", err)
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("contar auditoria: %w", err)
	}
	data := make([]dto.ConfigLogResponse, 0, len(logs))
	for i := range logs {
		data = append(data, configLogToResponse(&logs[i]))
	}
	return &dto.AuditoriaListResponse{Data: data, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *auditoriaService) Contar(ctx context.Context, f dto.AuditoriaFiltro) (int64, error) {
	if err := normalizarFiltro(&f); err != nil {
		return 0, err
	}
	n, err := s.repo.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("contar auditoria: %w", err)
	}
	return n, nil
}

func (s *auditoriaService) Estadisticas(ctx context.Context) ([]dto.EstadisticaAuditoria, error) {
	rows, err := s.repo.Estadisticas(ctx)
	if err != nil {
		return nil, fmt.Errorf("estadisticas auditoria: %w", err)
	}
	out := make([]dto.EstadisticaAuditoria, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.EstadisticaAuditoria{
			Tabla:          r.Tabla,
			Accion:         r.Accion,
			Cantidad:       r.Cantidad,
			UltimoRegistro: r.Ultimo,
		})
	}
	return out, nil
}

// Historial returns the full change trail of one record, oldest first.
func (s *auditoriaService) Historial(ctx context.Context, tabla string, registroID int64) ([]dto.ConfigLogResponse, error) {
	if !tablasValidas[tabla] {
		return nil, nuevaValidacion("tabla", "oneof")
	}
	logs, err := s.repo.Historial(ctx, tabla, registroID)
	if err != nil {
		return nil, fmt.Errorf("historial auditoria: %w", err)
	}
	out := make([]dto.ConfigLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, configLogToResponse(&logs[i]))
	}
	return out, nil
}

// Purgar deletes entries older than dias days and returns how many.
func (s *auditoriaService) Purgar(ctx context.Context, dias int) (int64, error) {
	if dias < 1 {
		return 0, nuevaValidacion("dias", "min")
	}
	limite := time.Now().UTC().AddDate(0, 0, -dias)
	n, err := s.repo.DeleteOlderThan(ctx, limite)
	if err != nil {
		return 0, fmt.Errorf("purgar auditoria: %w", err)
	}
	log.Info().Int("dias", dias).Int64("eliminados", n).Msg("audit log purged")
	return n, nil
}

// ── Snapshots ────────────────────────────────────────────────────────────────

// snapshotDe captures v (usually a response DTO) as a Snapshot using its
// JSON field names.
func snapshotDe(v any) dto.Snapshot {
	b, err := json.Marshal(v)
	if err != nil {
		return dto.Snapshot{"error": err.Error()}
	}
	var s dto.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return dto.Snapshot{"error": err.Error()}
	}
	return s
}

func marshalSnapshot(s dto.Snapshot) (*string, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serializar snapshot: %w", err)
	}
	str := string(b)
	return &str, nil
}

// unmarshalSnapshot decodes a stored snapshot. Rows written by older releases
// may not be JSON; their text is returned under "raw".
func unmarshalSnapshot(s *string) dto.Snapshot {
	if s == nil {
		return nil
	}
	var out dto.Snapshot
	if err := json.Unmarshal([]byte(*s), &out); err != nil {
		return dto.Snapshot{"raw": *s}
	}
	return out
}

func configLogToResponse(l *model.ConfigLog) dto.ConfigLogResponse {
	return dto.ConfigLogResponse{
		ID:              l.ID,
		Accion:          l.Accion,
		Tabla:           l.Tabla,
		RegistroID:      l.RegistroID,
		Descripcion:     l.Descripcion,
		DatosAnteriores: unmarshalSnapshot(l.DatosAnteriores),
		DatosNuevos:     unmarshalSnapshot(l.DatosNuevos),
		IPOrigen:        l.IPOrigen,
		CreatedAt:       l.CreatedAt,
	}
}
