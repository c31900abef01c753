package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"boleteria/internal/dto"
	"boleteria/internal/infra"
	"boleteria/internal/model"
	"boleteria/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const layoutFecha = "2006-01-02"

type CierreService interface {
	CalcularTotales(ctx context.Context, usuarioID int64, fecha time.Time) (*dto.Totales, error)
	UpsertCierre(ctx context.Context, usuarioID int64, fechaInicio time.Time, totales dto.Totales) (*dto.UpsertCierreResponse, error)
	CerrarCaja(ctx context.Context, usuarioID int64, fecha time.Time) (*dto.CerrarCajaResponse, error)
	ListarPorFecha(ctx context.Context, fecha time.Time) (*dto.CierresPorFechaResponse, error)
	GenerarReportePDF(ctx context.Context, cierreID int64) (string, error)
}

type cierreService struct {
	repo    repository.CierreRepository
	pdfPath string
}

func NewCierreService(repo repository.CierreRepository, pdfPath string) CierreService {
	return &cierreService{repo: repo, pdfPath: pdfPath}
}

// dia returns the calendar date of t in t's own location.
func dia(t time.Time) string { return t.Format(layoutFecha) }

// medianocheUTC maps a calendar date to the instant stored in fecha_inicio.
func medianocheUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ── CalcularTotales ───────────────────────────────────────────────────────────
// Counts printed, non-annulled tickets of non-annulled sales made by the user
// on the given local date, grouped by ticket type name.

func (s *cierreService) CalcularTotales(ctx context.Context, usuarioID int64, fecha time.Time) (*dto.Totales, error) {
	if usuarioID <= 0 {
		return nil, nuevaValidacion("usuario_id", "required")
	}
	rows, err := s.repo.TicketsDelDia(ctx, usuarioID, dia(fecha))
	if err != nil {
		return nil, fmt.Errorf("calcular totales: %w", err)
	}

	grupos := make(map[string]*dto.TotalPorTipo)
	total := decimal.Zero
	for _, r := range rows {
		g, ok := grupos[r.TipoTicket]
		if !ok {
			g = &dto.TotalPorTipo{Nombre: r.TipoTicket, Suma: decimal.Zero}
			grupos[r.TipoTicket] = g
		}
		g.Cantidad++
		g.Suma = g.Suma.Add(r.Precio)
		total = total.Add(r.Precio)
	}

	porTipo := make([]dto.TotalPorTipo, 0, len(grupos))
	for _, g := range grupos {
		porTipo = append(porTipo, *g)
	}
	sort.Slice(porTipo, func(i, j int) bool { return porTipo[i].Nombre < porTipo[j].Nombre })

	return &dto.Totales{
		TotalVentas:     total,
		CantidadTickets: len(rows),
		Detalle:         renderDetalle(porTipo),
		PorTipo:         porTipo,
	}, nil
}

// renderDetalle formats one "Nombre: N x $suma" line per ticket type.
func renderDetalle(porTipo []dto.TotalPorTipo) string {
	lineas := make([]string, 0, len(porTipo))
	for _, p := range porTipo {
		lineas = append(lineas, fmt.Sprintf("%s: %d x $%s", p.Nombre, p.Cantidad, p.Suma.StringFixed(2)))
	}
	return strings.Join(lineas, "\n")
}

// ── UpsertCierre ──────────────────────────────────────────────────────────────
// One transaction: UPDATE the (usuario, date) row; INSERT only when nothing
// was updated. If the INSERT loses against the unique index, the row that
// won is updated instead. The index idx_cierres_caja_usuario_fecha is what
// guarantees a single row.

func (s *cierreService) UpsertCierre(ctx context.Context, usuarioID int64, fechaInicio time.Time, totales dto.Totales) (*dto.UpsertCierreResponse, error) {
	if usuarioID <= 0 {
		return nil, nuevaValidacion("usuario_id", "required")
	}
	if totales.CantidadTickets < 0 {
		return nil, nuevaValidacion("cantidad_tickets", "min")
	}
	if totales.TotalVentas.IsNegative() {
		return nil, nuevaValidacion("total_ventas", "min")
	}

	c := &model.CierreCaja{
		UsuarioID:       usuarioID,
		FechaInicio:     medianocheUTC(fechaInicio),
		FechaCierre:     time.Now().UTC(),
		TotalVentas:     totales.TotalVentas,
		CantidadTickets: totales.CantidadTickets,
		Detalle:         totales.Detalle,
	}
	fecha := dia(fechaInicio)

	accion := dto.AccionCierreActualizado
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.Actualizar(ctx, tx, c)
		if err != nil {
			return err
		}
		if n == 0 {
			err := s.repo.Insertar(ctx, tx, c)
			if err == nil {
				accion = dto.AccionCierreCreado
				return nil
			}
			if _, _, dup := infra.UniqueViolation(err); !dup {
				return err
			}
			log.Warn().Int64("usuario_id", usuarioID).Str("fecha", fecha).Msg("cierre insert lost to a concurrent writer, updating")
			if _, err := s.repo.Actualizar(ctx, tx, c); err != nil {
				return err
			}
		}
		existente, err := s.repo.FindByUsuarioFecha(ctx, tx, usuarioID, fecha)
		if err != nil {
			return err
		}
		c.ID = existente.ID
		return nil
	})
	if txErr != nil {
		return nil, mapDBError("upsert cierre", txErr)
	}

	infra.CierresTotal.WithLabelValues(accion).Inc()
	log.Info().
		Int64("cierre_id", c.ID).
		Int64("usuario_id", usuarioID).
		Str("fecha", fecha).
		Str("accion", accion).
		Str("total", c.TotalVentas.StringFixed(2)).
		Msg("cierre de caja guardado")

	return &dto.UpsertCierreResponse{Accion: accion, ID: c.ID}, nil
}

// CerrarCaja computes the totals for the date and stores the closure.
func (s *cierreService) CerrarCaja(ctx context.Context, usuarioID int64, fecha time.Time) (*dto.CerrarCajaResponse, error) {
	totales, err := s.CalcularTotales(ctx, usuarioID, fecha)
	if err != nil {
		return nil, err
	}
	res, err := s.UpsertCierre(ctx, usuarioID, fecha, *totales)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, res.ID)
	if err != nil {
		return nil, mapDBError("cerrar caja", err)
	}
	return &dto.CerrarCajaResponse{Accion: res.Accion, Cierre: cierreToResponse(c)}, nil
}

// ListarPorFecha returns every user's closure for the date plus consolidated
// totals.
func (s *cierreService) ListarPorFecha(ctx context.Context, fecha time.Time) (*dto.CierresPorFechaResponse, error) {
	cierres, err := s.repo.ListByFecha(ctx, dia(fecha))
	if err != nil {
		return nil, fmt.Errorf("listar cierres: %w", err)
	}

	resp := &dto.CierresPorFechaResponse{
		Fecha:       dia(fecha),
		Cierres:     make([]dto.CierreResponse, 0, len(cierres)),
		TotalVentas: decimal.Zero,
	}
	usuarios := make(map[int64]struct{})
	for i := range cierres {
		c := &cierres[i]
		resp.Cierres = append(resp.Cierres, cierreToResponse(c))
		resp.TotalVentas = resp.TotalVentas.Add(c.TotalVentas)
		resp.TotalTickets += c.CantidadTickets
		usuarios[c.UsuarioID] = struct{}{}
	}
	resp.CantidadUsuarios = len(usuarios)
	return resp, nil
}

func (s *cierreService) GenerarReportePDF(ctx context.Context, cierreID int64) (string, error) {
	c, err := s.repo.FindByID(ctx, cierreID)
	if err != nil {
		return "", mapDBError("reporte cierre", err)
	}
	path, err := infra.GenerarCierrePDF(c, s.pdfPath)
	if err != nil {
		return "", err
	}
	log.Info().Int64("cierre_id", cierreID).Str("path", path).Msg("reporte de cierre generado")
	return path, nil
}

func cierreToResponse(c *model.CierreCaja) dto.CierreResponse {
	resp := dto.CierreResponse{
		ID:              c.ID,
		UsuarioID:       c.UsuarioID,
		Fecha:           c.FechaInicio.UTC().Format(layoutFecha),
		FechaCierre:     c.FechaCierre,
		TotalVentas:     c.TotalVentas,
		CantidadTickets: c.CantidadTickets,
		Detalle:         c.Detalle,
	}
	if c.Usuario != nil {
		resp.Usuario = c.Usuario.Nombre
	}
	return resp
}
