package service

import (
	"context"
	"errors"
	"fmt"

	"boleteria/internal/dto"
	"boleteria/internal/infra"
	"boleteria/internal/model"
	"boleteria/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type VentaService interface {
	CrearVenta(ctx context.Context, usuarioID int64, req dto.CrearVentaRequest) (*dto.VentaReceipt, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ObtenerVenta(ctx context.Context, id int64) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo repository.VentaRepository
}

func NewVentaService(repo repository.VentaRepository) VentaService {
	return &ventaService{repo: repo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CrearVenta ────────────────────────────────────────────────────────────────
//   1. Validate request (before touching the database)
//   2. BEGIN TX: check seller and ticket type are active, insert venta,
//      insert ticket carrying the caller's QR code
//   3. COMMIT, or roll back both rows on any failure
//
// A QR code that already exists surfaces as *UniqueViolationError on
// codigo_qr and leaves no rows behind.

func (s *ventaService) CrearVenta(ctx context.Context, usuarioID int64, req dto.CrearVentaRequest) (*dto.VentaReceipt, error) {
	if usuarioID <= 0 {
		return nil, nuevaValidacion("usuario_id", "required")
	}
	if err := validar(req); err != nil {
		return nil, err
	}

	var ticket model.Ticket
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.UsuarioActivo(tx, usuarioID)
		if err != nil {
			return fmt.Errorf("buscar usuario: %w", err)
		}
		if !ok {
			return nuevaValidacion("usuario_id", "exists")
		}
		// Deactivated types stay in the table for old tickets but are not sold.
		ok, err = s.repo.TipoTicketActivo(tx, req.TipoTicketID)
		if err != nil {
			return fmt.Errorf("buscar tipo de ticket: %w", err)
		}
		if !ok {
			return nuevaValidacion("tipo_ticket_id", "exists")
		}

		venta := model.Venta{
			UsuarioID: usuarioID,
			Total:     req.Total,
		}
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		ticket = model.Ticket{
			VentaID:      venta.ID,
			TipoTicketID: req.TipoTicketID,
			CodigoQR:     req.CodigoQR,
			PuertaCodigo: req.PuertaCodigo,
			Precio:       req.Total,
		}
		return s.repo.CreateTicket(ctx, tx, &ticket)
	})
	if txErr != nil {
		err := mapDBError("crear venta", txErr)
		if errors.Is(err, ErrDuplicado) {
			log.Warn().Str("codigo_qr", req.CodigoQR).Int64("usuario_id", usuarioID).Msg("duplicate QR code rejected")
		}
		return nil, err
	}

	infra.VentasTotal.Inc()
	log.Info().
		Int64("venta_id", ticket.VentaID).
		Int64("usuario_id", usuarioID).
		Int64("tipo_ticket_id", req.TipoTicketID).
		Str("total", req.Total.StringFixed(2)).
		Msg("venta registrada")

	return &dto.VentaReceipt{
		VentaID:      ticket.VentaID,
		CodigoQR:     ticket.CodigoQR,
		TipoTicketID: ticket.TipoTicketID,
		Precio:       ticket.Precio,
		CreatedAt:    ticket.CreatedAt,
	}, nil
}

// ListarVentas returns a paginated list of sales, newest first, optionally
// filtered by local calendar date and seller.
func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if err := validar(filter); err != nil {
		return nil, err
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id int64) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapDBError("obtener venta", err)
	}
	return ventaToResponse(v), nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	tickets := make([]dto.TicketResponse, 0, len(v.Tickets))
	for i := range v.Tickets {
		tickets = append(tickets, *ticketToResponse(&v.Tickets[i]))
	}
	return &dto.VentaResponse{
		ID:        v.ID,
		UsuarioID: v.UsuarioID,
		Total:     v.Total,
		Anulada:   v.Anulada,
		CreatedAt: v.CreatedAt,
		Tickets:   tickets,
	}
}

func ticketToResponse(t *model.Ticket) *dto.TicketResponse {
	resp := &dto.TicketResponse{
		ID:           t.ID,
		VentaID:      t.VentaID,
		TipoTicketID: t.TipoTicketID,
		CodigoQR:     t.CodigoQR,
		PuertaCodigo: t.PuertaCodigo,
		Precio:       t.Precio,
		Anulado:      t.Anulado,
		Usado:        t.Usado,
		UsadoAt:      t.UsadoAt,
		Impreso:      t.Impreso,
		ImpresoAt:    t.ImpresoAt,
		CreatedAt:    t.CreatedAt,
	}
	if t.TipoTicket != nil {
		resp.TipoTicket = t.TipoTicket.Nombre
	}
	return resp
}
