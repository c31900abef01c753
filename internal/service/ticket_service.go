package service

import (
	"context"
	"time"

	"boleteria/internal/dto"
	"boleteria/internal/infra"
	"boleteria/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TicketService drives the ticket state machine:
//
//	creado → impreso → usado
//	creado | impreso → anulado
//
// A used ticket can never be annulled.
type TicketService interface {
	MarcarImpresa(ctx context.Context, ventaID int64) (int, error)
	MarcarUsado(ctx context.Context, ticketID int64) (*dto.TicketResponse, error)
	AnularTicket(ctx context.Context, ticketID int64) error
	AnularVenta(ctx context.Context, ventaID int64) error
	BuscarPorQR(ctx context.Context, codigo string) (*dto.TicketResponse, error)
}

type ticketService struct {
	repo      repository.TicketRepository
	ventaRepo repository.VentaRepository
}

func NewTicketService(repo repository.TicketRepository, ventaRepo repository.VentaRepository) TicketService {
	return &ticketService{repo: repo, ventaRepo: ventaRepo}
}

// MarcarImpresa flags every unprinted ticket of the sale as printed and
// returns how many changed. A repeated call returns 0.
func (s *ticketService) MarcarImpresa(ctx context.Context, ventaID int64) (int, error) {
	n, err := s.repo.MarcarImpresos(ctx, ventaID, time.Now().UTC())
	if err != nil {
		return 0, mapDBError("marcar impresa", err)
	}
	if n > 0 {
		log.Debug().Int64("venta_id", ventaID).Int64("tickets", n).Msg("tickets impresos")
	}
	return int(n), nil
}

func (s *ticketService) MarcarUsado(ctx context.Context, ticketID int64) (*dto.TicketResponse, error) {
	t, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, mapDBError("marcar usado", err)
	}
	if t.Anulado {
		return nil, reglaNegocio("el ticket %d esta anulado", ticketID)
	}
	if t.Usado {
		return nil, reglaNegocio("el ticket %d ya fue usado", ticketID)
	}

	at := time.Now().UTC()
	n, err := s.repo.MarcarUsado(ctx, ticketID, at)
	if err != nil {
		return nil, mapDBError("marcar usado", err)
	}
	if n == 0 {
		// State changed between the read and the conditional update.
		return nil, reglaNegocio("el ticket %d ya no puede usarse", ticketID)
	}

	t.Usado = true
	t.UsadoAt = &at
	log.Info().Int64("ticket_id", ticketID).Str("codigo_qr", t.CodigoQR).Msg("ticket usado")
	return ticketToResponse(t), nil
}

// AnularTicket annuls a single ticket. The owning sale's anulada flag is
// left as is, so a sale can hold annulled tickets while not annulled itself.
func (s *ticketService) AnularTicket(ctx context.Context, ticketID int64) error {
	t, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return mapDBError("anular ticket", err)
	}
	if t.Usado {
		return reglaNegocio("no se puede anular el ticket %d: ya fue usado", ticketID)
	}
	if t.Anulado {
		return nil
	}

	n, err := s.repo.Anular(ctx, ticketID)
	if err != nil {
		return mapDBError("anular ticket", err)
	}
	if n == 0 {
		return reglaNegocio("no se puede anular el ticket %d: ya fue usado", ticketID)
	}

	infra.TicketsAnuladosTotal.Inc()
	log.Info().Int64("ticket_id", ticketID).Int64("venta_id", t.VentaID).Msg("ticket anulado")
	return nil
}

// AnularVenta annuls the sale and every ticket under it in one transaction.
// If any ticket was used nothing is modified.
func (s *ticketService) AnularVenta(ctx context.Context, ventaID int64) error {
	var anulados int64
	txErr := runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		if _, err := s.ventaRepo.FindByIDTx(tx, ventaID); err != nil {
			return err
		}
		tickets, err := s.repo.ListByVenta(ctx, tx, ventaID)
		if err != nil {
			return err
		}
		for _, t := range tickets {
			if t.Usado {
				return reglaNegocio("no se puede anular la venta %d: el ticket %d ya fue usado", ventaID, t.ID)
			}
		}

		if err := s.ventaRepo.MarcarAnulada(ctx, tx, ventaID); err != nil {
			return err
		}
		anulados, err = s.repo.AnularPorVenta(ctx, tx, ventaID)
		return err
	})
	if txErr != nil {
		return mapDBError("anular venta", txErr)
	}

	infra.TicketsAnuladosTotal.Add(float64(anulados))
	log.Info().Int64("venta_id", ventaID).Int64("tickets", anulados).Msg("venta anulada")
	return nil
}

func (s *ticketService) BuscarPorQR(ctx context.Context, codigo string) (*dto.TicketResponse, error) {
	if codigo == "" {
		return nil, nuevaValidacion("codigo_qr", "required")
	}
	t, err := s.repo.FindByQR(ctx, codigo)
	if err != nil {
		return nil, mapDBError("buscar ticket", err)
	}
	return ticketToResponse(t), nil
}
