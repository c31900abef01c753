package service

import (
	"context"
	"errors"
	"fmt"

	"boleteria/internal/dto"
	"boleteria/internal/model"
	"boleteria/internal/repository"

	"gorm.io/gorm"
)

// BotonTicketService manages the bindings of the four physical inputs.
type BotonTicketService interface {
	Guardar(ctx context.Context, req dto.BotonTicketRequest) (*dto.BotonTicketResponse, error)
	Eliminar(ctx context.Context, entrada int) error
	Listar(ctx context.Context) ([]dto.BotonTicketResponse, error)
}

type botonTicketService struct {
	repo     repository.BotonTicketRepository
	tipoRepo repository.TipoTicketRepository
	audit    AuditoriaService
}

func NewBotonTicketService(repo repository.BotonTicketRepository, tipoRepo repository.TipoTicketRepository, audit AuditoriaService) BotonTicketService {
	return &botonTicketService{repo: repo, tipoRepo: tipoRepo, audit: audit}
}

// Guardar creates or replaces the binding of req.Entrada.
func (s *botonTicketService) Guardar(ctx context.Context, req dto.BotonTicketRequest) (*dto.BotonTicketResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	tipo, err := s.tipoRepo.ObtenerPorID(ctx, req.TipoTicketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nuevaValidacion("tipo_ticket_id", "exists")
	}
	if err != nil {
		return nil, fmt.Errorf("guardar boton: %w", err)
	}

	b, err := s.repo.FindByEntrada(ctx, req.Entrada)
	nuevo := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !nuevo {
		return nil, fmt.Errorf("guardar boton: %w", err)
	}

	var antes dto.Snapshot
	if nuevo {
		b = &model.BotonTicket{Entrada: req.Entrada}
	} else {
		antes = snapshotDe(botonToResponse(b))
	}
	b.TipoTicketID = req.TipoTicketID
	b.Cantidad = req.Cantidad
	b.Descripcion = req.Descripcion
	b.Activo = req.Activo == nil || *req.Activo
	b.TipoTicket = tipo

	guardar := s.repo.Save
	if nuevo {
		guardar = s.repo.Create
	}
	if err := guardar(ctx, b); err != nil {
		return nil, mapDBError("guardar boton", err)
	}

	resp := botonToResponse(b)
	entrada := EntradaAuditoria{
		Tabla:      model.TablaBotonesTicket,
		RegistroID: b.ID,
		Despues:    snapshotDe(resp),
		IPOrigen:   ipOrigen(ctx),
	}
	if nuevo {
		entrada.Accion = model.AccionCrear
		entrada.Descripcion = fmt.Sprintf("Boton de entrada %d asignado a %q", b.Entrada, tipo.Nombre)
	} else {
		entrada.Accion = model.AccionModificar
		entrada.Descripcion = fmt.Sprintf("Boton de entrada %d modificado", b.Entrada)
		entrada.Antes = antes
	}
	s.audit.RegistrarSeguro(ctx, entrada)
	return &resp, nil
}

func (s *botonTicketService) Eliminar(ctx context.Context, entrada int) error {
	if entrada < 1 || entrada > 4 {
		return nuevaValidacion("entrada", "max")
	}
	b, err := s.repo.FindByEntrada(ctx, entrada)
	if err != nil {
		return mapDBError("eliminar boton", err)
	}
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return mapDBError("eliminar boton", err)
	}
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionEliminar,
		Tabla:       model.TablaBotonesTicket,
		RegistroID:  b.ID,
		Descripcion: fmt.Sprintf("Boton de entrada %d eliminado", entrada),
		Antes:       snapshotDe(botonToResponse(b)),
		IPOrigen:    ipOrigen(ctx),
	})
	return nil
}

func (s *botonTicketService) Listar(ctx context.Context) ([]dto.BotonTicketResponse, error) {
	botones, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar botones: %w", err)
	}
	out := make([]dto.BotonTicketResponse, 0, len(botones))
	for i := range botones {
		out = append(out, botonToResponse(&botones[i]))
	}
	return out, nil
}

func botonToResponse(b *model.BotonTicket) dto.BotonTicketResponse {
	resp := dto.BotonTicketResponse{
		ID:           b.ID,
		Entrada:      b.Entrada,
		TipoTicketID: b.TipoTicketID,
		Cantidad:     b.Cantidad,
		Descripcion:  b.Descripcion,
		Activo:       b.Activo,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.TipoTicket != nil {
		resp.TipoTicket = b.TipoTicket.Nombre
	}
	return resp
}
