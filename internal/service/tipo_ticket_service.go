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

type TipoTicketService interface {
	Crear(ctx context.Context, req dto.TipoTicketRequest) (*dto.TipoTicketResponse, error)
	Actualizar(ctx context.Context, id int64, req dto.TipoTicketRequest) (*dto.TipoTicketResponse, error)
	Eliminar(ctx context.Context, id int64) (*dto.EliminarResponse, error)
	Listar(ctx context.Context, soloActivos bool) ([]dto.TipoTicketResponse, error)
}

type tipoTicketService struct {
	repo       repository.TipoTicketRepository
	puertaRepo repository.PuertaRepository
	audit      AuditoriaService
}

func NewTipoTicketService(repo repository.TipoTicketRepository, puertaRepo repository.PuertaRepository, audit AuditoriaService) TipoTicketService {
	return &tipoTicketService{repo: repo, puertaRepo: puertaRepo, audit: audit}
}

func (s *tipoTicketService) resolverPuerta(ctx context.Context, id *int64) (*model.Puerta, error) {
	if id == nil {
		return nil, nil
	}
	p, err := s.puertaRepo.FindByID(ctx, *id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nuevaValidacion("puerta_id", "exists")
	}
	if err != nil {
		return nil, fmt.Errorf("resolver puerta: %w", err)
	}
	return p, nil
}

func (s *tipoTicketService) Crear(ctx context.Context, req dto.TipoTicketRequest) (*dto.TipoTicketResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	puerta, err := s.resolverPuerta(ctx, req.PuertaID)
	if err != nil {
		return nil, err
	}
	t := &model.TipoTicket{
		Nombre:   req.Nombre,
		Precio:   req.Precio,
		PuertaID: req.PuertaID,
		Activo:   req.Activo == nil || *req.Activo,
	}
	if err := s.repo.Crear(ctx, t); err != nil {
		return nil, mapDBError("crear tipo de ticket", err)
	}
	t.Puerta = puerta

	resp := tipoTicketToResponse(t)
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionCrear,
		Tabla:       model.TablaTiposTicket,
		RegistroID:  t.ID,
		Descripcion: fmt.Sprintf("Tipo de ticket %q creado", t.Nombre),
		Despues:     snapshotDe(resp),
		IPOrigen:    ipOrigen(ctx),
	})
	return &resp, nil
}

func (s *tipoTicketService) Actualizar(ctx context.Context, id int64, req dto.TipoTicketRequest) (*dto.TipoTicketResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	t, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, mapDBError("actualizar tipo de ticket", err)
	}
	puerta, err := s.resolverPuerta(ctx, req.PuertaID)
	if err != nil {
		return nil, err
	}
	antes := snapshotDe(tipoTicketToResponse(t))

	t.Nombre = req.Nombre
	t.Precio = req.Precio
	t.PuertaID = req.PuertaID
	t.Puerta = puerta
	if req.Activo != nil {
		t.Activo = *req.Activo
	}
	if err := s.repo.Actualizar(ctx, t); err != nil {
		return nil, mapDBError("actualizar tipo de ticket", err)
	}

	resp := tipoTicketToResponse(t)
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionModificar,
		Tabla:       model.TablaTiposTicket,
		RegistroID:  t.ID,
		Descripcion: fmt.Sprintf("Tipo de ticket %q modificado", t.Nombre),
		Antes:       antes,
		Despues:     snapshotDe(resp),
		IPOrigen:    ipOrigen(ctx),
	})
	return &resp, nil
}

// Eliminar removes the ticket type unless tickets or buttons reference it,
// in which case it is deactivated.
func (s *tipoTicketService) Eliminar(ctx context.Context, id int64) (*dto.EliminarResponse, error) {
	t, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, mapDBError("eliminar tipo de ticket", err)
	}
	antes := tipoTicketToResponse(t)

	refs, err := s.repo.ContarReferencias(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("eliminar tipo de ticket: %w", err)
	}
	if refs == 0 {
		if err := s.repo.Eliminar(ctx, id); err != nil {
			return nil, mapDBError("eliminar tipo de ticket", err)
		}
		s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
			Accion:      model.AccionEliminar,
			Tabla:       model.TablaTiposTicket,
			RegistroID:  id,
			Descripcion: fmt.Sprintf("Tipo de ticket %q eliminado", t.Nombre),
			Antes:       snapshotDe(antes),
			IPOrigen:    ipOrigen(ctx),
		})
		return &dto.EliminarResponse{Resultado: dto.ResultadoEliminado}, nil
	}

	if err := s.repo.Desactivar(ctx, id); err != nil {
		return nil, mapDBError("desactivar tipo de ticket", err)
	}
	despues := antes
	despues.Activo = false
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionModificar,
		Tabla:       model.TablaTiposTicket,
		RegistroID:  id,
		Descripcion: fmt.Sprintf("Tipo de ticket %q desactivado: tiene %d referencia(s)", t.Nombre, refs),
		Antes:       snapshotDe(antes),
		Despues:     snapshotDe(despues),
		IPOrigen:    ipOrigen(ctx),
	})
	return &dto.EliminarResponse{Resultado: dto.ResultadoDesactivado}, nil
}

func (s *tipoTicketService) Listar(ctx context.Context, soloActivos bool) ([]dto.TipoTicketResponse, error) {
	list, err := s.repo.Listar(ctx, soloActivos)
	if err != nil {
		return nil, fmt.Errorf("listar tipos de ticket: %w", err)
	}
	out := make([]dto.TipoTicketResponse, 0, len(list))
	for i := range list {
		out = append(out, tipoTicketToResponse(&list[i]))
	}
	return out, nil
}

func tipoTicketToResponse(t *model.TipoTicket) dto.TipoTicketResponse {
	resp := dto.TipoTicketResponse{
		ID:        t.ID,
		Nombre:    t.Nombre,
		Precio:    t.Precio,
		PuertaID:  t.PuertaID,
		Activo:    t.Activo,
		CreatedAt: t.CreatedAt,
	}
	if t.Puerta != nil {
		resp.Puerta = t.Puerta.Nombre
	}
	return resp
}
