package service

import (
	"context"
	"fmt"

	"boleteria/internal/dto"
	"boleteria/internal/model"
	"boleteria/internal/repository"

	"github.com/rs/zerolog/log"
)

type PuertaService interface {
	Crear(ctx context.Context, req dto.PuertaRequest) (*dto.PuertaResponse, error)
	Actualizar(ctx context.Context, id int64, req dto.PuertaRequest) (*dto.PuertaResponse, error)
	Eliminar(ctx context.Context, id int64) (*dto.EliminarResponse, error)
	Listar(ctx context.Context, incluirInactivas bool) ([]dto.PuertaResponse, error)
}

type puertaService struct {
	repo  repository.PuertaRepository
	audit AuditoriaService
}

func NewPuertaService(repo repository.PuertaRepository, audit AuditoriaService) PuertaService {
	return &puertaService{repo: repo, audit: audit}
}

func (s *puertaService) verificarCanal(ctx context.Context, canal *int, activo bool, exceptoID int64) error {
	if canal == nil || !activo {
		return nil
	}
	enUso, err := s.repo.CanalEnUso(ctx, *canal, exceptoID)
	if err != nil {
		return fmt.Errorf("verificar canal: %w", err)
	}
	if enUso {
		return &UniqueViolationError{Table: model.TablaPuertas, Field: "canal_rele"}
	}
	return nil
}

func (s *puertaService) Crear(ctx context.Context, req dto.PuertaRequest) (*dto.PuertaResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	p := &model.Puerta{
		Nombre:         req.Nombre,
		Codigo:         req.Codigo,
		LectorIP:       req.LectorIP,
		LectorPuerto:   req.LectorPuerto,
		CanalRele:      req.CanalRele,
		TiempoApertura: req.TiempoApertura,
		Activo:         req.Activo == nil || *req.Activo,
	}
	if err := s.verificarCanal(ctx, p.CanalRele, p.Activo, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, mapDBError("crear puerta", err)
	}

	resp := puertaToResponse(p)
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionCrear,
		Tabla:       model.TablaPuertas,
		RegistroID:  p.ID,
		Descripcion: fmt.Sprintf("Puerta %q creada", p.Nombre),
		Despues:     snapshotDe(resp),
		IPOrigen:    ipOrigen(ctx),
	})
	log.Info().Int64("puerta_id", p.ID).Str("codigo", p.Codigo).Msg("puerta creada")
	return &resp, nil
}

func (s *puertaService) Actualizar(ctx context.Context, id int64, req dto.PuertaRequest) (*dto.PuertaResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapDBError("actualizar puerta", err)
	}
	antes := snapshotDe(puertaToResponse(p))

	p.Nombre = req.Nombre
	p.Codigo = req.Codigo
	p.LectorIP = req.LectorIP
	p.LectorPuerto = req.LectorPuerto
	p.CanalRele = req.CanalRele
	p.TiempoApertura = req.TiempoApertura
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.verificarCanal(ctx, p.CanalRele, p.Activo, p.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapDBError("actualizar puerta", err)
	}

	resp := puertaToResponse(p)
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionModificar,
		Tabla:       model.TablaPuertas,
		RegistroID:  p.ID,
		Descripcion: fmt.Sprintf("Puerta %q modificada", p.Nombre),
		Antes:       antes,
		Despues:     snapshotDe(resp),
		IPOrigen:    ipOrigen(ctx),
	})
	return &resp, nil
}

// Eliminar removes the door when no ticket type references it. Otherwise the
// door is deactivated and the outcome is reported as desactivado.
func (s *puertaService) Eliminar(ctx context.Context, id int64) (*dto.EliminarResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapDBError("eliminar puerta", err)
	}
	antes := puertaToResponse(p)

	dependientes, err := s.repo.CountTiposTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("eliminar puerta: %w", err)
	}

	if dependientes == 0 {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, mapDBError("eliminar puerta", err)
		}
		s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
			Accion:      model.AccionEliminar,
			Tabla:       model.TablaPuertas,
			RegistroID:  id,
			Descripcion: fmt.Sprintf("Puerta %q eliminada", p.Nombre),
			Antes:       snapshotDe(antes),
			IPOrigen:    ipOrigen(ctx),
		})
		log.Info().Int64("puerta_id", id).Msg("puerta eliminada")
		return &dto.EliminarResponse{Resultado: dto.ResultadoEliminado}, nil
	}

	if err := s.repo.Desactivar(ctx, id); err != nil {
		return nil, mapDBError("desactivar puerta", err)
	}
	despues := antes
	despues.Activo = false
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionModificar,
		Tabla:       model.TablaPuertas,
		RegistroID:  id,
		Descripcion: fmt.Sprintf("Puerta %q desactivada: %d tipo(s) de ticket la referencian", p.Nombre, dependientes),
		Antes:       snapshotDe(antes),
		Despues:     snapshotDe(despues),
		IPOrigen:    ipOrigen(ctx),
	})
	log.Info().Int64("puerta_id", id).Int64("dependientes", dependientes).Msg("puerta desactivada")
	return &dto.EliminarResponse{Resultado: dto.ResultadoDesactivado}, nil
}

func (s *puertaService) Listar(ctx context.Context, incluirInactivas bool) ([]dto.PuertaResponse, error) {
	puertas, err := s.repo.List(ctx, incluirInactivas)
	if err != nil {
		return nil, fmt.Errorf("listar puertas: %w", err)
	}
	out := make([]dto.PuertaResponse, 0, len(puertas))
	for i := range puertas {
		out = append(out, puertaToResponse(&puertas[i]))
	}
	return out, nil
}

func puertaToResponse(p *model.Puerta) dto.PuertaResponse {
	return dto.PuertaResponse{
		ID:             p.ID,
		Nombre:         p.Nombre,
		Codigo:         p.Codigo,
		LectorIP:       p.LectorIP,
		LectorPuerto:   p.LectorPuerto,
		CanalRele:      p.CanalRele,
		TiempoApertura: p.TiempoApertura,
		Activo:         p.Activo,
		CreatedAt:      p.CreatedAt,
	}
}
