package service

import (
	"context"

	"boleteria/internal/dto"
	"boleteria/internal/model"
	"boleteria/internal/repository"
)

type ConfigRelayService interface {
	Obtener(ctx context.Context) (*dto.ConfigRelayResponse, error)
	Actualizar(ctx context.Context, req dto.ConfigRelayRequest) (*dto.ConfigRelayResponse, error)
}

type configRelayService struct {
	repo  repository.ConfigRelayRepository
	audit AuditoriaService
}

func NewConfigRelayService(repo repository.ConfigRelayRepository, audit AuditoriaService) ConfigRelayService {
	return &configRelayService{repo: repo, audit: audit}
}

func (s *configRelayService) Obtener(ctx context.Context) (*dto.ConfigRelayResponse, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, mapDBError("obtener config relay", err)
	}
	resp := configRelayToResponse(c)
	return &resp, nil
}

func (s *configRelayService) Actualizar(ctx context.Context, req dto.ConfigRelayRequest) (*dto.ConfigRelayResponse, error) {
	if err := validar(req); err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, mapDBError("actualizar config relay", err)
	}
	antes := snapshotDe(configRelayToResponse(c))

	c.IP = req.IP
	c.Puerto = req.Puerto
	c.TimeoutMs = req.TimeoutMs
	c.Reintentos = req.Reintentos
	c.ModoCanal1 = req.ModoCanal1
	c.ModoCanal2 = req.ModoCanal2
	c.ModoCanal3 = req.ModoCanal3
	c.ModoCanal4 = req.ModoCanal4
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, mapDBError("actualizar config relay", err)
	}

	resp := configRelayToResponse(c)
	s.audit.RegistrarSeguro(ctx, EntradaAuditoria{
		Accion:      model.AccionModificar,
		Tabla:       model.TablaConfigRelay,
		RegistroID:  model.ConfigRelayID,
		Descripcion: "Configuracion del rele actualizada",
		Antes:       antes,
		Despues:     snapshotDe(resp),
		IPOrigen:    ipOrigen(ctx),
	})
	return &resp, nil
}

func configRelayToResponse(c *model.ConfigRelay) dto.ConfigRelayResponse {
	return dto.ConfigRelayResponse{
		IP:         c.IP,
		Puerto:     c.Puerto,
		TimeoutMs:  c.TimeoutMs,
		Reintentos: c.Reintentos,
		ModoCanal1: c.ModoCanal1,
		ModoCanal2: c.ModoCanal2,
		ModoCanal3: c.ModoCanal3,
		ModoCanal4: c.ModoCanal4,
		UpdatedAt:  c.UpdatedAt,
	}
}
