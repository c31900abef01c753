package handler

import (
	"net/http"

	"boleteria/internal/apierror"
	"boleteria/internal/dto"
	"boleteria/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

func (h *AuditoriaHandler) bindFiltro(c *gin.Context) (dto.AuditoriaFiltro, bool) {
	var f dto.AuditoriaFiltro
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return f, false
	}
	return f, true
}

func (h *AuditoriaHandler) Listar(c *gin.Context) {
	f, ok := h.bindFiltro(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuditoriaHandler) Contar(c *gin.Context) {
	f, ok := h.bindFiltro(c)
	if !ok {
		return
	}
	n, err := h.svc.Contar(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": n})
}

func (h *AuditoriaHandler) Estadisticas(c *gin.Context) {
	resp, err := h.svc.Estadisticas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns every entry of one record, oldest first.
func (h *AuditoriaHandler) Historial(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), c.Param("tabla"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuditoriaHandler) Purgar(c *gin.Context) {
	var req dto.PurgarAuditoriaRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.svc.Purgar(c.Request.Context(), req.Dias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PurgarAuditoriaResponse{Eliminados: n})
}
