package handler

import (
	"net/http"
	"strconv"

	"boleteria/internal/apierror"
	"boleteria/internal/dto"
	"boleteria/internal/service"

	"github.com/gin-gonic/gin"
)

// Admin mutations pass ctxConIP(c) so the audit entry records the caller.

// ── Puertas ──────────────────────────────────────────────────────────────────

type PuertasHandler struct{ svc service.PuertaService }

func NewPuertasHandler(svc service.PuertaService) *PuertasHandler {
	return &PuertasHandler{svc: svc}
}

func (h *PuertasHandler) Listar(c *gin.Context) {
	todas := c.Query("todas") == "true"
	resp, err := h.svc.Listar(c.Request.Context(), todas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PuertasHandler) Crear(c *gin.Context) {
	var req dto.PuertaRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Crear(ctxConIP(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PuertasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PuertaRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(ctxConIP(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar puerta
// @Description  Borra la puerta si ningun tipo de ticket la usa; si no, la desactiva.
// @Tags         configuracion
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID de la puerta"
// @Success      200 {object} dto.EliminarResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/puertas/{id} [delete]
func (h *PuertasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(ctxConIP(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Rele ─────────────────────────────────────────────────────────────────────

type RelayHandler struct{ svc service.ConfigRelayService }

func NewRelayHandler(svc service.ConfigRelayService) *RelayHandler {
	return &RelayHandler{svc: svc}
}

func (h *RelayHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RelayHandler) Actualizar(c *gin.Context) {
	var req dto.ConfigRelayRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(ctxConIP(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Tipos de ticket ──────────────────────────────────────────────────────────

type TiposTicketHandler struct{ svc service.TipoTicketService }

func NewTiposTicketHandler(svc service.TipoTicketService) *TiposTicketHandler {
	return &TiposTicketHandler{svc: svc}
}

// Listar returns active types unless ?todos=true.
func (h *TiposTicketHandler) Listar(c *gin.Context) {
	soloActivos := c.Query("todos") != "true"
	resp, err := h.svc.Listar(c.Request.Context(), soloActivos)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TiposTicketHandler) Crear(c *gin.Context) {
	var req dto.TipoTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Crear(ctxConIP(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TiposTicketHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TipoTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(ctxConIP(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TiposTicketHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(ctxConIP(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Botones ──────────────────────────────────────────────────────────────────

type BotonesHandler struct{ svc service.BotonTicketService }

func NewBotonesHandler(svc service.BotonTicketService) *BotonesHandler {
	return &BotonesHandler{svc: svc}
}

func (h *BotonesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Guardar binds a physical input to a ticket type, replacing any previous
// binding of that input.
func (h *BotonesHandler) Guardar(c *gin.Context) {
	var req dto.BotonTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(ctxConIP(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BotonesHandler) Eliminar(c *gin.Context) {
	entrada, err := strconv.Atoi(c.Param("entrada"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Entrada invalida"))
		return
	}
	if err := h.svc.Eliminar(ctxConIP(c), entrada); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
