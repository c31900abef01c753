package handler

import (
	"net/http"

	"boleteria/internal/apierror"
	"boleteria/internal/dto"
	"boleteria/internal/middleware"
	"boleteria/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// CrearVenta godoc
// @Summary      Registrar una venta
// @Description  Crea la venta y su ticket en una sola transaccion. Si no se envia codigo_qr se genera uno.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearVentaRequest true "Venta"
// @Success      201  {object} dto.VentaReceipt
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/ventas [post]
func (h *VentasHandler) CrearVenta(c *gin.Context) {
	var req dto.CrearVentaRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CodigoQR == "" && req.TipoTicketID > 0 {
		req.CodigoQR = nuevoCodigoQR(req.TipoTicketID)
	}
	claims := middleware.GetClaims(c)

	resp, err := h.svc.CrearVenta(c.Request.Context(), claims.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Lista paginada por fecha local y usuario. Un vendedor solo ve sus propias ventas.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha      query string false "Fecha YYYY-MM-DD"
// @Param        usuario_id query int    false "Usuario (solo admin)"
// @Param        page       query int    false "Pagina (default 1)"
// @Param        limit      query int    false "Registros por pagina (default 50)"
// @Success      200 {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if claims := middleware.GetClaims(c); claims.Rol != middleware.RolAdmin {
		filter.UsuarioID = claims.UserID
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Tickets Handler ──────────────────────────────────────────────────────────

type TicketsHandler struct{ svc service.TicketService }

func NewTicketsHandler(svc service.TicketService) *TicketsHandler {
	return &TicketsHandler{svc: svc}
}

// MarcarImpresa is called by the shell once the printer confirmed the job.
func (h *TicketsHandler) MarcarImpresa(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.MarcarImpresa(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarcarImpresaResponse{Actualizados: n})
}

func (h *TicketsHandler) AnularVenta(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.AnularVenta(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TicketsHandler) AnularTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.AnularTicket(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarcarUsado godoc
// @Summary      Registrar ingreso
// @Description  Marca el ticket como usado. Responde 409 si ya fue usado o esta anulado.
// @Tags         tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del ticket"
// @Success      200 {object} dto.TicketResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/tickets/{id}/usar [post]
func (h *TicketsHandler) MarcarUsado(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.MarcarUsado(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketsHandler) BuscarPorQR(c *gin.Context) {
	resp, err := h.svc.BuscarPorQR(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
