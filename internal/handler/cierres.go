package handler

import (
	"net/http"
	"path/filepath"

	"boleteria/internal/dto"
	"boleteria/internal/middleware"
	"boleteria/internal/service"

	"github.com/gin-gonic/gin"
)

type CierresHandler struct{ svc service.CierreService }

func NewCierresHandler(svc service.CierreService) *CierresHandler {
	return &CierresHandler{svc: svc}
}

// Totales previews the caller's closure for ?fecha (default today) without
// persisting anything.
func (h *CierresHandler) Totales(c *gin.Context) {
	fecha, ok := parseFecha(c, c.Query("fecha"))
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.CalcularTotales(c.Request.Context(), claims.UserID, fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CerrarCaja godoc
// @Summary      Cerrar caja
// @Description  Calcula los totales del dia y crea o reemplaza el cierre del usuario para esa fecha.
// @Tags         cierres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CerrarCajaRequest false "Fecha (default hoy)"
// @Success      200 {object} dto.CerrarCajaResponse
// @Router       /v1/cierres [post]
func (h *CierresHandler) CerrarCaja(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	fecha, ok := parseFecha(c, req.Fecha)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.CerrarCaja(c.Request.Context(), claims.UserID, fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CierresHandler) ListarPorFecha(c *gin.Context) {
	fecha, ok := parseFecha(c, c.Query("fecha"))
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorFecha(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF renders the closure report and streams it back.
func (h *CierresHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.GenerarReportePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
