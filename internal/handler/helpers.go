package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"boleteria/internal/apierror"
	"boleteria/internal/middleware"
	"boleteria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const layoutFecha = "2006-01-02"

// bindJSON decodes the body into req. Struct validation happens in the
// services so that every caller (bridge, CLI, tests) gets the same rules.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return true
}

// respondError maps the service error kinds onto HTTP statuses. Unknown
// errors are logged with the request ID and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ve.Fields))
	case errors.Is(err, service.ErrCredenciales):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("Registro no encontrado"))
	case errors.Is(err, service.ErrDuplicado), errors.Is(err, service.ErrReglaNegocio):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno"))
	}
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return 0, false
	}
	return id, true
}

// parseFecha reads a local calendar date; empty means today.
func parseFecha(c *gin.Context, valor string) (time.Time, bool) {
	if valor == "" {
		return time.Now(), true
	}
	t, err := time.ParseInLocation(layoutFecha, valor, time.Local)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"fecha": "datetime"}))
		return time.Time{}, false
	}
	return t, true
}

// ctxConIP returns the request context carrying the client address for
// audit entries.
func ctxConIP(c *gin.Context) context.Context {
	return service.ConIPOrigen(c.Request.Context(), c.ClientIP())
}

// nuevoCodigoQR builds a code of the form ticket-<tipo>-xxxx-xxxx for callers
// that do not bring their own.
func nuevoCodigoQR(tipoID int64) string {
	u := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ticket-" + strconv.FormatInt(tipoID, 10) + "-" + u[:4] + "-" + u[4:8]
}
