package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"boleteria/internal/infra"

	"gorm.io/gorm"
)

// Error kinds. Callers match them with errors.Is; the typed errors below
// carry the details.
var (
	ErrValidacion   = errors.New("datos invalidos")
	ErrDuplicado    = errors.New("registro duplicado")
	ErrReglaNegocio = errors.New("operacion no permitida")
	ErrNoEncontrado = errors.New("registro no encontrado")
)

// ValidationError lists the rejected fields and the rule each one broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	nombres := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		nombres = append(nombres, f+" ("+e.Fields[f]+")")
	}
	sort.Strings(nombres)
	return "datos invalidos: " + strings.Join(nombres, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidacion }

func nuevaValidacion(campo, regla string) error {
	return &ValidationError{Fields: map[string]string{campo: regla}}
}

// UniqueViolationError reports which unique field collided.
type UniqueViolationError struct {
	Table string
	Field string
}

func (e *UniqueViolationError) Error() string {
	if msg, ok := mensajesDuplicado[e.Table+"."+e.Field]; ok {
		return msg
	}
	return fmt.Sprintf("ya existe un registro con el mismo valor de %s", e.Field)
}

func (e *UniqueViolationError) Is(target error) bool { return target == ErrDuplicado }

var mensajesDuplicado = map[string]string{
	"tickets.codigo_qr":         "el codigo QR ya fue emitido",
	"puertas.nombre":            "ya existe una puerta con ese nombre",
	"puertas.codigo":            "ya existe una puerta con ese codigo",
	"puertas.canal_rele":        "el canal de rele ya esta asignado a otra puerta activa",
	"tipos_ticket.nombre":       "ya existe un tipo de ticket con ese nombre",
	"usuarios.username":         "el nombre de usuario ya esta en uso",
	"botones_ticket.entrada":    "la entrada ya tiene un boton asignado",
	"cierres_caja.fecha_inicio": "ya existe un cierre para ese usuario y fecha",
}

// ReglaNegocioError explains a rejected state transition.
type ReglaNegocioError struct {
	Motivo string
}

func (e *ReglaNegocioError) Error() string { return e.Motivo }

func (e *ReglaNegocioError) Is(target error) bool { return target == ErrReglaNegocio }

func reglaNegocio(format string, args ...any) error {
	return &ReglaNegocioError{Motivo: fmt.Sprintf(format, args...)}
}

// mapDBError turns driver and ORM errors into the kinds above. Anything
// unrecognized is wrapped with op for context.
func mapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrValidacion, ErrDuplicado, ErrReglaNegocio, ErrNoEncontrado} {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNoEncontrado)
	}
	if tabla, col, ok := infra.UniqueViolation(err); ok {
		return &UniqueViolationError{Table: tabla, Field: col}
	}
	return fmt.Errorf("%s: %w", op, err)
}
