package infra

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// indiceColumna resolves unique indexes whose violation message names the
// index instead of table.column (expression and partial indexes).
var indiceColumna = map[string][2]string{
	"idx_puertas_canal_activo": {"puertas", "canal_rele"},
	indiceCierreUnico:          {"cierres_caja", "fecha_inicio"},
}

const prefijoUnique = "UNIQUE constraint failed: "

// UniqueViolation reports whether err is a SQLite uniqueness violation and,
// when it is, which table and column collided. For composite keys the first
// column is returned.
func UniqueViolation(err error) (tabla, columna string, ok bool) {
	if err == nil {
		return "", "", false
	}
	msg := err.Error()
	var se sqlite3.Error
	if errors.As(err, &se) {
		if se.ExtendedCode != sqlite3.ErrConstraintUnique && se.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return "", "", false
		}
		msg = se.Error()
	}
	i := strings.Index(msg, prefijoUnique)
	if i < 0 {
		return "", "", false
	}
	objetivo := msg[i+len(prefijoUnique):]

	if strings.HasPrefix(objetivo, "index '") {
		nombre := strings.TrimSuffix(strings.TrimPrefix(objetivo, "index '"), "'")
		if tc, found := indiceColumna[nombre]; found {
			return tc[0], tc[1], true
		}
		return "", nombre, true
	}

	primera, _, _ := strings.Cut(objetivo, ",")
	tabla, columna, found := strings.Cut(strings.TrimSpace(primera), ".")
	if !found {
		return "", tabla, true
	}
	return tabla, columna, true
}
