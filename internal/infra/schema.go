package infra

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Migraciones returns the ordered migration list. Versions are append-only:
// never renumber or edit a released entry, add a new one instead.
func Migraciones() []Migracion {
	return []Migracion{
		{1, "crear tablas", crearTablas},
		{2, "tickets: columnas de ciclo de vida", migrarTicketsCicloVida},
		{3, "puertas: lector y rele", migrarPuertasRele},
		{4, "config_relay: modos por canal y fila unica", migrarConfigRelay},
		{5, "flags activo/anulada y puerta de tipo de ticket", migrarFlags},
		{6, "cierres_caja: unico por usuario y fecha", migrarCierresUnicos},
		{7, "config_log: reparar columna created_at", repararConfigLog},
		{8, "indices secundarios", crearIndices},
	}
}

// columnasRequeridas lists what the repositories read and write.
var columnasRequeridas = map[string][]string{
	"usuarios":       {"id", "nombre", "username", "password_hash", "rol", "activo", "created_at", "updated_at"},
	"puertas":        {"id", "nombre", "codigo", "lector_ip", "lector_puerto", "canal_rele", "tiempo_apertura", "activo", "created_at"},
	"tipos_ticket":   {"id", "nombre", "precio", "puerta_id", "activo", "created_at"},
	"ventas":         {"id", "usuario_id", "total", "anulada", "created_at"},
	"tickets":        {"id", "venta_id", "tipo_ticket_id", "codigo_qr", "puerta_codigo", "precio", "anulado", "usado", "usado_at", "impreso", "impreso_at", "created_at"},
	"cierres_caja":   {"id", "usuario_id", "fecha_inicio", "fecha_cierre", "total_ventas", "cantidad_tickets", "detalle"},
	"config_relay":   {"id", "ip", "puerto", "timeout_ms", "reintentos", "modo_canal_1", "modo_canal_2", "modo_canal_3", "modo_canal_4", "updated_at"},
	"botones_ticket": {"id", "entrada", "tipo_ticket_id", "cantidad", "descripcion", "activo", "updated_at"},
	"config_log":     {"id", "accion", "tabla", "registro_id", "descripcion", "datos_anteriores", "datos_nuevos", "ip_origen", "created_at"},
}

const (
	indiceCierreUnico = "idx_cierres_caja_usuario_fecha"

	cierresCajaDDL = `CREATE TABLE IF NOT EXISTS %s (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	usuario_id       INTEGER NOT NULL REFERENCES usuarios(id),
	fecha_inicio     DATETIME NOT NULL,
	fecha_cierre     DATETIME NOT NULL,
	total_ventas     NUMERIC(10,2) NOT NULL DEFAULT 0,
	cantidad_tickets INTEGER NOT NULL DEFAULT 0,
	detalle          TEXT
)`

	configLogDDL = `CREATE TABLE IF NOT EXISTS config_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	accion           TEXT NOT NULL CHECK (accion IN ('CREAR', 'MODIFICAR', 'ELIMINAR')),
	tabla            TEXT NOT NULL CHECK (tabla IN ('puertas', 'config_relay', 'tipos_ticket', 'botones_ticket')),
	registro_id      INTEGER NOT NULL,
	descripcion      TEXT NOT NULL,
	datos_anteriores TEXT,
	datos_nuevos     TEXT,
	ip_origen        TEXT,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
)

func crearTablas(tx *gorm.DB) error {
	stmts := []struct{ descr, sql string }{
		{"usuarios", `CREATE TABLE IF NOT EXISTS usuarios (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre        TEXT NOT NULL,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	rol           TEXT NOT NULL DEFAULT 'vendedor' CHECK (rol IN ('vendedor', 'admin')),
	activo        BOOLEAN NOT NULL DEFAULT 1,
	created_at    DATETIME,
	updated_at    DATETIME
)`},
		{"puertas", `CREATE TABLE IF NOT EXISTS puertas (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre          TEXT NOT NULL UNIQUE,
	codigo          TEXT NOT NULL UNIQUE,
	lector_ip       TEXT,
	lector_puerto   INTEGER,
	canal_rele      INTEGER CHECK (canal_rele BETWEEN 1 AND 4),
	tiempo_apertura INTEGER NOT NULL DEFAULT 5 CHECK (tiempo_apertura BETWEEN 1 AND 60),
	activo          BOOLEAN NOT NULL DEFAULT 1,
	created_at      DATETIME
)`},
		{"tipos_ticket", `CREATE TABLE IF NOT EXISTS tipos_ticket (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre     TEXT NOT NULL UNIQUE,
	precio     NUMERIC(10,2) NOT NULL CHECK (precio > 0),
	puerta_id  INTEGER REFERENCES puertas(id),
	activo     BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME
)`},
		{"ventas", `CREATE TABLE IF NOT EXISTS ventas (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	usuario_id INTEGER NOT NULL REFERENCES usuarios(id),
	total      NUMERIC(10,2) NOT NULL,
	anulada    BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME
)`},
		{"tickets", `CREATE TABLE IF NOT EXISTS tickets (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	venta_id       INTEGER NOT NULL REFERENCES ventas(id),
	tipo_ticket_id INTEGER NOT NULL REFERENCES tipos_ticket(id),
	codigo_qr      TEXT NOT NULL UNIQUE,
	puerta_codigo  TEXT,
	precio         NUMERIC(10,2) NOT NULL,
	anulado        BOOLEAN NOT NULL DEFAULT 0,
	usado          BOOLEAN NOT NULL DEFAULT 0,
	usado_at       DATETIME,
	impreso        BOOLEAN NOT NULL DEFAULT 0,
	impreso_at     DATETIME,
	created_at     DATETIME
)`},
		{"cierres_caja", fmt.Sprintf(cierresCajaDDL, "cierres_caja")},
		{"config_relay", `CREATE TABLE IF NOT EXISTS config_relay (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	ip           TEXT NOT NULL DEFAULT '192.168.1.100',
	puerto       INTEGER NOT NULL DEFAULT 80,
	timeout_ms   INTEGER NOT NULL DEFAULT 3000,
	reintentos   INTEGER NOT NULL DEFAULT 3,
	modo_canal_1 TEXT NOT NULL DEFAULT 'NA',
	modo_canal_2 TEXT NOT NULL DEFAULT 'NA',
	modo_canal_3 TEXT NOT NULL DEFAULT 'NA',
	modo_canal_4 TEXT NOT NULL DEFAULT 'NA',
	updated_at   DATETIME
)`},
		{"botones_ticket", `CREATE TABLE IF NOT EXISTS botones_ticket (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	entrada        INTEGER NOT NULL UNIQUE CHECK (entrada BETWEEN 1 AND 4),
	tipo_ticket_id INTEGER NOT NULL REFERENCES tipos_ticket(id),
	cantidad       INTEGER NOT NULL DEFAULT 1,
	descripcion    TEXT,
	activo         BOOLEAN NOT NULL DEFAULT 1,
	updated_at     DATETIME
)`},
		{"config_log", configLogDDL},
	}
	for _, s := range stmts {
		if err := tx.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.descr, err)
		}
	}
	return nil
}

func migrarTicketsCicloVida(tx *gorm.DB) error {
	return agregarColumnas(tx, "tickets", []columna{
		{"puerta_codigo", "TEXT"},
		{"anulado", "BOOLEAN NOT NULL DEFAULT 0"},
		{"usado", "BOOLEAN NOT NULL DEFAULT 0"},
		{"usado_at", "DATETIME"},
		{"impreso", "BOOLEAN NOT NULL DEFAULT 0"},
		{"impreso_at", "DATETIME"},
	})
}

func migrarPuertasRele(tx *gorm.DB) error {
	return agregarColumnas(tx, "puertas", []columna{
		{"lector_ip", "TEXT"},
		{"lector_puerto", "INTEGER"},
		{"canal_rele", "INTEGER"},
		{"tiempo_apertura", "INTEGER NOT NULL DEFAULT 5"},
		{"activo", "BOOLEAN NOT NULL DEFAULT 1"},
	})
}

func migrarConfigRelay(tx *gorm.DB) error {
	if err := agregarColumnas(tx, "config_relay", []columna{
		{"timeout_ms", "INTEGER NOT NULL DEFAULT 3000"},
		{"reintentos", "INTEGER NOT NULL DEFAULT 3"},
		{"modo_canal_1", "TEXT NOT NULL DEFAULT 'NA'"},
		{"modo_canal_2", "TEXT NOT NULL DEFAULT 'NA'"},
		{"modo_canal_3", "TEXT NOT NULL DEFAULT 'NA'"},
		{"modo_canal_4", "TEXT NOT NULL DEFAULT 'NA'"},
		{"updated_at", "DATETIME"},
	}); err != nil {
		return err
	}
	return tx.Exec(`INSERT OR IGNORE INTO config_relay (id, updated_at) VALUES (1, CURRENT_TIMESTAMP)`).Error
}

func migrarFlags(tx *gorm.DB) error {
	grupos := []struct {
		tabla string
		cols  []columna
	}{
		{"usuarios", []columna{{"activo", "BOOLEAN NOT NULL DEFAULT 1"}}},
		{"tipos_ticket", []columna{
			{"puerta_id", "INTEGER REFERENCES puertas(id)"},
			{"activo", "BOOLEAN NOT NULL DEFAULT 1"},
		}},
		{"ventas", []columna{{"anulada", "BOOLEAN NOT NULL DEFAULT 0"}}},
		{"botones_ticket", []columna{{"activo", "BOOLEAN NOT NULL DEFAULT 1"}}},
	}
	for _, g := range grupos {
		if err := agregarColumnas(tx, g.tabla, g.cols); err != nil {
			return err
		}
	}
	return nil
}

// migrarCierresUnicos introduces the (usuario_id, date(fecha_inicio))
// uniqueness on cierres_caja. SQLite cannot add the guarantee in place while
// duplicates exist, so the table is rebuilt keeping only the most recent
// closure of each group (latest fecha_cierre, highest id on ties).
func migrarCierresUnicos(tx *gorm.DB) error {
	existe, err := indiceExiste(tx, indiceCierreUnico)
	if err != nil || existe {
		return err
	}

	var antes int64
	if err := tx.Raw("SELECT count(*) FROM cierres_caja").Scan(&antes).Error; err != nil {
		return err
	}

	stmts := []struct{ descr, sql string }{
		{"drop stale shadow", `DROP TABLE IF EXISTS cierres_caja_nueva`},
		{"create shadow", fmt.Sprintf(cierresCajaDDL, "cierres_caja_nueva")},
		{"copy latest per group", `
INSERT INTO cierres_caja_nueva (id, usuario_id, fecha_inicio, fecha_cierre, total_ventas, cantidad_tickets, detalle)
SELECT id, usuario_id, fecha_inicio, fecha_cierre, total_ventas, cantidad_tickets, detalle
FROM (
	SELECT c.*, ROW_NUMBER() OVER (
		PARTITION BY usuario_id, date(fecha_inicio)
		ORDER BY fecha_cierre DESC, id DESC
	) AS rn
	FROM cierres_caja c
)
WHERE rn = 1`},
		{"drop original", `DROP TABLE cierres_caja`},
		{"rename shadow", `ALTER TABLE cierres_caja_nueva RENAME TO cierres_caja`},
		{"unique index", `CREATE UNIQUE INDEX ` + indiceCierreUnico + ` ON cierres_caja (usuario_id, date(fecha_inicio))`},
	}
	for _, s := range stmts {
		if err := tx.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("cierres_caja %s: %w", s.descr, err)
		}
	}

	var despues int64
	if err := tx.Raw("SELECT count(*) FROM cierres_caja").Scan(&despues).Error; err != nil {
		return err
	}
	if antes != despues {
		log.Warn().
			Int64("antes", antes).
			Int64("despues", despues).
			Msg("cierres_caja: duplicate closures discarded")
	}
	return nil
}

// repararConfigLog rebuilds config_log when an older release created it
// without created_at. Rows are carried over when the archived columns allow
// it; otherwise the archive is dropped anyway so no orphan table remains.
func repararConfigLog(tx *gorm.DB) error {
	cols, err := columnasDe(tx, "config_log")
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return tx.Exec(configLogDDL).Error
	}
	if cols["created_at"] {
		return nil
	}

	if err := tx.Exec(`DROP TABLE IF EXISTS config_log_old`).Error; err != nil {
		return err
	}
	if err := tx.Exec(`ALTER TABLE config_log RENAME TO config_log_old`).Error; err != nil {
		return fmt.Errorf("archive config_log: %w", err)
	}
	if err := tx.Exec(configLogDDL).Error; err != nil {
		return fmt.Errorf("recreate config_log: %w", err)
	}

	copia := copiaConfigLogSQL(cols)
	if res := tx.Exec(copia); res.Error != nil {
		log.Warn().Err(res.Error).Msg("config_log: archived rows could not be copied, dropping archive")
	} else {
		log.Info().Int64("filas", res.RowsAffected).Msg("config_log: archived rows copied")
	}

	return tx.Exec(`DROP TABLE config_log_old`).Error
}

// copiaConfigLogSQL builds the archive copy statement from the columns the
// archived table actually has. The timestamp falls back through the column
// names older releases used.
func copiaConfigLogSQL(old map[string]bool) string {
	destino := []string{"accion", "tabla", "registro_id", "descripcion", "datos_anteriores", "datos_nuevos", "ip_origen"}
	sel := make([]string, 0, len(destino)+1)
	for _, c := range destino {
		if old[c] {
			sel = append(sel, c)
		} else {
			sel = append(sel, "NULL")
		}
	}

	var fechas []string
	for _, c := range []string{"fecha", "timestamp", "fecha_hora"} {
		if old[c] {
			fechas = append(fechas, `"`+c+`"`)
		}
	}
	fechas = append(fechas, "CURRENT_TIMESTAMP")
	sel = append(sel, "COALESCE("+strings.Join(fechas, ", ")+")")

	return fmt.Sprintf(
		"INSERT INTO config_log (%s, created_at) SELECT %s FROM config_log_old ORDER BY rowid",
		strings.Join(destino, ", "), strings.Join(sel, ", "),
	)
}

func crearIndices(tx *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_tickets_venta ON tickets (venta_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ventas_usuario ON ventas (usuario_id)`,
		`CREATE INDEX IF NOT EXISTS idx_config_log_registro ON config_log (tabla, registro_id)`,
		`CREATE INDEX IF NOT EXISTS idx_config_log_created ON config_log (created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_puertas_canal_activo ON puertas (canal_rele) WHERE activo = 1 AND canal_rele IS NOT NULL`,
	}
	for _, s := range stmts {
		if err := tx.Exec(s).Error; err != nil {
			return fmt.Errorf("index %q: %w", s[:min(len(s), 60)], err)
		}
	}
	return nil
}
