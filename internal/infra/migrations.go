package infra

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrSchemaUnusable is returned by Migrate when, after every migration has
// been attempted, a table or column the services depend on is still missing.
var ErrSchemaUnusable = errors.New("esquema de base de datos inutilizable")

// Migracion is one ordered, versioned schema step. Aplicar runs inside a
// transaction together with the ledger insert that records it, and must be
// safe to run against a database that already has the change (older
// releases evolved the schema without a ledger).
type Migracion struct {
	Version     int
	Descripcion string
	Aplicar     func(tx *gorm.DB) error
}

// ResultadoMigracion summarizes one Migrate run.
type ResultadoMigracion struct {
	Aplicadas []int
	Fallidas  map[int]error
}

// EstadoMigracion is one row of Status.
type EstadoMigracion struct {
	Version     int
	Descripcion string
	Aplicada    bool
	AplicadaEn  *time.Time
}

// Migrator applies the ordered migration list against a database and keeps
// the schema_migrations ledger.
type Migrator struct {
	db          *gorm.DB
	migraciones []Migracion
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{db: db, migraciones: Migraciones()}
}

type schemaMigration struct {
	Version     int `gorm:"primaryKey"`
	Descripcion string
	AppliedAt   time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

const ledgerDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version     INTEGER PRIMARY KEY,
	descripcion TEXT NOT NULL,
	applied_at  DATETIME NOT NULL
)`

// Migrate applies every migration missing from the ledger, in version order.
// Each one gets its own transaction; a failure is logged, left pending and
// does not stop the migrations after it. The run ends with Verify.
func (m *Migrator) Migrate(ctx context.Context) (*ResultadoMigracion, error) {
	db := m.db.WithContext(ctx)
	if err := db.Exec(ledgerDDL).Error; err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}

	aplicadas, err := m.versionesAplicadas(db)
	if err != nil {
		return nil, err
	}

	res := &ResultadoMigracion{Fallidas: map[int]error{}}
	for _, mig := range m.migraciones {
		if _, ok := aplicadas[mig.Version]; ok {
			continue
		}
		mig := mig
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Aplicar(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:     mig.Version,
				Descripcion: mig.Descripcion,
				AppliedAt:   time.Now().UTC(),
			}).Error
		})
		if err != nil {
			res.Fallidas[mig.Version] = err
			log.Error().
				Err(err).
				Int("version", mig.Version).
				Str("migracion", mig.Descripcion).
				Msg("migration failed, continuing with the next one")
			continue
		}
		res.Aplicadas = append(res.Aplicadas, mig.Version)
		log.Info().Int("version", mig.Version).Str("migracion", mig.Descripcion).Msg("migration applied")
	}

	if err := m.Verify(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Status lists every known migration and whether the ledger records it.
func (m *Migrator) Status(ctx context.Context) ([]EstadoMigracion, error) {
	db := m.db.WithContext(ctx)
	if err := db.Exec(ledgerDDL).Error; err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}
	aplicadas, err := m.versionesAplicadas(db)
	if err != nil {
		return nil, err
	}
	out := make([]EstadoMigracion, 0, len(m.migraciones))
	for _, mig := range m.migraciones {
		e := EstadoMigracion{Version: mig.Version, Descripcion: mig.Descripcion}
		if at, ok := aplicadas[mig.Version]; ok {
			at := at
			e.Aplicada = true
			e.AplicadaEn = &at
		}
		out = append(out, e)
	}
	return out, nil
}

// Verify checks that every table and column used by the repositories exists,
// and that cierres_caja carries its one-closure-per-user-and-day index.
func (m *Migrator) Verify(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	var faltantes []string

	tablas := make([]string, 0, len(columnasRequeridas))
	for t := range columnasRequeridas {
		tablas = append(tablas, t)
	}
	sort.Strings(tablas)

	for _, tabla := range tablas {
		cols, err := columnasDe(db, tabla)
		if err != nil {
			return fmt.Errorf("verify %s: %w", tabla, err)
		}
		if len(cols) == 0 {
			faltantes = append(faltantes, tabla)
			continue
		}
		for _, c := range columnasRequeridas[tabla] {
			if !cols[c] {
				faltantes = append(faltantes, tabla+"."+c)
			}
		}
	}
	existe, err := indiceExiste(db, indiceCierreUnico)
	if err != nil {
		return fmt.Errorf("verify %s: %w", indiceCierreUnico, err)
	}
	if !existe {
		faltantes = append(faltantes, indiceCierreUnico)
	}
	if len(faltantes) > 0 {
		return fmt.Errorf("%w: faltan %s", ErrSchemaUnusable, strings.Join(faltantes, ", "))
	}
	return nil
}

func (m *Migrator) versionesAplicadas(db *gorm.DB) (map[int]time.Time, error) {
	var rows []schemaMigration
	if err := db.Order("version").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	out := make(map[int]time.Time, len(rows))
	for _, r := range rows {
		out[r.Version] = r.AppliedAt
	}
	return out, nil
}

// ── Introspection helpers ────────────────────────────────────────────────────

// columnasDe returns the column set of tabla; empty when the table is absent.
func columnasDe(tx *gorm.DB, tabla string) (map[string]bool, error) {
	var nombres []string
	if err := tx.Raw("SELECT name FROM pragma_table_info(?)", tabla).Scan(&nombres).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(nombres))
	for _, n := range nombres {
		out[n] = true
	}
	return out, nil
}

func indiceExiste(tx *gorm.DB, nombre string) (bool, error) {
	var n int64
	err := tx.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?", nombre).Scan(&n).Error
	return n > 0, err
}

type columna struct {
	nombre string
	ddl    string
}

// agregarColumnas issues ADD COLUMN for every entry of cols missing from
// tabla. Already present columns are left untouched.
func agregarColumnas(tx *gorm.DB, tabla string, cols []columna) error {
	existentes, err := columnasDe(tx, tabla)
	if err != nil {
		return err
	}
	if len(existentes) == 0 {
		return fmt.Errorf("tabla %s no existe", tabla)
	}
	for _, c := range cols {
		if existentes[c.nombre] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tabla, c.nombre, c.ddl)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add %s.%s: %w", tabla, c.nombre, err)
		}
		log.Info().Str("tabla", tabla).Str("columna", c.nombre).Msg("column added")
	}
	return nil
}
