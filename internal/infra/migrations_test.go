package infra

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openRaw opens a database file without running any migration, the way an
// older release would have left it.
func openRaw(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "legacy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })
	return db
}

func exec(t *testing.T, db *gorm.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		require.NoError(t, db.Exec(s).Error, s)
	}
}

// schemaSQL dumps every schema object so two runs can be compared.
func schemaSQL(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var out []string
	require.NoError(t, db.Raw(
		"SELECT type || ':' || name || ':' || coalesce(sql, '') FROM sqlite_master ORDER BY type, name",
	).Scan(&out).Error)
	return out
}

func TestMigrate_FreshDatabase(t *testing.T) {
	db := openRaw(t)

	res, err := NewMigrator(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, res.Aplicadas)
	assert.Empty(t, res.Fallidas)

	var relay int64
	require.NoError(t, db.Raw("SELECT count(*) FROM config_relay WHERE id = 1").Scan(&relay).Error)
	assert.Equal(t, int64(1), relay)

	existe, err := indiceExiste(db, indiceCierreUnico)
	require.NoError(t, err)
	assert.True(t, existe)

	estados, err := NewMigrator(db).Status(context.Background())
	require.NoError(t, err)
	require.Len(t, estados, len(Migraciones()))
	for _, e := range estados {
		assert.True(t, e.Aplicada, "version %d", e.Version)
		assert.NotNil(t, e.AplicadaEn)
	}
}

func TestMigrate_SecondRunIsNoop(t *testing.T) {
	db := openRaw(t)
	m := NewMigrator(db)

	_, err := m.Migrate(context.Background())
	require.NoError(t, err)
	antes := schemaSQL(t, db)

	res, err := m.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Aplicadas)
	assert.Empty(t, res.Fallidas)
	assert.Equal(t, antes, schemaSQL(t, db))
}

func TestMigrate_BodiesAreRerunnable(t *testing.T) {
	db := openRaw(t)
	_, err := NewMigrator(db).Migrate(context.Background())
	require.NoError(t, err)
	antes := schemaSQL(t, db)

	// An un-versioned database that already has the schema: wiping the
	// ledger makes every body run again against current tables.
	exec(t, db, "DELETE FROM schema_migrations")
	res, err := NewMigrator(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Aplicadas, len(Migraciones()))
	assert.Equal(t, antes, schemaSQL(t, db))
}

func TestMigrate_LegacyCierresKeepsLatestPerUserAndDay(t *testing.T) {
	db := openRaw(t)
	exec(t, db,
		`CREATE TABLE usuarios (id INTEGER PRIMARY KEY AUTOINCREMENT, nombre TEXT NOT NULL, username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL, rol TEXT NOT NULL DEFAULT 'vendedor', created_at DATETIME, updated_at DATETIME)`,
		`INSERT INTO usuarios (id, nombre, username, password_hash) VALUES (1, 'Ana', 'ana', 'x'), (2, 'Luis', 'luis', 'x')`,
		`CREATE TABLE cierres_caja (id INTEGER PRIMARY KEY AUTOINCREMENT, usuario_id INTEGER NOT NULL, fecha_inicio DATETIME NOT NULL,
			fecha_cierre DATETIME NOT NULL, total_ventas NUMERIC(10,2) NOT NULL DEFAULT 0, cantidad_tickets INTEGER NOT NULL DEFAULT 0, detalle TEXT)`,
		`INSERT INTO cierres_caja (id, usuario_id, fecha_inicio, fecha_cierre, total_ventas, cantidad_tickets, detalle) VALUES
			(1, 1, '2024-03-01 00:00:00', '2024-03-01 10:00:00', 10, 1, 'a'),
			(2, 1, '2024-03-01 00:00:00', '2024-03-01 18:00:00', 20, 2, 'b'),
			(3, 1, '2024-03-01 00:00:00', '2024-03-01 18:00:00', 30, 3, 'c'),
			(4, 1, '2024-03-02 00:00:00', '2024-03-02 18:00:00', 40, 4, 'd'),
			(5, 2, '2024-03-01 00:00:00', '2024-03-01 12:00:00', 50, 5, 'e')`,
	)

	res, err := NewMigrator(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Fallidas)

	var ids []int64
	require.NoError(t, db.Raw("SELECT id FROM cierres_caja ORDER BY id").Scan(&ids).Error)
	assert.Equal(t, []int64{3, 4, 5}, ids)

	var detalle string
	require.NoError(t, db.Raw("SELECT detalle FROM cierres_caja WHERE id = 3").Scan(&detalle).Error)
	assert.Equal(t, "c", detalle)

	// The legacy usuarios table gained activo with its default.
	var activos int64
	require.NoError(t, db.Raw("SELECT count(*) FROM usuarios WHERE activo = 1").Scan(&activos).Error)
	assert.Equal(t, int64(2), activos)

	err = db.Exec(`INSERT INTO cierres_caja (usuario_id, fecha_inicio, fecha_cierre) VALUES (1, '2024-03-01 00:00:00', '2024-03-01 20:00:00')`).Error
	tabla, columna, ok := UniqueViolation(err)
	require.True(t, ok, "expected unique violation, got %v", err)
	assert.Equal(t, "cierres_caja", tabla)
	assert.Equal(t, "fecha_inicio", columna)
}

func TestMigrate_RepairsConfigLogWithoutCreatedAt(t *testing.T) {
	db := openRaw(t)
	exec(t, db,
		`CREATE TABLE config_log (id INTEGER PRIMARY KEY AUTOINCREMENT, accion TEXT NOT NULL, tabla TEXT NOT NULL,
			registro_id INTEGER NOT NULL, descripcion TEXT NOT NULL, datos_anteriores TEXT, datos_nuevos TEXT, fecha DATETIME)`,
		`INSERT INTO config_log (accion, tabla, registro_id, descripcion, datos_nuevos, fecha) VALUES
			('CREAR', 'puertas', 1, 'Puerta creada', '{"id":1}', '2024-01-01 10:00:00'),
			('MODIFICAR', 'puertas', 1, 'Puerta modificada', '{"id":1}', NULL)`,
	)

	res, err := NewMigrator(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Fallidas)

	var rows []struct {
		Descripcion string
		CreatedAt   string
	}
	require.NoError(t, db.Raw("SELECT descripcion, CAST(created_at AS TEXT) AS created_at FROM config_log ORDER BY id").Scan(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Puerta creada", rows[0].Descripcion)
	assert.Equal(t, "2024-01-01 10:00:00", rows[0].CreatedAt)
	assert.NotEmpty(t, rows[1].CreatedAt, "missing timestamps fall back to the migration time")

	assert.False(t, tablaExiste(t, db, "config_log_old"))
}

func TestMigrate_ConfigLogRepairDropsArchiveWhenCopyFails(t *testing.T) {
	db := openRaw(t)
	exec(t, db,
		`CREATE TABLE config_log (id INTEGER PRIMARY KEY AUTOINCREMENT, accion TEXT, tabla TEXT, registro_id INTEGER, descripcion TEXT, timestamp DATETIME)`,
		// Values the current CHECK constraints reject: the copy fails as a whole.
		`INSERT INTO config_log (accion, tabla, registro_id, descripcion, timestamp) VALUES ('BORRAR', 'productos', 9, 'x', '2023-05-05 10:00:00')`,
	)

	res, err := NewMigrator(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Fallidas)

	assert.False(t, tablaExiste(t, db, "config_log_old"))
	var n int64
	require.NoError(t, db.Raw("SELECT count(*) FROM config_log").Scan(&n).Error)
	assert.Zero(t, n)
}

func TestMigrate_FailureDoesNotHaltLaterMigrations(t *testing.T) {
	db := openRaw(t)
	boom := errors.New("boom")
	m := &Migrator{db: db, migraciones: []Migracion{
		{1, "base", crearTablas},
		{2, "falla", func(tx *gorm.DB) error { return boom }},
		{3, "relay", migrarConfigRelay},
		{4, "cierres", migrarCierresUnicos},
	}}

	res, err := m.Migrate(context.Background())
	require.NoError(t, err, "the schema is still complete, only v2 is pending")
	assert.Equal(t, []int{1, 3, 4}, res.Aplicadas)
	require.Contains(t, res.Fallidas, 2)
	assert.ErrorIs(t, res.Fallidas[2], boom)

	estados, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, estados[1].Aplicada)
}

func TestMigrate_UnusableSchemaIsReported(t *testing.T) {
	db := openRaw(t)
	exec(t, db, `CREATE TABLE tickets (id INTEGER PRIMARY KEY, venta_id INTEGER)`)
	m := &Migrator{db: db, migraciones: []Migracion{
		{1, "falla", func(tx *gorm.DB) error { return errors.New("disk full") }},
	}}

	_, err := m.Migrate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnusable)
	assert.Contains(t, err.Error(), "tickets.codigo_qr")
	assert.Contains(t, err.Error(), "usuarios")
}

func TestMigrate_MissingClosureIndexIsUnusable(t *testing.T) {
	db := openRaw(t)
	m := &Migrator{db: db, migraciones: []Migracion{
		{1, "base", crearTablas},
		{2, "relay", migrarConfigRelay},
		{3, "cierres", func(tx *gorm.DB) error { return errors.New("disk full") }},
	}}

	res, err := m.Migrate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnusable)
	assert.Contains(t, err.Error(), indiceCierreUnico)
	assert.Equal(t, []int{1, 2}, res.Aplicadas)

	// Once the index exists the same schema is accepted.
	require.NoError(t, db.Transaction(migrarCierresUnicos))
	assert.NoError(t, m.Verify(context.Background()))
}

func TestNewDatabase_MigratesOnOpen(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "boleteria.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	require.NoError(t, NewMigrator(db).Verify(context.Background()))
}

func tablaExiste(t *testing.T, db *gorm.DB, nombre string) bool {
	t.Helper()
	cols, err := columnasDe(db, nombre)
	require.NoError(t, err)
	return len(cols) > 0
}
