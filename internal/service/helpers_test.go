package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"boleteria/internal/dto"
	"boleteria/internal/infra"
	"boleteria/internal/model"
	"boleteria/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB returns a migrated database in a temp file, closed on cleanup.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase(filepath.Join(t.TempDir(), "boleteria.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.CloseDatabase(db) })
	return db
}

// testEnv wires every service against one database.
type testEnv struct {
	db      *gorm.DB
	ventas  VentaService
	tickets TicketService
	cierres CierreService
	audit   AuditoriaService
	puertas PuertaService
	relay   ConfigRelayService
	tipos   TipoTicketService
	botones BotonTicketService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	return newEnvWithAudit(t, db, NewAuditoriaService(repository.NewConfigLogRepository(db)))
}

func newEnvWithAudit(t *testing.T, db *gorm.DB, audit AuditoriaService) *testEnv {
	t.Helper()
	ventaRepo := repository.NewVentaRepository(db)
	puertaRepo := repository.NewPuertaRepository(db)
	tipoRepo := repository.NewTipoTicketRepository(db)
	return &testEnv{
		db:      db,
		ventas:  NewVentaService(ventaRepo),
		tickets: NewTicketService(repository.NewTicketRepository(db), ventaRepo),
		cierres: NewCierreService(repository.NewCierreRepository(db), filepath.Join(t.TempDir(), "cierres")),
		audit:   audit,
		puertas: NewPuertaService(puertaRepo, audit),
		relay:   NewConfigRelayService(repository.NewConfigRelayRepository(db), audit),
		tipos:   NewTipoTicketService(tipoRepo, puertaRepo, audit),
		botones: NewBotonTicketService(repository.NewBotonTicketRepository(db), tipoRepo, audit),
	}
}

func seedUsuario(t *testing.T, db *gorm.DB, id int64, username string) *model.Usuario {
	t.Helper()
	u := &model.Usuario{
		ID:           id,
		Nombre:       "Usuario " + username,
		Username:     username,
		PasswordHash: "x",
		Rol:          model.RolVendedor,
		Activo:       true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedTipo(t *testing.T, db *gorm.DB, id int64, nombre, precio string) *model.TipoTicket {
	t.Helper()
	tt := &model.TipoTicket{
		ID:     id,
		Nombre: nombre,
		Precio: decimal.RequireFromString(precio),
		Activo: true,
	}
	require.NoError(t, db.Omit("Puerta").Create(tt).Error)
	return tt
}

func (e *testEnv) vender(t *testing.T, usuarioID, tipoID int64, total, qr string) *dto.VentaReceipt {
	t.Helper()
	r, err := e.ventas.CrearVenta(context.Background(), usuarioID, dto.CrearVentaRequest{
		TipoTicketID: tipoID,
		Total:        decimal.RequireFromString(total),
		CodigoQR:     qr,
	})
	require.NoError(t, err)
	return r
}

// venderImpresa sells and prints one ticket.
func (e *testEnv) venderImpresa(t *testing.T, usuarioID, tipoID int64, total, qr string) *dto.VentaReceipt {
	t.Helper()
	r := e.vender(t, usuarioID, tipoID, total, qr)
	n, err := e.tickets.MarcarImpresa(context.Background(), r.VentaID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return r
}

func (e *testEnv) ticketDeVenta(t *testing.T, ventaID int64) model.Ticket {
	t.Helper()
	var tk model.Ticket
	require.NoError(t, e.db.Where("venta_id = ?", ventaID).First(&tk).Error)
	return tk
}

func (e *testEnv) contar(t *testing.T, tabla string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Table(tabla).Count(&n).Error)
	return n
}

func (e *testEnv) auditoria(t *testing.T, tabla string, registroID int64) []dto.ConfigLogResponse {
	t.Helper()
	h, err := e.audit.Historial(context.Background(), tabla, registroID)
	require.NoError(t, err)
	return h
}

// ── Stubs ────────────────────────────────────────────────────────────────────

var errStub = errors.New("disk I/O error")

// failingConfigLogRepo rejects every write.
type failingConfigLogRepo struct {
	repository.ConfigLogRepository
	intentos int
}

func (r *failingConfigLogRepo) Create(ctx context.Context, l *model.ConfigLog) error {
	r.intentos++
	return errStub
}

func (r *failingConfigLogRepo) DeleteOlderThan(ctx context.Context, limite time.Time) (int64, error) {
	return 0, errStub
}

func ptr[T any](v T) *T { return &v }

func hoyLocal() time.Time { return time.Now() }
