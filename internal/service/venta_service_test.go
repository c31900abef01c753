package service

import (
	"context"
	"errors"
	"testing"

	"boleteria/internal/dto"
	"boleteria/internal/infra"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearVenta_CreatesSaleAndTicketThenRejectsDuplicateQR(t *testing.T) {
	env := newEnv(t)
	seedUsuario(t, env.db, 3, "ana")
	seedTipo(t, env.db, 5, "General", "0.44")
	ctx := context.Background()
	antes := testutil.ToFloat64(infra.VentasTotal)

	req := dto.CrearVentaRequest{
		TipoTicketID: 5,
		Total:        decimal.RequireFromString("0.44"),
		CodigoQR:     "ticket-general-ab12-xy34",
	}
	r, err := env.ventas.CrearVenta(ctx, 3, req)
	require.NoError(t, err)
	assert.Positive(t, r.VentaID)
	assert.Equal(t, "ticket-general-ab12-xy34", r.CodigoQR)
	assert.Equal(t, int64(5), r.TipoTicketID)
	assert.True(t, r.Precio.Equal(decimal.RequireFromString("0.44")))
	assert.False(t, r.CreatedAt.IsZero())

	tk := env.ticketDeVenta(t, r.VentaID)
	assert.False(t, tk.Impreso)
	assert.False(t, tk.Usado)
	assert.False(t, tk.Anulado)
	assert.True(t, tk.Precio.Equal(req.Total))
	assert.Equal(t, 1.0, testutil.ToFloat64(infra.VentasTotal)-antes)

	_, err = env.ventas.CrearVenta(ctx, 3, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicado)
	var uv *UniqueViolationError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "tickets", uv.Table)
	assert.Equal(t, "codigo_qr", uv.Field)

	assert.Equal(t, int64(1), env.contar(t, "ventas"), "the failed sale must be rolled back")
	assert.Equal(t, int64(1), env.contar(t, "tickets"))
	assert.Equal(t, 1.0, testutil.ToFloat64(infra.VentasTotal)-antes)
}

func TestCrearVenta_ValidationBeforeAnyWrite(t *testing.T) {
	env := newEnv(t)
	seedUsuario(t, env.db, 1, "ana")
	seedTipo(t, env.db, 1, "General", "10")
	ctx := context.Background()

	casos := map[string]struct {
		req   dto.CrearVentaRequest
		campo string
	}{
		"total cero":     {dto.CrearVentaRequest{TipoTicketID: 1, Total: decimal.Zero, CodigoQR: "qr-1"}, "total"},
		"total negativo": {dto.CrearVentaRequest{TipoTicketID: 1, Total: decimal.NewFromInt(-5), CodigoQR: "qr-1"}, "total"},
		"qr vacio":       {dto.CrearVentaRequest{TipoTicketID: 1, Total: decimal.NewFromInt(5)}, "codigo_qr"},
		"sin tipo":       {dto.CrearVentaRequest{Total: decimal.NewFromInt(5), CodigoQR: "qr-1"}, "tipo_ticket_id"},
		"puerta rara":    {dto.CrearVentaRequest{TipoTicketID: 1, Total: decimal.NewFromInt(5), CodigoQR: "qr-1", PuertaCodigo: ptr("A-1")}, "puerta_codigo"},
	}
	for name, tc := range casos {
		t.Run(name, func(t *testing.T) {
			_, err := env.ventas.CrearVenta(ctx, 1, tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidacion)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tc.campo)
		})
	}

	_, err := env.ventas.CrearVenta(ctx, 0, dto.CrearVentaRequest{TipoTicketID: 1, Total: decimal.NewFromInt(5), CodigoQR: "qr-1"})
	assert.ErrorIs(t, err, ErrValidacion)

	assert.Zero(t, env.contar(t, "ventas"))
	assert.Zero(t, env.contar(t, "tickets"))
}

func TestCrearVenta_RejectsUnknownOrInactiveReferences(t *testing.T) {
	env := newEnv(t)
	seedUsuario(t, env.db, 1, "ana")
	seedUsuario(t, env.db, 2, "baja")
	require.NoError(t, env.db.Exec("UPDATE usuarios SET activo = 0 WHERE id = 2").Error)
	seedTipo(t, env.db, 1, "General", "10")
	seedTipo(t, env.db, 2, "Retirado", "10")
	require.NoError(t, env.db.Exec("UPDATE tipos_ticket SET activo = 0 WHERE id = 2").Error)
	ctx := context.Background()

	casos := map[string]struct {
		usuarioID int64
		tipoID    int64
		campo     string
	}{
		"tipo inexistente":    {1, 99, "tipo_ticket_id"},
		"tipo inactivo":       {1, 2, "tipo_ticket_id"},
		"usuario inexistente": {99, 1, "usuario_id"},
		"usuario inactivo":    {2, 1, "usuario_id"},
	}
	for name, tc := range casos {
		t.Run(name, func(t *testing.T) {
			_, err := env.ventas.CrearVenta(ctx, tc.usuarioID, dto.CrearVentaRequest{
				TipoTicketID: tc.tipoID,
				Total:        decimal.NewFromInt(10),
				CodigoQR:     "qr-" + name,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidacion)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "exists", ve.Fields[tc.campo])
		})
	}

	assert.Zero(t, env.contar(t, "ventas"))
	assert.Zero(t, env.contar(t, "tickets"))
}

func TestListarVentas_FiltersByUserNewestFirst(t *testing.T) {
	env := newEnv(t)
	seedUsuario(t, env.db, 1, "ana")
	seedUsuario(t, env.db, 2, "luis")
	seedTipo(t, env.db, 1, "General", "10")

	primera := env.vender(t, 1, 1, "10", "qr-1")
	segunda := env.vender(t, 1, 1, "10", "qr-2")
	env.vender(t, 2, 1, "10", "qr-3")

	resp, err := env.ventas.ListarVentas(context.Background(), dto.VentaFilter{UsuarioID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, segunda.VentaID, resp.Data[0].ID)
	assert.Equal(t, primera.VentaID, resp.Data[1].ID)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.Limit)

	hoy, err := env.ventas.ListarVentas(context.Background(), dto.VentaFilter{Fecha: dia(hoyLocal()), Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), hoy.Total)
	assert.Len(t, hoy.Data, 2)
}

func TestObtenerVenta(t *testing.T) {
	env := newEnv(t)
	seedUsuario(t, env.db, 1, "ana")
	seedTipo(t, env.db, 1, "General", "10")
	r := env.vender(t, 1, 1, "10", "qr-1")

	v, err := env.ventas.ObtenerVenta(context.Background(), r.VentaID)
	require.NoError(t, err)
	require.Len(t, v.Tickets, 1)
	assert.Equal(t, "qr-1", v.Tickets[0].CodigoQR)
	assert.Equal(t, "General", v.Tickets[0].TipoTicket)

	_, err = env.ventas.ObtenerVenta(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}
