package service

import (
	"context"
	"testing"

	"boleteria/internal/dto"
	"boleteria/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func puertaReq(nombre, codigo string) dto.PuertaRequest {
	return dto.PuertaRequest{Nombre: nombre, Codigo: codigo, TiempoApertura: 5}
}

// ── Puertas ──────────────────────────────────────────────────────────────────

func TestPuerta_DeleteOrDeactivate(t *testing.T) {
	env := newEnv(t)
	ctx := ConIPOrigen(context.Background(), "10.0.0.7")

	libre, err := env.puertas.Crear(ctx, puertaReq("Norte", "N1"))
	require.NoError(t, err)
	usada, err := env.puertas.Crear(ctx, puertaReq("Sur", "S1"))
	require.NoError(t, err)
	_, err = env.tipos.Crear(ctx, dto.TipoTicketRequest{
		Nombre: "Platea", Precio: decimal.NewFromInt(30), PuertaID: ptr(usada.ID),
	})
	require.NoError(t, err)

	res, err := env.puertas.Eliminar(ctx, libre.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoEliminado, res.Resultado)

	res, err = env.puertas.Eliminar(ctx, usada.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoDesactivado, res.Resultado)

	var p model.Puerta
	require.NoError(t, env.db.First(&p, usada.ID).Error)
	assert.False(t, p.Activo)
	assert.EqualValues(t, 1, env.contar(t, "puertas"))

	h := env.auditoria(t, model.TablaPuertas, libre.ID)
	require.Len(t, h, 2)
	assert.Equal(t, model.AccionEliminar, h[1].Accion)
	assert.Equal(t, "Norte", h[1].DatosAnteriores["nombre"])
	assert.Nil(t, h[1].DatosNuevos)
	require.NotNil(t, h[1].IPOrigen)
	assert.Equal(t, "10.0.0.7", *h[1].IPOrigen)

	h = env.auditoria(t, model.TablaPuertas, usada.ID)
	require.Len(t, h, 2)
	assert.Equal(t, model.AccionModificar, h[1].Accion)
	assert.Equal(t, true, h[1].DatosAnteriores["activo"])
	assert.Equal(t, false, h[1].DatosNuevos["activo"])

	activas, err := env.puertas.Listar(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, activas)
	todas, err := env.puertas.Listar(ctx, true)
	require.NoError(t, err)
	assert.Len(t, todas, 1)

	_, err = env.puertas.Eliminar(ctx, 9999)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestPuerta_UniqueFields(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	req := puertaReq("Norte", "N1")
	req.CanalRele = ptr(1)
	_, err := env.puertas.Crear(ctx, req)
	require.NoError(t, err)

	cases := []struct {
		name  string
		req   dto.PuertaRequest
		campo string
	}{
		{"nombre", puertaReq("Norte", "N2"), "nombre"},
		{"codigo", puertaReq("Este", "N1"), "codigo"},
		{"canal", dto.PuertaRequest{Nombre: "Oeste", Codigo: "O1", TiempoApertura: 5, CanalRele: ptr(1)}, "canal_rele"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.puertas.Crear(ctx, tc.req)
			require.Error(t, err)
			var uv *UniqueViolationError
			require.ErrorAs(t, err, &uv)
			assert.Equal(t, "puertas", uv.Table)
			assert.Equal(t, tc.campo, uv.Field)
			assert.ErrorIs(t, err, ErrDuplicado)
		})
	}

	// An inactive door frees its channel.
	inactiva := dto.PuertaRequest{Nombre: "Oeste", Codigo: "O1", TiempoApertura: 5, CanalRele: ptr(1), Activo: ptr(false)}
	p, err := env.puertas.Crear(ctx, inactiva)
	require.NoError(t, err)
	assert.False(t, p.Activo)

	var guardada model.Puerta
	require.NoError(t, env.db.First(&guardada, p.ID).Error)
	assert.False(t, guardada.Activo)
}

func TestPuerta_Validation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		req   dto.PuertaRequest
		campo string
	}{
		{"sin nombre", dto.PuertaRequest{Codigo: "A1", TiempoApertura: 5}, "nombre"},
		{"codigo con guion", puertaReq("Norte", "A-1"), "codigo"},
		{"tiempo cero", dto.PuertaRequest{Nombre: "Norte", Codigo: "A1"}, "tiempo_apertura"},
		{"tiempo excesivo", dto.PuertaRequest{Nombre: "Norte", Codigo: "A1", TiempoApertura: 61}, "tiempo_apertura"},
		{"canal fuera de rango", dto.PuertaRequest{Nombre: "Norte", Codigo: "A1", TiempoApertura: 5, CanalRele: ptr(5)}, "canal_rele"},
		{"ip invalida", dto.PuertaRequest{Nombre: "Norte", Codigo: "A1", TiempoApertura: 5, LectorIP: ptr("10.0.0")}, "lector_ip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.puertas.Crear(ctx, tc.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.campo)
		})
	}
	assert.Zero(t, env.contar(t, "puertas"))
}

func TestPuerta_ActualizarRecordsBeforeAndAfter(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	p, err := env.puertas.Crear(ctx, puertaReq("Norte", "N1"))
	require.NoError(t, err)

	req := puertaReq("Norte Principal", "N1")
	req.TiempoApertura = 10
	upd, err := env.puertas.Actualizar(ctx, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 10, upd.TiempoApertura)

	h := env.auditoria(t, model.TablaPuertas, p.ID)
	require.Len(t, h, 2)
	assert.Equal(t, model.AccionCrear, h[0].Accion)
	assert.Nil(t, h[0].DatosAnteriores)
	assert.Nil(t, h[0].IPOrigen)
	assert.Equal(t, "Norte", h[1].DatosAnteriores["nombre"])
	assert.Equal(t, "Norte Principal", h[1].DatosNuevos["nombre"])
	assert.EqualValues(t, 10, h[1].DatosNuevos["tiempo_apertura"])

	_, err = env.puertas.Actualizar(ctx, 9999, req)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

// ── Relay ────────────────────────────────────────────────────────────────────

func TestConfigRelay_DefaultsAndUpdate(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	c, err := env.relay.Obtener(ctx)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.100", c.IP)
	assert.Equal(t, 80, c.Puerto)
	assert.Equal(t, 3000, c.TimeoutMs)
	assert.Equal(t, 3, c.Reintentos)
	assert.Equal(t, "NA", c.ModoCanal1)

	req := dto.ConfigRelayRequest{
		IP: "10.0.0.20", Puerto: 8080, TimeoutMs: 500, Reintentos: 0,
		ModoCanal1: "NC", ModoCanal2: "NA", ModoCanal3: "NA", ModoCanal4: "NA",
	}
	upd, err := env.relay.Actualizar(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.20", upd.IP)

	c, err = env.relay.Obtener(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Puerto)
	assert.Zero(t, c.Reintentos)
	assert.Equal(t, "NC", c.ModoCanal1)
	assert.EqualValues(t, 1, env.contar(t, "config_relay"))

	h := env.auditoria(t, model.TablaConfigRelay, model.ConfigRelayID)
	require.Len(t, h, 1)
	assert.Equal(t, model.AccionModificar, h[0].Accion)
	assert.Equal(t, "192.168.1.100", h[0].DatosAnteriores["ip"])
	assert.Equal(t, "10.0.0.20", h[0].DatosNuevos["ip"])
}

func TestConfigRelay_Validation(t *testing.T) {
	env := newEnv(t)
	base := dto.ConfigRelayRequest{
		IP: "10.0.0.20", Puerto: 80, TimeoutMs: 3000, Reintentos: 3,
		ModoCanal1: "NA", ModoCanal2: "NA", ModoCanal3: "NA", ModoCanal4: "NA",
	}
	cases := []struct {
		name  string
		mod   func(r *dto.ConfigRelayRequest)
		campo string
	}{
		{"ip", func(r *dto.ConfigRelayRequest) { r.IP = "relay.local" }, "ip"},
		{"puerto", func(r *dto.ConfigRelayRequest) { r.Puerto = 70000 }, "puerto"},
		{"timeout corto", func(r *dto.ConfigRelayRequest) { r.TimeoutMs = 99 }, "timeout_ms"},
		{"timeout largo", func(r *dto.ConfigRelayRequest) { r.TimeoutMs = 60001 }, "timeout_ms"},
		{"reintentos", func(r *dto.ConfigRelayRequest) { r.Reintentos = 11 }, "reintentos"},
		{"modo", func(r *dto.ConfigRelayRequest) { r.ModoCanal3 = "XX" }, "modo_canal_3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mod(&req)
			_, err := env.relay.Actualizar(context.Background(), req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.campo)
		})
	}
	assert.Zero(t, env.contar(t, "config_log"))
}

// ── Tipos de ticket ──────────────────────────────────────────────────────────

func TestTipoTicket_CrudAndDeactivation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.tipos.Crear(ctx, dto.TipoTicketRequest{Nombre: "General", Precio: decimal.NewFromInt(10), PuertaID: ptr(int64(99))})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "exists", ve.Fields["puerta_id"])

	_, err = env.tipos.Crear(ctx, dto.TipoTicketRequest{Nombre: "Gratis", Precio: decimal.Zero})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "precio")

	general, err := env.tipos.Crear(ctx, dto.TipoTicketRequest{Nombre: "General", Precio: decimal.RequireFromString("10.50")})
	require.NoError(t, err)
	assert.True(t, general.Activo)

	_, err = env.tipos.Crear(ctx, dto.TipoTicketRequest{Nombre: "General", Precio: decimal.NewFromInt(12)})
	assert.ErrorIs(t, err, ErrDuplicado)

	oculto, err := env.tipos.Crear(ctx, dto.TipoTicketRequest{Nombre: "Cortesia", Precio: decimal.NewFromInt(1), Activo: ptr(false)})
	require.NoError(t, err)
	assert.False(t, oculto.Activo)

	activos, err := env.tipos.Listar(ctx, true)
	require.NoError(t, err)
	require.Len(t, activos, 1)
	assert.Equal(t, "General", activos[0].Nombre)
	todos, err := env.tipos.Listar(ctx, false)
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	// Referenced by a sale: deactivated, not removed.
	seedUsuario(t, env.db, 1, "ana")
	env.vender(t, 1, general.ID, "10.50", "qr-general")
	res, err := env.tipos.Eliminar(ctx, general.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoDesactivado, res.Resultado)

	res, err = env.tipos.Eliminar(ctx, oculto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoEliminado, res.Resultado)
	assert.EqualValues(t, 1, env.contar(t, "tipos_ticket"))

	h := env.auditoria(t, model.TablaTiposTicket, general.ID)
	require.Len(t, h, 2)
	assert.Equal(t, model.AccionModificar, h[1].Accion)
	assert.Equal(t, false, h[1].DatosNuevos["activo"])
}

func TestTipoTicket_ActualizarBindsDoor(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	p, err := env.puertas.Crear(ctx, puertaReq("Norte", "N1"))
	require.NoError(t, err)
	tt, err := env.tipos.Crear(ctx, dto.TipoTicketRequest{Nombre: "General", Precio: decimal.NewFromInt(10)})
	require.NoError(t, err)

	upd, err := env.tipos.Actualizar(ctx, tt.ID, dto.TipoTicketRequest{
		Nombre: "General", Precio: decimal.NewFromInt(12), PuertaID: ptr(p.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "Norte", upd.Puerta)
	assert.True(t, upd.Precio.Equal(decimal.NewFromInt(12)))

	_, err = env.tipos.Actualizar(ctx, 9999, dto.TipoTicketRequest{Nombre: "X", Precio: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

// ── Botones ──────────────────────────────────────────────────────────────────

func TestBoton_UpsertByInput(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	seedTipo(t, env.db, 1, "General", "10")
	seedTipo(t, env.db, 2, "VIP", "25")

	_, err := env.botones.Guardar(ctx, dto.BotonTicketRequest{Entrada: 1, TipoTicketID: 99, Cantidad: 1})
	assert.ErrorIs(t, err, ErrValidacion)
	_, err = env.botones.Guardar(ctx, dto.BotonTicketRequest{Entrada: 5, TipoTicketID: 1, Cantidad: 1})
	assert.ErrorIs(t, err, ErrValidacion)
	_, err = env.botones.Guardar(ctx, dto.BotonTicketRequest{Entrada: 1, TipoTicketID: 1, Cantidad: 11})
	assert.ErrorIs(t, err, ErrValidacion)

	b, err := env.botones.Guardar(ctx, dto.BotonTicketRequest{Entrada: 1, TipoTicketID: 1, Cantidad: 2, Activo: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "General", b.TipoTicket)

	var guardado model.BotonTicket
	require.NoError(t, env.db.First(&guardado, b.ID).Error)
	assert.False(t, guardado.Activo)

	b2, err := env.botones.Guardar(ctx, dto.BotonTicketRequest{Entrada: 1, TipoTicketID: 2, Cantidad: 1})
	require.NoError(t, err)
	assert.Equal(t, b.ID, b2.ID)
	assert.True(t, b2.Activo)
	assert.EqualValues(t, 1, env.contar(t, "botones_ticket"))

	lista, err := env.botones.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, "VIP", lista[0].TipoTicket)

	h := env.auditoria(t, model.TablaBotonesTicket, b.ID)
	require.Len(t, h, 2)
	assert.Equal(t, model.AccionCrear, h[0].Accion)
	assert.Equal(t, model.AccionModificar, h[1].Accion)
	assert.EqualValues(t, 1, h[1].DatosAnteriores["tipo_ticket_id"])
	assert.EqualValues(t, 2, h[1].DatosNuevos["tipo_ticket_id"])

	require.NoError(t, env.botones.Eliminar(ctx, 1))
	assert.Zero(t, env.contar(t, "botones_ticket"))
	assert.ErrorIs(t, env.botones.Eliminar(ctx, 1), ErrNoEncontrado)
	assert.ErrorIs(t, env.botones.Eliminar(ctx, 0), ErrValidacion)

	h = env.auditoria(t, model.TablaBotonesTicket, b.ID)
	require.Len(t, h, 3)
	assert.Equal(t, model.AccionEliminar, h[2].Accion)
}

func TestCrearInactivo_SingleInsert(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	var updates int
	require.NoError(t, env.db.Callback().Update().Before("gorm:update").
		Register("test:contar_updates", func(*gorm.DB) { updates++ }))

	tt, err := env.tipos.Crear(ctx, dto.TipoTicketRequest{Nombre: "Cortesia", Precio: decimal.NewFromInt(1), Activo: ptr(false)})
	require.NoError(t, err)
	b, err := env.botones.Guardar(ctx, dto.BotonTicketRequest{Entrada: 2, TipoTicketID: tt.ID, Cantidad: 1, Activo: ptr(false)})
	require.NoError(t, err)
	assert.Zero(t, updates, "an inactive row is written by its INSERT alone")

	var tipo model.TipoTicket
	require.NoError(t, env.db.First(&tipo, tt.ID).Error)
	assert.False(t, tipo.Activo)
	var boton model.BotonTicket
	require.NoError(t, env.db.First(&boton, b.ID).Error)
	assert.False(t, boton.Activo)

	h := env.auditoria(t, model.TablaTiposTicket, tt.ID)
	require.Len(t, h, 1)
	assert.Equal(t, model.AccionCrear, h[0].Accion)
	assert.Equal(t, false, h[0].DatosNuevos["activo"])
	h = env.auditoria(t, model.TablaBotonesTicket, b.ID)
	require.Len(t, h, 1)
	assert.Equal(t, false, h[0].DatosNuevos["activo"])
}
