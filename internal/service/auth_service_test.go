package service

import (
	"context"
	"testing"

	"boleteria/internal/config"
	"boleteria/internal/dto"
	"boleteria/internal/model"
	"boleteria/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-prueba"

func newAuth(t *testing.T) (AuthService, *testEnv) {
	t.Helper()
	env := newEnv(t)
	cfg := &config.Config{JWTSecret: testSecret, JWTExpirationHours: 12}
	return NewAuthService(repository.NewUsuarioRepository(env.db), cfg), env
}

func TestLogin(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()

	u, err := auth.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "caja1", Nombre: "Caja Uno", Password: "clave-segura", Rol: model.RolVendedor,
	})
	require.NoError(t, err)
	assert.True(t, u.Activo)

	res, err := auth.Login(ctx, dto.LoginRequest{Username: "caja1", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, 12*3600, res.ExpiresIn)
	assert.Equal(t, u.ID, res.User.ID)

	tok, err := jwt.Parse(res.AccessToken, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.EqualValues(t, u.ID, claims["user_id"])
	assert.Equal(t, "caja1", claims["username"])
	assert.Equal(t, model.RolVendedor, claims["rol"])

	_, err = auth.Login(ctx, dto.LoginRequest{Username: "caja1", Password: "otra-clave"})
	assert.ErrorIs(t, err, ErrCredenciales)
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "clave-segura"})
	assert.ErrorIs(t, err, ErrCredenciales)

	_, err = auth.ActualizarUsuario(ctx, u.ID, dto.ActualizarUsuarioRequest{Activo: ptr(false)})
	require.NoError(t, err)
	_, err = auth.Login(ctx, dto.LoginRequest{Username: "caja1", Password: "clave-segura"})
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestCrearUsuario_Rules(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()

	req := dto.CrearUsuarioRequest{Username: "admin", Nombre: "Admin", Password: "clave-segura", Rol: model.RolAdmin}
	_, err := auth.CrearUsuario(ctx, req)
	require.NoError(t, err)

	_, err = auth.CrearUsuario(ctx, req)
	var uv *UniqueViolationError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "username", uv.Field)

	req.Username = "otro"
	req.Password = "corta"
	_, err = auth.CrearUsuario(ctx, req)
	assert.ErrorIs(t, err, ErrValidacion)

	req.Password = "clave-segura"
	req.Rol = "supervisor"
	_, err = auth.CrearUsuario(ctx, req)
	assert.ErrorIs(t, err, ErrValidacion)
}

func TestEliminarUsuario_SoftWhenItOwnsSales(t *testing.T) {
	auth, env := newAuth(t)
	ctx := context.Background()

	seedUsuario(t, env.db, 1, "con-ventas")
	seedUsuario(t, env.db, 2, "sin-ventas")
	seedTipo(t, env.db, 1, "General", "10")
	env.vender(t, 1, 1, "10", "qr-1")

	res, err := auth.EliminarUsuario(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoDesactivado, res.Resultado)

	res, err = auth.EliminarUsuario(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, dto.ResultadoEliminado, res.Resultado)

	activos, err := auth.ListarUsuarios(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, activos)
	todos, err := auth.ListarUsuarios(ctx, true)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.False(t, todos[0].Activo)

	_, err = auth.EliminarUsuario(ctx, 2)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}
