package router

import (
	"context"
	"time"

	"boleteria/internal/config"
	"boleteria/internal/handler"
	"boleteria/internal/middleware"
	"boleteria/internal/repository"
	"boleteria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Services groups what the router exposes. main builds it once and shares
// the audit service with the retention worker.
type Services struct {
	Auth        service.AuthService
	Ventas      service.VentaService
	Tickets     service.TicketService
	Cierres     service.CierreService
	Auditoria   service.AuditoriaService
	Puertas     service.PuertaService
	Relay       service.ConfigRelayService
	TiposTicket service.TipoTicketService
	Botones     service.BotonTicketService
}

// NewServices wires the dependency graph: Service ← Repository ← DB.
func NewServices(cfg *config.Config, db *gorm.DB) *Services {
	usuarioRepo := repository.NewUsuarioRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	configLogRepo := repository.NewConfigLogRepository(db)
	puertaRepo := repository.NewPuertaRepository(db)
	relayRepo := repository.NewConfigRelayRepository(db)
	tipoRepo := repository.NewTipoTicketRepository(db)
	botonRepo := repository.NewBotonTicketRepository(db)

	audit := service.NewAuditoriaService(configLogRepo)

	return &Services{
		Auth:        service.NewAuthService(usuarioRepo, cfg),
		Ventas:      service.NewVentaService(ventaRepo),
		Tickets:     service.NewTicketService(ticketRepo, ventaRepo),
		Cierres:     service.NewCierreService(cierreRepo, cfg.PDFStoragePath),
		Auditoria:   audit,
		Puertas:     service.NewPuertaService(puertaRepo, audit),
		Relay:       service.NewConfigRelayService(relayRepo, audit),
		TiposTicket: service.NewTipoTicketService(tipoRepo, puertaRepo, audit),
		Botones:     service.NewBotonTicketService(botonRepo, tipoRepo, audit),
	}
}

// New returns the configured IPC bridge. ctx bounds the rate limiter
// housekeeping goroutines.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, svc *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewLimiter(1000, time.Minute)
	loginLimiter := middleware.NewLimiter(20, time.Minute)
	go apiLimiter.Run(ctx, 5*time.Minute)
	go loginLimiter.Run(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware("Demasiadas solicitudes. Intente nuevamente en un momento."))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svc.Auth)
	usuariosH := handler.NewUsuariosHandler(svc.Auth)
	ventasH := handler.NewVentasHandler(svc.Ventas)
	ticketsH := handler.NewTicketsHandler(svc.Tickets)
	cierresH := handler.NewCierresHandler(svc.Cierres)
	auditoriaH := handler.NewAuditoriaHandler(svc.Auditoria)
	puertasH := handler.NewPuertasHandler(svc.Puertas)
	relayH := handler.NewRelayHandler(svc.Relay)
	tiposH := handler.NewTiposTicketHandler(svc.TiposTicket)
	botonesH := handler.NewBotonesHandler(svc.Botones)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/auth/login",
		loginLimiter.Middleware("Demasiados intentos de login. Intente en 1 minuto."),
		authH.Login)

	todos := middleware.RequireRole(middleware.RolVendedor, middleware.RolAdmin)
	admin := middleware.RequireRole(middleware.RolAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/auth/me", authH.Me)

		ventas := v1.Group("/ventas", todos)
		{
			ventas.POST("", ventasH.CrearVenta)
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.POST("/:id/impresa", ticketsH.MarcarImpresa)
			ventas.POST("/:id/anular", ticketsH.AnularVenta)
		}

		tickets := v1.Group("/tickets", todos)
		{
			tickets.GET("/qr/:codigo", ticketsH.BuscarPorQR)
			tickets.POST("/:id/usar", ticketsH.MarcarUsado)
			tickets.POST("/:id/anular", ticketsH.AnularTicket)
		}

		cierres := v1.Group("/cierres")
		{
			cierres.GET("/totales", todos, cierresH.Totales)
			cierres.POST("", todos, cierresH.CerrarCaja)
			cierres.GET("", admin, cierresH.ListarPorFecha)
			cierres.GET("/:id/pdf", admin, cierresH.DescargarPDF)
		}

		// Reads are open to sellers: the sale screen needs types, doors and buttons.
		v1.GET("/puertas", todos, puertasH.Listar)
		v1.GET("/tipos-ticket", todos, tiposH.Listar)
		v1.GET("/botones", todos, botonesH.Listar)
		v1.GET("/relay", todos, relayH.Obtener)

		cfgAdmin := v1.Group("", admin)
		{
			cfgAdmin.POST("/puertas", puertasH.Crear)
			cfgAdmin.PUT("/puertas/:id", puertasH.Actualizar)
			cfgAdmin.DELETE("/puertas/:id", puertasH.Eliminar)

			cfgAdmin.PUT("/relay", relayH.Actualizar)

			cfgAdmin.POST("/tipos-ticket", tiposH.Crear)
			cfgAdmin.PUT("/tipos-ticket/:id", tiposH.Actualizar)
			cfgAdmin.DELETE("/tipos-ticket/:id", tiposH.Eliminar)

			cfgAdmin.PUT("/botones", botonesH.Guardar)
			cfgAdmin.DELETE("/botones/:entrada", botonesH.Eliminar)
		}

		auditoria := v1.Group("/auditoria", admin)
		{
			auditoria.GET("", auditoriaH.Listar)
			auditoria.GET("/count", auditoriaH.Contar)
			auditoria.GET("/estadisticas", auditoriaH.Estadisticas)
			auditoria.GET("/:tabla/:id", auditoriaH.Historial)
			auditoria.POST("/purgar", auditoriaH.Purgar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Eliminar)
		}
	}

	return r
}
