package router

import (
	"crmventas/internal/config"
	"crmventas/internal/handler"
	"crmventas/internal/identity"
	"crmventas/internal/infra"
	"crmventas/internal/middleware"
	"crmventas/internal/repository"
	"crmventas/internal/service"
	"crmventas/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide dependencies built in main.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Dispatcher *worker.Dispatcher
	Media      *infra.MediaClient
	Breakers   []*infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	limiter := middleware.NewLimiter(deps.Redis)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.RateLimiter(cfg.APIRateLimit))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(deps.DB)
	leadRepo := repository.NewLeadRepository(deps.DB)
	facturacionRepo := repository.NewFacturacionRepository(deps.DB)
	llamadasRepo := repository.NewLlamadasRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	leadSvc := service.NewLeadService(leadRepo, usuarioRepo, deps.Dispatcher, cfg.NotifyLeads)
	rankingSvc := service.NewRankingService(leadRepo, cfg.RankingProduct)
	facturacionSvc := service.NewFacturacionService(facturacionRepo)
	llamadasSvc := service.NewLlamadasService(llamadasRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	leadsH := handler.NewLeadsHandler(leadSvc)
	rankingH := handler.NewRankingHandler(rankingSvc)
	facturacionH := handler.NewFacturacionHandler(facturacionSvc)
	llamadasH := handler.NewLlamadasHandler(llamadasSvc)
	mediaH := handler.NewMediaHandler(deps.Media)
	notificacionesH := handler.NewNotificacionesHandler(worker.NewDeadLetterStore(deps.Redis, worker.QueueNotificaciones))

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.DB, deps.Redis, deps.Breakers...))
	r.GET("/media/proxy", mediaH.Proxy)

	// Auth (public)
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", limiter.LoginRateLimiter(cfg.LoginRateLimit), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	admin := middleware.RequireRole(identity.RolAdmin)
	ledger := middleware.RequireRole(identity.RolAdmin, identity.RolBackoffice)

	// Protected routes; every role may reach them unless narrowed per group.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	api := r.Group("/api", jwtMW)
	{
		api.GET("/auth/me", authH.Me)
		api.POST("/auth/register", admin, authH.Register)

		usuarios := api.Group("/usuarios", admin)
		{
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
		api.GET("/notificaciones/fallidas", admin, notificacionesH.Fallidas)
		api.GET("/equipo/agentes", middleware.RequireRole(identity.RolSupervisor, identity.RolAdmin), usuariosH.Agentes)

		leads := api.Group("/leads")
		{
			leads.POST("", leadsH.Crear)
			leads.GET("", leadsH.Listar)
			leads.GET("/:id", leadsH.Obtener)
			leads.PUT("/:id", leadsH.Actualizar)
			leads.POST("/:id/comentarios", leadsH.Comentar)
		}
		api.GET("/customers", leadsH.Customers)
		api.GET("/ranking/tabs", rankingH.Tabs)

		fact := api.Group("/facturacion-lineas", ledger)
		{
			fact.POST("", facturacionH.Upsert)
			fact.GET("/anual/:anio", facturacionH.Anual)
			fact.GET("/:anio/:mes", facturacionH.Mes)
			fact.GET("/:anio/:mes/pdf", facturacionH.DescargarPDF)
			fact.GET("/:anio/:mes/xlsx", facturacionH.DescargarXLSX)
		}

		llamadas := api.Group("/llamadas-ventas-lineas", ledger)
		{
			llamadas.GET("", llamadasH.Mes)
			llamadas.POST("", llamadasH.Upsert)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
