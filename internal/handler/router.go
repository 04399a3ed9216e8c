package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"arequita-backend/internal/handler/api"
	"arequita-backend/internal/handler/middleware"
	"arequita-backend/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *middleware.Logger,
	authHandler *api.AuthHandler,
	publicHandler *api.PublicHandler,
	adminCamping *api.AdminCampingHandler,
	adminAgenda *api.AdminAgendaHandler,
	adminAudit *api.AdminAuditHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, authHandler, publicHandler, adminCamping, adminAgenda, adminAudit, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	publicHandler *api.PublicHandler,
	adminCamping *api.AdminCampingHandler,
	adminAgenda *api.AdminAgendaHandler,
	adminAudit *api.AdminAuditHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup.Group("/auth"), []route{
			{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
		})

		addRoutes(apiGroup.Group("/camping"), []route{
			{Method: http.MethodGet, Path: "/services", Handler: publicHandler.Catalog},
			{Method: http.MethodPost, Path: "/pre-reservations", Handler: publicHandler.CreatePreReservation},
			{Method: http.MethodGet, Path: "/confirm/:token", Handler: publicHandler.ConfirmByToken},
		})

		addRoutes(apiGroup.Group("/agenda"), []route{
			{Method: http.MethodGet, Path: "/slots", Handler: publicHandler.AvailableSlots},
			{Method: http.MethodPost, Path: "/reservations", Handler: publicHandler.CreateReservation},
			{Method: http.MethodPost, Path: "/cancel/:token", Handler: publicHandler.CancelByToken},
		})

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			addRoutes(admin.Group("/camping"), []route{
				{Method: http.MethodGet, Path: "/pre-reservations", Handler: adminCamping.List},
				{Method: http.MethodPost, Path: "/pre-reservations", Handler: adminCamping.Create},
				{Method: http.MethodGet, Path: "/pre-reservations/export", Handler: adminCamping.ExportCSV},
				{Method: http.MethodGet, Path: "/pre-reservations/:id", Handler: adminCamping.Get},
				{Method: http.MethodPost, Path: "/pre-reservations/:id/confirm", Handler: adminCamping.Confirm},
				{Method: http.MethodPost, Path: "/pre-reservations/:id/check-in", Handler: adminCamping.CheckIn},
				{Method: http.MethodPost, Path: "/pre-reservations/:id/complete", Handler: adminCamping.Complete},
				{Method: http.MethodPost, Path: "/pre-reservations/:id/archive", Handler: adminCamping.Archive},
				{Method: http.MethodPost, Path: "/sweep", Handler: adminCamping.Sweep},
			})

			addRoutes(admin.Group("/agenda"), []route{
				{Method: http.MethodGet, Path: "/reservations", Handler: adminAgenda.List},
				{Method: http.MethodPost, Path: "/reservations", Handler: adminAgenda.Create},
				{Method: http.MethodGet, Path: "/reservations/export", Handler: adminAgenda.ExportCSV},
				{Method: http.MethodGet, Path: "/reservations/:id", Handler: adminAgenda.Get},
				{Method: http.MethodPost, Path: "/reservations/:id/cancel", Handler: adminAgenda.Cancel},
				{Method: http.MethodPost, Path: "/reservations/:id/attend", Handler: adminAgenda.Attend},
				{Method: http.MethodPost, Path: "/reservations/:id/no-show", Handler: adminAgenda.NoShow},
				{Method: http.MethodGet, Path: "/slots", Handler: adminAgenda.ListSlots},
				{Method: http.MethodPost, Path: "/slots", Handler: adminAgenda.CreateSlot},
			})

			addRoutes(admin.Group(""), []route{
				{Method: http.MethodGet, Path: "/audit", Handler: adminAudit.List},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, r.Handler)
		case http.MethodPost:
			g.POST(r.Path, r.Handler)
		case http.MethodPut:
			g.PUT(r.Path, r.Handler)
		case http.MethodPatch:
			g.PATCH(r.Path, r.Handler)
		case http.MethodDelete:
			g.DELETE(r.Path, r.Handler)
		default:
			g.Any(r.Path, r.Handler)
		}
	}
}
