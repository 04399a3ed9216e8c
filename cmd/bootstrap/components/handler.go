package components

import (
	"arequita-backend/internal/handler"
	"arequita-backend/internal/handler/api"
	"arequita-backend/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewPublicHandler,
		api.NewAdminCampingHandler,
		api.NewAdminAgendaHandler,
		api.NewAdminAuditHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
