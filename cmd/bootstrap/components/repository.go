package components

import (
	"log/slog"

	"arequita-backend/internal/handler/api"
	"arequita-backend/internal/infra/cache"
	repo_impl "arequita-backend/internal/infra/repository"
	"arequita-backend/internal/pkg/config"
	"arequita-backend/internal/usecase/commands"
	"arequita-backend/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewCampingServiceRepository,
			fx.As(new(commands.CampingServiceRepository)),
		),
		fx.Annotate(
			repo_impl.NewPreReservationRepository,
			fx.As(new(commands.PreReservationRepository)),
		),
		fx.Annotate(
			repo_impl.NewSlotRepository,
			fx.As(new(commands.SlotRepository)),
		),
		fx.Annotate(
			repo_impl.NewReservationRepository,
			fx.As(new(commands.ReservationRepository)),
		),
		fx.Annotate(
			repo_impl.NewAdminUserRepository,
			fx.As(new(commands.AdminUserRepository)),
		),
		fx.Annotate(
			repo_impl.NewAuditLogRepository,
			fx.As(new(commands.AuditSink)),
			fx.As(new(api.AuditReader)),
		),
		// Read-side repositories for queries
		fx.Annotate(
			repo_impl.NewCampingReadRepository,
			fx.As(new(queries.CampingReader)),
		),
		fx.Annotate(
			repo_impl.NewAgendaReadRepository,
			fx.As(new(queries.AgendaReader)),
		),
		fx.Annotate(
			NewCatalogCache,
			fx.As(new(queries.CatalogCache)),
			fx.As(new(commands.CatalogInvalidator)),
		),
	),
)

func NewCatalogCache(client *redis.Client, cfg config.Config, logger *slog.Logger) *cache.CatalogCache {
	return cache.NewCatalogCache(client, cfg.Redis, logger)
}
