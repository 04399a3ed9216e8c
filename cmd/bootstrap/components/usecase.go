package components

import (
	"log/slog"

	"arequita-backend/internal/infra/mailer"
	"arequita-backend/internal/pkg/clock"
	"arequita-backend/internal/pkg/config"
	"arequita-backend/internal/usecase/commands"
	"arequita-backend/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		NewMailer,
		fx.As(new(commands.Notifier)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewCampingCommands,
		commands.NewAgendaCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		func(c *commands.CampingCommands) queries.Sweeper { return c },
		queries.NewCampingQueries,
		queries.NewAgendaQueries,
	),
)

func NewMailer(cfg config.Config, logger *slog.Logger) *mailer.ResendMailer {
	return mailer.NewResendMailer(cfg.Mail, logger)
}
