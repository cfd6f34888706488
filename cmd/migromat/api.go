package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dukex/migromat/pkg/services"
	"github.com/dukex/migromat/pkg/web"
)

type API struct {
	logger     *slog.Logger
	workflows  *services.Workflow
	executions *services.Execution
	scheduler  *services.Scheduler
	validate   *validator.Validate
	app        *fiber.App
}

func NewAPI(
	logger *slog.Logger,
	workflows *services.Workflow,
	executions *services.Execution,
	scheduler *services.Scheduler,
) *API {
	return &API{
		logger:     logger,
		workflows:  workflows,
		executions: executions,
		scheduler:  scheduler,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.workflows, a.executions, a.scheduler, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, ok := a.workflows.HealthCheck(c.Context())

			return ok
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Migromat API")
	})

	handlers.Mount(app)

	return app
}

// Start serves the API until ctx is done, then shuts the server down.
func (a *API) Start(ctx context.Context, port int) error {
	a.app = a.App()

	errs := make(chan error, 1)

	go func() {
		errs <- a.app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	a.logger.InfoContext(ctx, "API listening", "port", port)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		a.logger.Info("Shutting down API")

		return a.app.Shutdown()
	}
}
