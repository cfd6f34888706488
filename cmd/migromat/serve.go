package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/migromat/pkg/channels/kafka"
	"github.com/dukex/migromat/pkg/cmd"
	"github.com/dukex/migromat/pkg/eventbus"
	"github.com/dukex/migromat/pkg/executor"
	"github.com/dukex/migromat/pkg/log"
	"github.com/dukex/migromat/pkg/otelhelper"
	"github.com/dukex/migromat/pkg/services"
)

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the HTTP API and the scheduler",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   9091,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Persistence URL (memory://, file://path, postgres://, sqlite://path, redis://)",
				Value:   "memory://",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:  "plugins-path",
				Usage: "Path to the directory containing handler plugins",
				Value: "./plugins",
			},
			&cli.DurationFlag{
				Name:  "step-delay",
				Usage: "Pause between two steps of an execution",
				Value: 100 * time.Millisecond,
			},
			&cli.BoolFlag{
				Name:  "scheduler",
				Usage: "Run scheduled executions",
				Value: true,
			},
			&cli.BoolFlag{
				Name:    "otel",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Migromat API")

			if cfg.Tracing.Enabled {
				tracerProvider, err := otelhelper.InitTracer(ctx, cfg.Tracing.ServiceName)
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				defer func() {
					if err := tracerProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
						logger.Error("Failed to shutdown tracer provider", "error", err)
					}
				}()
			}

			registry, err := cmd.NewRegistry(logger, cfg.PluginsPath)
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, cfg.DatabaseURL)
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(context.WithoutCancel(ctx)); err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(cfg.EventBus.Type, kafka.ParseBrokers(cfg.EventBus.KafkaBrokers), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			if err := eventbus.LogEvents(eventBus, log.WithModule("events")); err != nil {
				return err
			}

			if err := eventBus.Subscribe(ctx); err != nil {
				return fmt.Errorf("failed to subscribe to lifecycle events: %w", err)
			}

			orchestrator := executor.NewOrchestrator(registry, log.WithModule("executor"),
				executor.WithStepDelay(cfg.Executor.StepDelay),
				executor.WithTracer(otelhelper.Tracer("migromat/executor")),
			)

			workflows := services.NewWorkflow(persistence, eventBus, logger)
			executions := services.NewExecution(persistence, orchestrator, eventBus, logger)
			scheduler := services.NewScheduler(persistence, executions, logger, cfg.Scheduler.Interval)

			if cfg.Scheduler.Enabled {
				scheduler.Start(ctx)
				defer scheduler.Stop()
			}

			api := NewAPI(logger, workflows, executions, scheduler)

			if err := api.Start(ctx, cfg.Server.Port); err != nil {
				logger.ErrorContext(ctx, "Failed to start API", "error", err)

				return err
			}

			executions.Wait()

			return nil
		},
	}
}
