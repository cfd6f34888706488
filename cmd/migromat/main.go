package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/migromat/pkg/config"
	"github.com/dukex/migromat/pkg/log"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "migromat:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "migromat",
		Usage:                 "Migrate workflow automations between n8n, zapier and make",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("MIGROMAT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			ServeCommand(),
			DetectCommand(),
			ConvertCommand(),
			GenerateCommand(),
			RunCommand(),
			MCPCommand(),
		},
	}
}

// loadConfig reads the configuration file and environment, lets explicitly set flags win and
// installs the default logger.
func loadConfig(command *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	override := func(flag string, target *string) {
		if command.IsSet(flag) {
			*target = command.String(flag)
		}
	}

	override("log-level", &cfg.LogLevel)
	override("log-format", &cfg.LogFormat)
	override("database-url", &cfg.DatabaseURL)
	override("plugins-path", &cfg.PluginsPath)
	override("event-bus", &cfg.EventBus.Type)
	override("kafka-brokers", &cfg.EventBus.KafkaBrokers)

	if command.IsSet("port") {
		cfg.Server.Port = command.Int("port")
	}

	if command.IsSet("step-delay") {
		cfg.Executor.StepDelay = command.Duration("step-delay")
	}

	if command.IsSet("scheduler") {
		cfg.Scheduler.Enabled = command.Bool("scheduler")
	}

	if command.IsSet("otel") {
		cfg.Tracing.Enabled = command.Bool("otel")
	}

	log.Setup(cfg.LogLevel, cfg.LogFormat)

	return cfg, nil
}
