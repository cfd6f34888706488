package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/dukex/migromat/pkg/cmd"
	"github.com/dukex/migromat/pkg/executor"
	"github.com/dukex/migromat/pkg/log"
	"github.com/dukex/migromat/pkg/models"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Execute a workflow document once with the stub handlers",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Input payload as a JSON object",
				Value:   "{}",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Read step credentials from a .env file",
			},
			&cli.StringFlag{
				Name:  "plugins-path",
				Usage: "Path to the directory containing handler plugins",
				Value: "./plugins",
			},
			&cli.DurationFlag{
				Name:  "step-delay",
				Usage: "Pause between two steps",
			},
			outputFlag,
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			var input map[string]any
			if err := json.Unmarshal([]byte(command.String("input")), &input); err != nil {
				return fmt.Errorf("invalid --input: %w", err)
			}

			credentials := map[string]string{}
			if path := command.String("env-file"); path != "" {
				credentials, err = godotenv.Read(path)
				if err != nil {
					return fmt.Errorf("read credentials: %w", err)
				}
			}

			wf, err := readWorkflow(command)
			if err != nil {
				return err
			}

			logger := log.WithModule("run")

			registry, err := cmd.NewRegistry(logger, cfg.PluginsPath)
			if err != nil {
				return err
			}

			orchestrator := executor.NewOrchestrator(registry, logger, executor.WithStepDelay(cfg.Executor.StepDelay))
			stderr := errWriter(command)

			result, err := orchestrator.Execute(ctx, wf, input, credentials, func(level models.LogLevel, message string) {
				fmt.Fprintf(stderr, "[%s] %s\n", level, message)
			})
			if err != nil {
				return err
			}

			return writeJSON(command, result)
		},
	}
}
