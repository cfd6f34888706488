package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/migromat/pkg/converters"
	"github.com/dukex/migromat/pkg/log"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/parsers"
	"github.com/dukex/migromat/pkg/scriptgen"
)

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "Write the result to this file instead of stdout",
}

func DetectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Print the platform of a workflow document and its complexity",
		ArgsUsage: "<file|->",
		Action: func(_ context.Context, command *cli.Command) error {
			if _, err := loadConfig(command); err != nil {
				return err
			}

			wf, err := readWorkflow(command)
			if err != nil {
				return err
			}

			return writeJSON(command, map[string]any{
				"name":       wf.Name,
				"platform":   wf.Platform,
				"steps":      len(wf.Steps),
				"complexity": wf.Complexity,
			})
		},
	}
}

func ConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert a workflow document to another platform",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Aliases:  []string{"t"},
				Usage:    "Target platform (n8n, zapier, make)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Print the mapping report to stderr",
			},
			outputFlag,
		},
		Action: func(_ context.Context, command *cli.Command) error {
			if _, err := loadConfig(command); err != nil {
				return err
			}

			wf, err := readWorkflow(command)
			if err != nil {
				return err
			}

			result, err := converters.New(log.WithModule("cli")).Convert(wf, models.Platform(command.String("to")))
			if err != nil {
				return err
			}

			if command.Bool("report") {
				report, err := json.MarshalIndent(result.Report, "", "  ")
				if err != nil {
					return err
				}

				fmt.Fprintln(errWriter(command), string(report))
			}

			return writeJSON(command, result.Document)
		},
	}
}

func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a standalone script from a workflow document",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Script language (python, javascript)",
				Value:   string(scriptgen.Python),
			},
			outputFlag,
		},
		Action: func(_ context.Context, command *cli.Command) error {
			if _, err := loadConfig(command); err != nil {
				return err
			}

			language, err := scriptgen.ParseLanguage(command.String("language"))
			if err != nil {
				return err
			}

			wf, err := readWorkflow(command)
			if err != nil {
				return err
			}

			source, err := scriptgen.Generate(wf, language)
			if writeErr := writeText(command, source); writeErr != nil {
				return writeErr
			}

			return err
		},
	}
}

// readWorkflow parses the document named by the first argument, or stdin when it is "-" or absent.
func readWorkflow(command *cli.Command) (*models.CanonicalWorkflow, error) {
	var (
		raw []byte
		err error
	)

	path := command.Args().First()
	if path == "" || path == "-" {
		reader := command.Root().Reader
		if reader == nil {
			reader = os.Stdin
		}

		raw, err = io.ReadAll(reader)
	} else {
		raw, err = os.ReadFile(filepath.Clean(path))
	}

	if err != nil {
		return nil, fmt.Errorf("read workflow document: %w", err)
	}

	doc, err := parsers.Decode(raw)
	if err != nil {
		return nil, err
	}

	wf, err := parsers.DetectAndParse(doc, log.WithModule("parser"))
	if err != nil {
		return nil, err
	}

	return wf, nil
}

func writeJSON(command *cli.Command, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	return writeText(command, string(data)+"\n")
}

func writeText(command *cli.Command, text string) error {
	if path := command.String("output"); path != "" {
		return os.WriteFile(path, []byte(text), 0o644)
	}

	writer := command.Root().Writer
	if writer == nil {
		writer = os.Stdout
	}

	_, err := io.WriteString(writer, text)

	return err
}

func errWriter(command *cli.Command) io.Writer {
	if writer := command.Root().ErrWriter; writer != nil {
		return writer
	}

	return os.Stderr
}
