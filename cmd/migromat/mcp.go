package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/migromat/pkg/log"
	"github.com/dukex/migromat/pkg/mcp"
)

func MCPCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the converter as MCP tools over stdio",
		Action: func(_ context.Context, command *cli.Command) error {
			if _, err := loadConfig(command); err != nil {
				return err
			}

			return mcp.NewServer(log.WithModule("mcp")).ServeStdio()
		},
	}
}
