// Package mcp exposes the converter as tools of a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dukex/migromat/pkg/complexity"
	"github.com/dukex/migromat/pkg/converters"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/parsers"
	"github.com/dukex/migromat/pkg/scriptgen"
)

const (
	serverName    = "migromat"
	serverVersion = "1.0.0"
)

type Server struct {
	mcpServer *server.MCPServer
	converter *converters.Converter
	logger    *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithToolCapabilities(true),
		),
		converter: converters.New(logger),
		logger:    logger.With("module", "mcp"),
	}

	s.registerTools()

	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio answers tool calls on stdin/stdout until the input is closed.
func (s *Server) ServeStdio() error {
	s.logger.Info("Serving MCP tools over stdio")

	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	document := mcp.WithString("document", mcp.Required(),
		mcp.Description("Workflow export as JSON or YAML (n8n, zapier or make)"))

	s.mcpServer.AddTool(
		mcp.NewTool(
			"detect_platform",
			mcp.WithDescription("Detect which automation platform a workflow document comes from"),
			document,
		),
		s.handleDetectPlatform,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"convert_workflow",
			mcp.WithDescription("Convert a workflow document to another platform"),
			document,
			mcp.WithString("target", mcp.Required(),
				mcp.Description("Target platform"),
				mcp.Enum(string(models.PlatformNodeGraph), string(models.PlatformTriggerAction), string(models.PlatformModuleFlow))),
		),
		s.handleConvertWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"generate_script",
			mcp.WithDescription("Generate a standalone script that runs the workflow steps in order"),
			document,
			mcp.WithString("language", mcp.Description("python (default) or javascript")),
		),
		s.handleGenerateScript,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"estimate_complexity",
			mcp.WithDescription("Estimate the migration complexity of a workflow document"),
			document,
		),
		s.handleEstimateComplexity,
	)
}

func (s *Server) parse(request mcp.CallToolRequest) (*models.CanonicalWorkflow, error) {
	raw, err := request.RequireString("document")
	if err != nil {
		return nil, err
	}

	doc, err := parsers.Decode([]byte(raw))
	if err != nil {
		return nil, err
	}

	return parsers.DetectAndParse(doc, s.logger)
}

func (s *Server) handleDetectPlatform(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := parsers.Decode([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	platform, err := parsers.DetectPlatform(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(platform)), nil
}

func (s *Server) handleConvertWorkflow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	wf, err := s.parse(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.converter.Convert(wf, models.Platform(target))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to convert: %v", err)), nil
	}

	return jsonResult(result)
}

func (s *Server) handleGenerateScript(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, err := scriptgen.ParseLanguage(request.GetString("language", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	wf, err := s.parse(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source, err := scriptgen.Generate(wf, language)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v\n%s", err, source)), nil
	}

	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleEstimateComplexity(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wf, err := s.parse(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(complexity.Estimate(wf.Steps))
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(data)), nil
}
