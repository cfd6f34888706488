package mcp

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/migromat/pkg/models"
)

const zapDocument = `{"trigger": {"app": "gmail", "action": "new_email"}, "steps": [{"app": "slack", "action": "post"}]}`

func newTestServer() *Server {
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestServer_DetectPlatform(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	result, err := s.handleDetectPlatform(t.Context(), callRequest("detect_platform", map[string]any{"document": zapDocument}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "zapier", resultText(t, result))

	result, err = s.handleDetectPlatform(t.Context(), callRequest("detect_platform", map[string]any{"document": `{"a": 1}`}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleDetectPlatform(t.Context(), callRequest("detect_platform", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_ConvertWorkflow(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	result, err := s.handleConvertWorkflow(t.Context(), callRequest("convert_workflow", map[string]any{
		"document": zapDocument,
		"target":   "make",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var converted struct {
		Platform models.Platform           `json:"platform"`
		Workflow models.ModuleFlowDocument `json:"workflow"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &converted))
	assert.Equal(t, models.PlatformModuleFlow, converted.Platform)
	assert.Len(t, converted.Workflow.Flow, 2)

	result, err = s.handleConvertWorkflow(t.Context(), callRequest("convert_workflow", map[string]any{
		"document": zapDocument,
		"target":   "ifttt",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_GenerateScript(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	result, err := s.handleGenerateScript(t.Context(), callRequest("generate_script", map[string]any{"document": zapDocument}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "def ")

	result, err = s.handleGenerateScript(t.Context(), callRequest("generate_script", map[string]any{
		"document": zapDocument,
		"language": "javascript",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "function ")

	result, err = s.handleGenerateScript(t.Context(), callRequest("generate_script", map[string]any{
		"document": zapDocument,
		"language": "cobol",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_EstimateComplexity(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	result, err := s.handleEstimateComplexity(t.Context(), callRequest("estimate_complexity", map[string]any{"document": zapDocument}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var estimate models.Complexity
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &estimate))
	assert.Equal(t, 2, estimate.StepsCount)
	assert.Equal(t, 20, estimate.Score)
	assert.Equal(t, models.ComplexitySimple, estimate.Level)
}

func TestNewServer_RegistersTools(t *testing.T) {
	t.Parallel()

	tools := newTestServer().MCPServer().ListTools()

	for _, name := range []string{"detect_platform", "convert_workflow", "generate_script", "estimate_complexity"} {
		assert.Contains(t, tools, name)
	}
}
