package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/migromat/pkg/models"
)

const nodeGraphDocument = `{
  "name": "Lead Intake",
  "nodes": [
    {"name": "Webhook", "type": "n8n-nodes-base.webhook", "parameters": {}},
    {"name": "Save Lead", "type": "n8n-nodes-base.airtable", "parameters": {}},
    {"name": "Note", "type": "n8n-nodes-base.stickyNote", "parameters": {}}
  ],
  "connections": {
    "Webhook": {"main": [[{"node": "Save Lead", "type": "main", "index": 0}]]}
  }
}`

func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer

	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(t.Context(), append([]string{"migromat", "--log-level", "error"}, args...))

	return stdout.String(), stderr.String(), err
}

func writeDocument(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDetectCommand(t *testing.T) {
	stdout, _, err := runApp(t, nodeGraphDocument, "detect", "-")
	require.NoError(t, err)

	var detected struct {
		Platform   models.Platform   `json:"platform"`
		Steps      int               `json:"steps"`
		Complexity models.Complexity `json:"complexity"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &detected))
	assert.Equal(t, models.PlatformNodeGraph, detected.Platform)
	assert.Equal(t, 3, detected.Steps)

	_, _, err = runApp(t, `{"unknown": true}`, "detect")
	require.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	path := writeDocument(t, nodeGraphDocument)
	output := filepath.Join(t.TempDir(), "out.json")

	_, stderr, err := runApp(t, "", "convert", "--to", "make", "--report", "--output", output, path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "confidence")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var document models.ModuleFlowDocument
	require.NoError(t, json.Unmarshal(data, &document))
	assert.Len(t, document.Flow, 2)

	_, _, err = runApp(t, "", "convert", "--to", "ifttt", path)
	require.Error(t, err)
}

func TestGenerateCommand(t *testing.T) {
	path := writeDocument(t, nodeGraphDocument)

	stdout, _, err := runApp(t, "", "generate", "--language", "javascript", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "function run()")

	_, _, err = runApp(t, "", "generate", "--language", "cobol", path)
	require.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	path := writeDocument(t, nodeGraphDocument)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AIRTABLE_TOKEN=secret\n"), 0o600))

	stdout, stderr, err := runApp(t, "", "run", "--input", `{"email": "ada@example.com"}`, "--env-file", envFile, path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "[success]")

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "ada@example.com", result["email"])

	_, _, err = runApp(t, "", "run", "--input", "not json", path)
	require.Error(t, err)
}
