package mapping_test

import (
	"testing"

	"github.com/dukex/migromat/pkg/mapping"
	"github.com/dukex/migromat/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupModule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind    string
		module  string
		version int
		matched bool
	}{
		{"n8n-nodes-base.airtable", "airtable:ActionCreateRecord", 3, true},
		{"n8n-nodes-base.airtableTool", "airtable:ActionSearchRecords", 3, true},
		{"n8n-nodes-base.googlesheets", "google-sheets:addRow", 4, true},
		{"google-sheets", "google-sheets:addRow", 4, true},
		{"@n8n/n8n-nodes-langchain.lmchatopenai", "openai:createChatCompletion", 1, true},
		{"n8n-nodes-base.webhook", "webhook:customWebHook", 1, true},
		{"n8n-nodes-base.switch", "builtin:Router", 1, true},
		{"n8n-nodes-base.salesforce", "http:ActionSendData", 1, false},
		{"unknown", "http:ActionSendData", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()

			entry, matched := mapping.LookupModule(tt.kind)
			assert.Equal(t, tt.module, entry.Module)
			assert.Equal(t, tt.version, entry.Version)
			assert.Equal(t, tt.matched, matched)
			assert.False(t, entry.Drop())
		})
	}
}

func TestLookupModule_DropSentinel(t *testing.T) {
	t.Parallel()

	entry, matched := mapping.LookupModule("n8n-nodes-base.stickyNote")
	assert.True(t, matched)
	assert.True(t, entry.Drop())
}

func TestModules_FirstMatchWins(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, entry := range mapping.Modules() {
		assert.False(t, seen[entry.Pattern], "duplicate pattern %s", entry.Pattern)
		seen[entry.Pattern] = true
	}
}

func TestParameterTemplate(t *testing.T) {
	t.Parallel()

	airtable := mapping.ParameterTemplate("n8n-nodes-base.airtableTool")
	assert.Equal(t, map[string]any{
		"base":     "{{parameters.baseId}}",
		"table":    "{{parameters.table}}",
		"typecast": false,
	}, airtable)

	ai := mapping.ParameterTemplate("@n8n/n8n-nodes-langchain.agent")
	assert.Equal(t, "gpt-3.5-turbo", ai["model"])
	assert.InDelta(t, 0.7, ai["temperature"], 0.0001)

	gmail := mapping.ParameterTemplate("n8n-nodes-base.gmail")
	assert.Equal(t, "{{parameters.to}}", gmail["to"])
	assert.NotContains(t, gmail, "model")

	webhook := mapping.ParameterTemplate("n8n-nodes-base.webhook")
	assert.Equal(t, map[string]any{"hookType": "post", "responseMode": "onReceived"}, webhook)

	assert.Empty(t, mapping.ParameterTemplate("n8n-nodes-base.slack"))
}

func TestParameterTemplate_ReturnsCopies(t *testing.T) {
	t.Parallel()

	first := mapping.ParameterTemplate("airtable")
	first["base"] = "changed"

	assert.Equal(t, "{{parameters.baseId}}", mapping.ParameterTemplate("airtable")["base"])
}

func TestLookupApp(t *testing.T) {
	t.Parallel()

	entry, ok := mapping.LookupApp("n8n-nodes-base.googleSheets")
	require.True(t, ok)
	assert.Equal(t, "google-sheets", entry.TriggerApp)

	entry, ok = mapping.LookupApp("unknown", "slack:CreateMessage")
	require.True(t, ok)
	assert.Equal(t, "n8n-nodes-base.slack", entry.NodeType)

	entry, ok = mapping.LookupApp("n8n-nodes-base.httpRequest")
	require.True(t, ok)
	assert.Equal(t, "webhook", entry.TriggerApp)
	assert.Equal(t, "http", entry.Key)

	_, ok = mapping.LookupApp("n8n-nodes-base.stickyNote", "")
	assert.False(t, ok)
}

func TestActionFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		step     *models.CanonicalStep
		expected string
	}{
		{
			name:     "declared action",
			step:     &models.CanonicalStep{ID: "0", Name: "gmail - new_email", Action: "new_email"},
			expected: "new_email",
		},
		{
			name:     "operation parameter",
			step:     &models.CanonicalStep{ID: "1", Name: "Sheet", Parameters: map[string]any{"operation": "append", "action": "x"}},
			expected: "append",
		},
		{
			name:     "action parameter",
			step:     &models.CanonicalStep{ID: "2", Name: "Sheet", Parameters: map[string]any{"action": "update"}},
			expected: "update",
		},
		{
			name:     "falls back to name",
			step:     &models.CanonicalStep{ID: "3", Name: "Notify team"},
			expected: "Notify team",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			action, err := mapping.ActionFor(tt.step)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, action)
		})
	}
}
