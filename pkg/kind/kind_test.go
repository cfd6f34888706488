package kind_test

import (
	"testing"

	"github.com/dukex/migromat/pkg/kind"
	"github.com/stretchr/testify/assert"
)

func TestFromType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown", kind.FromType(""))
	assert.Equal(t, "unknown", kind.FromType("   "))
	assert.Equal(t, "n8n-nodes-base.httprequest", kind.FromType("n8n-nodes-base.httpRequest"))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"n8n-nodes-base.airtable", "airtable"},
		{"n8n-nodes-base.googleSheets", "googlesheets"},
		{"@n8n/n8n-nodes-langchain.lmChatOpenAi", "lmchatopenai"},
		{"google-sheets", "googlesheets"},
		{"Sticky Note", "stickynote"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, kind.Normalize(tt.input))
		})
	}
}

func TestMatcher_TokenKeywords(t *testing.T) {
	t.Parallel()

	assert.True(t, kind.AI.Match("n8n-nodes-base.ai"))
	assert.True(t, kind.AI.Match("@n8n/n8n-nodes-langchain.agent"))
	assert.True(t, kind.AI.Match("openai"))
	assert.False(t, kind.AI.Match("gmail"))
	assert.False(t, kind.AI.Match("n8n-nodes-base.airtable"))
	assert.False(t, kind.AI.Match("email"))
}

func TestMatcher_MultipleTexts(t *testing.T) {
	t.Parallel()

	assert.True(t, kind.Email.Match("unknown", "Send Gmail"))
	assert.False(t, kind.Email.Match("unknown", "Notify"))
	assert.True(t, kind.Loop.Match("n8n-nodes-base.splitinbatches"))
	assert.True(t, kind.CustomCode.Match("n8n-nodes-base.function"))
}
