package converters_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/dukex/migromat/pkg/converters"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/parsers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConverter() *converters.Converter {
	return converters.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func parse(t *testing.T, raw string) *models.CanonicalWorkflow {
	t.Helper()

	doc, err := parsers.Decode([]byte(raw))
	require.NoError(t, err)

	wf, err := parsers.DetectAndParse(doc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return wf
}

const leadIntake = `{
	"name": "Lead intake",
	"nodes": [
		{"id": "n1", "name": "Hook", "type": "n8n-nodes-base.webhook"},
		{"id": "n2", "name": "Save", "type": "n8n-nodes-base.airtable", "parameters": {"baseId": "app1"}},
		{"id": "n3", "name": "Note", "type": "n8n-nodes-base.stickyNote"}
	],
	"connections": {"Hook": {"main": [[{"node": "Save", "type": "main", "index": 0}]]}}
}`

func TestToModuleFlow_DropsStickyNote(t *testing.T) {
	t.Parallel()

	doc, report, err := newConverter().ToModuleFlow(parse(t, leadIntake))
	require.NoError(t, err)

	require.Len(t, doc.Flow, 2)
	assert.Equal(t, "Lead intake", doc.Name)

	assert.Equal(t, 1, doc.Flow[0].ID)
	assert.Equal(t, "webhook:customWebHook", doc.Flow[0].Module)
	assert.Equal(t, 100, doc.Flow[0].Metadata.Designer.X)
	assert.Equal(t, 100, doc.Flow[0].Metadata.Designer.Y)
	assert.Equal(t, map[string]any{"hookType": "post", "responseMode": "onReceived"}, doc.Flow[0].Parameters)

	assert.Equal(t, 2, doc.Flow[1].ID)
	assert.Equal(t, "airtable:ActionCreateRecord", doc.Flow[1].Module)
	assert.Equal(t, 3, doc.Flow[1].Version)
	assert.Equal(t, 300, doc.Flow[1].Metadata.Designer.X)
	assert.Equal(t, "{{parameters.baseId}}", doc.Flow[1].Parameters["base"])

	assert.Equal(t, 2, report.Mapped)
	assert.Equal(t, 1, report.Dropped)
	assert.Equal(t, 100, report.Confidence)
	assert.True(t, report.Success)
}

func TestToModuleFlow_SequentialIDsAfterDrop(t *testing.T) {
	t.Parallel()

	wf := &models.CanonicalWorkflow{
		Platform: models.PlatformNodeGraph,
		Steps: []*models.CanonicalStep{
			{ID: "a", Name: "A", Kind: "n8n-nodes-base.slack"},
			{ID: "b", Name: "B", Kind: "n8n-nodes-base.stickynote"},
			{ID: "c", Name: "C", Kind: "n8n-nodes-base.salesforce"},
			{ID: "d", Name: "D", Kind: "n8n-nodes-base.gmail"},
		},
	}

	doc, report, err := newConverter().ToModuleFlow(wf)
	require.NoError(t, err)

	assert.Equal(t, "Converted Scenario", doc.Name)
	require.Len(t, doc.Flow, 3)

	lastX := 0
	for i, module := range doc.Flow {
		assert.Equal(t, i+1, module.ID)
		assert.Greater(t, module.Metadata.Designer.X, lastX)
		lastX = module.Metadata.Designer.X
	}

	assert.Equal(t, "http:ActionSendData", doc.Flow[1].Module)
	assert.Equal(t, 2, report.Mapped)
	assert.Equal(t, 1, report.Unmapped)
	assert.Equal(t, 67, report.Confidence)
	assert.Len(t, report.Warnings, 2)
}

func TestToModuleFlow_NativeModulesPassThrough(t *testing.T) {
	t.Parallel()

	wf := parse(t, `{"flow": [{"id": 1, "module": "slack:CreateMessage", "parameters": {"channel": "C1"}}]}`)

	doc, report, err := newConverter().ToModuleFlow(wf)
	require.NoError(t, err)

	require.Len(t, doc.Flow, 1)
	assert.Equal(t, "slack:CreateMessage", doc.Flow[0].Module)
	assert.Equal(t, map[string]any{"channel": "C1"}, doc.Flow[0].Parameters)
	assert.Equal(t, 1, report.Mapped)
}

func TestToModuleFlow_ScenarioMetadata(t *testing.T) {
	t.Parallel()

	doc, _, err := newConverter().ToModuleFlow(&models.CanonicalWorkflow{Name: "x", Platform: models.PlatformTriggerAction})
	require.NoError(t, err)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "x",
		"flow": [],
		"metadata": {
			"instant": false,
			"version": 1,
			"scenario": {
				"roundtrips": 1, "maxErrors": 3, "autoCommit": true, "autoCommitTriggerLast": true,
				"sequential": false, "confidential": false, "dataloss": false, "dlq": false,
				"freshVariables": false
			},
			"designer": {"orphans": []},
			"zone": "us1.make.com"
		}
	}`, string(raw))
}

func TestToTriggerAction(t *testing.T) {
	t.Parallel()

	doc, report, err := newConverter().ToTriggerAction(parse(t, leadIntake))
	require.NoError(t, err)

	assert.Equal(t, "Lead intake", doc.Name)
	assert.Equal(t, "Converted from n8n by MigroMat", doc.Description)
	assert.Equal(t, "webhook", doc.Trigger.App)
	assert.Equal(t, "trigger", doc.Trigger.Event)
	assert.Equal(t, "Hook", doc.Trigger.Title)

	require.Len(t, doc.Actions, 2)
	assert.Equal(t, "1", doc.Actions[0].ID)
	assert.Equal(t, "airtable", doc.Actions[0].App)
	assert.Equal(t, "Save", doc.Actions[0].Action)
	assert.Equal(t, map[string]any{"baseId": "app1"}, doc.Actions[0].Config)

	assert.Equal(t, "stickynote", doc.Actions[1].App)
	assert.Equal(t, 2, report.Mapped)
	assert.Equal(t, 1, report.Unmapped)
}

func TestToTriggerAction_Empty(t *testing.T) {
	t.Parallel()

	doc, report, err := newConverter().ToTriggerAction(&models.CanonicalWorkflow{Name: "empty", Platform: models.PlatformNodeGraph})
	require.NoError(t, err)

	assert.Equal(t, "webhook", doc.Trigger.App)
	assert.Equal(t, "catch_hook", doc.Trigger.Event)
	assert.Empty(t, doc.Trigger.Config)
	assert.NotNil(t, doc.Trigger.Config)
	assert.Empty(t, doc.Actions)
	assert.Equal(t, 100, report.Confidence)
}

func TestToTriggerAction_RoundTripFromTriggerAction(t *testing.T) {
	t.Parallel()

	wf := parse(t, `{
		"trigger": {"app": "gmail", "action": "new_email"},
		"steps": [{"app": "slack", "action": "post", "params": {"text": "hi"}}]
	}`)

	doc, _, err := newConverter().ToTriggerAction(wf)
	require.NoError(t, err)

	assert.Equal(t, "gmail", doc.Trigger.App)
	require.Len(t, doc.Actions, 1)
	assert.Equal(t, "slack", doc.Actions[0].App)
	assert.Equal(t, "post", doc.Actions[0].Action)
}

func TestToNodeGraph(t *testing.T) {
	t.Parallel()

	wf := parse(t, `{
		"trigger": {"app": "gmail", "action": "new_email"},
		"steps": [
			{"app": "google-sheets", "action": "add_row"},
			{"app": "custom-crm", "action": "sync"}
		]
	}`)

	doc, report, err := newConverter().ToNodeGraph(wf)
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "n8n-nodes-base.gmail", doc.Nodes[0].Type)
	assert.Equal(t, [2]int{250, 300}, doc.Nodes[0].Position)
	assert.Equal(t, "n8n-nodes-base.googleSheets", doc.Nodes[1].Type)
	assert.Equal(t, [2]int{450, 300}, doc.Nodes[1].Position)
	assert.Equal(t, "n8n-nodes-base.httpRequest", doc.Nodes[2].Type)

	assert.Equal(t, "v1", doc.Settings.ExecutionOrder)
	require.Len(t, doc.Connections, 2)
	assert.Equal(t, "google-sheets - add_row", doc.Connections["gmail - new_email"].Main[0][0].Node)
	assert.Equal(t, "custom-crm - sync", doc.Connections["google-sheets - add_row"].Main[0][0].Node)

	assert.Equal(t, 67, report.Confidence)
}

func TestToNodeGraph_UniqueNames(t *testing.T) {
	t.Parallel()

	wf := &models.CanonicalWorkflow{
		Platform: models.PlatformModuleFlow,
		Steps: []*models.CanonicalStep{
			{ID: "1", Name: "Send", Kind: "slack"},
			{ID: "2", Name: "Send", Kind: "slack"},
		},
	}

	doc, _, err := newConverter().ToNodeGraph(wf)
	require.NoError(t, err)

	assert.Equal(t, "Send", doc.Nodes[0].Name)
	assert.Equal(t, "Send 2", doc.Nodes[1].Name)
	assert.Equal(t, "Send 2", doc.Connections["Send"].Main[0][0].Node)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	wf := parse(t, leadIntake)
	converter := newConverter()

	for _, target := range models.Platforms {
		result, err := converter.Convert(wf, target)
		require.NoError(t, err, target)
		assert.Equal(t, target, result.Platform)
		assert.NotNil(t, result.Document)
		assert.NotNil(t, result.Report)
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	converter := newConverter()

	_, err := converter.Convert(&models.CanonicalWorkflow{Name: "x"}, models.Platform("airflow"))
	require.Error(t, err)
	assert.True(t, converters.IsConversionError(err))
	require.ErrorIs(t, err, converters.ErrUnsupportedTarget)

	_, err = converter.Convert(nil, models.PlatformModuleFlow)
	require.ErrorIs(t, err, converters.ErrInvalidWorkflow)

	_, _, err = converter.ToTriggerAction(&models.CanonicalWorkflow{Name: "bad", Steps: []*models.CanonicalStep{nil}})
	require.Error(t, err)

	var conversionErr *converters.ConversionError
	require.ErrorAs(t, err, &conversionErr)
	assert.Equal(t, "bad", conversionErr.Workflow)
	assert.Equal(t, "0", conversionErr.StepID)
}
