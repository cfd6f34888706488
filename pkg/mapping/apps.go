package mapping

import (
	"strings"

	"github.com/dukex/migromat/pkg/kind"
)

// AppEntry names one integration in each platform's vocabulary.
type AppEntry struct {
	Key        string
	TriggerApp string
	NodeType   string
	Module     string
}

var appTable = []AppEntry{
	{Key: "gmail", TriggerApp: "gmail", NodeType: "n8n-nodes-base.gmail", Module: "google:gmail"},
	{Key: "outlook", TriggerApp: "outlook", NodeType: "n8n-nodes-base.microsoftOutlook", Module: "microsoft365:outlook"},
	{Key: "mailchimp", TriggerApp: "mailchimp", NodeType: "n8n-nodes-base.mailchimp", Module: "mailchimp"},
	{Key: "sendgrid", TriggerApp: "sendgrid", NodeType: "n8n-nodes-base.sendgrid", Module: "sendgrid"},

	{Key: "slack", TriggerApp: "slack", NodeType: "n8n-nodes-base.slack", Module: "slack"},
	{Key: "discord", TriggerApp: "discord", NodeType: "n8n-nodes-base.discord", Module: "discord"},
	{Key: "telegram", TriggerApp: "telegram", NodeType: "n8n-nodes-base.telegram", Module: "telegram"},
	{Key: "twilio", TriggerApp: "twilio", NodeType: "n8n-nodes-base.twilio", Module: "twilio"},

	{Key: "salesforce", TriggerApp: "salesforce", NodeType: "n8n-nodes-base.salesforce", Module: "salesforce"},
	{Key: "hubspot", TriggerApp: "hubspot", NodeType: "n8n-nodes-base.hubspot", Module: "hubspot"},
	{Key: "pipedrive", TriggerApp: "pipedrive", NodeType: "n8n-nodes-base.pipedrive", Module: "pipedrive"},

	{Key: "trello", TriggerApp: "trello", NodeType: "n8n-nodes-base.trello", Module: "trello"},
	{Key: "asana", TriggerApp: "asana", NodeType: "n8n-nodes-base.asana", Module: "asana"},
	{Key: "jira", TriggerApp: "jira", NodeType: "n8n-nodes-base.jira", Module: "jira"},
	{Key: "notion", TriggerApp: "notion", NodeType: "n8n-nodes-base.notion", Module: "notion"},

	{Key: "google-drive", TriggerApp: "google-drive", NodeType: "n8n-nodes-base.googleDrive", Module: "google:drive"},
	{Key: "dropbox", TriggerApp: "dropbox", NodeType: "n8n-nodes-base.dropbox", Module: "dropbox"},

	{Key: "airtable", TriggerApp: "airtable", NodeType: "n8n-nodes-base.airtable", Module: "airtable"},
	{Key: "google-sheets", TriggerApp: "google-sheets", NodeType: "n8n-nodes-base.googleSheets", Module: "google:sheets"},

	{Key: "webhook", TriggerApp: "webhook", NodeType: "n8n-nodes-base.webhook", Module: "webhooks"},
	{Key: "http", TriggerApp: "webhook", NodeType: "n8n-nodes-base.httpRequest", Module: "http"},
}

// Generic targets used when an integration is not in the app table.
const (
	GenericNodeType    = "n8n-nodes-base.httpRequest"
	TriggerNodeType    = "n8n-nodes-base.webhook"
	FallbackTriggerApp = "webhook"
	FallbackEvent      = "catch_hook"
)

// LookupApp resolves the first hint that names a known integration. Hints are kinds or native
// identifiers such as "slack:CreateMessage", compared after normalization.
func LookupApp(hints ...string) (AppEntry, bool) {
	for _, hint := range hints {
		for _, candidate := range appCandidates(hint) {
			for _, entry := range appTable {
				if entry.matches(candidate) {
					return entry, true
				}
			}
		}
	}

	return AppEntry{}, false
}

func (e AppEntry) matches(candidate string) bool {
	for _, alias := range []string{e.Key, e.TriggerApp, e.NodeType, e.Module} {
		if kind.Normalize(alias) == candidate {
			return true
		}
	}

	return false
}

func appCandidates(hint string) []string {
	var candidates []string

	if normalized := kind.Normalize(hint); normalized != "" {
		candidates = append(candidates, normalized)
	}

	if app, _, found := strings.Cut(hint, ":"); found {
		if normalized := kind.Normalize(app); normalized != "" {
			candidates = append(candidates, normalized)
		}
	}

	return candidates
}

// Apps returns a copy of the app table.
func Apps() []AppEntry {
	return append([]AppEntry(nil), appTable...)
}
