// Package mapping holds the static tables that translate canonical step kinds into target platform
// constructs.
package mapping

import (
	"github.com/dukex/migromat/pkg/kind"
)

// ModuleEntry is one row of the module-flow table. An entry with an empty Module is the drop
// sentinel: the step has no executable equivalent and is omitted.
type ModuleEntry struct {
	Pattern string
	Module  string
	Version int
}

// Drop reports whether the entry is the drop sentinel.
func (e ModuleEntry) Drop() bool {
	return e.Module == ""
}

// FallbackModule is used when no pattern matches.
var FallbackModule = ModuleEntry{Pattern: "*", Module: "http:ActionSendData", Version: 1}

// moduleTable is priority ordered; the first exact match on the normalized kind wins.
var moduleTable = []ModuleEntry{
	{Pattern: "airtable", Module: "airtable:ActionCreateRecord", Version: 3},
	{Pattern: "airtabletool", Module: "airtable:ActionSearchRecords", Version: 3},
	{Pattern: "googledrive", Module: "google-drive:uploadFile", Version: 2},
	{Pattern: "googlesheets", Module: "google-sheets:addRow", Version: 4},
	{Pattern: "mysql", Module: "mysql:executeQuery", Version: 1},
	{Pattern: "postgresql", Module: "postgresql:select", Version: 1},
	{Pattern: "mongodb", Module: "mongodb:aggregate", Version: 1},

	{Pattern: "gmail", Module: "google-email:sendEmail", Version: 1},
	{Pattern: "emailsend", Module: "email:sendEmail", Version: 1},
	{Pattern: "sendgrid", Module: "sendgrid:sendEmail", Version: 1},
	{Pattern: "slack", Module: "slack:createMessage", Version: 1},
	{Pattern: "discord", Module: "discord:createMessage", Version: 1},
	{Pattern: "telegram", Module: "telegram:sendTextMessage", Version: 1},

	{Pattern: "openai", Module: "openai:createChatCompletion", Version: 1},
	{Pattern: "agent", Module: "openai:createChatCompletion", Version: 1},
	{Pattern: "lmchatopenai", Module: "openai:createChatCompletion", Version: 1},
	{Pattern: "outputparserstructured", Module: "json:parseJSON", Version: 1},

	{Pattern: "webhook", Module: "webhook:customWebHook", Version: 1},
	{Pattern: "formtrigger", Module: "webhook:customWebHook", Version: 1},
	{Pattern: "form", Module: "webhook:customWebHook", Version: 1},

	{Pattern: "googlecalendar", Module: "google-calendar:createEvent", Version: 1},
	{Pattern: "googlecalendartool", Module: "google-calendar:createEvent", Version: 1},

	{Pattern: "set", Module: "builtin:BasicRouter", Version: 1},
	{Pattern: "if", Module: "builtin:BasicRouter", Version: 1},
	{Pattern: "switch", Module: "builtin:Router", Version: 1},
	{Pattern: "merge", Module: "builtin:Aggregator", Version: 1},
	{Pattern: "code", Module: "builtin:HTTPmodule", Version: 1},
	{Pattern: "httprequest", Module: "http:ActionSendData", Version: 1},
	{Pattern: "extractfromfile", Module: "tools:textParser", Version: 1},

	{Pattern: "stickynote"},
}

// LookupModule finds the module for a step kind. The boolean is false when the fallback was used.
func LookupModule(stepKind string) (ModuleEntry, bool) {
	normalized := kind.Normalize(stepKind)

	for _, entry := range moduleTable {
		if entry.Pattern == normalized {
			return entry, true
		}
	}

	return FallbackModule, false
}

// Modules returns a copy of the table in priority order.
func Modules() []ModuleEntry {
	return append([]ModuleEntry(nil), moduleTable...)
}
