// Package kind normalizes step kinds and matches them against keyword sets.
package kind

import (
	"strings"
	"unicode"

	"github.com/dukex/migromat/pkg/models"
)

// sourcePrefixes are stripped from node-graph type identifiers before table lookups.
var sourcePrefixes = []string{
	"@n8n/n8n-nodes-langchain.",
	"n8n-nodes-base.",
}

// FromType turns a source type string into a canonical kind: lowercase, never empty.
func FromType(sourceType string) string {
	k := strings.ToLower(strings.TrimSpace(sourceType))
	if k == "" {
		return models.UnknownKind
	}

	return k
}

// Normalize strips known source prefixes and separators so that "n8n-nodes-base.googleSheets",
// "google-sheets" and "google_sheets" all become "googlesheets".
func Normalize(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	for _, prefix := range sourcePrefixes {
		k = strings.TrimPrefix(k, prefix)
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return -1
	}, k)
}

// Tokens splits a kind on every non alphanumeric character.
func Tokens(k string) []string {
	return strings.FieldsFunc(strings.ToLower(k), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Matcher is a keyword set. Substrings match anywhere in the kind; Tokens only match a whole token,
// which keeps short markers such as "ai" from matching "gmail" or "airtable".
type Matcher struct {
	Substrings []string
	Tokens     []string
}

// Match reports whether any of the given texts matches the keyword set.
func (m Matcher) Match(texts ...string) bool {
	for _, text := range texts {
		lower := strings.ToLower(text)

		for _, keyword := range m.Substrings {
			if strings.Contains(lower, keyword) {
				return true
			}
		}

		if len(m.Tokens) == 0 {
			continue
		}

		for _, token := range Tokens(lower) {
			for _, keyword := range m.Tokens {
				if token == keyword {
					return true
				}
			}
		}
	}

	return false
}

// Shared keyword sets used by the estimator, the dispatcher and the script generator.
var (
	Loop       = Matcher{Substrings: []string{"loop", "splitinbatches", "iterator", "foreach"}}
	AI         = Matcher{Substrings: []string{"openai", "anthropic", "langchain", "gpt", "llm", "agent", "lmchat"}, Tokens: []string{"ai"}}
	CustomCode = Matcher{Substrings: []string{"code", "function", "script"}}
	HTTP       = Matcher{Substrings: []string{"http", "webhook"}}
	Email      = Matcher{Substrings: []string{"email", "gmail", "sendgrid", "mailchimp", "outlook"}}
	Database   = Matcher{Substrings: []string{"database", "airtable", "postgres", "mysql", "mongodb", "sheets"}}
)
