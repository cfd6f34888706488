// Package scriptgen turns a canonical workflow into a standalone automation script with one
// function per step and a fail-fast driver.
package scriptgen

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/dop251/goja"

	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/models"
)

type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
)

// Languages lists the supported script languages; the first one is the default.
var Languages = []Language{Python, JavaScript}

// ParseLanguage accepts a language name or a common alias. Empty input selects Python.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "python", "py":
		return Python, nil
	case "javascript", "js", "node":
		return JavaScript, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
}

func (l Language) Extension() string {
	if l == JavaScript {
		return ".js"
	}

	return ".py"
}

func (l Language) comment(text string) string {
	if l == JavaScript {
		return "// Error: " + text
	}

	return "# Error: " + text
}

// Step categories, checked in this order; the first match wins.
const (
	categoryStorage = "storage"
	categoryAI      = "ai"
	categoryEmail   = "email"
	categoryGeneric = "generic"
)

var (
	storageKeywords = kind.Matcher{Substrings: []string{"airtable"}}
	aiKeywords      = kind.Matcher{Substrings: []string{"openai", "gpt"}, Tokens: []string{"ai"}}
	emailKeywords   = kind.Matcher{Substrings: []string{"email", "gmail", "sendgrid"}}
)

func categorize(step *models.CanonicalStep) string {
	switch {
	case storageKeywords.Match(step.Kind, step.Name):
		return categoryStorage
	case aiKeywords.Match(step.Kind, step.Name):
		return categoryAI
	case emailKeywords.Match(step.Kind) || strings.Contains(strings.ToLower(step.Name), "send"):
		return categoryEmail
	default:
		return categoryGeneric
	}
}

type scriptStep struct {
	Func     string
	Label    string
	DoneKey  string
	Category string
}

type scriptData struct {
	Title      string
	QuotedName string
	StartLabel string
	Steps      []scriptStep
}

var templates = map[Language]*template.Template{
	Python:     template.Must(template.New("python").Parse(pythonTemplate)),
	JavaScript: template.Must(template.New("javascript").Parse(javascriptTemplate)),
}

var titleReplacer = strings.NewReplacer(`\`, `\\`, `"`, "'", "*/", "* /", "\r", " ", "\n", " ")

// Generate renders the script for wf. The output is deterministic for a given workflow. On failure
// it returns a one-line error comment in the target language together with a *GenerationError.
func Generate(wf *models.CanonicalWorkflow, language Language) (string, error) {
	name := "workflow"
	if wf != nil && wf.Name != "" {
		name = wf.Name
	}

	fail := func(err error) (string, error) {
		return language.comment(err.Error()), &GenerationError{Workflow: name, Language: language, Err: err}
	}

	tmpl, ok := templates[language]
	if !ok {
		return fail(fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language))
	}

	if wf == nil || len(wf.Steps) == 0 {
		return language.comment("No steps found"), &GenerationError{Workflow: name, Language: language, Err: ErrNoSteps}
	}

	data := scriptData{
		Title:      titleReplacer.Replace(name),
		QuotedName: quote(name),
		StartLabel: quote("Starting: " + name),
		Steps:      make([]scriptStep, 0, len(wf.Steps)),
	}

	for i, step := range wf.Steps {
		index := i + 1
		stepName := fmt.Sprintf("step_%d", index)

		if step == nil {
			return fail(fmt.Errorf("step %d is nil", index))
		}

		if step.Name != "" {
			stepName = step.Name
		}

		data.Steps = append(data.Steps, scriptStep{
			Func:     functionName(index, stepName),
			Label:    quote(fmt.Sprintf("Step %d: %s", index, stepName)),
			DoneKey:  quote(fmt.Sprintf("step%d_done", index)),
			Category: categorize(step),
		})
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return fail(err)
	}

	script := out.String()

	if language == JavaScript {
		if err := checkJavaScript(script); err != nil {
			return language.comment(err.Error()) + "\n" + script, &GenerationError{
				Workflow: name, Language: language, Err: fmt.Errorf("%w: %w", ErrInvalidScript, err),
			}
		}
	}

	return script, nil
}

// checkJavaScript compiles the script without running it.
func checkJavaScript(script string) error {
	source := script
	if strings.HasPrefix(source, "#!") {
		if _, rest, found := strings.Cut(source, "\n"); found {
			source = rest
		}
	}

	_, err := goja.Compile("workflow.js", source, false)

	return err
}

// quote renders s as a double-quoted literal valid in both Python and JavaScript.
func quote(s string) string {
	encoded, err := json.Marshal(s)
	if err != nil {
		return `""`
	}

	return string(encoded)
}
