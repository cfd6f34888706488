package scriptgen

import (
	"fmt"
	"strings"
)

const maxIdentifierLength = 30

// sanitize lowercases s, replaces anything outside [a-z0-9_] with an underscore, truncates it and
// trims surrounding underscores. An empty result becomes fallback.
func sanitize(s, fallback string) string {
	var b strings.Builder

	count := 0
	for _, r := range strings.ToLower(s) {
		if count == maxIdentifierLength {
			break
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}

		count++
	}

	if result := strings.Trim(b.String(), "_"); result != "" {
		return result
	}

	return fallback
}

func functionName(index int, stepName string) string {
	return fmt.Sprintf("step%d_%s", index, sanitize(stepName, fmt.Sprintf("s%d", index)))
}

// FileStem derives a file-system safe base name for downloads.
func FileStem(name string) string {
	return sanitize(name, "wf")
}

// Filename returns the download file name of a generated script.
func Filename(name string, language Language) string {
	return FileStem(name) + language.Extension()
}
