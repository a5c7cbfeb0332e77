// Package output renders bump results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/verbump/verbump/internal/bump"
)

// Formatter renders a bump result to a writer.
type Formatter interface {
	Format(result *bump.Result, w io.Writer) error
}

// NewFormatter returns the formatter for the given format name. Unknown
// names fall back to text.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter renders a human-readable per-scope summary.
type TextFormatter struct{}

// Format implements Formatter.
func (f *TextFormatter) Format(result *bump.Result, w io.Writer) error {
	for i := range result.Scopes {
		scope := &result.Scopes[i]

		label := scope.Scope
		if label == "" {
			label = "version"
		}

		switch {
		case scope.OldVersion == nil:
			fmt.Fprintf(w, "%s: no tag found, version unchanged\n", label)
		case scope.Increment == nil:
			fmt.Fprintf(w, "%s: %s (no bump, base tag %s)\n",
				label, scope.OldVersion, scope.BaseTag)
		default:
			fmt.Fprintf(w, "%s: %s -> %s (%s, base tag %s)\n",
				label, scope.OldVersion, scope.NewVersion, scope.Increment, scope.BaseTag)
		}

		for _, sha := range scope.SkippedCommits {
			fmt.Fprintf(w, "  skipped unparsable commit %s\n", sha)
		}
	}
	return nil
}

// JSONFormatter renders the result as indented JSON for scripting.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(result *bump.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
