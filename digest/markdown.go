package digest

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/briefpipe/core"
)

// MarkdownRenderer renders a run result as a Markdown digest.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render produces the Markdown digest.
func (r *MarkdownRenderer) Render(title string, result *core.RunResult) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	if result.Summary != nil && *result.Summary != "" {
		fmt.Fprintf(&sb, "%s\n\n", *result.Summary)
	}
	if result.Warning != "" {
		fmt.Fprintf(&sb, "> %s\n\n", result.Warning)
	}

	if len(result.Items) == 0 {
		sb.WriteString("Nothing matched this briefing.\n")
		return []byte(sb.String()), nil
	}

	for _, item := range result.Items {
		heading := item.Title
		if heading == "" {
			heading = item.URL
		}
		fmt.Fprintf(&sb, "## %s\n\n", heading)
		if item.PublishDate != nil {
			fmt.Fprintf(&sb, "*Published %s*\n\n", *item.PublishDate)
		}
		fmt.Fprintf(&sb, "%s\n\n", item.Content)
		fmt.Fprintf(&sb, "[Source](%s)\n\n", item.URL)
	}

	fmt.Fprintf(&sb, "---\n\n%d of %d links extracted.\n",
		result.Metadata.ArticlesExtracted, result.Metadata.TotalLinksFound)

	return []byte(sb.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
