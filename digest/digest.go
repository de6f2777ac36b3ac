// Package digest renders a RunResult into a deliverable artifact.
// Markdown is the canonical human-readable form; JSON feeds machine
// consumers; PDF is for email attachments. Delivery itself is external;
// this package only produces the bytes a mailer would send.
package digest

import "github.com/gaurav-prasanna/briefpipe/core"

// Renderer converts a run result into a final output format.
type Renderer interface {
	Render(title string, result *core.RunResult) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
