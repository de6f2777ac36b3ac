// Package extract implements the LinkExtractor and ContentExtractor
// interfaces. Both build a single prompt over normalized page content,
// call the model gateway once, and parse a fixed-shape JSON response.
package extract

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/briefpipe/core"
)

const linkSystemPrompt = `You select relevant links from a listing page.
Respond with a JSON array and nothing else. Each element has the shape
{"url": "...", "title": "...", "reason": "..."} where reason is a short
justification. Order the array by relevance, most relevant first.
Only include links that point to individual articles or posts. Never
invent URLs that do not appear in the page content.`

const contentSystemPrompt = `You extract the content of a single web page.
Respond with a JSON object and nothing else, with these fields:
"title": the page title,
"content": the main body text, verbatim or lightly cleaned,
"publish_date": the publication date as YYYY-MM-DD, or null if it cannot
be determined from the page,
"content_type": one of "article", "blog_post", "forum_thread",
"press_release", "documentation", or "other",
"has_quotations": true if the body quotes people directly.
Use null for any field you cannot determine. Never fabricate values.`

// BuildLinkPrompt templates the link-extraction prompt for a listing page.
// Pure function of its inputs; no model call, no clock, no randomness.
func BuildLinkPrompt(doc *core.NormalizedDocument, instr core.ExtractionInstruction) core.Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Listing page URL: %s\n\n", doc.URL)
	fmt.Fprintf(&sb, "Select up to %d links matching this instruction: %s\n", instr.MaxItems, instr.Prompt)
	if instr.RecencyWindowDays > 0 {
		fmt.Fprintf(&sb, "Only include items published within the last %d days; drop anything older or undatable.\n", instr.RecencyWindowDays)
	}
	sb.WriteString("\nPage content:\n\n")
	sb.WriteString(doc.Markdown)

	return core.Prompt{System: linkSystemPrompt, User: sb.String()}
}

// BuildContentPrompt templates the content-extraction prompt for one page.
func BuildContentPrompt(doc *core.NormalizedDocument) core.Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Page URL: %s\n\nPage content:\n\n", doc.URL)
	sb.WriteString(doc.Markdown)

	return core.Prompt{System: contentSystemPrompt, User: sb.String()}
}
