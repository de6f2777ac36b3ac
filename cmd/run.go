package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/briefpipe/config"
	"github.com/gaurav-prasanna/briefpipe/core"
	"github.com/gaurav-prasanna/briefpipe/digest"
)

// Flag variables.
var (
	flagPrompt    string
	flagPageType  string
	flagMaxItems  int
	flagDays      int
	flagMarkdown  bool
	flagJSON      bool
	flagPDF       bool
	flagTitle     string
	flagOutputDir string
)

var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Run the extraction pipeline once for a URL",
	Long: `Run executes one end-to-end pipeline run for the given URL and prints
the result as JSON, or writes a rendered digest with --markdown or --pdf.

Examples:
  briefpipe run https://news.example.com --prompt "Go runtime news"
  briefpipe run https://news.example.com --prompt "Go news" --max-items 5 --days 7
  briefpipe run https://forum.example.com/t/42 --page-type thread --markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&flagPrompt, "prompt", "", "What to look for (required for listing pages)")
	runCmd.Flags().StringVar(&flagPageType, "page-type", "listing", "Page type: listing, thread, or article")
	runCmd.Flags().IntVar(&flagMaxItems, "max-items", 0, "Maximum items to extract (default from config)")
	runCmd.Flags().IntVar(&flagDays, "days", 0, "Only include items from the last N days")

	runCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Write a Markdown digest file")
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "Write a JSON digest file")
	runCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Write a PDF digest file")
	runCmd.Flags().StringVar(&flagTitle, "title", "", "Digest title (defaults to the URL host)")
	runCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
}

func runRun(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}
	formats := 0
	for _, set := range []bool{flagMarkdown, flagJSON, flagPDF} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return fmt.Errorf("--markdown, --json, and --pdf are mutually exclusive")
	}
	if flagPageType == "listing" && flagPrompt == "" {
		return fmt.Errorf("--prompt is required for listing pages")
	}

	cfg := config.Load()
	log := newLogger(cfg)
	runner := buildRunner(cfg, log)

	result, err := runner.Run(context.Background(), core.RunRequest{
		URL:               rawURL,
		Prompt:            flagPrompt,
		PageType:          flagPageType,
		MaxItems:          flagMaxItems,
		RecencyWindowDays: flagDays,
	})
	if err != nil {
		return err
	}

	if formats == 0 {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	var renderer digest.Renderer
	switch {
	case flagPDF:
		renderer = digest.NewPDFRenderer()
	case flagJSON:
		renderer = digest.NewJSONRenderer()
	default:
		renderer = digest.NewMarkdownRenderer()
	}

	title := flagTitle
	if title == "" {
		title = parsed.Host
	}

	data, err := renderer.Render(title, result)
	if err != nil {
		return fmt.Errorf("rendering digest: %w", err)
	}

	writer, err := digest.NewWriter(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Write(title, data, renderer.Extension())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}
