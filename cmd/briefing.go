package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/briefpipe/config"
	"github.com/gaurav-prasanna/briefpipe/store"
)

var (
	flagBriefingName     string
	flagBriefingPrompt   string
	flagBriefingPageType string
	flagBriefingMaxItems int
	flagBriefingDays     int
)

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Manage saved briefings",
}

var briefingAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a new briefing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagBriefingName == "" {
			return fmt.Errorf("--name is required")
		}
		if flagBriefingPageType == "listing" && flagBriefingPrompt == "" {
			return fmt.Errorf("--prompt is required for listing pages")
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		b := &store.Briefing{
			Name:          flagBriefingName,
			Prompt:        flagBriefingPrompt,
			SeedURL:       args[0],
			PageType:      flagBriefingPageType,
			MaxItems:      flagBriefingMaxItems,
			TimeRangeDays: flagBriefingDays,
		}
		if err := st.CreateBriefing(cmd.Context(), b); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Briefing created: %s\n", b.ID)
		return nil
	},
}

var briefingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved briefings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		briefings, err := st.ListBriefings(cmd.Context())
		if err != nil {
			return err
		}
		if len(briefings) == 0 {
			fmt.Fprintln(os.Stdout, "No briefings saved.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tURL\tPAGE TYPE\tSTATUS")
		for _, b := range briefings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Name, b.SeedURL, b.PageType, b.Status)
		}
		return w.Flush()
	},
}

var briefingRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a saved briefing and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := newLogger(cfg)

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		b, err := st.GetBriefing(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		runner := buildRunner(cfg, log)
		started := time.Now().UTC()
		result, runErr := runner.Run(cmd.Context(), b.RunRequest())

		run := &store.Run{
			BriefingID: b.ID,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
		}
		if runErr != nil {
			run.Status = "failed"
			run.Error = runErr.Error()
		} else {
			run.Status = "succeeded"
			run.Result = result
		}
		if err := st.SaveRun(cmd.Context(), run); err != nil {
			log.Error().Err(err).Str("briefing_id", b.ID).Msg("persisting run")
		}
		if runErr != nil {
			return runErr
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var briefingPauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause a briefing (skipped by campaign runs)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBriefingStatus(cmd.Context(), args[0], "paused")
	},
}

var briefingResumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a paused briefing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBriefingStatus(cmd.Context(), args[0], "active")
	},
}

var briefingDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a briefing and its run history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteBriefing(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "✓ Briefing deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(briefingCmd)
	briefingCmd.AddCommand(briefingAddCmd, briefingListCmd, briefingRunCmd, briefingPauseCmd, briefingResumeCmd, briefingDeleteCmd)

	briefingAddCmd.Flags().StringVar(&flagBriefingName, "name", "", "Briefing name (required)")
	briefingAddCmd.Flags().StringVar(&flagBriefingPrompt, "prompt", "", "What to look for")
	briefingAddCmd.Flags().StringVar(&flagBriefingPageType, "page-type", "listing", "Page type: listing, thread, or article")
	briefingAddCmd.Flags().IntVar(&flagBriefingMaxItems, "max-items", 0, "Maximum items to extract")
	briefingAddCmd.Flags().IntVar(&flagBriefingDays, "days", 0, "Only include items from the last N days")
}

func openStore() (*store.Store, error) {
	cfg := config.Load()
	st, err := store.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

func setBriefingStatus(ctx context.Context, id, status string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpdateBriefingStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Briefing %s\n", status)
	return nil
}
