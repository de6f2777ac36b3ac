package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/briefpipe/store"
)

var (
	flagCampaignName       string
	flagCampaignSchedule   string
	flagCampaignRecipients []string
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Manage delivery campaigns",
}

var campaignAddCmd = &cobra.Command{
	Use:   "add <briefing-id> [briefing-id...]",
	Short: "Create a campaign over one or more briefings",
	Long: `Add creates a campaign that runs the given briefings on a cron
schedule and delivers the rendered digests.

Example:
  briefpipe campaign add b1 b2 --name "Morning brief" --schedule "0 7 * * *" --recipient me@example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagCampaignName == "" {
			return fmt.Errorf("--name is required")
		}
		if _, err := cron.ParseStandard(flagCampaignSchedule); err != nil {
			return fmt.Errorf("invalid --schedule %q: %w", flagCampaignSchedule, err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		// Reject unknown briefing IDs up front.
		for _, id := range args {
			if _, err := st.GetBriefing(cmd.Context(), id); err != nil {
				return fmt.Errorf("briefing %s: %w", id, err)
			}
		}

		c := &store.Campaign{
			Name:        flagCampaignName,
			Recipients:  flagCampaignRecipients,
			Schedule:    flagCampaignSchedule,
			BriefingIDs: args,
		}
		if err := st.CreateCampaign(cmd.Context(), c); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "✓ Campaign created: %s\n", c.ID)
		return nil
	},
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		campaigns, err := st.ListCampaigns(cmd.Context())
		if err != nil {
			return err
		}
		if len(campaigns) == 0 {
			fmt.Fprintln(os.Stdout, "No campaigns saved.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSCHEDULE\tBRIEFINGS\tRECIPIENTS")
		for _, c := range campaigns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				c.ID, c.Name, c.Schedule, len(c.BriefingIDs), strings.Join(c.Recipients, ","))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(campaignCmd)
	campaignCmd.AddCommand(campaignAddCmd, campaignListCmd)

	campaignAddCmd.Flags().StringVar(&flagCampaignName, "name", "", "Campaign name (required)")
	campaignAddCmd.Flags().StringVar(&flagCampaignSchedule, "schedule", "0 7 * * *", "Cron schedule")
	campaignAddCmd.Flags().StringSliceVar(&flagCampaignRecipients, "recipient", nil, "Recipient (repeatable)")
}
