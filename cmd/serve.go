package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/briefpipe/config"
	"github.com/gaurav-prasanna/briefpipe/digest"
	"github.com/gaurav-prasanna/briefpipe/schedule"
	"github.com/gaurav-prasanna/briefpipe/server"
	"github.com/gaurav-prasanna/briefpipe/store"
)

var flagServeOutputDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and campaign scheduler",
	Long: `Serve starts the HTTP API on SERVER_PORT and schedules campaign
digests according to each campaign's cron expression. Digests are written
under the output directory.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagServeOutputDir, "output_dir", "", "Digest output directory (default: current directory)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	runner := buildRunner(cfg, log)

	writer, err := digest.NewWriter(flagServeOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	scheduler := schedule.New(runner, st, digest.NewMarkdownRenderer(), &schedule.FileDeliverer{Writer: writer}, log)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer scheduler.Stop()

	srv := server.New(runner, st, log)
	addr := ":" + cfg.ServerPort
	log.Info().Str("addr", addr).Msg("starting server")
	return srv.ListenAndServe(ctx, addr)
}
