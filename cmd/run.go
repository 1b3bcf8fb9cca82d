package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/delivery"
	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/outreach"
	"github.com/sells-group/outreach-cli/internal/prospect"
	"github.com/sells-group/outreach-cli/internal/store"
)

type runFlags struct {
	dryRun         bool
	testConnection bool
	statsOnly      bool
	yes            bool
	output         string
	deliveryLog    string
	tone           string
	delay          float64
	limit          int
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Process a prospect list and send personalized emails",
	Long: "Loads prospects from a CSV or XLSX file, then profiles, analyzes, drafts and " +
		"sends one email per valid prospect. Use --dry-run to stop before sending.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPipeline(ctx, cmd, args[0])
	},
}

func init() {
	addRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(f *pflag.FlagSet) {
	f.BoolVar(&runOpts.dryRun, "dry-run", false, "run every step except sending")
	f.BoolVar(&runOpts.dryRun, "test-mode", false, "alias for --dry-run")
	f.BoolVar(&runOpts.testConnection, "test-connection", false, "check the SMTP connection before starting")
	f.BoolVar(&runOpts.statsOnly, "stats-only", false, "print prospect statistics and exit")
	f.BoolVar(&runOpts.yes, "yes", false, "skip the send confirmation prompt")
	f.StringVarP(&runOpts.output, "output", "o", "", "write results JSON to this path")
	f.StringVar(&runOpts.deliveryLog, "delivery-log", "", "write the delivery log CSV to this path")
	f.StringVar(&runOpts.tone, "tone", "", "email tone: professional, friendly or direct (default from config)")
	f.Float64Var(&runOpts.delay, "delay", 0, "seconds between prospects (default from config)")
	f.IntVar(&runOpts.limit, "limit", 0, "process at most this many prospects (0 = all)")
}

func runPipeline(ctx context.Context, cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	loaded, err := prospect.Load(ctx, path)
	if err != nil {
		return eris.Wrap(err, "run: load prospects")
	}
	stats := loaded.Stats()
	zap.L().Info("run: prospects loaded",
		zap.String("file", path),
		zap.Int("valid", stats.TotalProspects),
		zap.Int("invalid", stats.InvalidProspects),
	)
	if runOpts.statsOnly {
		return writeJSON(out, stats)
	}

	list := loaded.Valid()
	if runOpts.limit > 0 && len(list) > runOpts.limit {
		list = list[:runOpts.limit]
	}
	if len(list) == 0 {
		zap.L().Warn("run: no valid prospects to process", zap.String("file", path))
		return nil
	}

	applyRunFlags(cmd, cfg)
	mode := config.ModeSend
	if runOpts.dryRun {
		mode = config.ModeDraft
	}
	if err := cfg.Validate(mode); err != nil {
		return err
	}
	if runOpts.testConnection {
		if err := cfg.Validate(config.ModeSMTP); err != nil {
			return err
		}
	}

	container, err := buildContainer(ctx, cfg, pipelineOptions(cfg, runOpts.dryRun))
	if err != nil {
		return err
	}

	if runOpts.testConnection {
		if err := container.Invoke(func(ch *delivery.Channel) error {
			return checkConnection(ctx, out, ch)
		}); err != nil {
			return err
		}
	}

	if !runOpts.dryRun && !runOpts.yes && !confirm(cmd.InOrStdin(), out, len(list)) {
		fmt.Fprintln(out, "Operation cancelled.")
		return nil
	}

	var st store.Store
	if err := container.Invoke(func(s store.Store) { st = s }); err != nil {
		zap.L().Warn("run: history disabled, store unavailable", zap.Error(err))
	}
	if st != nil {
		defer func() { _ = st.Close() }()
	}

	return container.Invoke(func(orch *outreach.Orchestrator, ch *delivery.Channel, client *llm.Client) error {
		defer func() { _ = client.Close() }()
		return executeRun(ctx, out, path, list, orch, ch, st)
	})
}

func executeRun(ctx context.Context, out io.Writer, path string, list []model.Prospect, orch *outreach.Orchestrator, ch *delivery.Channel, st store.Store) error {
	var runID string
	if st != nil {
		run, err := st.CreateRun(ctx, path, runOpts.dryRun)
		if err != nil {
			zap.L().Warn("run: history disabled, could not create run", zap.Error(err))
		} else {
			runID = run.ID
			orch.WithRecorder(st, runID)
		}
	}

	if runOpts.dryRun {
		fmt.Fprintln(out, "TEST MODE: no emails will be sent")
	}
	results := orch.Run(ctx, list)

	status := model.RunStatusComplete
	if ctx.Err() != nil {
		status = model.RunStatusCancelled
		fmt.Fprintln(out, "Operation cancelled by user")
	}
	if runID != "" {
		if err := st.FinishRun(context.WithoutCancel(ctx), runID, model.Totals(status, results)); err != nil {
			zap.L().Warn("run: could not finish run", zap.String("run_id", runID), zap.Error(err))
		}
	}

	ds := ch.Stats()
	summary := outreach.Summarize(results, &ds)
	outreach.LogStatistics(summary)
	printSummary(out, summary, runOpts.dryRun)

	if runOpts.output != "" {
		if err := outreach.ExportResults(runOpts.output, len(list), results); err != nil {
			return err
		}
		fmt.Fprintf(out, "Results exported to %s\n", runOpts.output)
	}
	if runOpts.deliveryLog != "" {
		if err := ch.ExportLog(runOpts.deliveryLog); err != nil {
			return err
		}
	}
	return nil
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("tone") {
		c.Pipeline.Tone = runOpts.tone
	}
	if cmd.Flags().Changed("delay") {
		c.Pipeline.DelaySecs = runOpts.delay
	}
}

// confirm asks before live sending. Anything but y or yes declines.
func confirm(in io.Reader, out io.Writer, n int) bool {
	fmt.Fprintf(out, "Ready to send %d emails. Proceed with sending emails? (y/N): ", n)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func checkConnection(ctx context.Context, out io.Writer, ch *delivery.Channel) error {
	ok, msg := ch.TestConnection(ctx)
	if !ok {
		return eris.Errorf("smtp check failed: %s", msg)
	}
	fmt.Fprintln(out, msg)
	return nil
}

func printSummary(w io.Writer, st outreach.Statistics, dryRun bool) {
	fmt.Fprintln(w, "\n=== FINAL RESULTS ===")
	fmt.Fprintf(w, "Total prospects: %d\n", st.TotalProspects)
	fmt.Fprintf(w, "Successfully processed: %d\n", st.Successful)
	fmt.Fprintf(w, "Success rate: %.1f%%\n", st.SuccessRate)
	fmt.Fprintf(w, "Average personalization score: %.2f\n", st.AveragePersonalizationScore)
	if !dryRun && st.DeliveryStats != nil {
		fmt.Fprintf(w, "Email delivery success rate: %.1f%%\n", st.DeliveryStats.SuccessRate)
	}
	for _, e := range st.CommonErrors {
		fmt.Fprintf(w, "  %dx %s\n", e.Count, e.Error)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
