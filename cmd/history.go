package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recent runs, or the results of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if len(args) == 1 {
			results, err := st.ListResults(ctx, args[0])
			if err != nil {
				return eris.Wrap(err, "history: results")
			}
			formatResults(cmd.OutOrStdout(), results)
			return nil
		}

		runs, err := st.ListRuns(ctx, historyLimit)
		if err != nil {
			return eris.Wrap(err, "history: list")
		}
		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", store.DefaultListLimit, "max number of runs to display")
	rootCmd.AddCommand(historyCmd)
}

// openStore opens the configured store, failing when none is configured.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate(config.ModeReport); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("no run history: set store.driver to sqlite or postgres")
	}
	return st, nil
}

func formatRunsList(w io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tMODE\tSTATUS\tTOTAL\tOK\tFAILED\tSTARTED\tDURATION")
	for _, r := range runs {
		mode := "live"
		if r.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.Source, mode, r.Status, r.Total, r.Successful, r.Failed,
			r.StartedAt.Local().Format("2006-01-02 15:04"), runDuration(r))
	}
	_ = tw.Flush()
}

func runDuration(r model.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}

func formatResults(w io.Writer, results []model.StoredResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tCOMPANY\tSUCCESS\tLAST STEP\tERROR")
	for _, r := range results {
		last, firstErr := "-", ""
		if r.Result != nil {
			if n := len(r.Result.StepsCompleted); n > 0 {
				last = string(r.Result.StepsCompleted[n-1])
			}
			if len(r.Result.Errors) > 0 {
				firstErr = r.Result.Errors[0]
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", r.Email, r.Company, r.Success, last, firstErr)
	}
	_ = tw.Flush()
}
