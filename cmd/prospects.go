package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/prospect"
)

var (
	prospectsCountry        string
	prospectsCompany        string
	prospectsExport         string
	prospectsIncludeInvalid bool
)

var prospectsCmd = &cobra.Command{
	Use:   "prospects <file>",
	Short: "Inspect, filter and export a prospect list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		st, err := prospect.Load(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "prospects: load")
		}

		if prospectsExport != "" {
			if err := st.ExportFile(prospectsExport, prospectsIncludeInvalid); err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported prospects to %s\n", prospectsExport)
			return nil
		}

		switch {
		case prospectsCountry != "":
			formatProspects(out, st.FilterByCountry(prospectsCountry))
		case prospectsCompany != "":
			formatProspects(out, st.FilterByCompany(prospectsCompany))
		default:
			if err := writeJSON(out, st.Stats()); err != nil {
				return err
			}
			formatInvalid(out, st.Invalid())
		}
		return nil
	},
}

func init() {
	prospectsCmd.Flags().StringVar(&prospectsCountry, "country", "", "list prospects in this country (case-insensitive)")
	prospectsCmd.Flags().StringVar(&prospectsCompany, "company", "", "list prospects whose company name contains this text")
	prospectsCmd.Flags().StringVar(&prospectsExport, "export", "", "write the list to this CSV path")
	prospectsCmd.Flags().BoolVar(&prospectsIncludeInvalid, "include-invalid", false, "include invalid rows in the export")
	rootCmd.AddCommand(prospectsCmd)
}

func formatProspects(w io.Writer, list []model.Prospect) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No prospects found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tPOSITION\tCOMPANY\tCOUNTRY\tURL")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.FullName(), p.Email, p.JobPosition, p.CompanyName, p.Country, p.CompanyURL)
	}
	_ = tw.Flush()
}

func formatInvalid(w io.Writer, rows []model.InvalidRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d invalid rows:\n", len(rows))
	for _, r := range rows {
		fmt.Fprintf(w, "  row %d: %s\n", r.RowIndex, r.Reason)
	}
}
