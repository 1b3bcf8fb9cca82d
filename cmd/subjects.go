package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/compose"
	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/insight"
	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/profile"
	"github.com/sells-group/outreach-cli/internal/prospect"
)

var (
	subjectsRow   int
	subjectsCount int
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects <file>",
	Short: "Suggest subject lines for one prospect",
	Long:  "Profiles the prospect's website, generates insights and asks the model for subject line variants.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate(config.ModeDraft); err != nil {
			return err
		}

		st, err := prospect.Load(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "subjects: load")
		}
		valid := st.Valid()
		if subjectsRow < 1 || subjectsRow > len(valid) {
			return eris.Errorf("subjects: --row must be between 1 and %d", len(valid))
		}
		p := valid[subjectsRow-1]

		container, err := buildContainer(ctx, cfg, pipelineOptions(cfg, true))
		if err != nil {
			return err
		}
		return container.Invoke(func(pr *profile.Profiler, g *insight.Generator, comp *compose.Composer, client *llm.Client) error {
			defer func() { _ = client.Close() }()

			site, err := pr.Profile(ctx, p.CompanyURL)
			if err != nil {
				return eris.Wrapf(err, "subjects: profile %s", p.CompanyURL)
			}
			s, err := g.Analyze(ctx, site, p, cfg.LLM.Temperature)
			if err != nil {
				return eris.Wrap(err, "subjects: analyze")
			}
			if err := insight.Validate(s); err != nil {
				zap.L().Warn("subjects: insights below quality bar", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Subject lines for %s (%s):\n", p.FullName(), p.CompanyName)
			for i, subj := range comp.SuggestSubjects(ctx, p, s, subjectsCount) {
				fmt.Fprintf(out, "%d. %s\n", i+1, subj)
			}
			return nil
		})
	},
}

func init() {
	subjectsCmd.Flags().IntVar(&subjectsRow, "row", 1, "1-based position of the prospect among valid rows")
	subjectsCmd.Flags().IntVar(&subjectsCount, "count", 5, "number of subject lines")
	rootCmd.AddCommand(subjectsCmd)
}
