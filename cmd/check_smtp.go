package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/delivery"
)

var checkSMTPCmd = &cobra.Command{
	Use:   "check-smtp",
	Short: "Test the SMTP connection and credentials",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(config.ModeSMTP); err != nil {
			return err
		}
		return checkConnection(cmd.Context(), cmd.OutOrStdout(), delivery.New(cfg.SMTP))
	},
}

func init() {
	rootCmd.AddCommand(checkSMTPCmd)
}
