package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
)

var (
	cfg         *config.Config
	envFile     string
	logLevelArg string
)

var rootCmd = &cobra.Command{
	Use:   "outreach-cli",
	Short: "Personalized email outreach pipeline",
	Long: "Profiles each prospect's website, asks an LLM for business insights, drafts a " +
		"personalized email and delivers it over SMTP, one prospect at a time.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(envFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if logLevelArg != "" {
			c.Log.Level = logLevelArg
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "config", ".env", "path to an env file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevelArg, "log-level", "", "log level override (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
