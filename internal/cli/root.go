package cli

import (
	"github.com/spf13/cobra"

	"github.com/noteapp-chat/server/internal/agent/model"
	logx "github.com/noteapp-chat/server/pkg/logger"
)

var (
	envFile  string
	logLevel string
	cfg      *model.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "noteapp-chat",
	Short: "Notes assistant that answers from your notes and transcripts",
	Long: `noteapp-chat runs the notes assistant turn pipeline against a notes backend.
It searches notes and transcripts, fetches their content, creates notes and
answers with a Gemini model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = model.LoadConfig(envFile)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: level})
		return nil
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}
