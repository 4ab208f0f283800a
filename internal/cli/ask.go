package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noteapp-chat/server/internal/agent/model"
)

var (
	askUser    string
	askToken   string
	askVerbose bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run one turn and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.runner.Invoke(ctx, model.TurnInput{
			UserInput: strings.Join(args, " "),
			UserID:    askUser,
			AuthToken: askToken,
		})
		fmt.Fprintln(cmd.OutOrStdout(), res.FinalAnswer)
		if askVerbose && res.Error != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", res.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askUser, "user", "", "user ID the notes backend acts for")
	askCmd.Flags().StringVar(&askToken, "token", os.Getenv("NOTEAPP_TOKEN"), "bearer token for the notes backend")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "also print the turn error, if any")
}
