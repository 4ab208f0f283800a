package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noteapp-chat/server/internal/agent/graph"
	"github.com/noteapp-chat/server/internal/agent/model"
)

var (
	chatUser   string
	chatToken  string
	chatThread string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the notes assistant",
	Long: `Start a console REPL. The conversation history is kept between turns.
Type /reset to start over and exit or quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		session := &chatSession{
			runner:      a.runner,
			checkpoints: a.checkpoints,
			base:        model.TurnInput{UserID: chatUser, AuthToken: chatToken, ThreadID: chatThread},
		}
		return session.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatUser, "user", "", "user ID the notes backend acts for")
	chatCmd.Flags().StringVar(&chatToken, "token", os.Getenv("NOTEAPP_TOKEN"), "bearer token for the notes backend")
	chatCmd.Flags().StringVar(&chatThread, "thread", "", "conversation ID for checkpoints (defaults to the user ID)")
	_ = chatCmd.MarkFlagRequired("user")
}

// chatSession is one REPL conversation.
type chatSession struct {
	runner      graph.Runner
	checkpoints model.Checkpointer
	base        model.TurnInput
	history     []model.HistoryMessage
}

func (s *chatSession) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Notes assistant ready. Type exit or quit to leave, /reset to start over.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye.")
			return nil
		case "/reset":
			s.reset(ctx)
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		turn := s.base
		turn.UserInput = line
		turn.History = s.history
		res := s.runner.Invoke(ctx, turn)
		fmt.Fprintln(out, res.FinalAnswer)

		s.history = append(s.history,
			model.HistoryMessage{Role: "user", Content: line},
			model.HistoryMessage{Role: "assistant", Content: res.FinalAnswer},
		)
	}
}

func (s *chatSession) reset(ctx context.Context) {
	s.history = nil
	if s.checkpoints == nil {
		return
	}
	thread := s.base.ThreadID
	if thread == "" {
		thread = s.base.UserID
	}
	_ = s.checkpoints.Clear(ctx, thread)
}
