package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gostringed/internal/repl"
)

var replTUI bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Long: `Start the interactive shell.

Enter a program to evaluate it. A program that reads its input (_)
switches the shell to input mode: every following line is evaluated as
input until an empty line.

Commands:
  :ast      toggle printing the parsed tree
  :history  list the programs entered in this session
  :quit     leave the shell`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&replTUI, "tui", false, "full-screen terminal UI")
}

func runRepl(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer a.close()

	opts := repl.Options{
		Evaluator:  a.ev,
		RecallSize: a.cfg.Repl.RecallSize,
		Logger:     a.logger,
	}
	if a.history != nil {
		opts.Recorder = a.history
	}
	session := repl.NewSession(opts)

	if replTUI || a.cfg.Repl.TUI {
		return repl.RunTUI(ctx, session, a.cfg.Repl.Prompt)
	}
	sh := repl.NewShell(session, cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.Repl.Prompt, a.cfg.Repl.Color)
	return sh.Run(ctx)
}
