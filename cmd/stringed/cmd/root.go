package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stringed",
	Short: "stringed - a tiny language for transforming strings",
	Long: `stringed evaluates programs that transform a single input string.

Syntax:
  _            the input
  "text"       a string literal (backslash escapes the next byte)
  a + b        concatenation
  e[lo:hi]     byte slice; bounds are expressions yielding decimal numbers
  (e)          grouping
  $e           evaluate e, then run the result as a program on the same input

Examples:
  stringed run '_[0:3]' --input hello
  stringed run '"<" + _ + ">"' --lines < names.txt
  stringed repl`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, TOML or YAML (default: $STRINGED_CONFIG or ./stringed.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

var errorColor = color.New(color.FgRed, color.Bold)

func printError(w io.Writer, err error) {
	errorColor.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}
