package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// InputPrompt is shown while the shell reads inputs for a program.
const InputPrompt = "_> "

// Shell is the line-oriented shell.
type Shell struct {
	session *Session
	in      io.Reader
	out     io.Writer
	prompt  string

	result *color.Color
	fail   *color.Color
	info   *color.Color
	ast    *color.Color
}

// NewShell creates a line shell reading from in and writing to out.
func NewShell(session *Session, in io.Reader, out io.Writer, prompt string, useColor bool) *Shell {
	sh := &Shell{
		session: session,
		in:      in,
		out:     out,
		prompt:  prompt,
		result:  color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		info:    color.New(color.FgCyan),
		ast:     color.New(color.FgYellow),
	}
	if !useColor {
		for _, c := range []*color.Color{sh.result, sh.fail, sh.info, sh.ast} {
			c.DisableColor()
		}
	}
	return sh
}

// Run reads lines until end of input, :quit or ctx is done.
func (sh *Shell) Run(ctx context.Context) error {
	sh.info.Fprintln(sh.out, Banner)

	sc := bufio.NewScanner(sh.in)
	for {
		sh.writePrompt()
		if !sc.Scan() {
			break
		}

		for _, o := range sh.session.Handle(ctx, sc.Text()) {
			sh.print(o)
		}
		if sh.session.Done() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	fmt.Fprintln(sh.out)
	return sc.Err()
}

func (sh *Shell) writePrompt() {
	if sh.session.Mode() == ModeInput {
		fmt.Fprint(sh.out, InputPrompt)
		return
	}
	fmt.Fprint(sh.out, sh.prompt)
}

func (sh *Shell) print(o Output) {
	var c *color.Color
	switch o.Kind {
	case OutputResult:
		c = sh.result
	case OutputError:
		c = sh.fail
	case OutputAST:
		c = sh.ast
	default:
		c = sh.info
	}
	c.Fprintln(sh.out, o.String())
}
