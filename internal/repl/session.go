// Package repl implements the interactive stringed shell.
//
// A Session is the shell's state machine. It is fed one line at a time and
// answers with the lines to show, so the same session drives both the plain
// line shell (Shell) and the full-screen terminal UI (RunTUI).
//
// In program mode each line is parsed as a program. A program that does not
// read its input is evaluated once against "". Otherwise the session switches
// to input mode and evaluates the program against every following line until
// an empty line switches back.
package repl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edwingeng/deque"

	"github.com/sandrolain/gostringed/pkg/evaluator"
	"github.com/sandrolain/gostringed/pkg/types"
)

// Banner is printed when a shell starts.
const Banner = "Stringed REPL"

// Shell commands, accepted in program mode.
const (
	CmdAST     = ":ast"
	CmdHistory = ":history"
	CmdQuit    = ":quit"
)

// Mode is the shell input mode.
type Mode int

const (
	// ModeProgram reads programs.
	ModeProgram Mode = iota
	// ModeInput reads inputs for the current program.
	ModeInput
)

func (m Mode) String() string {
	if m == ModeInput {
		return "input"
	}
	return "program"
}

// OutputKind classifies a line of shell output.
type OutputKind int

const (
	OutputResult OutputKind = iota
	OutputError
	OutputInfo
	OutputAST
)

// Output is one line of shell output.
type Output struct {
	Kind OutputKind
	Text string
}

// String renders the line the way the line shell prints it.
func (o Output) String() string {
	switch o.Kind {
	case OutputResult:
		return "= " + o.Text
	case OutputError:
		return "error: " + o.Text
	default:
		return o.Text
	}
}

// Recorder receives every evaluation performed by a session.
type Recorder interface {
	Record(ctx context.Context, program, input, output string, err error) error
}

// Options configures a Session.
type Options struct {
	// Evaluator also compiles programs, with its parser options and cache.
	Evaluator *evaluator.Evaluator
	// Recorder is optional.
	Recorder Recorder
	// RecallSize bounds the in-memory list of entered programs.
	RecallSize int
	Logger     *slog.Logger
}

// Session holds the state of one interactive shell.
type Session struct {
	ev       *evaluator.Evaluator
	recorder Recorder
	logger   *slog.Logger

	recall     deque.Deque
	recallSize int

	mode    Mode
	prog    *types.Program
	showAST bool
	done    bool
}

// NewSession creates a session in program mode.
func NewSession(opts Options) *Session {
	ev := opts.Evaluator
	if ev == nil {
		ev = evaluator.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.RecallSize
	if size <= 0 {
		size = 100
	}
	return &Session{
		ev:         ev,
		recorder:   opts.Recorder,
		logger:     logger,
		recall:     deque.NewDeque(),
		recallSize: size,
	}
}

// Mode returns the current input mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Done reports whether the session has been quit.
func (s *Session) Done() bool {
	return s.done
}

// Program returns the program inputs are evaluated against, or nil in
// program mode.
func (s *Session) Program() *types.Program {
	return s.prog
}

// Recall returns the programs entered so far, oldest first.
func (s *Session) Recall() []string {
	out := make([]string, 0, s.recall.Len())
	s.recall.Range(func(_ int, v deque.Elem) bool {
		out = append(out, v.(string))
		return true
	})
	return out
}

// Handle processes one line and returns the output to show.
// Surrounding whitespace of the line is ignored.
func (s *Session) Handle(ctx context.Context, line string) []Output {
	if s.done {
		return nil
	}
	line = strings.TrimSpace(line)

	if s.mode == ModeInput {
		if line == "" {
			s.mode = ModeProgram
			s.prog = nil
			return nil
		}
		return []Output{s.eval(ctx, line)}
	}

	switch line {
	case "":
		return nil
	case CmdQuit:
		s.done = true
		return nil
	case CmdAST:
		s.showAST = !s.showAST
		state := "off"
		if s.showAST {
			state = "on"
		}
		return []Output{{Kind: OutputInfo, Text: "ast display " + state}}
	case CmdHistory:
		return s.history()
	}

	return s.compile(ctx, line)
}

func (s *Session) compile(ctx context.Context, source string) []Output {
	s.remember(source)

	prog, err := s.ev.Compile(source)
	if err != nil {
		s.logger.Debug("parse failed", "source", source, "error", err)
		return []Output{{Kind: OutputError, Text: err.Error()}}
	}

	var out []Output
	if s.showAST {
		for _, l := range strings.Split(strings.TrimRight(Dump(prog.AST()), "\n"), "\n") {
			out = append(out, Output{Kind: OutputAST, Text: l})
		}
	}

	s.prog = prog
	if !prog.ReferencesInput() {
		out = append(out, s.eval(ctx, ""))
		s.prog = nil
		return out
	}

	s.mode = ModeInput
	return append(out, Output{Kind: OutputInfo, Text: "accepting inputs..."})
}

func (s *Session) eval(ctx context.Context, input string) Output {
	result, err := s.ev.Eval(ctx, s.prog, input)
	if s.recorder != nil {
		if rerr := s.recorder.Record(ctx, s.prog.Source(), input, result, err); rerr != nil {
			s.logger.Warn("history record failed", "error", rerr)
		}
	}
	if err != nil {
		return Output{Kind: OutputError, Text: err.Error()}
	}
	return Output{Kind: OutputResult, Text: result}
}

func (s *Session) remember(source string) {
	s.recall.PushBack(source)
	for s.recall.Len() > s.recallSize {
		s.recall.PopFront()
	}
}

func (s *Session) history() []Output {
	programs := s.Recall()
	if len(programs) == 0 {
		return []Output{{Kind: OutputInfo, Text: "no history"}}
	}
	out := make([]Output, len(programs))
	for i, p := range programs {
		out[i] = Output{Kind: OutputInfo, Text: fmt.Sprintf("%3d  %s", i+1, p)}
	}
	return out
}
