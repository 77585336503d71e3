// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt reads interactive answers from the terminal with line
// editing. When stdin or stdout is not a terminal it falls back to plain
// line reads so answers can be piped in and stdout stays clean.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrAborted is returned when the user presses Ctrl-C at a prompt.
var ErrAborted = errors.New("prompt aborted")

// Terminal prompts on the controlling terminal.
type Terminal struct {
	line *liner.State
}

// NewTerminal takes over the terminal until Close is called.
func NewTerminal() *Terminal {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &Terminal{line: l}
}

// Prompt reads one line.
func (t *Terminal) Prompt(p string) (string, error) {
	s, err := t.line.Prompt(p)
	if err != nil {
		return "", mapErr(err)
	}
	t.line.AppendHistory(s)
	return s, nil
}

// Password reads one line without echo.
func (t *Terminal) Password(p string) (string, error) {
	s, err := t.line.PasswordPrompt(p)
	if err != nil {
		return "", mapErr(err)
	}
	return s, nil
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	return t.line.Close()
}

func mapErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) {
		return ErrAborted
	}
	return err
}

// Lines prompts on w and reads answers line by line from r.
type Lines struct {
	r *bufio.Reader
	w io.Writer
}

// NewLines creates a Lines prompter.
func NewLines(r io.Reader, w io.Writer) *Lines {
	return &Lines{r: bufio.NewReader(r), w: w}
}

// Prompt writes p and reads the next line. A final line without a newline
// is returned before io.EOF.
func (l *Lines) Prompt(p string) (string, error) {
	fmt.Fprint(l.w, p)
	s, err := l.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Password reads a line like Prompt. Input is echoed.
func (l *Lines) Password(p string) (string, error) {
	return l.Prompt(p)
}

// Prompter is satisfied by Terminal, Lines and OnDemand.
type Prompter interface {
	Prompt(p string) (string, error)
	Password(p string) (string, error)
}

// stdout is where liner draws its prompts.
var stdout = os.Stdout

// OnDemand takes over the terminal only while a question is open and
// restores it right after the answer. Line editing needs both stdin and
// stdout on a terminal; otherwise answers are read line by line from in
// and the prompt goes to out.
type OnDemand struct {
	in    io.Reader
	out   io.Writer
	lines *Lines
}

// NewOnDemand creates an OnDemand prompter. Nothing touches the terminal
// until the first question.
func NewOnDemand(in io.Reader, out io.Writer) *OnDemand {
	return &OnDemand{in: in, out: out}
}

// Prompt asks one question.
func (d *OnDemand) Prompt(p string) (string, error) {
	return d.ask(p, Prompter.Prompt)
}

// Password asks one question without echo when on a terminal.
func (d *OnDemand) Password(p string) (string, error) {
	return d.ask(p, Prompter.Password)
}

func (d *OnDemand) ask(p string, fn func(Prompter, string) (string, error)) (string, error) {
	if useTerminal(d.in, stdout) {
		t := NewTerminal()
		defer t.Close()
		return fn(t, p)
	}
	if d.lines == nil {
		d.lines = NewLines(d.in, d.out)
	}
	return fn(d.lines, p)
}

func useTerminal(in io.Reader, out io.Writer) bool {
	return isTerminal(in) && isTerminal(out) && liner.TerminalSupported()
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && f != nil && term.IsTerminal(int(f.Fd()))
}
