// Package prompt implements the interactive side of property resolution with
// charmbracelet/huh forms.
//
// Terminal asks for one property per form and shows the resolved set in a
// table before asking for confirmation. Prompts and the summary are written
// to the form output (stderr by default) so stdout stays clean for the
// resolved configuration.
//
// In accessible mode every form reads from one shared line reader, so piped
// answers are consumed one line per prompt. Running out of input before a
// prompt is answered is an error wrapping io.ErrUnexpectedEOF.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/AbdelazizMoustafa10m/stencil/internal/descriptor"
	"github.com/AbdelazizMoustafa10m/stencil/internal/resolve"
)

// defaultWidth is the form width used when none is configured.
const defaultWidth = 80

// Terminal is a resolve.Queryer backed by huh forms.
type Terminal struct {
	input      io.Reader
	output     io.Writer
	accessible bool
	tty        bool
	width      int
	theme      *huh.Theme
	keymap     *huh.KeyMap

	// lines is shared by every accessible form. Nil in full-screen mode.
	lines *lineReader
}

var _ resolve.Queryer = (*Terminal)(nil)

// Option configures a Terminal.
type Option func(*Terminal)

// WithInput reads answers from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(t *Terminal) { t.input = r }
}

// WithOutput renders forms to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(t *Terminal) { t.output = w }
}

// WithAccessible switches to huh's line-based accessible mode, which works
// without a full-screen terminal (screen readers, CI logs, piped input).
func WithAccessible(accessible bool) Option {
	return func(t *Terminal) { t.accessible = accessible }
}

// WithTTY reads keystrokes from the controlling terminal even when stdin is
// redirected.
func WithTTY(tty bool) Option {
	return func(t *Terminal) { t.tty = tty }
}

// WithWidth sets the form width in columns.
func WithWidth(width int) Option {
	return func(t *Terminal) { t.width = width }
}

// NewTerminal returns a Terminal writing to stderr.
func NewTerminal(opts ...Option) *Terminal {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "abort"),
	)

	t := &Terminal{
		output: os.Stderr,
		width:  defaultWidth,
		theme:  huh.ThemeCharm(),
		keymap: km,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.accessible {
		in := t.input
		if in == nil {
			in = os.Stdin
		}
		t.lines = newLineReader(in)
	}
	return t
}

// Ask implements resolve.Queryer. An empty answer accepts the suggested
// default. A property without a default never yields an empty answer.
func (t *Terminal) Ask(ctx context.Context, q resolve.Question) (string, error) {
	value := initialValue(q)
	validate := validator(q)

	input := huh.NewInput().
		Title(fmt.Sprintf("Define value for property %q", q.Key)).
		Description(describe(q)).
		Placeholder(placeholder(q)).
		Value(&value).
		Validate(validate)

	start := t.mark()
	if err := t.run(ctx, huh.NewGroup(input)); err != nil {
		return "", err
	}
	answer := finalValue(value, q)
	if err := t.inputErr(start, validate(answer) == nil); err != nil {
		return "", fmt.Errorf("reading answer for %q: %w", q.Key, err)
	}
	if strings.TrimSpace(answer) == "" && !q.HasDefault {
		return "", fmt.Errorf("property %q: a value is required", q.Key)
	}
	return answer, nil
}

// Confirm implements resolve.Queryer.
func (t *Terminal) Confirm(ctx context.Context, result *resolve.Result) (bool, error) {
	confirmed := true

	title := "Confirm properties configuration"
	if result.Attempts() > 1 {
		title = fmt.Sprintf("%s (round %d)", title, result.Attempts())
	}

	start := t.mark()
	err := t.run(ctx, huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(Summary(result)).
			Affirmative("Yes").
			Negative("No, start over").
			Value(&confirmed),
	))
	if err != nil {
		return false, err
	}
	if t.lines != nil {
		if err := t.inputErr(start, isConfirmAnswer(t.lines.last)); err != nil {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
	}
	return confirmed, nil
}

func (t *Terminal) run(ctx context.Context, group *huh.Group) error {
	form := huh.NewForm(group).
		WithTheme(t.theme).
		WithWidth(t.width).
		WithKeyMap(t.keymap).
		WithAccessible(t.accessible)
	switch {
	case t.lines != nil:
		form = form.WithInput(t.lines)
	case t.input != nil:
		form = form.WithInput(t.input)
	}
	if t.output != nil {
		form = form.WithOutput(t.output)
	}
	if t.tty {
		form = form.WithProgramOptions(tea.WithInputTTY())
	}
	return mapFormErr(form.RunWithContext(ctx))
}

// mark returns the input position before a form runs.
func (t *Terminal) mark() int {
	if t.lines == nil {
		return 0
	}
	return t.lines.delivered
}

// inputErr reports input that ran out while a form was running: either no
// line reached the form, or the last one did not answer it.
func (t *Terminal) inputErr(start int, answered bool) error {
	if t.lines == nil || t.lines.err == nil {
		return nil
	}
	if t.lines.delivered > start && answered {
		return nil
	}
	if errors.Is(t.lines.err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return t.lines.err
}

// lineReader hands out at most one line per Read. huh's accessible prompts
// wrap their reader in a fresh bufio.Scanner per field, which would otherwise
// buffer answers meant for later prompts.
type lineReader struct {
	r         *bufio.Reader
	pending   []byte
	last      string
	delivered int
	err       error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (l *lineReader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		if l.err != nil {
			return 0, l.err
		}
		line, err := l.r.ReadBytes('\n')
		l.pending, l.err = line, err
		if len(line) == 0 {
			return 0, err
		}
		l.last = strings.TrimSpace(string(line))
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	l.delivered += n
	return n, nil
}

// isConfirmAnswer reports whether s is an answer huh's accessible confirm
// accepts. Empty picks the default.
func isConfirmAnswer(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "y", "yes", "n", "no":
		return true
	}
	return false
}

// initialValue pre-fills the input with the answer given last time, if any.
func initialValue(q resolve.Question) string {
	if q.HasPrevious {
		return q.Previous
	}
	return ""
}

// finalValue substitutes the suggested default for an empty answer.
func finalValue(value string, q resolve.Question) string {
	if strings.TrimSpace(value) == "" && q.HasDefault {
		return q.Default
	}
	return value
}

func placeholder(q resolve.Question) string {
	if q.HasDefault {
		return q.Default
	}
	return q.Key
}

func describe(q resolve.Question) string {
	var lines []string
	if q.Description != "" {
		lines = append(lines, q.Description)
	}
	if q.HasDefault {
		lines = append(lines, fmt.Sprintf("Press enter to accept %q.", q.Default))
	}
	if q.Pattern != "" {
		lines = append(lines, fmt.Sprintf("Must match %s", q.Pattern))
	}
	return strings.Join(lines, "\n")
}

// validator rejects empty answers without a default and answers that do not
// match the property pattern.
func validator(q resolve.Question) func(string) error {
	prop := descriptor.Property{Key: q.Key, Pattern: q.Pattern}.Compiled()
	return func(s string) error {
		value := finalValue(s, q)
		if value == "" && !q.HasDefault {
			return errors.New("a value is required")
		}
		if !prop.Matches(value) {
			return fmt.Errorf("value must match %s", q.Pattern)
		}
		return nil
	}
}

// mapFormErr converts huh's abort into resolve.ErrUserAborted so the resolver
// and CLI do not need to know about huh.
func mapFormErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted):
		return resolve.ErrUserAborted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("prompt: %w", err)
	}
}
