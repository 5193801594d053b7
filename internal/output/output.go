// Package output renders sweep's terminal output: status labels, the
// search spinner, summary tables and the confirmation prompt. Colour and
// animation are used only when writing to a terminal.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const (
	labelWidth   = 12
	defaultWidth = 80
)

// Status labels.
const (
	LabelSearching = "Searching"
	LabelSearched  = "Searched"
	LabelAnalysed  = "Analysed"
	LabelRemoved   = "Removed"
	LabelWould     = "Would remove"
	LabelWarning   = "Warning"
	LabelError     = "Error"
)

var (
	clrAccent  = lipgloss.Color("#5FAFD7")
	clrSuccess = lipgloss.Color("#87D787")
	clrWarning = lipgloss.Color("#FFAF5F")
	clrError   = lipgloss.Color("#FF5F5F")
	clrMuted   = lipgloss.Color("#8A8A8A")
)

// Printer writes status output.
type Printer struct {
	out   io.Writer
	file  *os.File
	in    *bufio.Reader
	tty   bool
	width int

	mu      sync.Mutex
	spinner *spinner.Spinner
}

// New creates a Printer. Colour, the spinner and width detection are
// enabled when out is a terminal.
func New(out io.Writer, in io.Reader) *Printer {
	p := &Printer{out: out, in: bufio.NewReader(in), width: defaultWidth}

	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		p.tty = true
		p.file = f
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			p.width = w
		}
	}
	return p
}

// IsTerminal reports whether output goes to a terminal.
func (p *Printer) IsTerminal() bool {
	return p.tty
}

func (p *Printer) style(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func (p *Printer) render(c lipgloss.Color, bold bool, s string) string {
	if !p.tty {
		return s
	}
	return p.style(c).Bold(bold).Render(s)
}

// formatLabel right-aligns label in a fixed column so messages line up.
func (p *Printer) formatLabel(label string, c lipgloss.Color) string {
	padded := fmt.Sprintf("%*s", labelWidth, label)
	return p.render(c, true, padded)
}

func (p *Printer) line(label string, c lipgloss.Color, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", p.formatLabel(label, c), msg)
}

// Status prints msg after a right-aligned label.
func (p *Printer) Status(label, msg string) {
	p.line(label, clrAccent, msg)
}

// Success prints a label in the success colour.
func (p *Printer) Success(label, msg string) {
	p.line(label, clrSuccess, msg)
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	p.line(LabelWarning, clrWarning, msg)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	p.line(LabelError, clrError, msg)
}

// Muted prints an indented secondary line.
func (p *Printer) Muted(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%*s %s\n", labelWidth, "", p.render(clrMuted, false, msg))
}

// Path shortens path to fit the terminal after a label column.
func (p *Printer) Path(path string) string {
	return ElidePath(path, p.width-labelWidth-2)
}

// StartSpinner shows a spinner with msg on terminals. Elsewhere it prints
// msg once as a status line.
func (p *Printer) StartSpinner(msg string) {
	if !p.tty {
		p.Status(LabelSearching, msg)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriterFile(p.file))
	p.spinner.Color("yellow") //nolint:errcheck
	p.spinner.Prefix = p.formatLabel(LabelSearching, clrAccent) + " "
	p.spinner.Suffix = " " + msg
	p.spinner.Start()
}

// UpdateSpinner replaces the spinner message.
func (p *Printer) UpdateSpinner(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.Lock()
		p.spinner.Suffix = " " + msg
		p.spinner.Unlock()
	}
}

// StopSpinner stops the spinner if one is running.
func (p *Printer) StopSpinner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}

// Confirm asks whether to delete n directories. Any answer containing a
// y proceeds.
func (p *Printer) Confirm(n int) (bool, error) {
	p.mu.Lock()
	fmt.Fprintf(p.out, "\n%s ", p.render(clrWarning, true,
		fmt.Sprintf("Permanently delete these %d directories? (y/n)", n)))
	p.mu.Unlock()

	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	return strings.Contains(strings.ToLower(answer), "y"), nil
}

// ElidePath shortens path to at most max runes by replacing its middle
// with "...". The start and the final element stay readable.
func ElidePath(path string, max int) string {
	runes := []rune(path)
	if max <= 0 || len(runes) <= max {
		return path
	}
	if max <= 3 {
		return string(runes[len(runes)-max:])
	}

	keep := max - 3
	head := keep / 3
	tail := keep - head
	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}
