package assistant

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	youStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	aiStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Printer handles all terminal output for a session
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *glamour.TermRenderer
}

// NewPrinter creates a printer writing to stdout, sized to the
// terminal when there is one
func NewPrinter() *Printer {
	width := 80
	if termWidth, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && termWidth > 0 {
		width = termWidth
	}

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)

	return &Printer{out: os.Stdout, renderer: renderer}
}

// You prints the transcribed user utterance
func (p *Printer) You(transcript string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, youStyle.Render("You:"))
	fmt.Fprintln(p.out, transcript)
}

// AILabel prints the assistant label once per response
func (p *Printer) AILabel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, aiStyle.Render("AI:"))
}

// Token prints a streamed response token in place
func (p *Printer) Token(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, token)
}

// EndResponse terminates the streamed response line
func (p *Printer) EndResponse() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)
}

// Notice prints a dim informational line
func (p *Printer) Notice(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, noticeStyle.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints an error line
func (p *Printer) Errorf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Markdown renders a complete (non-streamed) message as markdown, for
// follow-up announcements and reports
func (p *Printer) Markdown(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.renderer != nil {
		if rendered, err := p.renderer.Render(content); err == nil {
			fmt.Fprint(p.out, rendered)
			return
		}
	}
	fmt.Fprintln(p.out, strings.TrimSpace(content))
}
