package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Printer provides methods for formatted console output
type Printer struct {
	writer io.Writer
	styles *Styles
	quiet  bool
}

// Styles holds lipgloss styles for console output
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Header  lipgloss.Style
	Subtle  lipgloss.Style
	Bold    lipgloss.Style
}

func colorStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true).Underline(true),
		Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

func plainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{Success: plain, Error: plain, Warning: plain, Info: plain, Header: plain, Subtle: plain, Bold: plain}
}

// NewPrinter creates a console printer. Styles are only applied when color is set.
func NewPrinter(writer io.Writer, color bool) *Printer {
	styles := plainStyles()
	if color {
		styles = colorStyles()
	}
	return &Printer{writer: writer, styles: styles}
}

// DefaultPrinter returns a printer for stdout, colored when stdout is a terminal
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout, IsTerminal(os.Stdout))
}

// ErrorPrinter returns a printer for stderr
func ErrorPrinter() *Printer {
	return NewPrinter(os.Stderr, IsTerminal(os.Stderr))
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of stdout, or fallback when unknown
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// SetQuiet suppresses success and info messages
func (p *Printer) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.writer, p.styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	fmt.Fprintln(p.writer, p.styles.Error.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	fmt.Fprintln(p.writer, p.styles.Warning.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.writer, p.styles.Info.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// Header prints a header message
func (p *Printer) Header(format string, args ...interface{}) {
	fmt.Fprintln(p.writer, p.styles.Header.Render(fmt.Sprintf(format, args...)))
}

// Println prints a normal message
func (p *Printer) Println(format string, args ...interface{}) {
	fmt.Fprintln(p.writer, fmt.Sprintf(format, args...))
}

// Subtle prints a subtle/dimmed message
func (p *Printer) Subtle(format string, args ...interface{}) {
	fmt.Fprintln(p.writer, p.styles.Subtle.Render(fmt.Sprintf(format, args...)))
}

// Table prints rows under a bold header. Widths are measured in cells so
// wide characters line up.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = p.styles.Bold.Render(padRight(h, widths[i]))
	}
	fmt.Fprintln(p.writer, strings.TrimRight(strings.Join(parts, "  "), " "))

	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(p.writer, p.styles.Subtle.Render(strings.Join(parts, "  ")))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts[i] = padRight(cell, widths[i])
		}
		fmt.Fprintln(p.writer, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
