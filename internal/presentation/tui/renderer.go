package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWidth = 80

// NewRenderer returns a function that renders markdown using glamour.
// Plain output (no ANSI) is used when colour is false.
func NewRenderer(width int, colour bool) (func(string) (string, error), error) {
	if width <= 0 {
		width = defaultWidth
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if colour {
		opts = append(opts, glamour.WithAutoStyle()) // Detect light/dark background
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or a default when unknown.
func Width(f *os.File) int {
	if !IsInteractive(f) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
