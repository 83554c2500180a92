package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the swap banner, coloured when the output supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"  ___ __      __ _   ___ ", "#34d399"},
		{" / __|\\ \\    / //_\\ | _ \\", "#2dd4bf"},
		{" \\__ \\ \\ \\/\\/ // _ \\|  _/", "#22d3ee"},
		{" |___/  \\_/\\_//_/ \\_\\_|  ", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colours a one-line status message: green for success, red for failure.
func Status(w io.Writer, ok bool, msg string) string {
	out := termenv.NewOutput(w)
	color := "#ef4444"
	if ok {
		color = "#22c55e"
	}
	return out.String(msg).Foreground(out.Color(color)).Bold().String()
}
