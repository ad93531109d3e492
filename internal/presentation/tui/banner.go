package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Weave banner with the version underneath.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct {
		text  string
		color string
	}{
		{" __      __", "#818cf8"},
		{" \\ \\    / /__ __ ___ _____", "#a78bfa"},
		{"  \\ \\/\\/ / -_) _` \\ V / -_)", "#c084fc"},
		{"   \\_/\\_/\\___\\__,_|\\_/\\___|", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("   "+version).Faint())
	fmt.Fprintln(w)
}
