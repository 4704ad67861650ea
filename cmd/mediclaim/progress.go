package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/nao1215/mediclaim/internal/upload"
)

const progressBarWidth = 30

// progressPrinter draws a single-line progress bar for an upload session.
// It is an upload.Observer and is called with the controller's lock held.
type progressPrinter struct {
	w      io.Writer
	active bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

// Observe implements upload.Observer.
func (p *progressPrinter) Observe(s upload.Session) {
	switch s.Phase {
	case upload.PhaseSubmitting, upload.PhaseAwaitingResult:
		p.active = true
		fmt.Fprintf(p.w, "\r%s %3d%% %-32s", progressBar(s.Progress), s.Progress, s.Stage)
	case upload.PhaseComplete:
		fmt.Fprintf(p.w, "\r%s %3d%% %-32s\n", progressBar(100), 100, "Done")
		p.active = false
	case upload.PhaseFailed:
		if p.active {
			fmt.Fprintln(p.w)
		}
		p.active = false
	}
}

func progressBar(percent int) string {
	percent = max(0, min(percent, 100))
	filled := percent * progressBarWidth / 100
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled) + "]"
}

// isTerminal reports whether w is a terminal. Anything that is not an
// *os.File, such as a test buffer, is not.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
