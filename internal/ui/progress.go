package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Progress renders a one-line seconds counter while a stage waits on an
// external tool. On non-terminals it stays silent so redirected output and
// the session log are not filled with carriage returns.
type Progress struct {
	out  io.Writer
	tty  bool
	tick time.Duration
}

// NewProgress writes to f, enabling the live readout only when f is a terminal.
func NewProgress(f *os.File) *Progress {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return NewProgressWriter(f, tty)
}

// NewProgressWriter is NewProgress for an arbitrary writer.
func NewProgressWriter(w io.Writer, live bool) *Progress {
	return &Progress{out: w, tty: live, tick: time.Second}
}

// Wait blocks for d, until done is closed, or until ctx is cancelled.
// It returns ctx.Err() only for cancellation.
func (p *Progress) Wait(ctx context.Context, label string, d time.Duration, done <-chan struct{}) error {
	if d <= 0 {
		return ctx.Err()
	}
	total := int((d + time.Second - 1) / time.Second)
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	elapsed := 0
	p.render(label, elapsed, total)
	defer p.finish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		case <-timer.C:
			p.render(label, total, total)
			return nil
		case <-ticker.C:
			if elapsed < total {
				elapsed++
			}
			p.render(label, elapsed, total)
		}
	}
}

func (p *Progress) render(label string, elapsed, total int) {
	if !p.tty {
		return
	}
	fmt.Fprintf(p.out, "\r%s: %s seconds completed", label, color.CyanString("%d/%d", elapsed, total))
}

func (p *Progress) finish() {
	if p.tty {
		fmt.Fprintln(p.out)
	}
}
