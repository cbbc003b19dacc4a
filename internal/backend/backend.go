// Package backend dispatches to the external package tools — pacman, an
// AUR helper/makepkg, and flatpak — behind one small interface. The set of
// backends is closed and known in advance, so this is an internal
// convenience over a fixed set, not an open plugin surface.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/reap-dev/reap/internal/logsink"
)

// Name identifies one of the closed set of backends reap dispatches to.
type Name string

const (
	Pacman  Name = "pacman"
	Aur     Name = "aur"
	Flatpak Name = "flatpak"
)

// ExecError wraps a failed subprocess invocation with its exit code and a
// captured stderr tail, so a caller that only has an error can still
// report what failed and why.
type ExecError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %v exited %d: %s", e.Command, e.Args, e.ExitCode, e.Stderr)
}

// Backend runs a single named subprocess, tagging every streamed line with
// pkg before pushing it to sink.
type Backend interface {
	Name() Name
	Run(ctx context.Context, sink logsink.Sink, pkg, step string, dir string, args ...string) error
}

// lineWriter decorates every complete line written to it with "[pkg:step]"
// before pushing to sink, buffering partial lines until a '\n' arrives so
// a subprocess's output is never split mid-line.
type lineWriter struct {
	sink   logsink.Sink
	pkg    string
	step   string
	buffer []byte
}

func newLineWriter(sink logsink.Sink, pkg, step string) *lineWriter {
	return &lineWriter{sink: sink, pkg: pkg, step: step, buffer: make([]byte, 0, 256)}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.buffer = append(w.buffer, p...)

	for {
		idx := bytes.IndexByte(w.buffer, '\n')
		if idx == -1 {
			break
		}
		line := bytes.TrimRight(w.buffer[:idx], "\r")
		w.buffer = w.buffer[idx+1:]
		if len(line) > 0 {
			w.sink.Push(logsink.Tagged(w.pkg, w.step, string(line)))
		}
	}
	return n, nil
}

func (w *lineWriter) flush() {
	if len(w.buffer) > 0 {
		w.sink.Push(logsink.Tagged(w.pkg, w.step, string(w.buffer)))
		w.buffer = nil
	}
}

// execBackend is the one concrete Backend implementation: it shells out to
// a fixed command name, streaming stdout/stderr through a line-decorating
// writer into the shared sink.
type execBackend struct {
	name    Name
	command string
}

func newExecBackend(name Name, command string) Backend {
	return &execBackend{name: name, command: command}
}

// NewPacman returns the Backend that invokes pacman.
func NewPacman() Backend { return &execBackend{name: Pacman, command: "pacman"} }

// NewAur returns the Backend that invokes makepkg (the AUR build tool).
func NewAur() Backend { return &execBackend{name: Aur, command: "makepkg"} }

// NewFlatpak returns the Backend that invokes flatpak.
func NewFlatpak() Backend { return &execBackend{name: Flatpak, command: "flatpak"} }

func (b *execBackend) Name() Name { return b.name }

func (b *execBackend) Run(ctx context.Context, sink logsink.Sink, pkg, step, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, b.command, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	out := newLineWriter(sink, pkg, step)
	var stderrTail bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = &multiWriter{a: out, b: &stderrTail}

	start := time.Now()
	err := cmd.Run()
	out.flush()

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		sink.Push(logsink.Tagged(pkg, step, fmt.Sprintf("%s failed after %s", b.command, time.Since(start).Round(time.Millisecond))))
		return &ExecError{Command: b.command, Args: args, ExitCode: exitCode, Stderr: stderrTail.String()}
	}

	return nil
}

// multiWriter forwards every Write to both a and b, used so stderr is both
// streamed live through the decorated writer and captured verbatim for
// ExecError.Stderr.
type multiWriter struct {
	a, b io.Writer
}

func (m *multiWriter) Write(p []byte) (int, error) {
	if _, err := m.a.Write(p); err != nil {
		return 0, err
	}
	return m.b.Write(p)
}

// For dispatches to the Backend matching name, or (nil, false) if name
// does not name one of the three known backends.
func For(name Name) (Backend, bool) {
	switch name {
	case Pacman:
		return NewPacman(), true
	case Aur:
		return NewAur(), true
	case Flatpak:
		return NewFlatpak(), true
	default:
		return nil, false
	}
}
