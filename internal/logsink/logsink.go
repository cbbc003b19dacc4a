// Package logsink implements the single shared log sink every install
// writes through: an interface with one thread-safe concrete
// implementation, injected into components at construction rather than
// reached for as ambient state.
package logsink

import (
	"fmt"
	"io"
	"sync"
)

// Sink is the append-only log surface shared by every concurrent install.
// Push is the only mutating method and must be safe for concurrent use by
// many goroutines at once.
type Sink interface {
	Push(line string)
	Lines() []string
}

// memorySink is the one concrete Sink implementation: a mutex-guarded
// buffer plus an optional io.Writer for immediate flush.
type memorySink struct {
	mu     sync.Mutex
	lines  []string
	stream io.Writer
}

// New returns a Sink that flushes each pushed line to stream as it
// arrives, in addition to retaining it for Lines(). stream may be nil.
func New(stream io.Writer) Sink {
	return &memorySink{stream: stream}
}

// Push appends line as one atomic critical section: concurrent installs
// can never interleave partial lines.
func (s *memorySink) Push(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, line)
	if s.stream != nil {
		fmt.Fprintln(s.stream, line)
	}
}

// Lines returns a snapshot copy of every line pushed so far.
func (s *memorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Tagged formats a log line carrying a package name and pipeline step, so
// every line (progress or error) is attributable to the package and stage
// that produced it.
func Tagged(pkg, step, msg string) string {
	return fmt.Sprintf("[%s:%s] %s", pkg, step, msg)
}
