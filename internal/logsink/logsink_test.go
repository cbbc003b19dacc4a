package logsink

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushAndLines(t *testing.T) {
	sink := New(nil)
	sink.Push("line one")
	sink.Push("line two")

	require.Equal(t, []string{"line one", "line two"}, sink.Lines())
}

func TestPushStreamsToWriter(t *testing.T) {
	var buf bytes.Buffer
	sink := New(&buf)

	sink.Push("hello")

	assert.Equal(t, "hello\n", buf.String())
}

// TestPushConcurrentAtomicity is the P8 regression test: N goroutines each
// push one line; the sink must end up with exactly N lines, none
// truncated or merged, when run with -race.
func TestPushConcurrentAtomicity(t *testing.T) {
	sink := New(nil)
	const n = 200

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			sink.Push(Tagged("pkg", "build", "a line of build output"))
		}(i)
	}
	wg.Wait()

	lines := sink.Lines()
	require.Len(t, lines, n)
	for _, l := range lines {
		assert.Equal(t, "[pkg:build] a line of build output", l)
	}
}

func TestTagged(t *testing.T) {
	assert.Equal(t, "[foo:build] compiling", Tagged("foo", "build", "compiling"))
}
