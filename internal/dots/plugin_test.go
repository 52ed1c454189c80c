package dots

import (
	"io"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/ariel-frischer/progressdots/internal/lifecycle"
	"github.com/ariel-frischer/progressdots/internal/output"
	"github.com/ariel-frischer/progressdots/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter keeps every Write call separately so tests can assert on
// the exact sequence of writes.
type recordingWriter struct {
	mu       sync.Mutex
	writes   []string
	err      error
	flushErr error
	flushes  int
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return 0, w.err
	}
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func (w *recordingWriter) Writes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.writes...)
}

func (w *recordingWriter) count(s string) int {
	n := 0
	for _, got := range w.Writes() {
		if got == s {
			n++
		}
	}
	return n
}

// flushingWriter additionally implements Flush.
type flushingWriter struct {
	recordingWriter
}

func (w *flushingWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushes++
	return w.flushErr
}

func newTestPlugin(t *testing.T, stdout, stderr *recordingWriter, opts Options) *Plugin {
	t.Helper()
	return newPluginWithWriters(t, stdout, stderr, false, opts)
}

func newPluginWithWriters(t *testing.T, stdout, stderr io.Writer, color bool, opts Options) *Plugin {
	t.Helper()
	console, err := output.NewTerminal(output.TerminalConfig{
		Stdout:  stdout,
		Stderr:  stderr,
		Color:   color,
		Charset: "utf-8",
	})
	require.NoError(t, err)
	p, err := New(console, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil console", func(t *testing.T) {
		t.Parallel()
		_, err := New(nil, Options{})
		assert.Error(t, err)
	})

	t.Run("negative interval", func(t *testing.T) {
		t.Parallel()
		console, err := output.NewTerminal(output.TerminalConfig{Charset: "utf-8"})
		require.NoError(t, err)
		_, err = New(console, Options{Interval: -time.Second})
		assert.ErrorIs(t, err, timer.ErrInvalidInterval)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		p := newTestPlugin(t, &recordingWriter{}, &recordingWriter{}, Options{})
		assert.Equal(t, timer.DefaultInterval, p.Options().Interval)
		assert.Equal(t, DefaultDot, p.Options().Dot)
		assert.False(t, p.Running())
	})
}

func TestDisplayTerminatesCarriedLine(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{})

	require.NoError(t, p.Display("x", output.DisplayOptions{Partial: true}))
	require.NoError(t, p.Display("y", output.DisplayOptions{Partial: true}))

	carried, ok := p.Carried()
	assert.True(t, ok)
	assert.Equal(t, "xy", carried)

	require.NoError(t, p.Display("z", output.DisplayOptions{}))

	assert.Equal(t, []string{"x", "y", "\n", "z\n"}, stdout.Writes())
	_, ok = p.Carried()
	assert.False(t, ok)
}

func TestDisplayWithoutCarriedLine(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{})

	require.NoError(t, p.Display("a", output.DisplayOptions{}))
	require.NoError(t, p.Display("", output.DisplayOptions{}))

	assert.Equal(t, []string{"a\n", "\n"}, stdout.Writes())
}

func TestDisplayToStderrFlushesCarriedLineOnStdout(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	stderr := &recordingWriter{}
	p := newTestPlugin(t, stdout, stderr, Options{})

	require.NoError(t, p.Display(".", output.DisplayOptions{Partial: true}))
	require.NoError(t, p.Display("boom", output.DisplayOptions{Stream: output.Stderr}))

	assert.Equal(t, []string{".", "\n"}, stdout.Writes())
	assert.Equal(t, []string{"boom\n"}, stderr.Writes())
}

func TestDisplayCarriesUncoloredText(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newPluginWithWriters(t, stdout, &recordingWriter{}, true, Options{})

	require.NoError(t, p.Display("ok", output.DisplayOptions{Color: "green", Partial: true}))

	carried, _ := p.Carried()
	assert.Equal(t, "ok", carried)

	writes := stdout.Writes()
	require.Len(t, writes, 1)
	assert.NotEqual(t, "ok", writes[0])
	assert.Contains(t, writes[0], "ok")
	assert.False(t, strings.HasSuffix(writes[0], "\n"))
}

func TestDisplayReplacesInvalidText(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{})

	require.NoError(t, p.Display("a\xffb", output.DisplayOptions{}))
	assert.Equal(t, []string{"a�b\n"}, stdout.Writes())
}

func TestDisplayWriteErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		writeErr error
		flushErr error
		wantErr  error
	}{
		"broken pipe on write is ignored": {
			writeErr: syscall.EPIPE,
		},
		"broken pipe on flush is ignored": {
			flushErr: syscall.EPIPE,
		},
		"other write error propagates": {
			writeErr: syscall.ENOSPC,
			wantErr:  syscall.ENOSPC,
		},
		"other flush error propagates": {
			flushErr: syscall.EIO,
			wantErr:  syscall.EIO,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stdout := &flushingWriter{}
			stdout.err = tt.writeErr
			stdout.flushErr = tt.flushErr
			p := newPluginWithWriters(t, stdout, &recordingWriter{}, false, Options{})

			err := p.Display("x", output.DisplayOptions{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDisplayFlushesWriter(t *testing.T) {
	t.Parallel()

	stdout := &flushingWriter{}
	p := newPluginWithWriters(t, stdout, &recordingWriter{}, false, Options{})

	require.NoError(t, p.Display("x", output.DisplayOptions{}))
	assert.Equal(t, 1, stdout.flushes)
}

func TestOnPlayStartTerminatesCarriedLineOnce(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{})

	require.NoError(t, p.Display(".", output.DisplayOptions{Partial: true}))

	require.NoError(t, p.OnPlayStart(lifecycle.Play{Name: "web"}))
	assert.Equal(t, []string{".", "\n"}, stdout.Writes())
	_, ok := p.Carried()
	assert.False(t, ok)

	require.NoError(t, p.OnPlayStart(lifecycle.Play{Name: "db"}))
	assert.Equal(t, []string{".", "\n"}, stdout.Writes(), "nothing carried, nothing written")
}

func TestOnStatsTerminatesCarriedLine(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{})

	require.NoError(t, p.OnStats(lifecycle.NewStats()))
	assert.Empty(t, stdout.Writes())

	require.NoError(t, p.Display("..", output.DisplayOptions{Partial: true}))
	require.NoError(t, p.OnStats(lifecycle.NewStats()))
	assert.Equal(t, []string{"..", "\n"}, stdout.Writes())
}

func TestOnPlayStartStopsTimer(t *testing.T) {
	t.Parallel()

	p := newTestPlugin(t, &recordingWriter{}, &recordingWriter{}, Options{Interval: time.Hour})

	require.NoError(t, p.OnTaskStart(lifecycle.Task{Name: "t"}))
	assert.True(t, p.Running())

	require.NoError(t, p.OnPlayStart(lifecycle.Play{Name: "p"}))
	assert.False(t, p.Running())
}

func TestOnStatsLeavesTimerRunning(t *testing.T) {
	t.Parallel()

	p := newTestPlugin(t, &recordingWriter{}, &recordingWriter{}, Options{Interval: time.Hour})

	require.NoError(t, p.OnTaskStart(lifecycle.Task{Name: "t"}))
	require.NoError(t, p.OnStats(lifecycle.NewStats()))
	assert.True(t, p.Running())

	require.NoError(t, p.Close())
	assert.False(t, p.Running())
}

func TestPrintDotUsesConfiguredDot(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{Dot: "#"})

	p.PrintDot()
	p.PrintDot()

	assert.Equal(t, []string{"#", "#"}, stdout.Writes())
	carried, ok := p.Carried()
	assert.True(t, ok)
	assert.Equal(t, "##", carried)
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	const interval = 60 * time.Millisecond
	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{Interval: interval})

	require.NoError(t, p.OnTaskStart(lifecycle.Task{Name: "first"}))
	assert.Empty(t, stdout.Writes(), "no dot before the first interval")

	require.Eventually(t, func() bool { return stdout.count(".") == 1 }, 2*time.Second, 2*time.Millisecond)

	// a new task replaces the timer; the old one never fires again and the
	// new one starts a fresh wait
	require.NoError(t, p.OnTaskStart(lifecycle.Task{Name: "second"}))
	time.Sleep(interval / 3)
	assert.Equal(t, 1, stdout.count("."))

	require.Eventually(t, func() bool { return stdout.count(".") >= 2 }, 2*time.Second, 2*time.Millisecond)

	require.NoError(t, p.Close())
	require.NoError(t, p.OnStats(lifecycle.NewStats()))

	writes := stdout.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, "\n", writes[len(writes)-1], "stats terminate the dotted line")
	_, ok := p.Carried()
	assert.False(t, ok)
}

func TestBackgroundWriteErrorIsDeferred(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{err: syscall.ENOSPC}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{Interval: 5 * time.Millisecond})

	require.NoError(t, p.OnTaskStart(lifecycle.Task{Name: "t"}))
	time.Sleep(30 * time.Millisecond)

	err := p.Close()
	assert.ErrorIs(t, err, syscall.ENOSPC)
	assert.NoError(t, p.Close(), "the deferred error is reported once")
}

func TestConcurrentDisplay(t *testing.T) {
	t.Parallel()

	stdout := &recordingWriter{}
	p := newTestPlugin(t, stdout, &recordingWriter{}, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.PrintDot()
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Display("line", output.DisplayOptions{}))
		}()
	}
	wg.Wait()

	// a terminated line never directly follows a dot
	writes := stdout.Writes()
	for i := 1; i < len(writes); i++ {
		if writes[i] == "line\n" {
			assert.NotEqual(t, ".", writes[i-1], "write %d follows a dot without a newline", i)
		}
	}
	assert.Equal(t, 20, stdout.count("line\n"))
	assert.Equal(t, 20, stdout.count("."))
}
