package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, events <-chan Event, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-events:
		return ev, ok
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestNew_NormalizesExtensions(t *testing.T) {
	w, err := New([]string{"PDF", ".Tiff"}, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Equal(t, []string{".pdf", ".tiff"}, w.extensions)
	assert.True(t, w.watched("/inbox/BUNDLE.PDF"))
	assert.False(t, w.watched("/inbox/notes.txt"))

	def, err := New(nil, nil)
	require.NoError(t, err)
	defer func() { _ = def.Close() }()
	assert.Equal(t, []string{".pdf"}, def.extensions)
	assert.Equal(t, DefaultSettle, def.settle)
}

func TestWatcher_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{".pdf"}, nil, WithSettle(100*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "bundle.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.WriteString("%PDF-1.4 chunk\n")
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	ev, ok := next(t, events, 3*time.Second)
	require.True(t, ok, "expected an event")
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, OpCreated, ev.Op)

	_, ok = next(t, events, 300*time.Millisecond)
	assert.False(t, ok, "writes should be coalesced and other extensions ignored")
}

func TestWatcher_Immediate(t *testing.T) {
	dir := t.TempDir()
	w, err := New(nil, nil, WithSettle(0))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	ev, ok := next(t, events, 3*time.Second)
	require.True(t, ok)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, OpCreated, ev.Op)
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	w, err := New(nil, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx, t.TempDir())
	require.NoError(t, err)

	cancel()
	_, ok := next(t, events, 2*time.Second)
	assert.False(t, ok)
}

func TestWatcher_RejectsNonDirectory(t *testing.T) {
	w, err := New(nil, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	file := filepath.Join(t.TempDir(), "file.pdf")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err = w.Watch(context.Background(), file)
	assert.Error(t, err)

	_, err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDeliver_ReturnsOnceLoopEnds(t *testing.T) {
	done := make(chan struct{})
	ready := make(chan settled)
	close(done)

	returned := make(chan bool, 1)
	go func() { returned <- deliver(context.Background(), done, ready, settled{path: "a.pdf", gen: 1}) }()

	select {
	case ok := <-returned:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("deliver blocked after the loop ended")
	}
}

func TestDeliver_HandsOff(t *testing.T) {
	ready := make(chan settled, 1)

	ok := deliver(context.Background(), make(chan struct{}), ready, settled{path: "a.pdf", gen: 2})
	require.True(t, ok)
	assert.Equal(t, settled{path: "a.pdf", gen: 2}, <-ready)
}

func TestWatcher_CloseWithPendingFile(t *testing.T) {
	dir := t.TempDir()
	w, err := New(nil, nil, WithSettle(50*time.Millisecond))
	require.NoError(t, err)

	events, err := w.Watch(context.Background(), dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.pdf"), []byte("%PDF"), 0o600))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, w.Close())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after Close")
		}
	}
}
