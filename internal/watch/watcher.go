// Package watch reports PDFs arriving in an inbox directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must be quiet before it is reported.
const DefaultSettle = 500 * time.Millisecond

// Op is the kind of change observed.
type Op string

// Operations reported by the watcher.
const (
	OpCreated  Op = "created"
	OpModified Op = "modified"
)

// Event is a settled change to a watched file.
type Event struct {
	Path string
	Op   Op
}

// Watcher watches one directory for files with the configured extensions.
type Watcher struct {
	fs         *fsnotify.Watcher
	logger     *slog.Logger
	extensions []string
	settle     time.Duration
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period before an event is reported. Zero reports
// every raw event immediately.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) { w.settle = d }
}

// New creates a watcher for extensions (default: .pdf). Extensions match
// case-insensitively.
func New(extensions []string, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if len(extensions) == 0 {
		extensions = []string{".pdf"}
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	w := &Watcher{
		fs:         fsw,
		logger:     common.OrDefault(logger),
		extensions: normalized,
		settle:     DefaultSettle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring dir. Bursts of writes to one file are coalesced into a
// single event once the file has been quiet for the settle period; a file created
// in the burst is reported as created. The channel closes when ctx ends or the
// watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", dir)
	}
	if err := w.fs.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan Event, 100)
	go w.loop(ctx, events)

	w.logger.Info("watching directory", "dir", dir, "extensions", w.extensions)
	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

type settled struct {
	path string
	gen  int
}

type pending struct {
	timer *time.Timer
	op    Op
	gen   int
}

func (w *Watcher) loop(ctx context.Context, out chan<- Event) {
	defer close(out)

	// done releases settle timers that fire after the loop has returned.
	done := make(chan struct{})
	defer close(done)

	ready := make(chan settled)
	waiting := make(map[string]*pending)
	defer func() {
		for _, p := range waiting {
			p.timer.Stop()
		}
	}()

	emit := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case raw, ok := <-w.fs.Events:
			if !ok {
				return
			}
			ev, ok := w.translate(raw)
			if !ok {
				continue
			}
			if w.settle <= 0 {
				if !emit(ev) {
					return
				}
				continue
			}

			p, exists := waiting[ev.Path]
			if !exists {
				p = &pending{op: ev.Op}
				waiting[ev.Path] = p
			} else {
				p.timer.Stop()
			}
			p.gen++
			s := settled{path: ev.Path, gen: p.gen}
			p.timer = time.AfterFunc(w.settle, func() {
				deliver(ctx, done, ready, s)
			})

		case s := <-ready:
			p, exists := waiting[s.path]
			if !exists || p.gen != s.gen {
				continue
			}
			delete(waiting, s.path)
			if !emit(Event{Path: s.path, Op: p.op}) {
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// deliver hands a settled path to the loop unless the loop or ctx has ended.
func deliver(ctx context.Context, done <-chan struct{}, ready chan<- settled, s settled) bool {
	select {
	case ready <- s:
		return true
	case <-done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (w *Watcher) translate(raw fsnotify.Event) (Event, bool) {
	if !w.watched(raw.Name) {
		return Event{}, false
	}
	switch {
	case raw.Has(fsnotify.Create):
		return Event{Path: raw.Name, Op: OpCreated}, true
	case raw.Has(fsnotify.Write):
		return Event{Path: raw.Name, Op: OpModified}, true
	default:
		return Event{}, false
	}
}

func (w *Watcher) watched(path string) bool {
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(path)))
}
