package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	checkErr  error
	failPages map[int]bool
	pages     int
	delay     time.Duration
	mu        sync.Mutex
	dpis      []int
}

func (f *fakeRenderer) Name() string { return "fake-renderer" }

func (f *fakeRenderer) Check() error { return f.checkErr }

func (f *fakeRenderer) PageCount(string) (int, error) { return f.pages, nil }

func (f *fakeRenderer) RenderPage(ctx context.Context, _ string, page, dpi int) ([]byte, error) {
	f.mu.Lock()
	f.dpis = append(f.dpis, dpi)
	f.mu.Unlock()

	if f.failPages[page] {
		return nil, errors.New("render failed")
	}
	if f.delay > 0 {
		// Later pages finish first to exercise ordered reassembly.
		select {
		case <-time.After(f.delay / time.Duration(page)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []byte(fmt.Sprintf("image-%d", page)), nil
}

type fakeRecognizer struct {
	selfTestErr error
	hang        map[string]bool
	calls       atomic.Int32
}

func (f *fakeRecognizer) Name() string { return "fake-recognizer" }

func (f *fakeRecognizer) SelfTest(string) (string, error) {
	if f.selfTestErr != nil {
		return "", f.selfTestErr
	}
	return "5.3.0", nil
}

func (f *fakeRecognizer) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	f.calls.Add(1)
	if f.hang[string(image)] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return fmt.Sprintf("text of %s (%s)", image, language), nil
}

func TestEngine_ExtractKeepsPageOrder(t *testing.T) {
	renderer := &fakeRenderer{pages: 6, delay: 30 * time.Millisecond}
	engine := New(Config{Workers: 6, DPI: 150}, WithRenderer(renderer), WithRecognizer(&fakeRecognizer{}))
	require.True(t, engine.IsAvailable())

	pages, err := engine.Extract(context.Background(), "bundle.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 6)

	for i, p := range pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.Equal(t, fmt.Sprintf("text of image-%d (eng)", i+1), p.Text)
		assert.Equal(t, len([]rune(p.Text)), p.CharCount)
	}
	for _, dpi := range renderer.dpis {
		assert.Equal(t, 150, dpi)
	}
}

func TestEngine_PageFailureIsIsolated(t *testing.T) {
	renderer := &fakeRenderer{pages: 3, failPages: map[int]bool{2: true}}
	engine := New(Config{}, WithRenderer(renderer), WithRecognizer(&fakeRecognizer{}))

	pages, err := engine.Extract(context.Background(), "bundle.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.NotEmpty(t, pages[0].Text)
	assert.Empty(t, pages[1].Text)
	assert.Zero(t, pages[1].CharCount)
	assert.NotEmpty(t, pages[2].Text)
}

func TestEngine_PageTimeoutIsIsolated(t *testing.T) {
	renderer := &fakeRenderer{pages: 2}
	recognizer := &fakeRecognizer{hang: map[string]bool{"image-1": true}}
	engine := New(Config{PageTimeout: 20 * time.Millisecond}, WithRenderer(renderer), WithRecognizer(recognizer))

	pages, err := engine.Extract(context.Background(), "bundle.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Empty(t, pages[0].Text)
	assert.Equal(t, "text of image-2 (eng)", pages[1].Text)
}

func TestEngine_Unavailable(t *testing.T) {
	tests := []struct {
		name       string
		renderer   *fakeRenderer
		recognizer *fakeRecognizer
		reason     string
	}{
		{
			name:       "renderer missing",
			renderer:   &fakeRenderer{checkErr: errors.New("pdftoppm not found")},
			recognizer: &fakeRecognizer{},
			reason:     "pdftoppm not found",
		},
		{
			name:       "recognizer self-test fails",
			renderer:   &fakeRenderer{},
			recognizer: &fakeRecognizer{selfTestErr: errors.New("no trained data")},
			reason:     "no trained data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(Config{}, WithRenderer(tt.renderer), WithRecognizer(tt.recognizer))

			assert.False(t, engine.IsAvailable())
			assert.Contains(t, engine.Status().Reason, tt.reason)

			_, err := engine.Extract(context.Background(), "x.pdf")
			assert.ErrorIs(t, err, common.ErrUnavailable)
			assert.Zero(t, tt.recognizer.calls.Load())
		})
	}
}

func TestEngine_Canceled(t *testing.T) {
	renderer := &fakeRenderer{pages: 4, delay: time.Second}
	engine := New(Config{Workers: 1}, WithRenderer(renderer), WithRecognizer(&fakeRecognizer{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Extract(ctx, "x.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_StatusDefaults(t *testing.T) {
	engine := New(Config{}, WithRenderer(&fakeRenderer{}), WithRecognizer(&fakeRecognizer{}))
	status := engine.Status()

	assert.True(t, status.Available)
	assert.Equal(t, "5.3.0", status.Version)
	assert.Equal(t, 300, status.DPI)
	assert.Equal(t, "eng", status.Language)
	assert.Equal(t, 30*time.Second, status.PageTimeout)
	assert.Equal(t, "fake-renderer", status.Renderer)
	assert.Positive(t, status.Workers)
}
