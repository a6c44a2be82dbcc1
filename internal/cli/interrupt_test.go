package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{
			name:   "with custom writer",
			writer: &bytes.Buffer{},
		},
		{
			name:   "with nil writer",
			writer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer, "Ingest")
			require.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestHandleInterrupts_Interrupt(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		contains []string
		absent   []string
	}{
		{
			name:     "with hint",
			hint:     "Processed files are kept.",
			contains: []string{"Watch interrupted!", "Processed files are kept."},
		},
		{
			name:     "without hint",
			contains: []string{"Watch interrupted!"},
			absent:   []string{InfoIcon},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &syncBuffer{}
			handler := NewInterruptHandler(output, "Watch")

			ctx := handler.HandleInterrupts(context.Background(), tt.hint)
			handler.Interrupt()

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
				t.Fatal("context was not canceled")
			}

			assert.True(t, handler.WasInterrupted())
			for _, want := range tt.contains {
				assert.Contains(t, output.String(), want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, output.String(), unwanted)
			}
		})
	}
}

func TestInterrupt_MessageShownOnce(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Ingest")
	handler.HandleInterrupts(context.Background(), "")

	handler.Interrupt()
	first := output.String()
	handler.Interrupt()

	assert.Equal(t, first, output.String())
}

func TestHandleInterrupts_ParentCancel(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Ingest")

	parent, cancel := context.WithCancel(context.Background())
	ctx := handler.HandleInterrupts(parent, "")
	cancel()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}
