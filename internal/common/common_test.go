package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	logger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestUserError(t *testing.T) {
	base := errors.New("boom")
	err := NewUserError("could not read shipment file", base)

	assert.Equal(t, "could not read shipment file: boom", err.Error())
	assert.ErrorIs(t, err, base)

	var ue *UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "could not read shipment file", ue.UserMessage)
}

func TestUnavailableAndMalformed(t *testing.T) {
	assert.ErrorIs(t, Unavailable("tesseract", "not installed"), ErrUnavailable)
	assert.ErrorIs(t, Malformed("ai response", errors.New("eof")), ErrMalformedInput)
	assert.ErrorIs(t, Malformed("pdf", nil), ErrMalformedInput)
}
