package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Asker reads answers from a terminal without blocking past cancellation.
type Asker struct {
	reader  *bufio.Reader
	writer  io.Writer
	reading sync.Mutex
}

// NewAsker creates an Asker reading from r and prompting on w.
func NewAsker(r io.Reader, w io.Writer) *Asker {
	return &Asker{reader: bufio.NewReader(r), writer: w}
}

// Ask prints prompt and returns the trimmed line typed in reply.
func (a *Asker) Ask(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(a.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		a.reading.Lock()
		defer a.reading.Unlock()
		value, err := a.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		// The read goroutine finishes on its own when input arrives.
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.value != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (a *Asker) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := a.Ask(ctx, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
