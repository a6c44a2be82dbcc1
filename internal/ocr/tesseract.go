package ocr

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer implements Recognizer using the gosseract client.
type TesseractRecognizer struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer constructs a Tesseract-backed recognizer.
func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{clientFactory: gosseract.NewClient}
}

// Name implements Recognizer.
func (t *TesseractRecognizer) Name() string { return "tesseract" }

// SelfTest implements Recognizer. It checks that the library answers and that
// trained data for the language is installed.
func (t *TesseractRecognizer) SelfTest(language string) (version string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tesseract self-test panicked: %v", r)
		}
	}()

	version = strings.TrimSpace(gosseract.Version())
	if version == "" {
		return "", fmt.Errorf("tesseract did not report a version")
	}

	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return version, fmt.Errorf("list languages: %w", err)
	}
	for _, lang := range strings.Split(language, "+") {
		if !slices.Contains(langs, lang) {
			return version, fmt.Errorf("trained data for %q not installed", lang)
		}
	}
	return version, nil
}

type recognition struct {
	err  error
	text string
}

// Recognize implements Recognizer. Tesseract calls cannot be interrupted, so the
// call runs in its own goroutine and is abandoned when ctx ends.
func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	done := make(chan recognition, 1)

	go func() {
		text, err := t.recognize(image, language)
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

func (t *TesseractRecognizer) recognize(image []byte, language string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tesseract panicked: %v", r)
		}
	}()

	c := t.clientFactory()
	defer func() { _ = c.Close() }()

	if err := c.SetLanguage(strings.Split(language, "+")...); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err = c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
