package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PopplerRenderer renders pages with poppler's pdftoppm and counts pages with pdfcpu.
type PopplerRenderer struct {
	binary string
}

// NewPopplerRenderer creates a renderer using the given pdftoppm binary.
func NewPopplerRenderer(binary string) *PopplerRenderer {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &PopplerRenderer{binary: binary}
}

// Name implements Renderer.
func (r *PopplerRenderer) Name() string { return "pdftoppm" }

// Check implements Renderer.
func (r *PopplerRenderer) Check() error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return fmt.Errorf("%s not found: %w", r.binary, err)
	}
	return nil
}

// PageCount implements Renderer.
func (r *PopplerRenderer) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu page count: %w", err)
	}
	return n, nil
}

// RenderPage implements Renderer. The image is written to stdout as a single PNG.
func (r *PopplerRenderer) RenderPage(ctx context.Context, path string, page, dpi int) ([]byte, error) {
	n := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, r.binary,
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", n,
		"-l", n,
		"-singlefile",
		path,
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("pdftoppm page %d: empty output", page)
	}
	return stdout.Bytes(), nil
}
