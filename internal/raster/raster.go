// Package raster renders PDF pages to images for OCR.
package raster

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDPI is the rasterization density used when none is configured.
const DefaultDPI = 300

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return n, nil
}

// RenderPage rasterizes one page (1-based) of a PDF to PNG bytes at the
// given density. Rendering shells out to ImageMagick; 'magick'
// (ImageMagick 7) is preferred, with 'convert' (ImageMagick 6) as
// fallback.
func RenderPage(path string, pageNo, dpi int) ([]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	outFile := filepath.Join(os.TempDir(), fmt.Sprintf("page_%s.png", uuid.New().String()[:8]))
	defer os.Remove(outFile)

	args := renderArgs(path, pageNo, dpi, outFile)

	var cmd *exec.Cmd
	if _, err := exec.LookPath("magick"); err == nil {
		cmd = exec.Command("magick", args...)
	} else {
		cmd = exec.Command("convert", args...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to rasterize page %d: %v: %s", pageNo, err, stderr.String())
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page %d: %w", pageNo, err)
	}
	return data, nil
}

// renderArgs builds the ImageMagick invocation. ImageMagick page
// selectors are zero-based.
func renderArgs(path string, pageNo, dpi int, outFile string) []string {
	return []string{
		"-density", strconv.Itoa(dpi),
		fmt.Sprintf("%s[%d]", path, pageNo-1),
		"-background", "white",
		"-alpha", "remove",
		outFile,
	}
}
