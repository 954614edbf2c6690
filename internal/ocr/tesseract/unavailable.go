//go:build !tesseract

// Package tesseract provides the Tesseract OCR engine. It needs cgo and the
// Tesseract libraries, so it is only compiled with the "tesseract" build tag.
package tesseract

import (
	"errors"

	"medvault/internal/config"
	"medvault/internal/port"
)

// Available reports whether this binary was built with Tesseract support.
const Available = false

// ErrNotCompiled is returned by New in builds without the tesseract tag.
var ErrNotCompiled = errors.New("tesseract support not compiled in (build with -tags tesseract)")

// New always fails in builds without the tesseract tag.
func New(_ config.OCRConfig) (port.OCREngine, error) {
	return nil, ErrNotCompiled
}
