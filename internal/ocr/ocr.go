// Package ocr selects the OCR engine used for card images.
package ocr

import (
	"fmt"
	"strings"

	"medvault/internal/config"
	"medvault/internal/ocr/tesseract"
	"medvault/internal/port"
)

// Engine names accepted in ocr.engine.
const (
	EngineNone      = "none"
	EngineTesseract = "tesseract"
)

// NewEngine returns the configured engine. It returns nil without error when
// OCR is disabled; image scans then depend on a vision-capable parser.
func NewEngine(cfg config.OCRConfig) (port.OCREngine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", EngineNone:
		return nil, nil
	case EngineTesseract:
		engine, err := tesseract.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("ocr engine %s: %w", cfg.Engine, err)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine: %s", cfg.Engine)
	}
}
