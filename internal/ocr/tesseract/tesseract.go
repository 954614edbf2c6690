//go:build tesseract

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"medvault/internal/config"
	"medvault/internal/port"
)

// Available reports whether this binary was built with Tesseract support.
const Available = true

// Engine implements port.OCREngine using the gosseract client.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
	dpi           int
}

// New constructs a Tesseract-backed OCR engine.
func New(cfg config.OCRConfig) (port.OCREngine, error) {
	return &Engine{
		clientFactory: gosseract.NewClient,
		languages:     cfg.Languages,
		dpi:           cfg.DPI,
	}, nil
}

// Recognize performs OCR on a single card image. A client is created per call
// since gosseract clients must not be shared between goroutines.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if e.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	// Cards are sparse blocks of text rather than paragraphs.
	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
