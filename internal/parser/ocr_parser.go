package parser

import (
	"context"
	"fmt"
	"strings"

	"medvault/internal/domain"
	"medvault/internal/parser/insurance"
	"medvault/internal/port"
)

// ProviderOCR names the built-in provider that runs OCR and the card extractor.
const ProviderOCR = "ocr"

// OCRParser reads card images with an OCR engine and extracts fields from the
// recognised text. It implements port.CardParser.
type OCRParser struct {
	engine port.OCREngine
}

// NewOCRParser creates an OCRParser. engine may be nil, in which case only
// pre-extracted text can be parsed.
func NewOCRParser(engine port.OCREngine) *OCRParser {
	return &OCRParser{engine: engine}
}

func (p *OCRParser) Parse(ctx context.Context, input port.CardParseInput) (*port.CardParseOutput, error) {
	text := input.OCRText

	if input.HasImages() {
		if p.engine == nil {
			return nil, domain.ErrOCRUnavailable
		}
		var sides []string
		for _, img := range []*port.CardImage{input.Front, input.Back} {
			if img == nil {
				continue
			}
			recognized, err := p.engine.Recognize(ctx, img.Data)
			if err != nil {
				return nil, fmt.Errorf("recognizing card image: %w", err)
			}
			sides = append(sides, strings.TrimSpace(recognized))
		}
		text = strings.Join(sides, "\n")
	} else if strings.TrimSpace(text) == "" {
		return nil, domain.ErrNoCardImage
	}

	return &port.CardParseOutput{
		Card:      insurance.Parse(text),
		OCRText:   text,
		ModelUsed: ProviderOCR,
	}, nil
}
