package port

import (
	"context"

	"medvault/internal/domain"
)

// CardImage is one side of a photographed insurance card.
type CardImage struct {
	Data        []byte
	ContentType string
}

// CardParseInput carries card images, pre-extracted OCR text, or both.
type CardParseInput struct {
	Front   *CardImage
	Back    *CardImage
	OCRText string
}

// HasImages reports whether any card side was supplied.
func (in CardParseInput) HasImages() bool {
	return in.Front != nil || in.Back != nil
}

// CardParseOutput is the structured result of a card parse.
type CardParseOutput struct {
	Card            domain.ParsedInsuranceCard
	OCRText         string
	ModelUsed       string
	FieldProvenance map[string]string // which provider supplied each field (merge mode)
	SecondaryModel  string
}

// CardParser turns card images or OCR text into a structured card.
type CardParser interface {
	Parse(ctx context.Context, input CardParseInput) (*CardParseOutput, error)
}

// OCREngine recognises text in an image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
