package parser

// BuildCardPrompt returns the extraction prompt for insurance card images.
// ocrText, when non-empty, is text already recognised from the card and is
// offered to the model as a hint.
func BuildCardPrompt(ocrText string) string {
	prompt := `You are a data extraction assistant for US health insurance cards. The images show the front and, when present, the back of one card.

Return ONLY valid JSON with no markdown formatting and no code fences. Use exactly this shape:
{
  "raw_text": "",
  "card": {
    "provider": {"name": "", "confidence": ""},
    "member_id": "",
    "group_number": "",
    "plan_name": "",
    "subscriber_name": "",
    "phone_numbers": [],
    "rx_bin": "",
    "rx_pcn": "",
    "rx_group": ""
  }
}

Rules:
- "raw_text" is a line-by-line transcription of all card text, front first, then back.
- provider.name is the insurance carrier. provider.confidence is "high" when the carrier name or logo is printed on the card, "low" when you are guessing, "none" when unknown.
- member_id, group_number, rx_pcn and rx_group are copied exactly as printed, upper-case, without spaces.
- rx_bin is exactly 6 digits.
- phone_numbers lists every phone number on the card as (NNN) NNN-NNNN, without duplicates.
- Use an empty string or empty list for anything not printed on the card. Never invent values.`

	if ocrText != "" {
		prompt += "\n\nText previously recognised from the card, which may contain OCR errors:\n" + ocrText
	}
	return prompt
}
