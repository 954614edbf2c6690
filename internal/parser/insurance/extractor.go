// Package insurance extracts structured fields from the OCR text of a health
// insurance card.
//
// Extraction is heuristic and order-sensitive: every field owns an ordered
// table of patterns, and the first pattern (and within it, the first match
// from the left) that passes the field's acceptance rule decides the value.
// Fields are extracted independently of one another. Parse never fails; a
// field with no acceptable match is left empty.
package insurance

import (
	"regexp"
	"strings"
	"unicode"

	"medvault/internal/domain"
)

// fieldPattern is one entry of an ordered extraction table. The first
// submatch of re carries the value.
type fieldPattern struct {
	label string
	re    *regexp.Regexp
	// notAfter skips matches whose preceding text (lower-cased, trailing
	// blanks removed) ends with one of these words.
	notAfter []string
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// text holds the views of the OCR input that the field extractors work on.
type text struct {
	// cleaned is single-spaced, pipe-free, lower-case; used for provider lookup.
	cleaned string
	// lines are the trimmed, non-empty input lines.
	lines []string
	// original is lines joined by newlines with case preserved.
	original string
}

func normalize(ocrText string) text {
	cleaned := strings.ReplaceAll(ocrText, "|", "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))

	var lines []string
	for _, line := range strings.Split(ocrText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return text{
		cleaned:  cleaned,
		lines:    lines,
		original: strings.Join(lines, "\n"),
	}
}

// Parse extracts card fields from raw OCR text. The text is typically the
// front and back of a card joined by a newline. Parse is safe for concurrent
// use and always returns a fully populated record.
func Parse(ocrText string) domain.ParsedInsuranceCard {
	t := normalize(ocrText)

	card := domain.NewParsedInsuranceCard()
	card.Provider = detectProvider(t)
	card.MemberID = extractMemberID(t.original)
	card.GroupNumber = extractGroupNumber(t.original)
	card.PlanName = extractPlanName(t.original)
	card.SubscriberName = extractSubscriberName(t.original)
	card.PhoneNumbers = extractPhoneNumbers(t.original)
	card.RxBIN = firstCapture(rxBINPattern, t.original)
	card.RxPCN = strings.ToUpper(firstCapture(rxPCNPattern, t.original))
	card.RxGroup = strings.ToUpper(firstCapture(rxGroupPattern, t.original))
	return card
}

// firstAccepted walks patterns in order and returns the first capture for
// which accept returns a non-empty value.
func firstAccepted(patterns []fieldPattern, s string, accept func(string) string) string {
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(s, -1) {
			if len(m) < 4 || m[2] < 0 {
				continue
			}
			if precededBy(s[:m[0]], p.notAfter) {
				continue
			}
			if v := accept(s[m[2]:m[3]]); v != "" {
				return v
			}
		}
	}
	return ""
}

func precededBy(prefix string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	prefix = strings.ToLower(strings.TrimRight(prefix, " \t"))
	for _, w := range words {
		if strings.HasSuffix(prefix, w) {
			return true
		}
	}
	return false
}

func firstCapture(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
