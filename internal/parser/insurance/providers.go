package insurance

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"medvault/internal/domain"
)

// carrier is a display name plus the lower-case substrings that identify it.
// abbrevs are short forms that must start a word, so "uhc" does not fire
// inside "schuhcraft".
type carrier struct {
	name     string
	patterns []string
	abbrevs  []string
}

// knownCarriers is searched in order. Blue Cross licensees come before the
// generic Blue Cross Blue Shield entry so their specific name wins.
var knownCarriers = []carrier{
	{name: "Anthem Blue Cross Blue Shield", patterns: []string{"anthem"}},
	{name: "Highmark Blue Cross Blue Shield", patterns: []string{"highmark"}},
	{name: "Florida Blue", patterns: []string{"florida blue"}},
	{name: "Horizon Blue Cross Blue Shield", patterns: []string{"horizon bcbs", "horizon blue"}},
	{name: "CareFirst Blue Cross Blue Shield", patterns: []string{"carefirst"}},
	{name: "Regence Blue Cross Blue Shield", patterns: []string{"regence"}},
	{name: "Premera Blue Cross", patterns: []string{"premera"}},
	{name: "Independence Blue Cross", patterns: []string{"independence blue"}, abbrevs: []string{"ibx"}},
	{name: "Wellmark Blue Cross Blue Shield", patterns: []string{"wellmark"}},
	{name: "Excellus Blue Cross Blue Shield", patterns: []string{"excellus"}},
	{name: "Blue Cross Blue Shield", patterns: []string{"blue cross", "bluecross", "blue shield", "blueshield", "bcbs"}},
	{name: "UnitedHealthcare", patterns: []string{"unitedhealthcare", "united healthcare", "united health care"}, abbrevs: []string{"uhc"}},
	{name: "Aetna", patterns: []string{"aetna"}},
	{name: "Cigna", patterns: []string{"cigna"}},
	{name: "Humana", patterns: []string{"humana"}},
	{name: "Kaiser Permanente", patterns: []string{"kaiser"}},
	{name: "Ambetter", patterns: []string{"ambetter"}},
	{name: "Molina Healthcare", patterns: []string{"molina"}},
	{name: "WellCare", patterns: []string{"wellcare"}},
	{name: "Oscar Health", patterns: []string{"oscar health", "hioscar"}},
	{name: "Health Net", patterns: []string{"health net", "healthnet"}},
	{name: "Amerigroup", patterns: []string{"amerigroup"}},
	{name: "Harvard Pilgrim", patterns: []string{"harvard pilgrim"}},
	{name: "Tufts Health Plan", patterns: []string{"tufts"}},
	{name: "EmblemHealth", patterns: []string{"emblemhealth", "emblem health"}},
	{name: "CareSource", patterns: []string{"caresource"}},
	{name: "Tricare", patterns: []string{"tricare"}},
	{name: "Medicare", patterns: []string{"medicare"}},
	{name: "Medicaid", patterns: []string{"medicaid"}},
}

// numericLine matches lines made only of digits and whitespace.
var numericLine = regexp.MustCompile(`^[\d\s]+$`)

// fallbackMinLen is the length a line must exceed to be used as a provider name.
const fallbackMinLen = 5

func detectProvider(t text) domain.CardProvider {
	for _, c := range knownCarriers {
		for _, p := range c.patterns {
			if strings.Contains(t.cleaned, p) {
				return domain.CardProvider{Name: c.name, Confidence: domain.ConfidenceHigh}
			}
		}
		for _, a := range c.abbrevs {
			if containsAtWordStart(t.cleaned, a) {
				return domain.CardProvider{Name: c.name, Confidence: domain.ConfidenceHigh}
			}
		}
	}

	for _, line := range t.lines {
		if utf8.RuneCountInString(line) > fallbackMinLen && !numericLine.MatchString(line) {
			return domain.CardProvider{Name: line, Confidence: domain.ConfidenceLow}
		}
	}

	return domain.CardProvider{Confidence: domain.ConfidenceNone}
}

// KnownCarrierNames lists every carrier the extractor can name with high confidence.
func KnownCarrierNames() []string {
	names := make([]string, 0, len(knownCarriers))
	for _, c := range knownCarriers {
		names = append(names, c.name)
	}
	return names
}

// containsAtWordStart reports whether pattern occurs in s starting at a word
// boundary. Trailing text may continue, so "uhc" still matches "uhcprovider.com".
func containsAtWordStart(s, pattern string) bool {
	for i := 0; i+len(pattern) <= len(s); {
		j := strings.Index(s[i:], pattern)
		if j < 0 {
			return false
		}
		at := i + j
		if at == 0 || !isWordByte(s[at-1]) {
			return true
		}
		i = at + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
