package insurance

import (
	"fmt"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`(?:\b1[ .\-]?)?(?:\(\d{3}\)|\b\d{3})[ .\-]?\d{3}[ .\-]?\d{4}\b`)

func extractPhoneNumbers(s string) []string {
	phones := []string{}
	seen := make(map[string]bool)
	for _, m := range phonePattern.FindAllString(s, -1) {
		p, ok := FormatPhone(m)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		phones = append(phones, p)
	}
	return phones
}

// FormatPhone renders a North American number as "(NNN) NNN-NNNN". A leading
// country code 1 is dropped. ok is false when s does not hold exactly ten
// digits after that.
func FormatPhone(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:]), true
}

// NormalizePhones formats and de-duplicates user-supplied numbers, keeping
// entries that cannot be formatted as they were given.
func NormalizePhones(in []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, raw := range in {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, ok := FormatPhone(raw)
		if !ok {
			p = raw
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
