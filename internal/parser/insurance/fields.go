package insurance

import (
	"regexp"
	"strings"
)

// idToken is the shape of a labeled identifier value.
const idToken = `([A-Z0-9][A-Z0-9\-]{5,})`

// idSep tolerates the punctuation OCR leaves between a label and its value.
const idSep = `[\s:#.\-]*`

var memberIDLabeled = []fieldPattern{
	{label: "member id", re: regexp.MustCompile(`(?i)\bmember\s*(?:id|#|number|num|no\.?)` + idSep + idToken)},
	{label: "member", re: regexp.MustCompile(`(?i)\bmember\s*[:#]` + idSep + idToken)},
	{label: "subscriber id", re: regexp.MustCompile(`(?i)\bsubscriber\s*(?:id|#|number|num|no\.?)` + idSep + idToken)},
	{label: "identification", re: regexp.MustCompile(`(?i)\bidentification\s*(?:number|num|no\.?|#)?` + idSep + idToken)},
	{
		label:    "id",
		re:       regexp.MustCompile(`(?i)\bid\s*(?:number|num|no\.?|#)?[\s:#.\-]+` + idToken),
		notAfter: []string{"group", "grp", "rx", "payer", "plan"},
	},
	{label: "policy", re: regexp.MustCompile(`(?i)\bpolicy\s*(?:number|num|no\.?|#|id)?` + idSep + idToken)},
}

// memberIDShapes recognise common unlabeled member identifier layouts.
// They are case-sensitive so ordinary words are not mistaken for IDs.
var memberIDShapes = []fieldPattern{
	{label: "prefix digits", re: regexp.MustCompile(`\b([A-Z]{3,4} ?\d{9,12})\b`)},
	{label: "letter digits", re: regexp.MustCompile(`\b([A-Z]\d{8,11})\b`)},
	{label: "dash groups", re: regexp.MustCompile(`\b([A-Z][A-Z0-9]{2,4}(?:-[A-Z0-9]{2,6}){2,3})\b`)},
}

func extractMemberID(s string) string {
	if v := firstAccepted(memberIDLabeled, s, acceptLabeledID); v != "" {
		return v
	}
	return firstAccepted(memberIDShapes, s, acceptStandaloneID)
}

func acceptLabeledID(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 6 || !hasDigit(v) {
		return ""
	}
	return strings.ToUpper(v)
}

func acceptStandaloneID(v string) string {
	v = strings.ToUpper(stripSpaces(v))
	if len(v) < 9 || !hasDigit(v) {
		return ""
	}
	return v
}

var groupNumberPatterns = []fieldPattern{
	{
		label:    "group number",
		re:       regexp.MustCompile(`(?i)\bgroup\s*(?:number|num|no\.?|#)` + idSep + `([A-Z0-9][A-Z0-9\-]{3,})`),
		notAfter: []string{"rx"},
	},
	{
		label:    "group",
		re:       regexp.MustCompile(`(?i)\b(?:employer\s+group|group|grp)\b\s*(?:id)?` + idSep + `([A-Z0-9][A-Z0-9\-]{3,})`),
		notAfter: []string{"rx"},
	},
	{label: "group digits", re: regexp.MustCompile(`(?i)\bgroup\s*:\s*(\d{4,})`)},
}

// groupLabelWords are words that follow "group" as part of a label, not a value.
var groupLabelWords = map[string]bool{
	"NAME":   true,
	"NUMBER": true,
	"PLAN":   true,
}

func extractGroupNumber(s string) string {
	return firstAccepted(groupNumberPatterns, s, func(v string) string {
		v = strings.ToUpper(strings.TrimSpace(v))
		if len(v) < 4 || groupLabelWords[v] {
			return ""
		}
		return v
	})
}

const planToken = `([A-Z0-9][A-Z0-9 .&/+\-]{2,})`

var planNamePatterns = []fieldPattern{
	{label: "plan type", re: regexp.MustCompile(`(?i)\b(PPO|HMO|EPO|POS|HDHP)\b`)},
	{label: "metal tier", re: regexp.MustCompile(`(?i)\b((?:gold|silver|bronze|platinum)(?:[ \t]*\d+)?)\b`)},
	{label: "plan", re: regexp.MustCompile(`(?i)\bplan\b(?:[ \t]+(?:name|type))?[ \t]*[:#\-]?[ \t]*` + planToken)},
	{label: "coverage", re: regexp.MustCompile(`(?i)\bcoverage[ \t]*:[ \t]*` + planToken)},
}

var planStopWords = map[string]bool{
	"the":  true,
	"and":  true,
	"for":  true,
	"plan": true,
	"code": true,
}

func extractPlanName(s string) string {
	return firstAccepted(planNamePatterns, s, func(v string) string {
		v = strings.TrimSpace(v)
		if len(v) < 3 || planStopWords[strings.ToLower(v)] {
			return ""
		}
		return v
	})
}

// nameLabel matches a subscriber label with an optional trailing "name".
const nameLabel = `\b(?i:subscriber|member|patient|name)(?:[ \t]+(?i:name))?[ \t]*[:\-]?[ \t]*`

var subscriberNamePatterns = []fieldPattern{
	{label: "labeled title case", re: regexp.MustCompile(nameLabel + `([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]*\.?)?[ \t]+[A-Z][a-z]+)`)},
	{label: "labeled upper case", re: regexp.MustCompile(nameLabel + `([A-Z][A-Z'\-]+(?:[ \t]+[A-Z][A-Z'.\-]*)+)`)},
	{label: "first initial last", re: regexp.MustCompile(`\b([A-Z][a-z]+[ \t]+[A-Z]\.[ \t]+[A-Z][a-z]+)\b`)},
}

// nameRejectPrefixes are phrases that look like names but are card boilerplate.
var nameRejectPrefixes = []string{
	"blue cross",
	"member id",
	"member services",
	"group",
	"subscriber",
	"insurance",
	"services",
	"customer",
	"health",
	"plan",
	"member",
	"name",
	"id ",
}

func extractSubscriberName(s string) string {
	return firstAccepted(subscriberNamePatterns, s, acceptName)
}

func acceptName(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	if len(v) < 5 || !strings.Contains(v, " ") || hasDigit(v) {
		return ""
	}
	lower := strings.ToLower(v)
	for _, p := range nameRejectPrefixes {
		if strings.HasPrefix(lower, p) {
			return ""
		}
	}
	return v
}

var (
	rxBINPattern   = regexp.MustCompile(`(?i)\b(?:rx[ \t]*bin|bin)\b[ \t]*(?:#|no\.?|number)?[ \t]*[:#]?\s*(\d{6})\b`)
	rxPCNPattern   = regexp.MustCompile(`(?i)\b(?:rx[ \t]*pcn|pcn)\b[ \t]*[:#]?\s*([A-Z0-9]{2,})`)
	rxGroupPattern = regexp.MustCompile(`(?i)\b(?:rx[ \t]*grp|rx[ \t]*group)\b[ \t]*(?:#|no\.?|number)?[ \t]*[:#]?\s*([A-Z0-9]{3,})`)
)
