// Package export writes insurance card scans as CSV or XLSX spreadsheets.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"medvault/internal/domain"
)

// Format selects the spreadsheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps a query value to a Format; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Columns is the header row shared by both formats.
var Columns = []string{
	"Scan ID",
	"Status",
	"Review Status",
	"Provider",
	"Provider Confidence",
	"Member ID",
	"Group Number",
	"Plan Name",
	"Subscriber Name",
	"Phone Numbers",
	"RxBIN",
	"RxPCN",
	"RxGroup",
	"Parsed At",
	"Created At",
}

// ScanRow flattens a scan into one row, preferring user-confirmed data.
func ScanRow(scan *domain.CardScan) []string {
	card := scan.EffectiveCard()
	return []string{
		scan.ID.String(),
		string(scan.Status),
		string(scan.ReviewStatus),
		card.Provider.Name,
		string(card.Provider.Confidence),
		card.MemberID,
		card.GroupNumber,
		card.PlanName,
		card.SubscriberName,
		strings.Join(card.PhoneNumbers, "; "),
		card.RxBIN,
		card.RxPCN,
		card.RxGroup,
		formatTime(scan.ParsedAt),
		scan.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
	maxFilenameStem = 100
)

// BuildFilename returns a Content-Disposition-safe name such as
// "insurance_cards_2025-03-01.xlsx".
func BuildFilename(stem string, format Format, now time.Time) string {
	s := nonAlphanumeric.ReplaceAllString(stem, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxFilenameStem {
		s = s[:maxFilenameStem]
	}
	if s == "" {
		s = "export"
	}
	return fmt.Sprintf("%s_%s.%s", s, now.Format("2006-01-02"), format)
}
