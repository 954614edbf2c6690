package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"medvault/internal/port"
)

// SourceConditions is the route name of the conditions source.
const SourceConditions = "conditions"

// ConditionsSource searches the NLM Clinical Tables conditions list.
type ConditionsSource struct {
	baseURL string
	client  *Client
}

// NewConditionsSource creates a ConditionsSource against baseURL.
func NewConditionsSource(baseURL string, client *Client) *ConditionsSource {
	return &ConditionsSource{baseURL: baseURL, client: client}
}

func (s *ConditionsSource) Name() string { return SourceConditions }

// Search returns conditions whose names match q.Term. The code is the first
// ICD-10-CM code when the condition has one, otherwise the NLM key.
func (s *ConditionsSource) Search(ctx context.Context, q port.TerminologyQuery) ([]port.Suggestion, error) {
	params := url.Values{}
	params.Set("terms", q.Term)
	params.Set("maxList", strconv.Itoa(q.Limit))
	params.Set("df", "primary_name,consumer_name")
	params.Set("ef", "icd10cm_codes")

	// [total, [keys], {extra fields}, [[display fields]...]]
	var raw []json.RawMessage
	if err := s.client.getJSON(ctx, SourceConditions, s.baseURL+"?"+params.Encode(), &raw); err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("%s: unexpected response shape (%d elements)", SourceConditions, len(raw))
	}

	var keys []string
	if err := json.Unmarshal(raw[1], &keys); err != nil {
		return nil, fmt.Errorf("%s: decode keys: %w", SourceConditions, err)
	}
	var extra struct {
		ICD10 []json.RawMessage `json:"icd10cm_codes"`
	}
	if len(raw[2]) > 0 && string(raw[2]) != "null" {
		if err := json.Unmarshal(raw[2], &extra); err != nil {
			return nil, fmt.Errorf("%s: decode extra fields: %w", SourceConditions, err)
		}
	}
	var display [][]string
	if err := json.Unmarshal(raw[3], &display); err != nil {
		return nil, fmt.Errorf("%s: decode display: %w", SourceConditions, err)
	}

	out := make([]port.Suggestion, 0, len(display))
	for i, row := range display {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		sug := port.Suggestion{Title: strings.TrimSpace(row[0]), Source: SourceConditions}
		if len(row) > 1 {
			consumer := strings.TrimSpace(row[1])
			if consumer != "" && !strings.EqualFold(consumer, sug.Title) {
				sug.Subtitle = consumer
			}
		}
		if i < len(extra.ICD10) {
			sug.Code = firstICD10(extra.ICD10[i])
		}
		if sug.Code == "" && i < len(keys) {
			sug.Code = keys[i]
		}
		out = append(out, sug)
	}
	return out, nil
}

// firstICD10 accepts both the comma-joined string and array encodings.
func firstICD10(raw json.RawMessage) string {
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		code, _, _ := strings.Cut(joined, ",")
		return strings.TrimSpace(code)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
