package terminology

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"medvault/internal/port"
)

// SourceMedications is the route name of the medications source.
const SourceMedications = "medications"

// MedicationsSource searches RxNorm through RxNav's approximate term match.
type MedicationsSource struct {
	baseURL string
	client  *Client
}

// NewMedicationsSource creates a MedicationsSource against baseURL.
func NewMedicationsSource(baseURL string, client *Client) *MedicationsSource {
	return &MedicationsSource{baseURL: baseURL, client: client}
}

func (s *MedicationsSource) Name() string { return SourceMedications }

type rxnavResponse struct {
	ApproximateGroup struct {
		Candidate []struct {
			RxCUI  string `json:"rxcui"`
			Name   string `json:"name"`
			Source string `json:"source"`
			Rank   string `json:"rank"`
		} `json:"candidate"`
	} `json:"approximateGroup"`
}

// Search returns drug names ranked by RxNav, one entry per RxCUI.
func (s *MedicationsSource) Search(ctx context.Context, q port.TerminologyQuery) ([]port.Suggestion, error) {
	params := url.Values{}
	params.Set("term", q.Term)
	// Candidates repeat per atom; over-fetch so deduplication still fills the limit.
	params.Set("maxEntries", strconv.Itoa(q.Limit*3))
	params.Set("option", "1")

	var resp rxnavResponse
	if err := s.client.getJSON(ctx, SourceMedications, s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]port.Suggestion, 0, q.Limit)
	for _, c := range resp.ApproximateGroup.Candidate {
		name := strings.TrimSpace(c.Name)
		if c.RxCUI == "" || name == "" || seen[c.RxCUI] {
			continue
		}
		seen[c.RxCUI] = true
		out = append(out, port.Suggestion{
			Code:     c.RxCUI,
			Title:    name,
			Subtitle: c.Source,
			Source:   SourceMedications,
		})
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}
