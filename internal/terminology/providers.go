package terminology

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"medvault/internal/port"
)

// SourceProviders is the route name of the providers source.
const SourceProviders = "providers"

// npiMaxLimit is the registry's per-request result cap.
const npiMaxLimit = 200

// ProvidersSource searches individual clinicians in the NPPES NPI Registry.
type ProvidersSource struct {
	baseURL string
	client  *Client
}

// NewProvidersSource creates a ProvidersSource against baseURL.
func NewProvidersSource(baseURL string, client *Client) *ProvidersSource {
	return &ProvidersSource{baseURL: baseURL, client: client}
}

func (s *ProvidersSource) Name() string { return SourceProviders }

type npiResponse struct {
	ResultCount int         `json:"result_count"`
	Results     []npiResult `json:"results"`
	Errors      []struct {
		Description string `json:"description"`
		Field       string `json:"field"`
	} `json:"Errors"`
}

type npiResult struct {
	Number          string `json:"number"`
	EnumerationType string `json:"enumeration_type"`
	Basic           struct {
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		Credential       string `json:"credential"`
		OrganizationName string `json:"organization_name"`
	} `json:"basic"`
	Addresses []struct {
		City           string `json:"city"`
		State          string `json:"state"`
		AddressPurpose string `json:"address_purpose"`
	} `json:"addresses"`
	Taxonomies []struct {
		Desc    string `json:"desc"`
		Primary bool   `json:"primary"`
	} `json:"taxonomies"`
}

// Search splits "first last" queries into first and last name; a single word
// searches last names by prefix.
func (s *ProvidersSource) Search(ctx context.Context, q port.TerminologyQuery) ([]port.Suggestion, error) {
	params := url.Values{}
	params.Set("version", "2.1")
	params.Set("enumeration_type", "NPI-1")
	limit := q.Limit
	if limit > npiMaxLimit {
		limit = npiMaxLimit
	}
	params.Set("limit", strconv.Itoa(limit))

	first, last := splitName(q.Term)
	if first != "" {
		params.Set("first_name", first)
	}
	params.Set("last_name", last)
	if q.State != "" {
		params.Set("state", q.State)
	}

	var resp npiResponse
	if err := s.client.getJSON(ctx, SourceProviders, s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%s: registry rejected query: %s", SourceProviders, resp.Errors[0].Description)
	}

	out := make([]port.Suggestion, 0, len(resp.Results))
	for _, r := range resp.Results {
		title := s.displayName(r)
		if r.Number == "" || title == "" {
			continue
		}
		out = append(out, port.Suggestion{
			Code:     r.Number,
			Title:    title,
			Subtitle: s.subtitle(r),
			Source:   SourceProviders,
		})
	}
	return out, nil
}

// splitName maps a query onto registry name fields. The registry requires two
// characters before a wildcard.
func splitName(term string) (first, last string) {
	words := strings.Fields(term)
	switch {
	case len(words) == 0:
		return "", ""
	case len(words) == 1:
		last = words[0]
		if len([]rune(last)) >= 2 {
			last += "*"
		}
		return "", last
	default:
		return words[0], strings.Join(words[1:], " ")
	}
}

func (s *ProvidersSource) displayName(r npiResult) string {
	if r.EnumerationType == "NPI-2" || r.Basic.OrganizationName != "" && r.Basic.LastName == "" {
		return strings.TrimSpace(r.Basic.OrganizationName)
	}
	name := strings.TrimSpace(titleCase(r.Basic.FirstName + " " + r.Basic.LastName))
	if name == "" {
		return ""
	}
	if cred := strings.TrimSpace(r.Basic.Credential); cred != "" {
		name += ", " + cred
	}
	return name
}

// subtitle is the primary taxonomy and practice location, e.g.
// "Family Medicine · Austin, TX".
func (s *ProvidersSource) subtitle(r npiResult) string {
	var taxonomy string
	for _, t := range r.Taxonomies {
		if t.Primary {
			taxonomy = t.Desc
			break
		}
	}
	if taxonomy == "" && len(r.Taxonomies) > 0 {
		taxonomy = r.Taxonomies[0].Desc
	}

	var location string
	for _, a := range r.Addresses {
		if strings.EqualFold(a.AddressPurpose, "LOCATION") || location == "" {
			city := titleCase(a.City)
			switch {
			case city != "" && a.State != "":
				location = city + ", " + a.State
			case a.State != "":
				location = a.State
			default:
				location = city
			}
		}
	}

	switch {
	case taxonomy != "" && location != "":
		return taxonomy + " · " + location
	case taxonomy != "":
		return taxonomy
	default:
		return location
	}
}

// titleCase turns registry upper case into display case. Casers hold state, so
// one is built per call.
func titleCase(s string) string {
	return cases.Title(language.AmericanEnglish).String(strings.ToLower(strings.TrimSpace(s)))
}
