package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/parser"
	"medvault/internal/parser/insurance"
	"medvault/internal/port"
	"medvault/internal/upstream"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	// ProviderName is the registry key of this provider.
	ProviderName = "claude"
)

func init() {
	parser.RegisterProvider(ProviderName, func(cfg *config.CardParserProviderConfig, _ parser.Deps) (port.CardParser, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("claude provider requires an api key")
		}
		return NewParser(cfg), nil
	})
}

// Parser implements port.CardParser using the Anthropic Messages API.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates a Claude-based card parser from a provider config.
func NewParser(cfg *config.CardParserProviderConfig) *Parser {
	return newParser(cfg, apiURL)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.CardParserProviderConfig, endpoint string) *Parser {
	return newParser(cfg, endpoint)
}

func newParser(cfg *config.CardParserProviderConfig, endpoint string) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Parser) Parse(ctx context.Context, input port.CardParseInput) (*port.CardParseOutput, error) {
	if !input.HasImages() && strings.TrimSpace(input.OCRText) == "" {
		return nil, domain.ErrNoCardImage
	}

	prompt := parser.BuildCardPrompt(input.OCRText)
	contentBlocks, err := buildContentBlocks(input, prompt)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":      p.model,
		"max_tokens": 2048,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := upstream.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, upstream.NewRateLimitError(ProviderName, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model, input.OCRText)
}

func buildContentBlocks(input port.CardParseInput, prompt string) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	for _, img := range []*port.CardImage{input.Front, input.Back} {
		if img == nil {
			continue
		}
		encoded := base64.StdEncoding.EncodeToString(img.Data)
		switch img.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "document",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": "application/pdf",
					"data":       encoded,
				},
			})
		case "image/jpeg", "image/png":
			blocks = append(blocks, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": img.ContentType,
					"data":       encoded,
				},
			})
		default:
			return nil, fmt.Errorf("unsupported content type for parsing: %s", img.ContentType)
		}
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model, hintText string) (*port.CardParseOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	text := stripCodeFence(resp.Content[0].Text)

	parsed := struct {
		RawText string                     `json:"raw_text"`
		Card    domain.ParsedInsuranceCard `json:"card"`
	}{Card: domain.NewParsedInsuranceCard()}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}

	ocrText := strings.TrimSpace(parsed.RawText)
	if ocrText == "" {
		ocrText = hintText
	}

	return &port.CardParseOutput{
		Card:      sanitize(parsed.Card),
		OCRText:   ocrText,
		ModelUsed: model,
	}, nil
}

// sanitize coerces model output into the shapes the extractor produces.
func sanitize(c domain.ParsedInsuranceCard) domain.ParsedInsuranceCard {
	c.Provider.Name = strings.TrimSpace(c.Provider.Name)
	switch c.Provider.Confidence {
	case domain.ConfidenceHigh, domain.ConfidenceLow:
	default:
		c.Provider.Confidence = domain.ConfidenceLow
	}
	if c.Provider.Name == "" {
		c.Provider.Confidence = domain.ConfidenceNone
	}

	c.MemberID = strings.ToUpper(strings.Join(strings.Fields(c.MemberID), ""))
	c.GroupNumber = strings.ToUpper(strings.TrimSpace(c.GroupNumber))
	c.PlanName = strings.TrimSpace(c.PlanName)
	c.SubscriberName = strings.Join(strings.Fields(c.SubscriberName), " ")
	c.PhoneNumbers = insurance.NormalizePhones(c.PhoneNumbers)
	c.RxPCN = strings.ToUpper(strings.TrimSpace(c.RxPCN))
	c.RxGroup = strings.ToUpper(strings.TrimSpace(c.RxGroup))

	c.RxBIN = strings.TrimSpace(c.RxBIN)
	if len(c.RxBIN) != 6 || strings.Trim(c.RxBIN, "0123456789") != "" {
		c.RxBIN = ""
	}
	return c
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
