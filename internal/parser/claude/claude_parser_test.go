package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/parser"
	"medvault/internal/parser/claude"
	"medvault/internal/port"
	"medvault/internal/upstream"
)

func newTestParser(serverURL string) *claude.Parser {
	cfg := &config.CardParserProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewParserWithEndpoint(cfg, serverURL)
}

func textResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content":     []map[string]interface{}{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
	}
}

func TestClaudeParser_Parse_Images(t *testing.T) {
	llmJSON := `{"raw_text":"Aetna\nID W123456789","card":{"provider":{"name":"Aetna","confidence":"high"},"member_id":"w123 456 789","group_number":" 86753 ","plan_name":"Open Access","subscriber_name":"Jane  Doe","phone_numbers":["1-800-123-4567","(800) 123-4567"],"rx_bin":"610502","rx_pcn":"adv","rx_group":"rx8813"}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])

		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		require.Len(t, content, 3)
		assert.Equal(t, "image", content[0].(map[string]interface{})["type"])
		assert.Equal(t, "image", content[1].(map[string]interface{})["type"])
		assert.Equal(t, "text", content[2].(map[string]interface{})["type"])

		_ = json.NewEncoder(w).Encode(textResponse(llmJSON))
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Parse(context.Background(), port.CardParseInput{
		Front: &port.CardImage{Data: []byte("front"), ContentType: "image/jpeg"},
		Back:  &port.CardImage{Data: []byte("back"), ContentType: "image/png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Aetna\nID W123456789", out.OCRText)
	assert.Equal(t, "claude-sonnet-4-20250514", out.ModelUsed)
	assert.Equal(t, domain.CardProvider{Name: "Aetna", Confidence: domain.ConfidenceHigh}, out.Card.Provider)
	assert.Equal(t, "W123456789", out.Card.MemberID)
	assert.Equal(t, "86753", out.Card.GroupNumber)
	assert.Equal(t, "Jane Doe", out.Card.SubscriberName)
	assert.Equal(t, []string{"(800) 123-4567"}, out.Card.PhoneNumbers)
	assert.Equal(t, "610502", out.Card.RxBIN)
	assert.Equal(t, "ADV", out.Card.RxPCN)
	assert.Equal(t, "RX8813", out.Card.RxGroup)
}

func TestClaudeParser_Parse_SanitizesModelOutput(t *testing.T) {
	llmJSON := "```json\n{\"card\":{\"provider\":{\"name\":\"\",\"confidence\":\"high\"},\"rx_bin\":\"61O502\",\"phone_numbers\":null}}\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse(llmJSON))
	}))
	defer server.Close()

	out, err := newTestParser(server.URL).Parse(context.Background(), port.CardParseInput{OCRText: "hint text"})
	require.NoError(t, err)

	assert.Equal(t, domain.ConfidenceNone, out.Card.Provider.Confidence)
	assert.Empty(t, out.Card.RxBIN)
	assert.NotNil(t, out.Card.PhoneNumbers)
	assert.Equal(t, "hint text", out.OCRText)
}

func TestClaudeParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limit"}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.CardParseInput{OCRText: "x"})

	var rlErr *upstream.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 42.0, rlErr.RetryAfter.Seconds())
}

func TestClaudeParser_Parse_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.CardParseInput{OCRText: "x"})
	assert.ErrorContains(t, err, "status 500")
}

func TestClaudeParser_Parse_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := textResponse(`{"card":`)
		resp["stop_reason"] = "max_tokens"
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.CardParseInput{OCRText: "x"})
	assert.ErrorContains(t, err, "truncated")
}

func TestClaudeParser_Parse_NoInput(t *testing.T) {
	_, err := newTestParser("http://unused.invalid").Parse(context.Background(), port.CardParseInput{})
	assert.ErrorIs(t, err, domain.ErrNoCardImage)
}

func TestClaudeParser_Parse_UnsupportedImageType(t *testing.T) {
	_, err := newTestParser("http://unused.invalid").Parse(context.Background(), port.CardParseInput{
		Front: &port.CardImage{Data: []byte("gif"), ContentType: "image/gif"},
	})
	assert.ErrorContains(t, err, "unsupported content type")
}

func TestClaudeProvider_Registered(t *testing.T) {
	_, err := parser.NewParser(&config.CardParserProviderConfig{Provider: claude.ProviderName}, parser.Deps{})
	assert.ErrorContains(t, err, "api key")

	p, err := parser.NewParser(&config.CardParserProviderConfig{Provider: claude.ProviderName, APIKey: "k"}, parser.Deps{})
	require.NoError(t, err)
	assert.IsType(t, &claude.Parser{}, p)
}
