package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Fixed generation parameters shared by every provider.
const (
	maxOutputTokens = 4096
	temperature     = 0.3
)

// DefaultProviders returns the standard provider set in priority order,
// with credentials resolved from the environment. Highest priority first.
func DefaultProviders(client *http.Client) []Synthesizer {
	return []Synthesizer{
		&gemini{apiKey: os.Getenv("GEMINI_API_KEY"), model: "gemini-2.0-flash-exp", client: client},
		newChatProvider("openai", os.Getenv("OPENAI_API_KEY"),
			"https://api.openai.com/v1/chat/completions", "gpt-4o-mini", client),
		&anthropic{apiKey: os.Getenv("ANTHROPIC_API_KEY"), model: "claude-3-5-haiku-20241022", client: client},
		newChatProvider("openrouter", os.Getenv("OPENROUTER_API_KEY"),
			"https://openrouter.ai/api/v1/chat/completions", "google/gemini-2.0-flash-exp:free", client),
		newChatProvider("perplexity", os.Getenv("PERPLEXITY_API_KEY"),
			"https://api.perplexity.ai/chat/completions", "llama-3.1-sonar-small-128k-online", client),
	}
}

// postJSON sends a JSON body and decodes a JSON reply, surfacing non-200
// statuses with a bounded excerpt of the response body.
func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, body, reply any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(reply)
}

// --- Gemini ---

type gemini struct {
	apiKey string
	model  string
	client *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *gemini) Name() string    { return "gemini" }
func (g *gemini) Available() bool { return strings.TrimSpace(g.apiKey) != "" }

func (g *gemini) Complete(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		g.model, g.apiKey,
	)

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}

	var reply geminiResponse
	if err := postJSON(ctx, g.client, endpoint, nil, body, &reply); err != nil {
		return "", fmt.Errorf("gemini API: %w", err)
	}
	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}
	return reply.Candidates[0].Content.Parts[0].Text, nil
}

// --- Anthropic ---

type anthropic struct {
	apiKey string
	model  string
	client *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *anthropic) Name() string    { return "anthropic" }
func (a *anthropic) Available() bool { return strings.TrimSpace(a.apiKey) != "" }

func (a *anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}
	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}

	var reply anthropicResponse
	if err := postJSON(ctx, a.client, "https://api.anthropic.com/v1/messages", headers, body, &reply); err != nil {
		return "", fmt.Errorf("anthropic API: %w", err)
	}
	if len(reply.Content) == 0 {
		return "", fmt.Errorf("empty anthropic response")
	}
	return reply.Content[0].Text, nil
}

// --- OpenAI-compatible chat completions (OpenAI, OpenRouter, Perplexity) ---

type chatProvider struct {
	name     string
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func newChatProvider(name, apiKey, endpoint, model string, client *http.Client) *chatProvider {
	return &chatProvider{name: name, apiKey: apiKey, endpoint: endpoint, model: model, client: client}
}

func (c *chatProvider) Name() string    { return c.name }
func (c *chatProvider) Available() bool { return strings.TrimSpace(c.apiKey) != "" }

func (c *chatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}
	body := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
	}

	var reply chatResponse
	if err := postJSON(ctx, c.client, c.endpoint, headers, body, &reply); err != nil {
		return "", fmt.Errorf("%s API: %w", c.name, err)
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("empty %s response", c.name)
	}
	return reply.Choices[0].Message.Content, nil
}
