package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls an OpenAI-compatible chat-completions endpoint (Groq, OpenAI,
// or any gateway speaking the same protocol).
type Client struct {
	baseURL          string
	apiKey           string
	model            string
	client           *http.Client
	maxResponseBytes int64
}

// NewClient creates a chat-completions generator client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:          baseURL,
		apiKey:           apiKey,
		model:            model,
		maxResponseBytes: 1 << 20,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// modelVerdict is the JSON contract the persona prompt pins.
type modelVerdict struct {
	IsScam             bool     `json:"is_scam"`
	ScamType           string   `json:"scam_type"`
	Confidence         float64  `json:"confidence"`
	Reply              string   `json:"reply"`
	SuspiciousKeywords []string `json:"suspicious_keywords"`
	Reasoning          string   `json:"reasoning"`
}

// Generate asks the model for the next in-persona reply and scam verdict.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	raw, err := c.complete(ctx, personaSystemPrompt, buildTurnPrompt(req), 0.7, 500)
	if err != nil {
		return nil, err
	}

	block, ok := extractJSONBlock(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrMalformedOutput)
	}

	var verdict modelVerdict
	if err := json.Unmarshal([]byte(block), &verdict); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if verdict.Reply == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}

	return &Result{
		IsScam:             verdict.IsScam,
		ScamType:           verdict.ScamType,
		Confidence:         verdict.Confidence,
		Reply:              verdict.Reply,
		SuspiciousKeywords: verdict.SuspiciousKeywords,
		Reasoning:          verdict.Reasoning,
	}, nil
}

// Analyze classifies a single message outside any session.
func (c *Client) Analyze(ctx context.Context, message string) (*Analysis, error) {
	raw, err := c.complete(ctx, analysisSystemPrompt, "Analyze this message:\n\n"+message, 0.1, 0)
	if err != nil {
		return nil, err
	}

	block, ok := extractJSONBlock(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrMalformedOutput)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(block), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &analysis, nil
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return "", fmt.Errorf("read model response: %w", err)
	}
	if int64(len(respBody)) > c.maxResponseBytes {
		return "", fmt.Errorf("model response exceeded limit (%d bytes)", c.maxResponseBytes)
	}

	if resp.StatusCode >= 400 {
		var errBody chatErrorResponse
		if err := json.Unmarshal(respBody, &errBody); err != nil {
			return "", fmt.Errorf("model error status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("model error: %s (type=%s)", errBody.Error.Message, errBody.Error.Type)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("model response had no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}
