package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

// Client is a minimal Groq-compatible chat-completion client, used for
// query rewriting and answer synthesis in the retrieval engine.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates an LLM client from configuration.
func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ChatMessage is one turn in a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-turn or multi-turn chat completion request and
// returns the assistant's raw content, verbatim — callers that need to
// detect an LLM refusal inspect this string themselves rather than have
// the client interpret it. A dropped connection, a 5xx, or the client's
// own 60s timeout are all retried with exponential backoff; a 4xx is
// treated as permanent since retrying an identical bad request can't help.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/openai/v1/chat/completions"
	retry := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	var content string
	err = backoff.Retry(func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if reqErr != nil {
			return backoff.Permanent(reqErr)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := c.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("llm provider returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("llm provider returned status %d", resp.StatusCode))
		}

		var cr chatResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&cr); decodeErr != nil {
			return decodeErr
		}
		if len(cr.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty response from llm provider"))
		}
		content = cr.Choices[0].Message.Content
		return nil
	}, retry)
	if err != nil {
		return "", err
	}
	return content, nil
}
