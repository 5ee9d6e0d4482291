package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/relnotes/internal/notes"
)

const maxAdviceChars = 600

// Client provides LLM release summaries via OpenRouter
type Client struct {
	apiKey  string
	model   string
	http    *http.Client
	baseURL string
}

// New creates a new OpenRouter client
func New(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://openrouter.ai/api/v1",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithBaseURL returns a copy of c that talks to baseURL
func (c *Client) WithBaseURL(baseURL string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// Request represents an OpenRouter API request
type Request struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents an OpenRouter API response
type Response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// Advise summarizes the categorized pull requests of a release.
// A nil or unconfigured client returns an empty summary.
func (c *Client) Advise(ctx context.Context, repo, tag string, res *notes.Result) (string, error) {
	if c == nil || c.apiKey == "" || c.model == "" || c.apiKey == "disabled" {
		return "", nil
	}
	if res == nil || res.Empty() {
		return "", nil
	}

	req := Request{
		Model:     c.model,
		MaxTokens: 250,
		Messages: []Message{
			{
				Role:    "system",
				Content: "You are an experienced engineer writing release highlights for other engineers. Be brief and concrete. No marketing language.",
			},
			{
				Role:    "user",
				Content: buildPrompt(repo, tag, res),
			},
		},
	}

	return c.makeRequest(ctx, req)
}

// buildPrompt lists the pull request titles of every non-empty category
func buildPrompt(repo, tag string, res *notes.Result) string {
	var changes strings.Builder
	for _, cat := range notes.Categories {
		prs := res.Get(cat)
		if len(prs) == 0 {
			continue
		}
		changes.WriteString(cat.Title() + ":\n")
		for _, pr := range prs {
			changes.WriteString(fmt.Sprintf("- %s (#%d)\n", pr.Title, pr.Number))
		}
	}

	return fmt.Sprintf(`Summarize release %s of %s in at most 80 words.

Merged changes:
%s
Cover only:
1. What changed that matters to users of the project
2. Anything that may need attention when upgrading`, tag, repo, changes.String())
}

// makeRequest sends a request to OpenRouter API
func (c *Client) makeRequest(ctx context.Context, req Request) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Title", "relnotes")
	httpReq.Header.Set("User-Agent", "relnotes/1.0")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, string(body))
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("openrouter error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)

	if runes := []rune(content); len(runes) > maxAdviceChars {
		content = string(runes[:maxAdviceChars]) + "…"
	}

	return content, nil
}

// IsTimeout reports whether err came from an expired deadline or an HTTP timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, s := range []string{"timeout", "deadline exceeded"} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}
