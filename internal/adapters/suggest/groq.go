package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tasknest/core/internal/domain/entities"
)

const systemPrompt = "You are a productivity coach. Given a user's open task list, " +
	"reply with one short, actionable tip (two sentences maximum). Reply with the tip only."

// GroqEngine delegates tip generation to the Groq chat-completions API
// (OpenAI-compatible). Any transport or API failure is reported as
// ErrSuggestionBackend; callers are expected to degrade to a canned tip.
type GroqEngine struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewGroqEngine creates a Groq-backed suggestion engine.
func NewGroqEngine(baseURL, apiKey, model string, timeout time.Duration) *GroqEngine {
	return &GroqEngine{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (e *GroqEngine) Name() string {
	return "Groq LLM Delegate v1.0"
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (e *GroqEngine) Suggest(ctx context.Context, tasks []*entities.Task) (string, error) {
	if len(tasks) == 0 {
		return ClearScheduleTip, nil
	}

	body, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: formatTasks(tasks)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", entities.ErrSuggestionBackend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", entities.ErrSuggestionBackend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrSuggestionBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: unexpected status %d", entities.ErrSuggestionBackend, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", entities.ErrSuggestionBackend, err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", entities.ErrSuggestionBackend)
	}

	tip := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if tip == "" {
		return "", fmt.Errorf("%w: empty completion", entities.ErrSuggestionBackend)
	}

	return tip, nil
}

// formatTasks renders the task list as prompt input, one line per task with
// its group label.
func formatTasks(tasks []*entities.Task) string {
	var b strings.Builder
	b.WriteString("My open tasks:\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- [%s] %s", task.GroupName(), task.Title)
		if task.Description != nil && *task.Description != "" {
			fmt.Fprintf(&b, ": %s", *task.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
