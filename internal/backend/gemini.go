package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atelier-dev/atelier/internal/chat"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient implements Conversationalist against the Google
// Generative Language API. The API streams delta chunks; this adapter
// accumulates them so OnUpdate only ever sees cumulative text.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGeminiClient creates a client for the given model and key.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		baseURL: geminiBaseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type geminiPart struct {
	Text       string           `json:"text,omitempty"`
	Thought    bool             `json:"thought,omitempty"`
	InlineData *chat.InlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  map[string]any  `json:"generationConfig,omitempty"`
}

type geminiChunk struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// SendConversation performs one streaming exchange.
func (c *GeminiClient) SendConversation(ctx context.Context, req Request) (*Response, error) {
	payload := geminiRequest{
		Contents: toGeminiContents(req.History, req.NewMessage),
	}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	genCfg := map[string]any{}
	if req.Generation.Temperature > 0 {
		genCfg["temperature"] = req.Generation.Temperature
	}
	if req.Generation.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = req.Generation.MaxTokens
	}
	if len(genCfg) > 0 {
		payload.GenerationConfig = genCfg
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	httpReq.Header.Set("accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp, "gemini"); err != nil {
		return nil, err
	}

	// Accumulate deltas into cumulative state before each OnUpdate.
	var text strings.Builder
	var thinking []chat.ThinkingSegment

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}
		var chunk geminiChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		changed := false
		for _, cand := range chunk.Candidates {
			for _, part := range cand.Content.Parts {
				if part.Text == "" {
					continue
				}
				if part.Thought {
					thinking = append(thinking, chat.ThinkingSegment{Text: part.Text})
				} else {
					text.WriteString(part.Text)
				}
				changed = true
			}
		}
		if changed && req.OnUpdate != nil {
			req.OnUpdate(Update{Text: text.String(), Thinking: cloneThinking(thinking)})
		}
	}
	if err := scanner.Err(); err != nil {
		// Body reads fail with the context's error once ctx is cancelled.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	return &Response{Text: text.String(), Thinking: thinking}, nil
}

func toGeminiContents(history []chat.Message, newMessage chat.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, msg := range history {
		contents = append(contents, toGeminiContent(msg))
	}
	contents = append(contents, toGeminiContent(newMessage))
	return contents
}

func toGeminiContent(msg chat.Message) geminiContent {
	parts := make([]geminiPart, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		parts = append(parts, geminiPart{Text: p.Text, InlineData: p.InlineData})
	}
	return geminiContent{Role: string(msg.Role), Parts: parts}
}

func cloneThinking(segments []chat.ThinkingSegment) []chat.ThinkingSegment {
	if segments == nil {
		return nil
	}
	out := make([]chat.ThinkingSegment, len(segments))
	copy(out, segments)
	return out
}

func classifyStatus(resp *http.Response, label string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return ErrUnavailable
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		errorBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s error: %s - %s", label, resp.Status, string(errorBody))
	}
	return nil
}

var _ Conversationalist = (*GeminiClient)(nil)
