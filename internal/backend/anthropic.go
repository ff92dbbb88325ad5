package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/atelier-dev/atelier/internal/chat"
)

const anthropicBaseURL = "https://api.anthropic.com"
const anthropicVersion = "2023-06-01"
const anthropicDefaultMaxTokens = 4096

// AnthropicClient implements Conversationalist against the Anthropic
// Messages API. It uses the non-streaming endpoint and emits a single
// cumulative update before returning, which satisfies the OnUpdate
// contract trivially.
type AnthropicClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewAnthropicClient creates a client for the given model and key.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		baseURL: anthropicBaseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
	Source   *struct {
		Type      string `json:"type"`
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	} `json:"source,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// SendConversation performs one exchange.
func (c *AnthropicClient) SendConversation(ctx context.Context, req Request) (*Response, error) {
	messages := make([]anthropicMessage, 0, len(req.History)+1)
	for _, msg := range req.History {
		messages = append(messages, toAnthropicMessage(msg))
	}
	messages = append(messages, toAnthropicMessage(req.NewMessage))

	maxTokens := req.Generation.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	payload := map[string]any{
		"model":      c.model,
		"max_tokens": maxTokens,
		"messages":   messages,
	}
	if req.SystemInstruction != "" {
		payload["system"] = req.SystemInstruction
	}
	if req.Generation.Temperature > 0 {
		payload["temperature"] = req.Generation.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp, "anthropic"); err != nil {
		return nil, err
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	var text string
	var thinking []chat.ThinkingSegment
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "thinking":
			thinking = append(thinking, chat.ThinkingSegment{Text: block.Thinking})
		}
	}
	if text == "" && len(thinking) == 0 {
		return nil, errors.New("anthropic empty response")
	}

	if req.OnUpdate != nil {
		req.OnUpdate(Update{Text: text, Thinking: cloneThinking(thinking)})
	}
	return &Response{Text: text, Thinking: thinking}, nil
}

func toAnthropicMessage(msg chat.Message) anthropicMessage {
	role := "user"
	if msg.Role == chat.RoleModel {
		role = "assistant"
	}
	content := make([]anthropicContent, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		if p.InlineData != nil {
			block := anthropicContent{Type: "image"}
			block.Source = &struct {
				Type      string `json:"type"`
				MediaType string `json:"media_type"`
				Data      string `json:"data"`
			}{Type: "base64", MediaType: p.InlineData.MIMEType, Data: p.InlineData.Data}
			content = append(content, block)
			continue
		}
		content = append(content, anthropicContent{Type: "text", Text: p.Text})
	}
	return anthropicMessage{Role: role, Content: content}
}

var _ Conversationalist = (*AnthropicClient)(nil)
