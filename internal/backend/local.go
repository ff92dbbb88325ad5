package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atelier-dev/atelier/internal/chat"
)

const localBaseURL = "http://localhost:11434"

// LocalClient implements Conversationalist against a local Ollama
// server. No credential is required. Ollama streams NDJSON delta
// chunks; this adapter accumulates them into cumulative text before
// each OnUpdate.
type LocalClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewLocalClient creates a client for the given model. baseURL may be
// empty to use the default Ollama address.
func NewLocalClient(baseURL, model string) *LocalClient {
	if baseURL == "" {
		baseURL = localBaseURL
	}
	// No timeout: local generation can be slow and cancellation is
	// handled through the request context.
	return &LocalClient{baseURL: baseURL, model: model, client: &http.Client{}}
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChunk struct {
	Message struct {
		Content  string `json:"content"`
		Thinking string `json:"thinking"`
	} `json:"message"`
	Done bool `json:"done"`
}

// SendConversation performs one streaming exchange.
func (c *LocalClient) SendConversation(ctx context.Context, req Request) (*Response, error) {
	messages := make([]ollamaMessage, 0, len(req.History)+2)
	if req.SystemInstruction != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.SystemInstruction})
	}
	for _, msg := range req.History {
		messages = append(messages, toOllamaMessage(msg))
	}
	messages = append(messages, toOllamaMessage(req.NewMessage))

	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   true,
	}
	if req.Generation.Temperature > 0 {
		payload["options"] = map[string]any{"temperature": req.Generation.Temperature}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp, "local"); err != nil {
		return nil, err
	}

	var text strings.Builder
	var thinkingText strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		text.WriteString(chunk.Message.Content)
		thinkingText.WriteString(chunk.Message.Thinking)
		if req.OnUpdate != nil {
			req.OnUpdate(Update{Text: text.String(), Thinking: thinkingSegments(thinkingText.String())})
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	return &Response{Text: text.String(), Thinking: thinkingSegments(thinkingText.String())}, nil
}

func toOllamaMessage(msg chat.Message) ollamaMessage {
	role := "user"
	if msg.Role == chat.RoleModel {
		role = "assistant"
	}
	out := ollamaMessage{Role: role}
	var textParts []string
	for _, p := range msg.Parts {
		if p.InlineData != nil {
			out.Images = append(out.Images, p.InlineData.Data)
			continue
		}
		if p.Text != "" {
			textParts = append(textParts, p.Text)
		}
	}
	out.Content = strings.Join(textParts, "\n")
	return out
}

func thinkingSegments(text string) []chat.ThinkingSegment {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []chat.ThinkingSegment{{Text: text}}
}

var _ Conversationalist = (*LocalClient)(nil)
