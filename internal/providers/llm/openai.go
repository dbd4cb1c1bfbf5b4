package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sandevgo/rizza/internal/core"
)

const completionMaxTokens = 1024

// OpenAI talks to an OpenAI-compatible chat/transcription API.
type OpenAI struct {
	baseProvider
}

func NewOpenAI(baseURL, apiKey string) *OpenAI {
	return &OpenAI{
		baseProvider: newBaseProvider(baseURL, apiKey),
	}
}

func (o *OpenAI) Complete(ctx context.Context, model string, msgs []core.Message) (string, error) {
	payload := map[string]any{
		"model":      model,
		"messages":   toWire(msgs),
		"max_tokens": completionMaxTokens,
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return parseChatResponse(resp)
}

func (o *OpenAI) CompleteJSON(ctx context.Context, model string, msgs []core.Message) ([]byte, error) {
	payload := map[string]any{
		"model":           model,
		"messages":        toWire(msgs),
		"max_tokens":      completionMaxTokens,
		"response_format": map[string]string{"type": "json_object"},
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content, err := parseChatResponse(resp)
	if err != nil {
		return nil, err
	}

	content = stripFences(content)
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("model returned invalid JSON: %s", content)
	}
	return []byte(content), nil
}

// stripFences tolerates models that wrap the object in a markdown code
// block despite the json_object response format.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func (o *OpenAI) Transcribe(ctx context.Context, model string, audio []byte, filename string) (string, error) {
	resp, err := o.doMultipart(ctx, "/v1/audio/transcriptions", "file", filename, audio,
		map[string]string{"model": model})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return "", err
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode transcription: %w", err)
	}
	return result.Text, nil
}

// wireMessage is the chat-completions shape. Content is either a plain
// string or a content-part array for multimodal messages.
type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func toWire(msgs []core.Message) []wireMessage {
	wire := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		if len(m.Parts) > 0 {
			wire = append(wire, wireMessage{Role: m.Role, Content: m.Parts})
			continue
		}
		wire = append(wire, wireMessage{Role: m.Role, Content: m.Content})
	}
	return wire
}

func parseChatResponse(resp *http.Response) (string, error) {
	data, err := readBody(resp)
	if err != nil {
		return "", err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices: %s", string(data))
	}
	return result.Choices[0].Message.Content, nil
}
