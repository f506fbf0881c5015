package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/venuebot/internal/config"
	"github.com/sandevgo/venuebot/internal/core"
)

// OpenAICompatible talks to any chat-completions endpoint that follows the
// OpenAI wire shape. Implements core.Engine.
type OpenAICompatible struct {
	baseClient
}

func NewOpenAICompatible(cfg config.EngineConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseClient: newBaseClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout),
	}
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

func (o *OpenAICompatible) Generate(ctx context.Context, window []core.Event, memory []core.MemoryRecord, tools []core.ToolSpec) (*core.Reply, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": buildMessages(window, memory),
	}
	if len(tools) > 0 {
		payload["tools"] = renderTools(tools)
	}

	msg, err := o.complete(ctx, payload)
	if err != nil {
		return nil, err
	}

	if len(msg.ToolCalls) > 0 {
		calls := make([]core.ToolRequest, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			params := make(map[string]any)
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &params); err != nil {
					return nil, core.NewFailure(core.FailureMalformed,
						fmt.Sprintf("unparseable tool arguments for %s: %v", tc.Function.Name, err))
				}
			}
			calls = append(calls, core.ToolRequest{
				ID:     tc.ID,
				Method: tc.Function.Name,
				Params: params,
			})
		}
		return &core.Reply{ToolCalls: calls}, nil
	}

	return &core.Reply{Text: msg.Content}, nil
}

func (o *OpenAICompatible) Summarize(ctx context.Context, events []core.Event) (string, error) {
	payload := map[string]any{
		"model": o.model,
		"messages": []chatMessage{
			{Role: "system", Content: summarizePrompt},
			{Role: "user", Content: renderEventsForSummary(events)},
		},
	}

	msg, err := o.complete(ctx, payload)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (o *OpenAICompatible) complete(ctx context.Context, payload map[string]any) (*chatMessage, error) {
	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("empty choices: %s", string(data))
	}
	return &result.Choices[0].Message, nil
}

// buildMessages projects the event log onto the chat wire format. Runs of
// tool requests collapse into one assistant message so their responses can
// correlate by tool_call_id.
func buildMessages(window []core.Event, memory []core.MemoryRecord) []chatMessage {
	messages := []chatMessage{{Role: "system", Content: systemPrompt}}
	if block := renderMemory(memory); block != "" {
		messages = append(messages, chatMessage{Role: "system", Content: block})
	}

	i := 0
	for i < len(window) {
		ev := window[i]
		switch ev.Kind {
		case core.EventUserMessage:
			messages = append(messages, chatMessage{Role: "user", Content: ev.Payload})
		case core.EventAgentMessage:
			messages = append(messages, chatMessage{Role: "assistant", Content: ev.Payload})
		case core.EventCheckpoint:
			messages = append(messages, chatMessage{
				Role:    "system",
				Content: "Summary of the conversation so far: " + ev.Payload,
			})
		case core.EventToolRequest:
			var calls []toolCall
			for i < len(window) && window[i].Kind == core.EventToolRequest {
				if req := window[i].Request; req != nil {
					args, _ := json.Marshal(req.Params)
					tc := toolCall{ID: req.ID, Type: "function"}
					tc.Function.Name = req.Method
					tc.Function.Arguments = string(args)
					calls = append(calls, tc)
				}
				i++
			}
			messages = append(messages, chatMessage{Role: "assistant", ToolCalls: calls})
			continue
		case core.EventToolResponse:
			if resp := ev.Response; resp != nil {
				content := resp.Result
				if resp.Failure != nil {
					raw, _ := json.Marshal(resp.Failure)
					content = string(raw)
				}
				messages = append(messages, chatMessage{
					Role:       "tool",
					ToolCallID: resp.ID,
					Content:    content,
				})
			}
		}
		i++
	}
	return messages
}

func renderTools(tools []core.ToolSpec) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  json.RawMessage(t.Schema),
			},
		})
	}
	return out
}
