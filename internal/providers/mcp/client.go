package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"

	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/pkg/log"
)

type Timeouts struct {
	Connect  time.Duration
	ToolList time.Duration
}

func NewDefaultTimeouts() *Timeouts {
	return &Timeouts{
		Connect:  30 * time.Second,
		ToolList: 5 * time.Second,
	}
}

// Worker is the stdio client side of the tool worker subprocess. Implements
// core.ToolCaller. Per-call deadlines are the dispatcher's job; the worker
// client only owns connect and list timeouts.
type Worker struct {
	cli      *client.Client
	timeouts *Timeouts
}

// Dial launches the worker command, speaks the initialize handshake, and
// returns a connected client.
func Dial(ctx context.Context, command string, args ...string) (*Worker, error) {
	w := &Worker{timeouts: NewDefaultTimeouts()}

	cli, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, w.timeouts.Connect)
	defer cancel()

	if err := cli.Start(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	req := mcpproto.InitializeRequest{}
	req.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	req.Params.Capabilities = mcpproto.ClientCapabilities{}
	req.Params.ClientInfo = mcpproto.Implementation{
		Name:    core.AppName,
		Version: core.AppVersion,
	}

	if _, err := cli.Initialize(connectCtx, req); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to initialize worker: %w", err)
	}

	w.cli = cli
	log.FromCtx(ctx).Debug().Str("command", command).Msg("tool worker connected")
	return w, nil
}

func (w *Worker) Close() error {
	return w.cli.Close()
}

// ListTools fetches the worker's tool catalog in the shape the reasoning
// engine consumes.
func (w *Worker) ListTools(ctx context.Context) ([]core.ToolSpec, error) {
	tCtx, cancel := context.WithTimeout(ctx, w.timeouts.ToolList)
	defer cancel()

	resp, err := w.cli.ListTools(tCtx, mcpproto.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	tools := make([]core.ToolSpec, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		schema, _ := json.Marshal(t.InputSchema)
		tools = append(tools, core.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Schema:      schema,
		})
	}
	return tools, nil
}

// Call executes one tool method. Worker-side failures arrive as error text
// carrying a JSON failure payload; that payload is rehydrated into a typed
// failure so the dispatcher can classify it.
func (w *Worker) Call(ctx context.Context, method string, params map[string]any) (string, error) {
	req := mcpproto.CallToolRequest{}
	req.Params.Name = method
	req.Params.Arguments = params

	res, err := w.cli.CallTool(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return "", core.NewFailure(core.FailureUnknownMethod, err.Error())
		}
		return "", classifyTransportError(err)
	}

	var output strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(mcpproto.TextContent); ok {
			output.WriteString(text.Text)
		} else if textPtr, ok := content.(*mcpproto.TextContent); ok {
			output.WriteString(textPtr.Text)
		}
	}

	if res.IsError {
		return "", parseFailure(output.String())
	}
	return output.String(), nil
}

// parseFailure decodes a worker failure payload, falling back to an internal
// failure when the text is not the expected JSON.
func parseFailure(text string) *core.Failure {
	var f core.Failure
	if err := json.Unmarshal([]byte(text), &f); err == nil && f.Kind != "" {
		return &f
	}
	return core.NewFailure(core.FailureInternal, text)
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), context.DeadlineExceeded.Error()) {
		return context.DeadlineExceeded
	}
	if errors.Is(err, context.Canceled) || strings.Contains(err.Error(), context.Canceled.Error()) {
		return context.Canceled
	}
	return core.NewFailure(core.FailureUnavailable, err.Error())
}
