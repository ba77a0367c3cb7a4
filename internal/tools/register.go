package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/haasonsaas/cu-mcp/internal/observability"
)

// toolDef describes one tool. In is the argument struct, Out the result.
type toolDef[In, Out any] struct {
	name        string
	description string
	// defaults returns In pre-filled with the optional argument defaults.
	defaults func() In
	op       func(context.Context, In) (Out, error)
	// render turns a result into content. Nil renders Out as JSON text.
	render func(Out) ([]mcp.Content, error)
}

// failure is the body of every failed call.
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func register[In, Out any](s *Server, t toolDef[In, Out]) error {
	schema, err := reflectArgs[In](t.name)
	if err != nil {
		return err
	}
	op := observability.Instrument(s.deps.Instrumenter, t.name, t.op)
	render := t.render
	if render == nil {
		render = jsonContent[Out]
	}

	tool := &mcp.Tool{
		Name:        t.name,
		Description: t.description,
		InputSchema: schema.document,
	}
	s.srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in In
		if t.defaults != nil {
			in = t.defaults()
		}
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		if err := schema.decode(raw, &in); err != nil {
			s.log.Debug("rejected tool arguments", "tool", t.name, "error", err)
			return failed(fmt.Errorf("invalid arguments: %w", err)), nil
		}

		out, err := op(ctx, in)
		if err != nil {
			return failed(err), nil
		}
		content, err := render(out)
		if err != nil {
			return failed(fmt.Errorf("render result: %w", err)), nil
		}
		return &mcp.CallToolResult{Content: content}, nil
	})
	s.tools = append(s.tools, tool)
	return nil
}

func jsonContent[Out any](out Out) ([]mcp.Content, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return []mcp.Content{&mcp.TextContent{Text: string(data)}}, nil
}

func failed(err error) *mcp.CallToolResult {
	data, mErr := json.Marshal(failure{Success: false, Error: err.Error()})
	if mErr != nil {
		data = []byte(`{"success":false,"error":"unknown error"}`)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
