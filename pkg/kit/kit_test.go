package kit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestChainOrder(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				calls = append(calls, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mw("a"), mw("b"), mw("c"))(func(context.Context, any) (any, error) {
		calls = append(calls, "endpoint")
		return nil, nil
	})
	ep(context.Background(), nil)

	if got := strings.Join(calls, ","); got != "a,b,c,endpoint" {
		t.Errorf("call order = %s", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	ep := RequestID(func() string { return "generated" })(func(ctx context.Context, _ any) (any, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	})

	ep(context.Background(), nil)
	if seen != "generated" {
		t.Errorf("request id = %q, want generated", seen)
	}
	ep(WithRequestID(context.Background(), "given"), nil)
	if seen != "given" {
		t.Errorf("request id = %q, want given", seen)
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != "http" {
		t.Errorf("default transport = %q", GetTransport(ctx))
	}
	if GetRunID(WithRunID(ctx, "r1")) != "r1" {
		t.Error("run id not stored")
	}
}

func TestMCPHandler(t *testing.T) {
	h := MCPHandler(func(ctx context.Context, req any) (any, error) {
		if GetTransport(ctx) != "mcp" {
			return nil, errors.New("wrong transport")
		}
		return map[string]string{"echo": req.(string)}, nil
	}, func(req mcp.CallToolRequest) (*MCPDecodeResult, error) {
		v, _ := req.GetArguments()["text"].(string)
		if v == "" {
			return nil, errors.New("text is required")
		}
		return &MCPDecodeResult{Request: v}, nil
	})

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"text": "zinc"}
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok || text.Text != `{"echo":"zinc"}` {
		t.Errorf("content = %+v", res.Content[0])
	}

	req.Params.Arguments = map[string]any{}
	res, _ = h(context.Background(), req)
	if !res.IsError {
		t.Error("expected tool error for missing argument")
	}
}
