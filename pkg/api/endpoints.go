package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/datadose/pkg/kit"
	"github.com/hazyhaar/datadose/pkg/lexicon"
	"github.com/hazyhaar/datadose/pkg/pipeline"
)

// MaxBatch bounds the number of labels in one batch call.
const MaxBatch = 1000

// Shared request/response types used by both HTTP and MCP transports.

type normalizeReq struct {
	Ingredient string
	Trace      bool
}

type batchReq struct {
	Ingredients []string
}

type batchResponse struct {
	Results  []pipeline.Result `json:"results"`
	Admitted int               `json:"admitted"`
	Dropped  int               `json:"dropped"`
}

type tablesResponse struct {
	Lexicon lexicon.Stats `json:"lexicon"`
	Units   []string      `json:"units"`
}

type selfTestResponse struct {
	OK       bool                       `json:"ok"`
	Lexicon  string                     `json:"lexicon"`
	Cases    int                        `json:"cases"`
	Failures []pipeline.SelfTestFailure `json:"failures,omitempty"`
}

// Endpoints are the transport-agnostic actions backed by the engine.
type Endpoints struct {
	Normalize kit.Endpoint
	Batch     kit.Endpoint
	Tables    kit.Endpoint
	Term      kit.Endpoint
	SelfTest  kit.Endpoint
}

// NewEndpoints builds the endpoints, each wrapped with request IDs and logging.
func NewEndpoints(eng *pipeline.Engine, logger *slog.Logger) Endpoints {
	wrap := func(action string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(pipeline.NewID), kit.Logging(logger, action))(ep)
	}
	return Endpoints{
		Normalize: wrap("normalize", normalizeEndpoint(eng)),
		Batch:     wrap("normalize_batch", batchEndpoint(eng)),
		Tables:    wrap("list_tables", tablesEndpoint(eng)),
		Term:      wrap("explain_term", termEndpoint(eng)),
		SelfTest:  wrap("selftest", selfTestEndpoint(eng)),
	}
}

func normalizeEndpoint(eng *pipeline.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*normalizeReq)
		p, err := eng.Pipeline()
		if err != nil {
			return nil, err
		}
		if req.Trace {
			return p.Explain(req.Ingredient), nil
		}
		return p.Process(pipeline.RawRecord{Ingredient: req.Ingredient}), nil
	}
}

func batchEndpoint(eng *pipeline.Engine) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*batchReq)
		if len(req.Ingredients) == 0 {
			return nil, errBadRequest("ingredients array is empty")
		}
		if len(req.Ingredients) > MaxBatch {
			return nil, errBadRequest(fmt.Sprintf("too many ingredients (max %d, got %d)", MaxBatch, len(req.Ingredients)))
		}
		p, err := eng.Pipeline()
		if err != nil {
			return nil, err
		}
		resp := batchResponse{Results: make([]pipeline.Result, len(req.Ingredients))}
		for i, ing := range req.Ingredients {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r := p.Process(pipeline.RawRecord{Ingredient: ing})
			r.Index = i
			if r.Admitted {
				resp.Admitted++
			} else {
				resp.Dropped++
			}
			resp.Results[i] = r
		}
		return resp, nil
	}
}

func tablesEndpoint(eng *pipeline.Engine) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		lex := eng.Registry().Current()
		if lex == nil {
			return nil, pipeline.ErrNotLoaded
		}
		return tablesResponse{Lexicon: lex.Stats(), Units: lex.Manifest.Units}, nil
	}
}

func termEndpoint(eng *pipeline.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		term := request.(string)
		lex := eng.Registry().Current()
		if lex == nil {
			return nil, pipeline.ErrNotLoaded
		}
		return lex.Explain(term), nil
	}
}

func selfTestEndpoint(eng *pipeline.Engine) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		p, err := eng.Pipeline()
		if err != nil {
			return nil, err
		}
		resp := selfTestResponse{
			OK:      true,
			Lexicon: p.Lexicon().Manifest.ID,
			Cases:   len(pipeline.SelfTestCases),
		}
		var ste *pipeline.SelfTestError
		if err := p.SelfTest(); errors.As(err, &ste) {
			resp.OK = false
			resp.Failures = ste.Failures
		} else if err != nil {
			return nil, err
		}
		return resp, nil
	}
}

// badRequest marks caller errors so transports can report them as such.
type badRequest string

func (e badRequest) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequest(msg) }
