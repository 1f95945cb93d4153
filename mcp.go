package stylevec

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/stylevec/kit"
	"github.com/hazyhaar/stylevec/vectorize"
)

// RegisterMCP registers the service's tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerIngestTool(srv)
	s.registerSimilarTool(srv)
	s.registerExplainTool(srv)
	s.registerStatsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sc["required"] = required
	}
	return sc
}

// --- ingest ---

func (s *Service) registerIngestTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylevec_ingest",
		Description: "Vectorize and store one captured page from its design-token and style-report documents.",
		InputSchema: inputSchema(map[string]any{
			"runId":     map[string]any{"type": "string", "description": "Capture run id (generated when omitted; re-submitting updates in place)"},
			"sourceUrl": map[string]any{"type": "string", "description": "URL of the captured page"},
			"tokens":    map[string]any{"type": "object", "description": "Design-token document"},
			"report":    map[string]any{"type": "object", "description": "Style-report document"},
			"layout":    map[string]any{"type": "object", "description": "Optional raw layout snapshot"},
			"embedding": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "number"},
				"description": "Optional precomputed visual embedding",
			},
		}, []string{"sourceUrl", "tokens", "report"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		return s.Ingest(ctx, req.(*IngestInput))
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var input IngestInput
		if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &input}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- similar ---

type similarReq struct {
	ProfileID string `json:"profileId"`
	Kind      string `json:"kind,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

func (s *Service) registerSimilarTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylevec_similar",
		Description: "Find the stored pages most similar to a style profile, ranked by cosine distance.",
		InputSchema: inputSchema(map[string]any{
			"profileId": map[string]any{"type": "string", "description": "Reference style-profile id"},
			"kind":      map[string]any{"type": "string", "description": "Vector kind: global (default) or cta"},
			"limit":     map[string]any{"type": "integer", "description": "Number of results (default: 10)"},
		}, []string{"profileId"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*similarReq)
		kind := vectorize.KindGlobal
		if r.Kind != "" {
			kind = vectorize.Kind(r.Kind)
		}
		neighbors, err := s.FindSimilar(ctx, r.ProfileID, kind, r.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"neighbors": neighbors, "count": len(neighbors)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r similarReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- explain ---

type explainReq struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Kind string `json:"kind,omitempty"`
	K    int    `json:"k,omitempty"`
}

func (s *Service) registerExplainTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylevec_explain",
		Description: "Explain the similarity between two style profiles: cosine, top contributing features, largest differences.",
		InputSchema: inputSchema(map[string]any{
			"a":    map[string]any{"type": "string", "description": "First style-profile id"},
			"b":    map[string]any{"type": "string", "description": "Second style-profile id"},
			"kind": map[string]any{"type": "string", "description": "Vector kind: global (default) or cta"},
			"k":    map[string]any{"type": "integer", "description": "Number of features per list (default: 10)"},
		}, []string{"a", "b"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*explainReq)
		kind := vectorize.KindGlobal
		if r.Kind != "" {
			kind = vectorize.Kind(r.Kind)
		}
		return s.Explain(ctx, r.A, r.B, kind, r.K)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r explainReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- stats ---

func (s *Service) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "stylevec_stats",
		Description: "Get store and index statistics: row counts, dimensions, degraded runs.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Stats(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
