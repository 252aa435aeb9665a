// ABOUTME: MCP tool implementations for heading comparison.
// ABOUTME: Registers compare_headings, compare_urls, and find_policy_url.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/2389-research/sectiondiff/internal/align"
	"github.com/2389-research/sectiondiff/internal/compare"
	"github.com/2389-research/sectiondiff/internal/models"
	"github.com/2389-research/sectiondiff/internal/report"
	"github.com/2389-research/sectiondiff/internal/search"
)

const optionProperties = `
				"threshold": {"type": "number", "minimum": 0, "maximum": 1, "description": "Minimum cosine similarity for a match (default 0.75, or 0.65 when normalizing)"},
				"normalize": {"type": "boolean", "description": "Strip numbering, punctuation, and stopwords before comparing"},
				"stopwords": {"type": "array", "items": {"type": "string"}, "description": "Extra words to drop when normalizing, e.g. organization names"},
				"one_to_one": {"type": "boolean", "description": "Allow each B heading to be matched at most once"},
				"format": {"type": "string", "enum": ["csv", "table"], "description": "Output format (default: csv)"}`

func (s *Server) registerCompareTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "compare_headings",
		Description: "Compare two lists of section headings by semantic similarity. Reports which headings match, which are missing from B, and which are missing from A.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"headings_a": {"type": "array", "items": {"type": "string"}, "description": "Headings from document A"},
				"headings_b": {"type": "array", "items": {"type": "string"}, "description": "Headings from document B"},` + optionProperties + `
			},
			"required": ["headings_a", "headings_b"]
		}`),
	}, s.handleCompareHeadings)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "compare_urls",
		Description: "Fetch two web pages, extract their headings (h1-h6 and bold text), and compare them by semantic similarity.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"url_a": {"type": "string", "description": "URL of document A"},
				"url_b": {"type": "string", "description": "URL of document B"},` + optionProperties + `
			},
			"required": ["url_a", "url_b"]
		}`),
	}, s.handleCompareURLs)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "find_policy_url",
		Description: "Search the web for an organization's privacy policy and return its URL.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Organization name, e.g. NRL"}
			},
			"required": ["name"]
		}`),
	}, s.handleFindPolicyURL)
}

// compareArgs holds the option fields shared by comparison tools.
type compareArgs struct {
	Threshold *float64 `json:"threshold"`
	Normalize *bool    `json:"normalize"`
	Stopwords []string `json:"stopwords"`
	OneToOne  *bool    `json:"one_to_one"`
	Format    string   `json:"format"`
}

// options overlays call arguments on the server defaults.
func (s *Server) options(args compareArgs) (compare.Options, error) {
	opts := s.defaults
	if args.Threshold != nil {
		if err := align.ValidateThreshold(*args.Threshold); err != nil {
			return opts, err
		}
		opts.Threshold = args.Threshold
	}
	if args.Normalize != nil {
		opts.Normalize = *args.Normalize
	}
	if len(args.Stopwords) > 0 {
		opts.Stopwords = append(append([]string(nil), opts.Stopwords...), args.Stopwords...)
	}
	if args.OneToOne != nil {
		opts.Mode = align.ModeGreedy
		if *args.OneToOne {
			opts.Mode = align.ModeOneToOne
		}
	}
	switch args.Format {
	case "", "csv", "table":
	default:
		return opts, fmt.Errorf("unknown format %q (use csv or table)", args.Format)
	}
	return opts, nil
}

func (s *Server) handleCompareHeadings(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		HeadingsA []string `json:"headings_a"`
		HeadingsB []string `json:"headings_b"`
		compareArgs
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.HeadingsA == nil || args.HeadingsB == nil {
		return toolError("headings_a and headings_b are required"), nil
	}
	opts, err := s.options(args.compareArgs)
	if err != nil {
		return toolError("%v", err), nil
	}

	r, err := s.service.CompareHeadings(ctx, args.HeadingsA, args.HeadingsB, opts)
	if err != nil {
		return s.failure("compare_headings", err), nil
	}
	return reportResult(r, args.Format)
}

func (s *Server) handleCompareURLs(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		URLA string `json:"url_a"`
		URLB string `json:"url_b"`
		compareArgs
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if strings.TrimSpace(args.URLA) == "" || strings.TrimSpace(args.URLB) == "" {
		return toolError("url_a and url_b are required"), nil
	}
	opts, err := s.options(args.compareArgs)
	if err != nil {
		return toolError("%v", err), nil
	}

	r, err := s.service.CompareURLs(ctx, args.URLA, args.URLB, opts)
	if err != nil {
		return s.failure("compare_urls", err), nil
	}
	return reportResult(r, args.Format)
}

func (s *Server) handleFindPolicyURL(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if strings.TrimSpace(args.Name) == "" {
		return toolError("name is required"), nil
	}

	url, err := s.service.FindPolicyURL(ctx, args.Name)
	if err != nil {
		if errors.Is(err, search.ErrNotConfigured) {
			return toolError("policy search is not configured: set SERPAPI_API_KEY or search.api_key"), nil
		}
		return s.failure("find_policy_url", err), nil
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: url}},
	}, nil
}

func (s *Server) failure(tool string, err error) *gomcp.CallToolResult {
	s.logger.Warn("tool call failed", zap.String("tool", tool), zap.Error(err))
	return toolError("%s failed: %v", tool, err)
}

func reportResult(r *models.Report, format string) (*gomcp.CallToolResult, error) {
	var body string
	if format == "table" {
		body = report.RenderTable(r, report.TableOptions{Plain: true})
	} else {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, r); err != nil {
			return toolError("failed to render report: %v", err), nil
		}
		body = report.Summary(r) + "\n\n" + buf.String()
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: body}},
	}, nil
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
