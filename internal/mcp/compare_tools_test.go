// ABOUTME: Tests for comparison MCP tool handlers.
// ABOUTME: Covers compare_headings, compare_urls, and find_policy_url with fakes and httptest.
package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/sectiondiff/internal/compare"
	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/embeddings/embeddingstest"
	"github.com/2389-research/sectiondiff/internal/fetch"
	"github.com/2389-research/sectiondiff/internal/search"
)

func testProvider() *embeddingstest.Static {
	return embeddingstest.NewStatic(map[string][]float32{
		"Data Collection":     {1, 0, 0},
		"How We Collect Data": {0.9, 0.1, 0},
		"Third-Party Sharing": {0, 1, 0},
		"Children's Privacy":  {0, 0, 1},
	})
}

func makeServer(t *testing.T, provider embeddings.Provider, searcher compare.Searcher) *Server {
	t.Helper()
	svc := compare.NewService(provider, fetch.New(fetch.Options{}), searcher, nil, nil)
	server, err := NewServer(svc)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return server
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *gomcp.CallToolResult {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}

	req := &gomcp.CallToolRequest{
		Params: &gomcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}

	ctx := context.Background()
	var result *gomcp.CallToolResult
	switch name {
	case "compare_headings":
		result, err = s.handleCompareHeadings(ctx, req)
	case "compare_urls":
		result, err = s.handleCompareURLs(ctx, req)
	case "find_policy_url":
		result, err = s.handleFindPolicyURL(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *gomcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	tc, ok := result.Content[0].(*gomcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func TestCompareHeadingsTool(t *testing.T) {
	s := makeServer(t, testProvider(), nil)
	result := callTool(t, s, "compare_headings", map[string]interface{}{
		"headings_a": []string{"Data Collection", "Third-Party Sharing"},
		"headings_b": []string{"How We Collect Data", "Children's Privacy"},
		"threshold":  0.5,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "1 matched, 1 missing in B, 1 missing in A") {
		t.Errorf("expected summary line, got:\n%s", text)
	}
	if !strings.Contains(text, "Data Collection,How We Collect Data,0.99,Matched") {
		t.Errorf("expected matched CSV row, got:\n%s", text)
	}
	if !strings.Contains(text, "-,Children's Privacy,-,Missing in A") {
		t.Errorf("expected missing-in-A CSV row, got:\n%s", text)
	}
}

func TestCompareHeadingsToolTable(t *testing.T) {
	s := makeServer(t, testProvider(), nil)
	result := callTool(t, s, "compare_headings", map[string]interface{}{
		"headings_a": []string{"Data Collection"},
		"headings_b": []string{"How We Collect Data"},
		"format":     "table",
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "✔ Matched") {
		t.Errorf("expected table output, got:\n%s", resultText(t, result))
	}
}

func TestCompareHeadingsToolValidation(t *testing.T) {
	s := makeServer(t, testProvider(), nil)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing lists", map[string]interface{}{"headings_a": []string{"x"}}, "required"},
		{"bad threshold", map[string]interface{}{"headings_a": []string{}, "headings_b": []string{}, "threshold": 3}, "threshold"},
		{"unknown heading", map[string]interface{}{"headings_a": []string{"Unknown"}, "headings_b": []string{}}, "compare_headings failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, s, "compare_headings", tt.args)
			if !result.IsError {
				t.Fatal("expected error result")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in error, got %q", tt.want, text)
			}
		})
	}
}

func TestCompareURLsTool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			_, _ = w.Write([]byte(`<h1>Data Collection</h1><h2>Third-Party Sharing</h2>`))
		case "/b":
			_, _ = w.Write([]byte(`<h2>How We Collect Data</h2><strong>Children's Privacy</strong>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := makeServer(t, testProvider(), nil)
	result := callTool(t, s, "compare_urls", map[string]interface{}{
		"url_a":     server.URL + "/a",
		"url_b":     server.URL + "/b",
		"threshold": 0.5,
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "Third-Party Sharing,Not Found,-,Missing in B") {
		t.Errorf("unexpected output:\n%s", resultText(t, result))
	}

	result = callTool(t, s, "compare_urls", map[string]interface{}{
		"url_a": server.URL + "/a",
		"url_b": server.URL + "/missing",
	})
	if !result.IsError || !strings.Contains(resultText(t, result), "retrieval failed") {
		t.Errorf("expected retrieval failure, got %q", resultText(t, result))
	}

	result = callTool(t, s, "compare_urls", map[string]interface{}{"url_a": server.URL + "/a"})
	if !result.IsError {
		t.Error("expected error when url_b is missing")
	}
}

func TestFindPolicyURLTool(t *testing.T) {
	serp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"organic_results":[{"link":"https://www.nrl.com/privacy-policy"}]}`))
	}))
	defer serp.Close()

	s := makeServer(t, testProvider(), search.NewClient(serp.URL, "key"))
	result := callTool(t, s, "find_policy_url", map[string]interface{}{"name": "NRL"})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if got := resultText(t, result); got != "https://www.nrl.com/privacy-policy" {
		t.Errorf("unexpected url %q", got)
	}

	result = callTool(t, s, "find_policy_url", map[string]interface{}{"name": ""})
	if !result.IsError {
		t.Error("expected error for empty name")
	}
}

func TestFindPolicyURLToolNotConfigured(t *testing.T) {
	s := makeServer(t, testProvider(), nil)
	result := callTool(t, s, "find_policy_url", map[string]interface{}{"name": "NRL"})
	if !result.IsError || !strings.Contains(resultText(t, result), "SERPAPI_API_KEY") {
		t.Errorf("expected not-configured error, got %q", resultText(t, result))
	}
}
