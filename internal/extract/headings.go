// ABOUTME: Extracts heading-like text spans from an HTML document.
// ABOUTME: Selects h1-h6 and strong elements and keeps short, distinct, non-empty texts.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Length bounds, in runes, for a span to count as a heading.
const (
	MinHeadingLen = 3
	MaxHeadingLen = 100
)

var headingSelector = cascadia.MustCompile("h1, h2, h3, h4, h5, h6, strong")

// Headings returns heading texts in document order, deduplicated first-seen.
func Headings(doc []byte) ([]string, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]struct{})
	var out []string
	for _, n := range cascadia.QueryAll(root, headingSelector) {
		text := nodeText(n)
		if l := utf8.RuneCountInString(text); l < MinHeadingLen || l > MaxHeadingLen {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out, nil
}

// nodeText concatenates descendant text with whitespace collapsed.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
