package testsupport

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup is a parsed HTML fragment with small query helpers for assertions.
type Markup struct {
	nodes []*html.Node
}

// ParseMarkup parses an HTML fragment as if it were the content of a div.
func ParseMarkup(t *testing.T, fragment []byte) Markup {
	t.Helper()

	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(string(fragment)), context)
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	return Markup{nodes: nodes}
}

// ParseDocument parses a complete HTML document.
func ParseDocument(t *testing.T, document []byte) Markup {
	t.Helper()

	root, err := html.Parse(strings.NewReader(string(document)))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return Markup{nodes: []*html.Node{root}}
}

// HasClass reports whether n carries the class in its class attribute.
func HasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(Attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

// All returns every element with the given tag name in document order.
func (m Markup) All(tag string) []*html.Node {
	var out []*html.Node
	m.walk(func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

// ByID returns the first element with the given id.
func (m Markup) ByID(id string) *html.Node {
	var found *html.Node
	m.walk(func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
		}
	})
	return found
}

// Texts returns the text content of every element with the given tag.
func (m Markup) Texts(tag string) []string {
	nodes := m.All(tag)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Text(n))
	}
	return out
}

func (m Markup) walk(fn func(*html.Node)) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		fn(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, n := range m.nodes {
		visit(n)
	}
}

// Attr returns the value of an attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports whether the attribute is present.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// Text returns the concatenated, trimmed text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.TrimSpace(b.String())
}
