package translate

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var ignoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// looksLikeHTML reports whether rich-text answers need markup-aware handling.
func looksLikeHTML(text string) bool {
	open := strings.Index(text, "<")
	return open >= 0 && strings.Contains(text[open:], ">")
}

// htmlFragment is a parsed answer whose text nodes can be swapped out.
type htmlFragment struct {
	doc      *goquery.Document
	nodes    []*html.Node
	elements int
}

func parseHTMLFragment(content string) (*htmlFragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	fragment := &htmlFragment{doc: doc}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			fragment.elements++
			if ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "translate" && attr.Val == "no" {
					return
				}
			}
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			fragment.nodes = append(fragment.nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, body := range doc.Find("body").Nodes {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return fragment, nil
}

// hasMarkup reports whether the body holds at least one element. Text such as
// "a < b & c > d" parses to a lone text node and must be sent verbatim.
func (f *htmlFragment) hasMarkup() bool {
	return f.elements > 0
}

// texts returns the distinct trimmed segments in document order.
func (f *htmlFragment) texts() []string {
	seen := make(map[string]bool, len(f.nodes))
	out := make([]string, 0, len(f.nodes))
	for _, n := range f.nodes {
		text := strings.TrimSpace(n.Data)
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	return out
}

// render applies translations keyed by source segment and serializes the body.
func (f *htmlFragment) render(translations map[string]string) (string, error) {
	for _, n := range f.nodes {
		if translated, ok := translations[strings.TrimSpace(n.Data)]; ok {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	}
	return f.doc.Find("body").Html()
}

func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	return original[:leadingLen] + strings.TrimSpace(translated) + original[len(original)-trailingLen:]
}
