package snippet

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// htmlNode adapts *html.Node to Node.
type htmlNode struct {
	n *html.Node
}

func (h htmlNode) Tag() string {
	if h.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.n.Data)
}

func (h htmlNode) Children() []Node {
	var children []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		children = append(children, htmlNode{n: c})
	}
	return children
}

func (h htmlNode) Text() string {
	return goquery.NewDocumentFromNode(h.n).Text()
}

// lineBreakTags start a new line in rendered text.
var lineBreakTags = map[string]bool{
	"br": true, "div": true, "p": true, "li": true, "tr": true,
	"ul": true, "ol": true, "table": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// RenderedText returns the text of root the way a browser lays it out:
// block elements and line breaks end up on their own lines.
func RenderedText(root Node) string {
	h, ok := root.(htmlNode)
	if !ok {
		return root.Text()
	}
	var b strings.Builder
	renderText(&b, goquery.NewDocumentFromNode(h.n).Selection)
	return b.String()
}

func renderText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		n := child.Get(0)
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if tag == "script" || tag == "style" {
				return
			}
			brk := lineBreakTags[tag]
			if brk {
				b.WriteByte('\n')
			}
			renderText(b, child)
			if brk {
				b.WriteByte('\n')
			}
		}
	})
}

// ParseHTML parses raw as an HTML fragment and returns its body as a Node.
func ParseHTML(raw string) (Node, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if body := findBody(doc); body != nil {
		return htmlNode{n: body}, nil
	}
	return htmlNode{n: doc}, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}
