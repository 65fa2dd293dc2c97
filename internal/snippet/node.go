package snippet

import "strings"

// Node is the minimal tree shape the extractor walks. Any markup parser can
// provide it.
type Node interface {
	// Tag is the lower-case element name, empty for text and other nodes.
	Tag() string
	Children() []Node
	// Text is the concatenated text content of the node and its descendants.
	Text() string
}

var blockTags = map[string]bool{
	"p":  true,
	"h1": true,
	"h2": true,
	"h3": true,
	"h4": true,
	"h5": true,
	"h6": true,
}

// IsBlock reports whether tag is collected as a snippet fragment.
func IsBlock(tag string) bool {
	return blockTags[tag]
}

// Fragments walks root depth-first and returns the text of up to limit block
// elements in document order. Non-block elements are descended into; blocks
// holding only whitespace are skipped.
func Fragments(root Node, limit int) []string {
	if root == nil || limit <= 0 {
		return nil
	}
	out := make([]string, 0, limit)
	collect(root, limit, &out)
	return out
}

func collect(n Node, limit int, out *[]string) {
	for _, child := range n.Children() {
		if len(*out) >= limit {
			return
		}
		if IsBlock(child.Tag()) {
			if text := strings.TrimSpace(child.Text()); text != "" {
				*out = append(*out, text)
			}
			continue
		}
		collect(child, limit, out)
	}
}
