package htmldoc

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// extractText returns the whitespace-collapsed text under a node.
func extractText(n *html.Node) string {
	return strings.TrimSpace(foldSpace(rawText(n)))
}

// rawText concatenates the text nodes under n without normalization.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return sb.String()
}

// foldSpace folds runs of whitespace into single spaces the way HTML
// rendering does. Boundary spaces survive as one space so words from
// adjacent nodes stay separated.
func foldSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			space = true
		default:
			if space {
				sb.WriteByte(' ')
				space = false
			}
			sb.WriteRune(r)
		}
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func itoa(n int) string { return strconv.Itoa(n) }

// intAttr parses an integer attribute, returning zero when absent or bad.
func intAttr(n *html.Node, key string) int {
	for _, a := range n.Attr {
		if a.Key == key {
			v, err := strconv.Atoi(a.Val)
			if err != nil {
				return 0
			}
			return v
		}
	}
	return 0
}
