package markdown

import (
	"strconv"

	"github.com/yuin/goldmark/ast"

	"github.com/wudi/flowkit/geom"
	"github.com/wudi/flowkit/render"
)

var (
	codeBackground = render.RGB(0.95, 0.95, 0.95)
	quoteBorder    = render.RGB(0.8, 0.8, 0.8)
	tableBorder    = render.RGB(0.6, 0.6, 0.6)
	cellPadding    = geom.UniformInsets(3)
)

func itoa(n int) string { return strconv.Itoa(n) }

// nodeText extracts the plain text under a node.
func nodeText(n ast.Node, src []byte) string {
	return string(n.Text(src))
}
