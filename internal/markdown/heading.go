package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var parser = goldmark.DefaultParser()

// topHeading is the first level-one ATX heading ("# Title") of a document.
type topHeading struct {
	line  int // zero-based line index
	title string
}

// findTopHeading walks the parsed document and returns the first "# " heading.
// Lines inside code fences or HTML blocks are never headings.
func findTopHeading(md string) (topHeading, bool) {
	src := []byte(md)
	doc := parser.Parse(text.NewReader(src))

	var found topHeading
	ok := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, isHeading := n.(*ast.Heading)
		if !isHeading || h.Level != 1 || h.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		seg := h.Lines().At(0)
		lineStart := bytes.LastIndexByte(src[:seg.Start], '\n') + 1
		if !bytes.HasPrefix(src[lineStart:], []byte("# ")) {
			// setext or indented heading
			return ast.WalkContinue, nil
		}
		found = topHeading{
			line:  bytes.Count(src[:lineStart], []byte{'\n'}),
			title: strings.TrimSpace(string(h.Text(src))),
		}
		ok = true
		return ast.WalkStop, nil
	})
	return found, ok
}
