// Package response pulls per-file instruction documents out of an agent's markdown response.
//
// A fenced code block becomes a workspace.FileEdit when it names a target path, either in its info string (```go internal/x/x.go, or a lone ```internal/x/x.go) or as a
// space-free code span in the paragraph right before it:
//
//	Update `internal/x/x.go`:
//
//	```go
//	------- SEARCH
//	...
//	```
//
// The info string wins when both are present. Fenced blocks without a path are skipped.
package response

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/codalotl/blockpatch/internal/workspace"
)

// Extract returns one FileEdit per path-bearing fenced code block in markdown, in document order. Document is the code block body verbatim.
func Extract(markdown []byte) ([]workspace.FileEdit, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var edits []workspace.FileEdit
	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		path := pathFromInfo(fenced, markdown)
		if path == "" {
			if p, ok := fenced.PreviousSibling().(*ast.Paragraph); ok {
				path = pathFromParagraph(p, markdown)
			}
		}
		if path != "" {
			edits = append(edits, workspace.FileEdit{Path: path, Document: blockBody(fenced, markdown)})
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return edits, nil
}

func blockBody(fenced *ast.FencedCodeBlock, source []byte) string {
	var b bytes.Buffer
	lines := fenced.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}

// pathFromInfo returns the first word after the language in the info string that looks like a path. A lone word counts only if it has a directory separator.
func pathFromInfo(fenced *ast.FencedCodeBlock, source []byte) string {
	if fenced.Info == nil {
		return ""
	}
	fields := strings.Fields(string(fenced.Info.Segment.Value(source)))
	switch len(fields) {
	case 0:
		return ""
	case 1:
		if strings.Contains(fields[0], "/") && looksLikePath(fields[0]) {
			return fields[0]
		}
		return ""
	}
	for _, f := range fields[1:] {
		if looksLikePath(f) {
			return f
		}
	}
	return ""
}

// pathFromParagraph returns the first code span in p whose text looks like a path.
func pathFromParagraph(p *ast.Paragraph, source []byte) string {
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		span, ok := c.(*ast.CodeSpan)
		if !ok {
			continue
		}
		if s := strings.TrimSpace(codeSpanText(span, source)); looksLikePath(s) {
			return s
		}
	}
	return ""
}

func codeSpanText(span *ast.CodeSpan, source []byte) string {
	var b strings.Builder
	for c := span.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(source))
		case *ast.String:
			b.Write(n.Value)
		}
	}
	return b.String()
}

// looksLikePath rejects spaces (which would catch commands like `go test ./...`) and requires a separator or an extension.
func looksLikePath(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	if strings.HasSuffix(s, "/") || strings.HasSuffix(s, ".") {
		return false
	}
	return strings.ContainsAny(s, "/.")
}
