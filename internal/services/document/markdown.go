package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// parseMarkdown parses normalised text into the AST walked by both renderers
func parseMarkdown(source []byte) ast.Node {
	return markdown.Parser().Parse(text.NewReader(source))
}

// textValue returns the unescaped text of n; line breaks inside a block become spaces
func textValue(n *ast.Text, source []byte) string {
	value := string(util.UnescapePunctuations(n.Segment.Value(source)))
	if n.SoftLineBreak() || n.HardLineBreak() {
		value += " "
	}
	return value
}

// tableRows returns the cell text of the header row followed by the body rows
func tableRows(table *extast.Table, source []byte) [][]string {
	var rows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *extast.TableHeader:
			rows = append(rows, rowCells(row, source))
		case *extast.TableRow:
			rows = append(rows, rowCells(row, source))
		}
	}
	return rows
}

func rowCells(row ast.Node, source []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); !ok {
			continue
		}
		var b strings.Builder
		_ = ast.Walk(cell, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
			if t, ok := node.(*ast.Text); ok && entering {
				b.Write(util.UnescapePunctuations(t.Segment.Value(source)))
			}
			return ast.WalkContinue, nil
		})
		cells = append(cells, strings.TrimSpace(b.String()))
	}
	return cells
}
