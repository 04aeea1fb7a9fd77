package document

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// Word measurements: twips for layout, half-points for font sizes
const (
	docxPageWidth   = 11906
	docxPageHeight  = 16838
	docxPageMargin  = 1440 // one inch
	docxTextWidth   = docxPageWidth - 2*docxPageMargin
	docxSpaceBefore = 120 // 6pt
	docxLineSpacing = 276 // 1.15 lines
	docxListIndent  = 360
	docxTableSize   = 20 // 10pt
	docxHeaderFill  = "E6E6E6"
)

// buildDOCX renders normalised text as an A4 Word document
func (s *Service) buildDOCX(source []byte) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	renderer := &docxRenderer{
		doc:    doc,
		source: source,
		font:   s.config.FontName,
		size:   int(s.fontSize() * 2),
	}
	if renderer.font == "" {
		renderer.font = defaultDocxFont
	}

	if err := ast.Walk(parseMarkdown(source), renderer.walk); err != nil {
		return nil, fmt.Errorf("failed to render DOCX: %w", err)
	}

	// section properties must follow the body content
	doc.Document.Body.Items = append(doc.Document.Body.Items, &docx.SectPr{
		PgSz: &docx.PgSz{W: docxPageWidth, H: docxPageHeight},
		PgMar: &docx.PgMar{
			Top:    docxPageMargin,
			Left:   docxPageMargin,
			Bottom: docxPageMargin,
			Right:  docxPageMargin,
			Header: 708,
			Footer: 708,
		},
	})

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate DOCX output: %w", err)
	}

	s.logger.Debug().Int("blocks", len(doc.Document.Body.Items)).Msg("DOCX rendered")
	return buf.Bytes(), nil
}

type docxRenderer struct {
	doc    *docx.Docx
	source []byte
	font   string
	size   int

	para      *docx.Paragraph
	itemPara  bool
	bold      bool
	heading   int
	listLevel int
}

func (r *docxRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		if entering {
			r.heading = n.(*ast.Heading).Level
			r.para = r.newParagraph()
		} else {
			r.heading = 0
			r.para = nil
		}
	case ast.KindParagraph, ast.KindTextBlock:
		if !entering {
			r.para = nil
			break
		}
		if r.itemPara {
			r.itemPara = false
			break
		}
		r.para = r.newParagraph()
	case ast.KindText:
		if entering {
			r.writeText(textValue(n.(*ast.Text), r.source))
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		}
	case ast.KindList:
		if entering {
			r.listLevel++
		} else {
			r.listLevel--
		}
	case ast.KindListItem:
		if entering {
			r.para = r.newParagraph()
			r.para.Properties.Ind = &docx.Ind{
				Left:    docxListIndent * (r.listLevel + 1),
				Hanging: docxListIndent,
			}
			r.formatRun(addText(r.para, "•\t"), r.size, false)
			r.itemPara = true
		} else {
			r.para = nil
			r.itemPara = false
		}
	case extast.KindTable:
		if entering {
			r.renderTable(tableRows(n.(*extast.Table), r.source))
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *docxRenderer) newParagraph() *docx.Paragraph {
	p := r.doc.AddParagraph()
	p.Properties = &docx.ParagraphProperties{
		Spacing: &docx.Spacing{
			Before:   docxSpaceBefore,
			Line:     docxLineSpacing,
			LineRule: "auto",
		},
	}
	return p
}

func (r *docxRenderer) headingSize(level int) int {
	switch level {
	case 1:
		return 32
	case 2:
		return 28
	default:
		return r.size
	}
}

func (r *docxRenderer) writeText(value string) {
	if r.para == nil {
		r.para = r.newParagraph()
	}
	size := r.size
	if r.heading > 0 {
		size = r.headingSize(r.heading)
	}
	r.formatRun(addText(r.para, value), size, r.bold || r.heading > 0)
}

// addText appends a run that keeps leading and trailing spaces
func addText(p *docx.Paragraph, value string) *docx.Run {
	run := p.AddText(value)
	for _, child := range run.Children {
		if t, ok := child.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	return run
}

func (r *docxRenderer) formatRun(run *docx.Run, halfPoints int, bold bool) {
	size := strconv.Itoa(halfPoints)
	run.Font(r.font, r.font, r.font, "").Size(size).SizeCs(size)
	if bold {
		run.Bold()
	}
}

func (r *docxRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	numCols := len(rows[0])
	colWidths := make([]int64, numCols)
	for i := range colWidths {
		colWidths[i] = int64(docxTextWidth / numCols)
	}

	table := r.doc.AddTableTwips(make([]int64, len(rows)), colWidths, docxTextWidth, nil)
	for i, row := range rows {
		for j, cell := range table.TableRows[i].TableCells {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			if i == 0 {
				cell.Shade("clear", "auto", docxHeaderFill)
			}
			r.formatRun(addText(cell.AddParagraph(), value), docxTableSize, i == 0)
		}
	}

	r.para = nil
}
