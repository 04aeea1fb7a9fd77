package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// Page layout in millimetres (A4, one inch margins)
const (
	pageWidth   = 210.0
	pageHeight  = 297.0
	pageMargin  = 25.4
	contentWide = pageWidth - 2*pageMargin

	tableFontSize = 10.0
	coreFont      = "Arial"
	unicodeFont   = "DocumentFont"
)

// romanianFolding replaces characters missing from the cp1252 core fonts
var romanianFolding = strings.NewReplacer(
	"ă", "a", "Ă", "A",
	"ș", "s", "Ș", "S", "ş", "s", "Ş", "S",
	"ț", "t", "Ț", "T", "ţ", "t", "Ţ", "T",
)

// buildPDF renders normalised text as an A4 PDF
func (s *Service) buildPDF(source []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	font, translate, err := s.setupFonts(pdf)
	if err != nil {
		return nil, err
	}

	size := s.fontSize()

	pdf.AddPage()
	pdf.SetFont(font, "", size)

	renderer := &pdfRenderer{
		pdf:       pdf,
		source:    source,
		font:      font,
		size:      size,
		translate: translate,
	}

	if err := renderer.render(parseMarkdown(source)); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pages", pdf.PageCount()).Msg("PDF rendered")
	return buf.Bytes(), nil
}

// setupFonts registers the configured UTF-8 fonts, or falls back to the core
// font with text translated to cp1252.
func (s *Service) setupFonts(pdf *fpdf.Fpdf) (string, func(string) string, error) {
	if s.config.FontPath == "" {
		toCP1252 := pdf.UnicodeTranslatorFromDescriptor("")
		return coreFont, func(str string) string {
			return toCP1252(romanianFolding.Replace(str))
		}, nil
	}

	boldPath := s.config.FontBoldPath
	if boldPath == "" {
		boldPath = s.config.FontPath
	}

	pdf.AddUTF8Font(unicodeFont, "", s.config.FontPath)
	pdf.AddUTF8Font(unicodeFont, "B", boldPath)
	if err := pdf.Error(); err != nil {
		return "", nil, fmt.Errorf("failed to load document font: %w", err)
	}

	return unicodeFont, func(str string) string { return str }, nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	font      string
	size      float64
	translate func(string) string

	bold      bool
	heading   bool
	listLevel int
}

func (r *pdfRenderer) render(node ast.Node) error {
	if err := ast.Walk(node, r.walk); err != nil {
		return err
	}
	return r.pdf.Error()
}

func (r *pdfRenderer) lineHeight(size float64) float64 {
	// points to millimetres with 1.15 line spacing
	return size * 0.3528 * 1.15
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold || r.heading {
		style = "B"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		return r.handleParagraph(n.(*ast.Paragraph), entering)
	case ast.KindText:
		return r.handleText(n.(*ast.Text), entering)
	case ast.KindEmphasis:
		return r.handleEmphasis(n.(*ast.Emphasis), entering)
	case ast.KindList:
		return r.handleList(n.(*ast.List), entering)
	case ast.KindListItem:
		return r.handleListItem(n.(*ast.ListItem), entering)
	case ast.KindTextBlock:
		if !entering {
			r.pdf.Ln(r.lineHeight(r.size))
		}
	case extast.KindTable:
		return r.handleTable(n.(*extast.Table), entering)
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) headingSize(level int) float64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	default:
		return r.size
	}
}

func (r *pdfRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Ln(4)
		r.heading = true
		r.pdf.SetFont(r.font, "B", r.headingSize(n.Level))
		r.pdf.SetX(pageMargin)
	} else {
		r.pdf.Ln(r.lineHeight(r.headingSize(n.Level)) + 2)
		r.heading = false
		r.updateFont()
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleParagraph(n *ast.Paragraph, entering bool) (ast.WalkStatus, error) {
	if !entering {
		// 6pt space after each paragraph
		r.pdf.Ln(r.lineHeight(r.size) + 2.1)
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleText(n *ast.Text, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	value := textValue(n, r.source)

	height := r.lineHeight(r.size)
	if heading, ok := n.Parent().(*ast.Heading); ok {
		height = r.lineHeight(r.headingSize(heading.Level))
	}
	r.pdf.Write(height, r.translate(value))
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleEmphasis(n *ast.Emphasis, entering bool) (ast.WalkStatus, error) {
	if n.Level == 2 {
		r.bold = entering
		if !r.heading {
			r.updateFont()
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleList(n *ast.List, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.listLevel++
	} else {
		r.listLevel--
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleListItem(n *ast.ListItem, entering bool) (ast.WalkStatus, error) {
	indent := pageMargin + float64(r.listLevel)*6.0
	if entering {
		r.pdf.SetX(indent - 4)
		r.pdf.Write(r.lineHeight(r.size), r.translate("•"))
		r.pdf.SetLeftMargin(indent)
		r.pdf.SetX(indent)
	} else {
		r.pdf.SetLeftMargin(pageMargin)
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleTable(n *extast.Table, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.renderTable(tableRows(n, r.source))
	}
	return ast.WalkSkipChildren, nil
}

func (r *pdfRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	numCols := len(rows[0])
	lineHeight := r.lineHeight(tableFontSize)
	colWidth := contentWide / float64(numCols)

	r.pdf.Ln(2)

	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(r.font, style, tableFontSize)

		cells := make([]string, numCols)
		maxLines := 1
		for j := 0; j < numCols; j++ {
			if j < len(row) {
				cells[j] = r.translate(row[j])
			}
			if lines := len(r.pdf.SplitText(cells[j], colWidth-2)); lines > maxLines {
				maxLines = lines
			}
		}

		rowHeight := float64(maxLines)*lineHeight + 2
		if r.pdf.GetY()+rowHeight > pageHeight-pageMargin {
			r.pdf.AddPage()
		}

		startY := r.pdf.GetY()
		for j, cell := range cells {
			x := pageMargin + float64(j)*colWidth
			if i == 0 {
				r.pdf.SetFillColor(230, 230, 230)
				r.pdf.Rect(x, startY, colWidth, rowHeight, "FD")
			} else {
				r.pdf.Rect(x, startY, colWidth, rowHeight, "D")
			}
			r.pdf.SetXY(x+1, startY+1)
			r.pdf.MultiCell(colWidth-2, lineHeight, cell, "", "L", false)
		}

		r.pdf.SetXY(pageMargin, startY+rowHeight)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.pdf.Ln(3)
	r.updateFont()
}
