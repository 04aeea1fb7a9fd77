package document

import (
	"strings"
	"unicode"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
)

// PTETitle is the single title rendered at the top of a PTE document
const PTETitle = "Proceduri tehnice de execuție în cadrul prezentului Contract"

// normalizeText converts the line-oriented model output into markdown that goldmark
// parses one block per line. Only "##"-"####" headings, "- "/"• " bullets, **bold**
// spans and "|" tables are recognised; everything else is escaped and rendered as text.
func normalizeText(raw string, mode interfaces.DocumentMode) string {
	var blocks []string

	if mode == interfaces.DocumentModePTE {
		blocks = append(blocks, "## "+escapeInline(PTETitle))
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRightFunc(lines[i], unicode.IsSpace)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if mode == interfaces.DocumentModePTE {
				continue
			}
			if heading, ok := headingBlock(line); ok {
				blocks = append(blocks, heading)
			}
			continue
		}

		if strings.HasPrefix(trimmed, "|") && mode != interfaces.DocumentModePTE {
			var rows []string
			for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "|") {
				rows = append(rows, strings.TrimSpace(lines[i]))
				i++
			}
			i--
			if table := tableBlock(rows); table != "" {
				blocks = append(blocks, table)
			}
			continue
		}

		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "• ") {
			item := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "• "))
			blocks = append(blocks, "- "+formatInline(item))
			continue
		}

		blocks = append(blocks, formatInline(trimmed))
	}

	return strings.Join(blocks, "\n\n")
}

// headingBlock maps "## " to level 1, "### " to level 2 and "#### " to level 3.
// Any other "#" line is dropped.
func headingBlock(line string) (string, bool) {
	levels := []struct {
		prefix string
		marker string
	}{
		{"#### ", "###"},
		{"### ", "##"},
		{"## ", "#"},
	}
	for _, level := range levels {
		if strings.HasPrefix(line, level.prefix) {
			text := strings.TrimSpace(line[len(level.prefix):])
			if text == "" {
				return "", false
			}
			return level.marker + " " + escapeInline(text), true
		}
	}
	return "", false
}

// tableBlock builds a GFM table from raw "|" rows. Separator rows are removed,
// the first remaining row becomes the header and short rows are padded.
func tableBlock(rows []string) string {
	var data [][]string
	for _, row := range rows {
		cells := strings.Split(strings.Trim(row, "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if isSeparatorRow(cells) {
			continue
		}
		data = append(data, cells)
	}
	if len(data) == 0 {
		return ""
	}

	numCols := 0
	for _, cells := range data {
		if len(cells) > numCols {
			numCols = len(cells)
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = escapeInline(cells[i])
			}
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(data[0])
	b.WriteString("|")
	for i := 0; i < numCols; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, cells := range data[1:] {
		writeRow(cells)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func isSeparatorRow(cells []string) bool {
	for _, cell := range cells {
		for _, c := range cell {
			if c != '-' && c != ':' && c != ' ' {
				return false
			}
		}
	}
	return true
}

// formatInline escapes text and turns every odd "**"-delimited segment into bold.
func formatInline(text string) string {
	parts := strings.Split(text, "**")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i%2 == 0 {
			b.WriteString(escapeInline(part))
			continue
		}
		core := strings.TrimSpace(part)
		if core == "" {
			b.WriteString(part)
			continue
		}
		lead := part[:strings.Index(part, core)]
		trail := part[len(lead)+len(core):]
		b.WriteString(lead)
		b.WriteString("**")
		b.WriteString(escapeInline(core))
		b.WriteString("**")
		b.WriteString(trail)
	}
	return escapeLineStart(b.String())
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`!`, `\!`,
	`|`, `\|`,
	`~`, `\~`,
	`&`, `\&`,
)

func escapeInline(text string) string {
	return inlineEscaper.Replace(text)
}

// escapeLineStart escapes characters that would open a block construct
// (headings, lists, setext underlines) when they begin a line.
func escapeLineStart(text string) string {
	if text == "" {
		return text
	}
	switch text[0] {
	case '#', '-', '+', '=':
		return `\` + text
	}
	digits := 0
	for digits < len(text) && text[digits] >= '0' && text[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(text) && (text[digits] == '.' || text[digits] == ')') {
		return text[:digits] + `\` + text[digits:]
	}
	return text
}
