package document

import (
	"testing"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeText_PTE(t *testing.T) {
	raw := "## Heading\n\n**Etapa 1:** pregatire\n- item unu\n• item doi\n| a | b |\n#### sub"

	got := normalizeText(raw, interfaces.DocumentModePTE)

	expected := "## Proceduri tehnice de execuție în cadrul prezentului Contract\n\n" +
		"**Etapa 1:** pregatire\n\n" +
		"- item unu\n\n" +
		"- item doi\n\n" +
		`\| a \| b \|`
	assert.Equal(t, expected, got)
}

func TestNormalizeText_GenericHeadings(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "## Rezumat", want: "# Rezumat"},
		{line: "### 1.1 Date", want: "## 1.1 Date"},
		{line: "#### Detalii", want: "### Detalii"},
		{line: "# Titlu", want: ""},
		{line: "##### Prea adanc", want: ""},
		{line: "##", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.line, interfaces.DocumentModeGeneric))
		})
	}
}

func TestNormalizeText_Table(t *testing.T) {
	raw := "Intro\n| Rol | Companie |\n|-----|:---:|\n| Lider | CRC AG |\n| Asociat |\nDupa"

	got := normalizeText(raw, interfaces.DocumentModeGeneric)

	expected := "Intro\n\n" +
		"| Rol | Companie |\n" +
		"| --- | --- |\n" +
		"| Lider | CRC AG |\n" +
		"| Asociat |  |\n\n" +
		"Dupa"
	assert.Equal(t, expected, got)
}

func TestNormalizeText_SeparatorOnlyTableDropped(t *testing.T) {
	assert.Equal(t, "", normalizeText("|---|---|\n| : | - |", interfaces.DocumentModeGeneric))
}

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "text simplu", want: "text simplu"},
		{name: "bold", in: "a **b** c", want: "a **b** c"},
		{name: "bold with inner spaces", in: "a ** b ** c", want: "a  **b**  c"},
		{name: "unclosed bold", in: "**deschis", want: "**deschis**"},
		{name: "escapes", in: "x_y *z* [a]", want: `x\_y \*z\* \[a\]`},
		{name: "ordered list marker", in: "1. punct", want: `1\. punct`},
		{name: "heading marker", in: "#tag", want: `\#tag`},
		{name: "dash", in: "---", want: `\---`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatInline(tt.in))
		})
	}
}
