package proposal

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Prompt template names
const (
	PromptSystemPTE     = "system_pte"
	PromptUserPTE       = "user_pte"
	PromptSystemRezumat = "system_rezumat"
	PromptUserRezumat   = "user_rezumat"
)

// pteData is the data of the user_pte template
type pteData struct {
	PartInfo  string
	ChunkText string
}

// rezumatData is the data of the user_rezumat template
type rezumatData struct {
	Company        interfaces.CompanyProfile
	NoticeText     string
	DatasheetText  string
	ATRText        string
	ReferenceStyle string
}

// Prompts loads prompt templates with resolution order:
// 1. User override: dir/{name}.tmpl
// 2. Embedded default: prompts/{name}.tmpl
type Prompts struct {
	dir       string
	templates map[string]*template.Template
}

// LoadPrompts parses all prompt templates once
func LoadPrompts(dir string) (*Prompts, error) {
	p := &Prompts{
		dir:       dir,
		templates: make(map[string]*template.Template),
	}

	for _, name := range []string{PromptSystemPTE, PromptUserPTE, PromptSystemRezumat, PromptUserRezumat} {
		source, err := p.source(name)
		if err != nil {
			return nil, err
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(string(source))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %s: %w", name, err)
		}
		p.templates[name] = tmpl
	}

	return p, nil
}

func (p *Prompts) source(name string) ([]byte, error) {
	if p.dir != "" {
		if data, err := os.ReadFile(filepath.Join(p.dir, name+".tmpl")); err == nil {
			return data, nil
		}
	}

	data, err := promptFS.ReadFile("prompts/" + name + ".tmpl")
	if err != nil {
		return nil, fmt.Errorf("prompt '%s' not found (checked user override and embedded)", name)
	}
	return data, nil
}

// Render executes the named template with data
func (p *Prompts) Render(name string, data any) (string, error) {
	tmpl, ok := p.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// LoadReferenceStyle reads the "reference_style" key of a JSON context file.
// A missing path or file yields "".
func LoadReferenceStyle(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read reference style: %w", err)
	}

	var context struct {
		ReferenceStyle string `json:"reference_style"`
	}
	if err := json.Unmarshal(data, &context); err != nil {
		return "", fmt.Errorf("failed to parse reference style %s: %w", path, err)
	}
	return context.ReferenceStyle, nil
}
