package proposal

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// DefaultChunkThreshold is the number of characters above which PTE input is split in two
const DefaultChunkThreshold = 30000

// Compile-time assertion
var _ interfaces.ProposalGenerator = (*Generator)(nil)

// Generator produces proposal sections through a content generator
type Generator struct {
	llm     interfaces.ContentGenerator
	prompts *Prompts
	config  *common.GenerationConfig
	logger  arbor.ILogger
}

// NewGenerator creates a proposal generator
func NewGenerator(llm interfaces.ContentGenerator, prompts *Prompts, config *common.GenerationConfig, logger arbor.ILogger) *Generator {
	if config == nil {
		config = &common.GenerationConfig{}
	}
	return &Generator{
		llm:     llm,
		prompts: prompts,
		config:  config,
		logger:  logger,
	}
}

// CompanyProfileFromConfig maps the [company] config section to a profile
func CompanyProfileFromConfig(config *common.CompanyConfig) interfaces.CompanyProfile {
	return interfaces.CompanyProfile{
		Leader:         config.Leader,
		Associate:      config.Associate,
		Subcontractor:  config.Subcontractor,
		WarrantyMonths: config.WarrantyMonths,
		PMExperience:   config.PMExperience,
	}
}

// splitPages returns the page chunks sent to the model: one chunk when the text
// fits the threshold, otherwise the pages split in two halves.
func splitPages(pages []string, threshold int) [][]string {
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}
	if utf8.RuneCountInString(strings.Join(pages, "\n")) <= threshold || len(pages) < 2 {
		return [][]string{pages}
	}
	mid := len(pages) / 2
	return [][]string{pages[:mid], pages[mid:]}
}

// GeneratePTE transforms the methodology pages into technical execution procedures
func (g *Generator) GeneratePTE(ctx context.Context, pages []string, progress interfaces.ProgressFunc) (*interfaces.GenerationResult, error) {
	fullText := strings.Join(pages, "\n")
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("no text to generate from")
	}

	system, err := g.prompts.Render(PromptSystemPTE, nil)
	if err != nil {
		return nil, err
	}

	totalChars := utf8.RuneCountInString(fullText)
	chunks := splitPages(pages, g.config.ChunkThreshold)
	if len(chunks) == 1 {
		progress.Report(fmt.Sprintf("Document scurt (%d caractere) - un singur apel API...", totalChars))
	} else {
		progress.Report(fmt.Sprintf("Document mare (%d caractere) - se trimite în 2 părți (%d + %d pagini)...", totalChars, len(chunks[0]), len(chunks[1])))
	}

	result := &interfaces.GenerationResult{}
	outputs := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		var label, partInfo string
		if len(chunks) > 1 {
			label = fmt.Sprintf("[Partea %d/%d] ", i+1, len(chunks))
			partInfo = fmt.Sprintf(" (partea %d/%d)", i+1, len(chunks))
			progress.Report(fmt.Sprintf("Partea %d/%d: Se trimite către Claude API...", i+1, len(chunks)))
		} else {
			progress.Report("Se trimite către Claude API...")
		}

		prompt, err := g.prompts.Render(PromptUserPTE, pteData{
			PartInfo:  partInfo,
			ChunkText: strings.Join(chunk, "\n"),
		})
		if err != nil {
			return nil, err
		}

		resp, err := g.llm.GenerateContent(ctx, &interfaces.ContentRequest{
			SystemInstruction: system,
			Prompt:            prompt,
			Model:             g.config.PTEModel,
			MaxTokens:         g.config.MaxTokens,
			Label:             label,
			Progress:          progress,
		})
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}

		outputs = append(outputs, resp.Text)
		result.InputTokens += resp.InputTokens
		result.OutputTokens += resp.OutputTokens
		result.Calls++
	}

	result.Text = strings.Join(outputs, "\n\n")
	progress.Report(fmt.Sprintf("Generat cu succes! Total: %d input tokeni, %d output tokeni", result.InputTokens, result.OutputTokens))

	g.logger.Info().
		Int("pages", len(pages)).
		Int("chars", totalChars).
		Int("calls", result.Calls).
		Int64("input_tokens", result.InputTokens).
		Int64("output_tokens", result.OutputTokens).
		Msg("PTE generated")

	return result, nil
}

// GenerateSummary produces the Rezumat section from the tender documents
func (g *Generator) GenerateSummary(ctx context.Context, input *interfaces.SummaryInput, progress interfaces.ProgressFunc) (*interfaces.GenerationResult, error) {
	if input == nil {
		return nil, fmt.Errorf("summary input is required")
	}

	referenceStyle, err := LoadReferenceStyle(g.config.ReferenceStylePath)
	if err != nil {
		g.logger.Warn().Err(err).Str("path", g.config.ReferenceStylePath).Msg("Reference style ignored")
		referenceStyle = ""
	}

	system, err := g.prompts.Render(PromptSystemRezumat, nil)
	if err != nil {
		return nil, err
	}
	prompt, err := g.prompts.Render(PromptUserRezumat, rezumatData{
		Company:        input.Company,
		NoticeText:     strings.Join(input.NoticePages, "\n"),
		DatasheetText:  strings.Join(input.DatasheetPages, "\n"),
		ATRText:        strings.Join(input.ATRPages, "\n"),
		ReferenceStyle: referenceStyle,
	})
	if err != nil {
		return nil, err
	}

	progress.Report("Se trimite către Claude API...")

	resp, err := g.llm.GenerateContent(ctx, &interfaces.ContentRequest{
		SystemInstruction: system,
		Prompt:            prompt,
		Model:             g.config.SummaryModel,
		MaxTokens:         g.config.MaxTokens,
		Progress:          progress,
	})
	if err != nil {
		return nil, err
	}

	progress.Report(fmt.Sprintf("Generat cu succes! Input: %d tokeni, Output: %d tokeni", resp.InputTokens, resp.OutputTokens))

	g.logger.Info().
		Bool("reference_style", referenceStyle != "").
		Int64("input_tokens", resp.InputTokens).
		Int64("output_tokens", resp.OutputTokens).
		Msg("Rezumat generated")

	return &interfaces.GenerationResult{
		Text:         resp.Text,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Calls:        1,
	}, nil
}
