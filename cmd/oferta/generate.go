package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/services/proposal"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a section of the technical proposal from local PDFs",
}

var (
	pteInput  string
	pteOutput string
	pteModel  string
)

var generatePTECmd = &cobra.Command{
	Use:   "pte",
	Short: "Generate the technical execution procedures from a methodology PDF",
	RunE:  runGeneratePTE,
}

var (
	rezumatNotice        string
	rezumatDatasheet     string
	rezumatATR           string
	rezumatOutput        string
	rezumatModel         string
	rezumatLeader        string
	rezumatAssociate     string
	rezumatSubcontractor string
	rezumatWarranty      int
	rezumatPMExperience  int
)

var generateRezumatCmd = &cobra.Command{
	Use:   "rezumat",
	Short: "Generate the Rezumat section from the notice, datasheet and ATR PDFs",
	RunE:  runGenerateRezumat,
}

func init() {
	generatePTECmd.Flags().StringVarP(&pteInput, "input", "i", "", "Methodology PDF")
	generatePTECmd.Flags().StringVarP(&pteOutput, "output", "o", "proceduri_tehnice_executie.docx", "Output document (.docx, or .pdf for PDF)")
	generatePTECmd.Flags().StringVar(&pteModel, "model", "", "Model override, e.g. claude-sonnet-4-20250514 or gemini/gemini-2.5-pro")
	_ = generatePTECmd.MarkFlagRequired("input")

	generateRezumatCmd.Flags().StringVar(&rezumatNotice, "notice", "", "Anunt de participare PDF")
	generateRezumatCmd.Flags().StringVar(&rezumatDatasheet, "datasheet", "", "Fisa de date PDF")
	generateRezumatCmd.Flags().StringVar(&rezumatATR, "atr", "", "Aviz tehnic de racordare PDF")
	generateRezumatCmd.Flags().StringVarP(&rezumatOutput, "output", "o", "rezumat.docx", "Output document (.docx, or .pdf for PDF)")
	generateRezumatCmd.Flags().StringVar(&rezumatModel, "model", "", "Model override")
	generateRezumatCmd.Flags().StringVar(&rezumatLeader, "leader", "", "Association leader (overrides config)")
	generateRezumatCmd.Flags().StringVar(&rezumatAssociate, "associate", "", "Associate (overrides config)")
	generateRezumatCmd.Flags().StringVar(&rezumatSubcontractor, "subcontractor", "", "Subcontractor (overrides config)")
	generateRezumatCmd.Flags().IntVar(&rezumatWarranty, "warranty", 0, "Warranty in months (overrides config)")
	generateRezumatCmd.Flags().IntVar(&rezumatPMExperience, "pm-experience", 0, "Similar projects led by the project manager (overrides config)")
	for _, name := range []string{"notice", "datasheet", "atr"} {
		_ = generateRezumatCmd.MarkFlagRequired(name)
	}

	generateCmd.AddCommand(generatePTECmd, generateRezumatCmd)
}

// printProgress writes generation progress to stdout
func printProgress(message string) {
	fmt.Println(message)
}

// rawTextPath returns the path of the raw model output saved next to the document
func rawTextPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + "_raw.txt"
}

// extractFile validates a local PDF and extracts the text of its pages
func extractFile(ctx context.Context, extractor interfaces.PDFExtractor, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	metadata, err := extractor.GetMetadata(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := metadata.CheckExtractable(); err != nil {
		return nil, err
	}

	return extractor.ExtractPages(ctx, data)
}

// saveResult writes the raw text and renders the document
func saveResult(builder interfaces.DocumentBuilder, result *interfaces.GenerationResult, output string, mode interfaces.DocumentMode) error {
	rawPath := rawTextPath(output)
	if err := os.WriteFile(rawPath, []byte(result.Text), 0o644); err != nil {
		return fmt.Errorf("failed to save raw text: %w", err)
	}

	if err := builder.SaveDocument(result.Text, output, mode); err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}

	fmt.Printf("Document salvat: %s\n", output)
	fmt.Printf("Text brut: %s\n", rawPath)
	fmt.Printf("Tokeni: %d input, %d output (%d apeluri)\n", result.InputTokens, result.OutputTokens, result.Calls)
	return nil
}

func runGeneratePTE(cmd *cobra.Command, args []string) error {
	if pteModel != "" {
		config.Generation.PTEModel = pteModel
	}

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()

	printProgress(fmt.Sprintf("Se extrage textul din %s...", pteInput))
	pages, err := extractFile(ctx, application.PDFExtractor, pteInput)
	if err != nil {
		return fmt.Errorf("failed to extract PDF text: %w", err)
	}
	printProgress(fmt.Sprintf("Extras: %d pagini", len(pages)))

	result, err := application.Generator.GeneratePTE(ctx, pages, printProgress)
	if err != nil {
		return fmt.Errorf("failed to generate PTE: %w", err)
	}

	return saveResult(application.DocumentBuilder, result, pteOutput, interfaces.DocumentModePTE)
}

func runGenerateRezumat(cmd *cobra.Command, args []string) error {
	if rezumatModel != "" {
		config.Generation.SummaryModel = rezumatModel
	}
	company := proposal.CompanyProfileFromConfig(&config.Company)
	if rezumatLeader != "" {
		company.Leader = rezumatLeader
	}
	if rezumatAssociate != "" {
		company.Associate = rezumatAssociate
	}
	if rezumatSubcontractor != "" {
		company.Subcontractor = rezumatSubcontractor
	}
	if rezumatWarranty > 0 {
		company.WarrantyMonths = rezumatWarranty
	}
	if rezumatPMExperience > 0 {
		company.PMExperience = rezumatPMExperience
	}

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	input := &interfaces.SummaryInput{Company: company}

	sources := []struct {
		path  string
		pages *[]string
	}{
		{path: rezumatNotice, pages: &input.NoticePages},
		{path: rezumatDatasheet, pages: &input.DatasheetPages},
		{path: rezumatATR, pages: &input.ATRPages},
	}
	for _, source := range sources {
		printProgress(fmt.Sprintf("Se extrage textul din %s...", source.path))
		pages, err := extractFile(ctx, application.PDFExtractor, source.path)
		if err != nil {
			return fmt.Errorf("failed to extract PDF text from %s: %w", source.path, err)
		}
		*source.pages = pages
	}

	result, err := application.Generator.GenerateSummary(ctx, input, printProgress)
	if err != nil {
		return fmt.Errorf("failed to generate Rezumat: %w", err)
	}

	return saveResult(application.DocumentBuilder, result, rezumatOutput, interfaces.DocumentModeGeneric)
}
