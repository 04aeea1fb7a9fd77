package interfaces

import (
	"context"
)

// GenerationResult is generated proposal text with token usage summed over all calls
type GenerationResult struct {
	Text         string `json:"text"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	Calls        int    `json:"calls"`
}

// CompanyProfile describes the bidding association
type CompanyProfile struct {
	Leader         string
	Associate      string
	Subcontractor  string
	WarrantyMonths int
	PMExperience   int
}

// SummaryInput holds the extracted pages of the tender documents used for the Rezumat section
type SummaryInput struct {
	NoticePages    []string
	DatasheetPages []string
	ATRPages       []string
	Company        CompanyProfile
}

// ProposalGenerator produces sections of the technical proposal
type ProposalGenerator interface {
	// GeneratePTE transforms the methodology pages into technical execution procedures
	GeneratePTE(ctx context.Context, pages []string, progress ProgressFunc) (*GenerationResult, error)

	// GenerateSummary produces the Rezumat section from the tender documents
	GenerateSummary(ctx context.Context, input *SummaryInput, progress ProgressFunc) (*GenerationResult, error)
}
