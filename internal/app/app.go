package app

import (
	"fmt"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/handlers"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/httpclient"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/services/creatio"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/services/document"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/services/llm"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/services/pdf"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/services/proposal"
	"github.com/ternarybob/arbor"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Creatio integration
	Gateway      *creatio.Gateway
	FileService  interfaces.FileTransferService
	PDFExtractor interfaces.PDFExtractor

	// Generation
	LLMFactory      *llm.ProviderFactory
	Generator       interfaces.ProposalGenerator
	DocumentBuilder interfaces.DocumentBuilder

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	ProposalHandler *handlers.ProposalHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("creatio", app.Gateway.BaseURL()).
		Str("default_provider", string(cfg.LLM.DefaultProvider)).
		Msg("Application initialization complete")

	return app, nil
}

// initServices initializes the Creatio client, PDF and generation services
func (a *App) initServices() error {
	httpClient, err := httpclient.NewSessionClient(common.MustDuration(a.Config.Creatio.Timeout, creatio.DefaultTimeout))
	if err != nil {
		return err
	}

	retrier := creatio.NewRetrier(
		a.Config.Creatio.MaxRetries,
		common.MustDuration(a.Config.Creatio.RetryDelay, creatio.DefaultRetryDelay),
		a.Logger,
	)
	a.Gateway = creatio.NewGateway(&a.Config.Creatio, httpClient, retrier, a.Logger)
	a.FileService = creatio.NewFileService(a.Gateway, a.Logger)
	a.Logger.Debug().
		Int("max_retries", retrier.MaxRetries).
		Dur("retry_delay", retrier.Delay).
		Msg("Creatio gateway initialized")

	a.PDFExtractor = pdf.NewExtractor(a.Logger)
	a.DocumentBuilder = document.NewService(&a.Config.Document, a.Logger)

	a.LLMFactory = llm.NewProviderFactory(&a.Config.Gemini, &a.Config.Claude, &a.Config.LLM, a.Logger)

	prompts, err := proposal.LoadPrompts(a.Config.Generation.PromptsDir)
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	a.Generator = proposal.NewGenerator(a.LLMFactory, prompts, &a.Config.Generation, a.Logger)

	return nil
}

// initHandlers initializes HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.ProposalHandler = handlers.NewProposalHandler(
		a.FileService,
		a.PDFExtractor,
		a.Generator,
		a.DocumentBuilder,
		a.Config.Generation.OutputFileName,
		a.Logger,
	)
}

// Close releases provider clients
func (a *App) Close() error {
	if a.LLMFactory != nil {
		if err := a.LLMFactory.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM providers")
		}
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}
