package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved endpoints
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("Oferta Tehnica", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("creatio", config.Creatio.BaseURL).
		Str("provider", string(config.LLM.DefaultProvider)).
		Msg("Oferta Tehnica starting")
}
