package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/server"
	"github.com/spf13/cobra"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server used by Creatio",
	Long:  `Starts the HTTP server exposing the proposal endpoint that downloads the methodology from Creatio, generates the procedures and uploads the resulting document back to the record.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	serveCmd.Flags().StringVar(&serverHost, "host", "", "Server host (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	common.ApplyFlagOverrides(config, serverPort, serverHost)
	common.PrintBanner(config, logger)

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	srv := server.New(application)

	errChan := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("server goroutine panicked: %v", r)
			}
		}()
		errChan <- srv.Start()
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s", srv.Addr())).
		Msg("Server ready - Press Ctrl+C to stop")

	select {
	case err := <-errChan:
		if err != nil {
			return err
		}
		return nil
	case <-cmd.Context().Done():
		logger.Info().Msg("Interrupt signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	logger.Info().Msg("Server stopped")
	return nil
}
