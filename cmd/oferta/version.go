package main

import (
	"fmt"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Version needs no configuration
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Oferta Tehnica version %s\n", common.GetFullVersion())
	},
}
