package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/noah-isme/hemo-scheduler-api/api/swagger"
)

// @title Hemo Scheduler API
// @version 1.0.0
// @description Dialysis chair scheduling service
// @BasePath /
// @schemes http

func main() {
	rootCmd := &cobra.Command{
		Use:           "hemo-scheduler",
		Short:         "Dialysis chair scheduling service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(wipeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
