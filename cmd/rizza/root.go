package main

import (
	"context"
	"os"

	"github.com/sandevgo/rizza/internal/config"
	"github.com/sandevgo/rizza/pkg/log"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "rizza",
	Short: "Rizza — AI messaging strategist backend",
	Long:  `Rizza is the backend for an AI relationship and messaging strategist: chat with memory, screenshot analysis, reply suggestions and voice transcription.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
