package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/quantumweb/botstudio/internal/logger"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

const (
	logoText1 = "█▄▄ █▀█ ▀█▀ █▀ ▀█▀ █ █ █▀▄ █ █▀█"
	logoText2 = "█▄█ █▄█  █  ▄█  █  █▄█ █▄▀ █ █▄█"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "botstudio",
	Short: "Terminal studio for building and running WhatsApp chatbots",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

botstudio is a terminal client for the QuantumWeb chatbot platform.
It walks you through creating a chatbot in four steps (basics, template,
conversation flows, finalize), previews conversations against the live
backend, and manages your existing bots from a dashboard.`

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(botsCmd)
	rootCmd.AddCommand(setupCmd)
}
