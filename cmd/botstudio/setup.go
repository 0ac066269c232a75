package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantumweb/botstudio/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
	token   string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create botstudio configuration file",
	Long: `Create a botstudio configuration file with sensible defaults.

By default, creates a global config at ~/.config/botstudio/botstudio.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVarP(&setupFlags.token, "token", "t", "", "Session token for the backend")
}

func runSetup(cmd *cobra.Command, args []string) error {
	// Determine target path
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	// Check if config already exists
	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := &config.Config{
		APIBaseURL:   "https://api.quantumweb.mx",
		SessionToken: setupFlags.token,
		Tone:         "amigable",
		UploadMaxMB:  5,
		LogLevel:     "info",
		LogFile:      "",
	}

	// Write config to target location
	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Print success message
	fmt.Printf("Config written to: %s\n\n", targetPath)
	if setupFlags.token == "" {
		fmt.Println("Add your session token (session_token) to the file or set BOTSTUDIO_SESSION_TOKEN.")
	}
	fmt.Println("Run 'botstudio wizard' to create your first chatbot.")

	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
