package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/config"
	"github.com/quantumweb/botstudio/internal/logger"
	"github.com/quantumweb/botstudio/internal/tui/botwizard"
)

var wizardFlags struct {
	edit int
}

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Create or edit a chatbot step by step",
	Long: `Walk through the four-step chatbot wizard.

Without flags the wizard starts a fresh draft. With --edit it loads an
existing bot, pre-fills every step, and saves changes back to the same bot.`,
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().IntVarP(&wizardFlags.edit, "edit", "e", 0, "ID of an existing bot to edit")
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}

	var editBot *botapi.Bot
	if wizardFlags.edit != 0 {
		editBot, err = fetchBot(client, wizardFlags.edit)
		if err != nil {
			return err
		}
	}

	if err := botwizard.Run(cfg, client, editBot); err != nil {
		if errors.Is(err, botapi.ErrLoginRequired) {
			return loginHint(err)
		}
		return err
	}
	return nil
}

// fetchBot resolves a bot ID against the account's bot list.
func fetchBot(client *botapi.Client, id int) (*botapi.Bot, error) {
	bots, err := client.ListBots(context.Background())
	if err != nil {
		if errors.Is(err, botapi.ErrLoginRequired) {
			return nil, loginHint(err)
		}
		return nil, fmt.Errorf("fetching bots: %s", botapi.UserMessage(err))
	}
	for i := range bots {
		if bots[i].ID == id {
			return &bots[i], nil
		}
	}
	return nil, fmt.Errorf("no tienes un chatbot con id %d", id)
}

// loadClient loads config and builds the backend client. Shared by every
// subcommand that talks to the backend.
func loadClient() (*config.Config, *botapi.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.SessionToken == "" {
		return nil, nil, fmt.Errorf("no session token configured\n\nSet BOTSTUDIO_SESSION_TOKEN or run 'botstudio setup'")
	}
	logger.Debug("using backend %s", cfg.APIBaseURL)
	return cfg, botapi.New(cfg.APIBaseURL, cfg.SessionToken), nil
}

func loginHint(err error) error {
	return fmt.Errorf("%s\n\nRenueva tu sesión y actualiza BOTSTUDIO_SESSION_TOKEN", botapi.UserMessage(err))
}
