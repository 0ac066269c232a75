package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/tui"
	"github.com/quantumweb/botstudio/internal/tui/botwizard"
)

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "Manage your chatbots from the dashboard",
	Long: `Open the chatbot dashboard.

The dashboard lists your bots, lets you chat with them live, connect a
WhatsApp number, delete bots, and jump into the wizard to edit one.`,
	RunE: runBots,
}

func runBots(cmd *cobra.Command, args []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}

	// The dashboard and wizard alternate: editing a bot exits the
	// dashboard, runs the wizard seeded with that bot, and returns.
	for {
		res, err := tui.Run(cfg, client)
		if err != nil {
			if errors.Is(err, botapi.ErrLoginRequired) {
				return loginHint(err)
			}
			return err
		}
		if res.EditBot == nil {
			return nil
		}
		if err := botwizard.Run(cfg, client, res.EditBot); err != nil {
			if errors.Is(err, botapi.ErrLoginRequired) {
				return loginHint(err)
			}
			return err
		}
	}
}
