// Package preview tests a draft configuration against the backend without
// polluting the persisted bot list: a throwaway bot is created, receives one
// message, and is deleted no matter how the exchange went.
package preview

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/logger"
)

// userID tags preview exchanges so they never mix with real transcripts.
const userID = "preview_user"

// Line is one transcript line produced by a simulation.
type Line struct {
	Role string // "user" or "bot"
	Text string
}

// BotName builds the synthetic, identifiable name for a throwaway bot.
func BotName(draftName string) string {
	s := slug.Make(draftName)
	if s == "" {
		s = "draft"
	}
	return fmt.Sprintf("preview-%s-%s", s, uuid.NewString()[:8])
}

// Simulate runs the full ephemeral round trip: create, one exchange, delete.
//
// Failures at create or send become a bot-authored error line in the returned
// transcript instead of an error; a returned error means only that the caller
// should treat the whole preview feature as unavailable (login expired).
// The throwaway bot is deleted unconditionally once it exists.
func Simulate(ctx context.Context, client *botapi.Client, draftName, tone, purpose string, entries []botapi.FlowEntry, message string) ([]Line, error) {
	transcript := []Line{{Role: "user", Text: message}}

	res, err := client.CreateBot(ctx, botapi.BotPayload{
		Name:      BotName(draftName),
		Tone:      tone,
		Purpose:   purpose,
		Flows:     entries,
		Ephemeral: true,
	})
	if err != nil {
		if err == botapi.ErrLoginRequired {
			return nil, err
		}
		logger.Error("preview bot creation failed: %v", err)
		return append(transcript, errorLine(err)), nil
	}
	if res.ChatbotID == 0 {
		logger.Error("preview bot created without id, cannot chat or clean up")
		return append(transcript, Line{Role: "bot", Text: "No pude preparar la vista previa. Intenta de nuevo."}), nil
	}

	defer func() {
		// Cleanup must run even when the exchange failed, and must not
		// inherit a cancelled request context.
		if _, derr := client.DeleteBot(context.WithoutCancel(ctx), res.ChatbotID); derr != nil {
			logger.Warn("preview bot %d not deleted: %v", res.ChatbotID, derr)
		}
	}()

	reply, err := client.Chat(ctx, res.ChatbotID, userID, message)
	if err != nil {
		logger.Error("preview exchange failed: %v", err)
		return append(transcript, errorLine(err)), nil
	}

	return append(transcript, Line{Role: "bot", Text: reply}), nil
}

func errorLine(err error) Line {
	return Line{Role: "bot", Text: botapi.UserMessage(err)}
}
