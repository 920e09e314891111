package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const maxListedWarnings = 10

// SendRunSummary posts a sync-run summary to a Discord webhook so operators
// see unmatched entries and locations without digging through CI logs. Only
// the webhook REST endpoint is used; no gateway session is opened.
func SendRunSummary(webhookID, webhookToken string, upcoming int, warnings []string) error {
	session, err := discordgo.New("")
	if err != nil {
		return fmt.Errorf("SendRunSummary: can't create session: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Schedule sync finished: %d upcoming entries, %d warnings.", upcoming, len(warnings))
	for i, warning := range warnings {
		if i >= maxListedWarnings {
			fmt.Fprintf(&sb, "\n- …and %d more", len(warnings)-maxListedWarnings)
			break
		}
		fmt.Fprintf(&sb, "\n- %s", warning)
	}

	if _, err := session.WebhookExecute(webhookID, webhookToken, true, &discordgo.WebhookParams{
		Content: sb.String(),
	}); err != nil {
		return fmt.Errorf("SendRunSummary: can't execute webhook: %w", err)
	}
	return nil
}
