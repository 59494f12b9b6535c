package notify

import (
	"fmt"
	"strings"

	"github.com/lojasmm/tilebot/internal/store"
)

const estimateSubject = "Your tile estimate"

// ComposeEstimate renders the email for one outbox delivery.
func ComposeEstimate(d store.Delivery) EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", d.Name)
	if d.Estimate == nil {
		b.WriteString("You asked us to send your tile estimate, but the estimate was not finished yet. ")
		b.WriteString("Come back to the chat any time to complete it.\n")
	} else {
		b.WriteString("Here is the estimate from your chat with us:\n\n")
		if d.TileType != "" {
			fmt.Fprintf(&b, "Tile type: %s\n", d.TileType)
		}
		fmt.Fprintf(&b, "Area: %s\n", d.Estimate.Area)
		if d.TileSize != "" {
			fmt.Fprintf(&b, "Tile size: %s\n", d.TileSize)
		}
		fmt.Fprintf(&b, "Tiles needed: %d\n", d.Estimate.TileCount)
		fmt.Fprintf(&b, "Boxes: %d\n", d.Estimate.BoxCount)
		fmt.Fprintf(&b, "Estimated cost: %s (includes a 10%% buffer for cuts and waste)\n", d.Estimate.CostText)
	}
	b.WriteString("\nThanks for planning your project with us.\n")

	return EmailMessage{
		To:      d.Recipient,
		ToName:  d.Name,
		Subject: estimateSubject,
		Body:    b.String(),
	}
}
