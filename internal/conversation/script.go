package conversation

import "fmt"

const (
	msgGreeting     = "Hi! I can help you work out how many tiles you need and what they will cost. What are you tiling?"
	msgAskArea      = "Great choice! What's the total surface area you need to cover? You can enter it in Sq.Ft or Sq.M."
	msgAskTileSize  = "Got it. What size of tile are you planning to use?"
	msgResultIntro  = "Based on your input, here's what you'll need:"
	msgOfferMatches = "Would you like to see tiles that match your selection?"
	msgShowMatches  = "Here are some tiles that match your requirements:"
	msgDecline      = "Okay, feel free to ask if you need anything else!"

	// MsgMissingContact blocks the email form until both fields are filled.
	MsgMissingContact = "Please enter both your name and email address."
	msgExportStarted  = "Your estimate document is being prepared. The download will start shortly."
)

var (
	startReplies    = []string{"Floor Tiles", "Wall Tiles", "Both"}
	areaReplies     = []string{"100 sq.ft", "25 sq.m", "15 sq.ft", "Other size"}
	tileSizeReplies = []string{"12x12 in", "24x24 in", "6x36 in", "3x6 in", "Custom size"}
	followUpReplies = []string{"Yes, show me", "Not now"}
)

// StartReplies is the quick-reply set offered at the beginning of a cycle.
func StartReplies() []string { return append([]string(nil), startReplies...) }

func resultSummary(tiles, boxes int, cost string) string {
	return fmt.Sprintf("You will need approximately %d tiles (%d boxes). The estimated cost is %s including a 10%% buffer for cuts and waste.", tiles, boxes, cost)
}

func emailSent(recipient string) string {
	return fmt.Sprintf("I've sent the results to %s. Check your inbox!", recipient)
}
