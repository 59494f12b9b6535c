// Package conversation holds the scripted tile-estimate dialogue: a step
// counter, the fields captured along the way, and the mapping from each
// input to the next bot messages and quick replies.
package conversation

import (
	"strings"

	"github.com/lojasmm/tilebot/internal/estimate"
)

// Controller owns one conversation. It is not safe for concurrent use;
// callers serialize access per session.
type Controller struct {
	state State
	calc  *estimate.Calculator
}

// NewController starts a conversation at the first step. A nil calc uses a
// calculator with the default unit price and process-wide randomness.
func NewController(calc *estimate.Calculator) *Controller {
	if calc == nil {
		calc = estimate.NewCalculator(nil, 0)
	}
	return &Controller{
		state: State{Step: StepTileType, Offered: StartReplies()},
		calc:  calc,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state.clone() }

// Greeting is what the surface shows before any input.
func (c *Controller) Greeting() Reply {
	return c.reply(c.state.Offered, msgGreeting)
}

// Advance maps the input to the next step's messages. It never fails: every
// input, however malformed, is stored as-is.
func (c *Controller) Advance(input string) Reply {
	c.state.LastInput = input

	switch c.state.Step {
	case StepTileType:
		c.state.TileType = ClassifyTileType(input)
		c.state.RawTileType = input
		c.state.Step = StepArea
		return c.reply(areaReplies, msgAskArea)

	case StepArea:
		c.state.Area = input
		c.state.Step = StepTileSize
		return c.reply(tileSizeReplies, msgAskTileSize)

	case StepTileSize:
		c.state.TileSize = input
		est := c.calc.Draw(c.state.Area)
		c.state.LastEstimate = &est
		c.state.Step = StepFollowUp
		r := c.reply(followUpReplies,
			msgResultIntro,
			resultSummary(est.TileCount, est.BoxCount, est.CostText),
			msgOfferMatches,
		)
		r.Estimate = &est
		return r

	default:
		msg := msgDecline
		if strings.Contains(strings.ToLower(input), "yes") {
			msg = msgShowMatches
		}
		c.state.Step = StepTileType
		return c.reply(startReplies, msg)
	}
}

func (c *Controller) reply(quick []string, messages ...string) Reply {
	c.state.Offered = append([]string(nil), quick...)
	return Reply{
		Messages:     messages,
		QuickReplies: append([]string(nil), quick...),
		Progress:     c.state.Step.Progress(),
		Advanced:     true,
	}
}
