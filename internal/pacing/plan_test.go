package pacing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/tilebot/internal/conversation"
	"github.com/lojasmm/tilebot/internal/estimate"
)

func types(p Plan) []EventType {
	out := make([]EventType, len(p))
	for i, f := range p {
		out[i] = f.Event.Type
	}
	return out
}

func TestScriptPlainStep(t *testing.T) {
	out := conversation.Outcome{
		Echo: "Floor Tiles",
		Reply: &conversation.Reply{
			Messages:     []string{"ask area"},
			QuickReplies: []string{"100 sq.ft"},
			Progress:     25,
			Advanced:     true,
		},
	}

	p := DefaultTimings().Script(out)

	assert.Equal(t, []EventType{EventMessage, EventTyping, EventMessage, EventProgress, EventQuickReplies}, types(p))
	assert.Equal(t, RoleUser, p[0].Event.Role)
	assert.Zero(t, p[0].Delay)
	assert.Equal(t, time.Second, p[2].Delay)
	assert.Equal(t, RoleAssistant, p[2].Event.Role)
	require.NotNil(t, p[3].Event.Progress)
	assert.Equal(t, 25, *p[3].Event.Progress)
	assert.Equal(t, []string{"100 sq.ft"}, p[4].Event.Replies)
	assert.Equal(t, time.Second, p.Duration())
}

func TestScriptEstimateIsStaged(t *testing.T) {
	est := &estimate.Result{TileCount: 60, BoxCount: 6, Area: "25 sq.m", CostText: "₹9,000"}
	out := conversation.Outcome{
		Echo: "24x24 in",
		Reply: &conversation.Reply{
			Messages:     []string{"intro", "summary", "offer"},
			QuickReplies: []string{"Yes, show me", "Not now"},
			Progress:     100,
			Advanced:     true,
			Estimate:     est,
		},
	}

	p := DefaultTimings().Script(out)

	assert.Equal(t, []EventType{
		EventMessage, EventTyping,
		EventProgress, EventMessage, EventResult,
		EventReveal,
		EventMessage, EventMessage, EventProgress, EventQuickReplies,
	}, types(p))
	assert.Equal(t, 75, *p[2].Event.Progress)
	assert.Equal(t, time.Second, p[2].Delay)
	assert.Equal(t, "intro", p[3].Event.Text)
	assert.Same(t, est, p[4].Event.Result)
	assert.Equal(t, 500*time.Millisecond, p[5].Delay)
	assert.Equal(t, time.Second, p[6].Delay)
	assert.Equal(t, "summary", p[6].Event.Text)
	assert.Equal(t, "offer", p[7].Event.Text)
	assert.Equal(t, 100, *p[8].Event.Progress)
	assert.Equal(t, 2500*time.Millisecond, p.Duration())
}

func TestScriptSummaryBeforeRevealClampsToZero(t *testing.T) {
	timings := Timings{Typing: 0, Reveal: time.Second, Summary: 0}
	out := conversation.Outcome{Reply: &conversation.Reply{
		Messages: []string{"intro", "summary"}, Advanced: true, Estimate: &estimate.Result{},
	}}

	for _, f := range timings.Script(out) {
		assert.GreaterOrEqual(t, f.Delay, time.Duration(0))
	}
}

func TestScriptImmediateOutcomes(t *testing.T) {
	alert := DefaultTimings().Script(conversation.Outcome{Alert: conversation.MsgMissingContact})
	require.Len(t, alert, 1)
	assert.Equal(t, EventAlert, alert[0].Event.Type)

	sent := DefaultTimings().Script(conversation.Outcome{
		Modal: conversation.ModalClosed,
		Reply: &conversation.Reply{Messages: []string{"sent"}},
	})
	assert.Equal(t, []EventType{EventModal, EventMessage}, types(sent))
	require.NotNil(t, sent[0].Event.Open)
	assert.False(t, *sent[0].Event.Open)
	assert.Zero(t, sent.Duration())

	assert.Empty(t, DefaultTimings().Script(conversation.Outcome{}))
}

func TestGreeting(t *testing.T) {
	c := conversation.NewController(nil)
	p := Greeting(c.Greeting())

	assert.Equal(t, []EventType{EventMessage, EventProgress, EventQuickReplies}, types(p))
	assert.Equal(t, conversation.StartReplies(), p[2].Event.Replies)
	assert.Len(t, p.Events(), 3)
}
