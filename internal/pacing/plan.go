// Package pacing turns conversation outcomes into timed render plans that
// imitate a typing assistant.
package pacing

import (
	"time"

	"github.com/lojasmm/tilebot/internal/conversation"
	"github.com/lojasmm/tilebot/internal/estimate"
)

type EventType string

const (
	EventTyping       EventType = "typing"
	EventMessage      EventType = "message"
	EventQuickReplies EventType = "quick_replies"
	EventProgress     EventType = "progress"
	EventResult       EventType = "result"
	EventReveal       EventType = "reveal"
	EventAlert        EventType = "alert"
	EventModal        EventType = "modal"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Event is one render instruction for a presentation surface.
type Event struct {
	Type     EventType        `json:"type"`
	Role     string           `json:"role,omitempty"`
	Text     string           `json:"text,omitempty"`
	Replies  []string         `json:"replies,omitempty"`
	Progress *int             `json:"progress,omitempty"`
	Result   *estimate.Result `json:"result,omitempty"`
	Open     *bool            `json:"open,omitempty"`
}

// Frame is an event rendered Delay after the previous frame.
type Frame struct {
	Delay time.Duration
	Event Event
}

type Plan []Frame

// Events drops the timing.
func (p Plan) Events() []Event {
	out := make([]Event, len(p))
	for i, f := range p {
		out[i] = f.Event
	}
	return out
}

// Duration is the time from the first frame to the last.
func (p Plan) Duration() time.Duration {
	var d time.Duration
	for _, f := range p {
		d += f.Delay
	}
	return d
}

// Timings are measured from the moment an input is processed.
type Timings struct {
	Typing  time.Duration
	Reveal  time.Duration
	Summary time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Typing:  time.Second,
		Reveal:  500 * time.Millisecond,
		Summary: 1500 * time.Millisecond,
	}
}

// Script lays out the frames for one outcome. User echoes, alerts and
// modal changes render immediately; scripted replies wait behind a typing
// indicator, and an estimate is revealed in stages.
func (t Timings) Script(out conversation.Outcome) Plan {
	var p Plan
	if out.Echo != "" {
		p = append(p, Frame{Event: Event{Type: EventMessage, Role: RoleUser, Text: out.Echo}})
	}
	if out.Alert != "" {
		p = append(p, Frame{Event: Event{Type: EventAlert, Text: out.Alert}})
	}
	switch out.Modal {
	case conversation.ModalOpened:
		p = append(p, Frame{Event: modal(true)})
	case conversation.ModalClosed:
		p = append(p, Frame{Event: modal(false)})
	}

	r := out.Reply
	if r == nil {
		return p
	}
	if !r.Advanced {
		for _, m := range r.Messages {
			p = append(p, Frame{Event: bot(m)})
		}
		return p
	}

	p = append(p, Frame{Event: Event{Type: EventTyping}})
	if r.Estimate == nil || len(r.Messages) == 0 {
		delay := t.Typing
		for _, m := range r.Messages {
			p = append(p, Frame{Delay: delay, Event: bot(m)})
			delay = 0
		}
		return append(p, Frame{Delay: delay, Event: progress(r.Progress)}, Frame{Event: quickReplies(r.QuickReplies)})
	}

	p = append(p,
		Frame{Delay: t.Typing, Event: progress(conversation.StepEstimate.Progress())},
		Frame{Event: bot(r.Messages[0])},
		Frame{Event: Event{Type: EventResult, Result: r.Estimate}},
		Frame{Delay: t.Reveal, Event: Event{Type: EventReveal}},
	)
	delay := max(t.Summary-t.Reveal, 0)
	for _, m := range r.Messages[1:] {
		p = append(p, Frame{Delay: delay, Event: bot(m)})
		delay = 0
	}
	return append(p, Frame{Delay: delay, Event: progress(r.Progress)}, Frame{Event: quickReplies(r.QuickReplies)})
}

// Greeting lays out the initial screen without any typing delay.
func Greeting(r conversation.Reply) Plan {
	var p Plan
	for _, m := range r.Messages {
		p = append(p, Frame{Event: bot(m)})
	}
	return append(p, Frame{Event: progress(r.Progress)}, Frame{Event: quickReplies(r.QuickReplies)})
}

func bot(text string) Event {
	return Event{Type: EventMessage, Role: RoleAssistant, Text: text}
}

func progress(v int) Event {
	return Event{Type: EventProgress, Progress: &v}
}

func quickReplies(replies []string) Event {
	return Event{Type: EventQuickReplies, Replies: append([]string{}, replies...)}
}

func modal(open bool) Event {
	return Event{Type: EventModal, Open: &open}
}
