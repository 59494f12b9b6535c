// Package webchat hosts the estimate conversation for the embeddable web
// widget: the page itself, a websocket that streams paced replies, and an
// HTTP fallback for headless clients.
package webchat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lojasmm/tilebot/internal/conversation"
	"github.com/lojasmm/tilebot/internal/logging"
	"github.com/lojasmm/tilebot/internal/metrics"
	"github.com/lojasmm/tilebot/internal/pacing"
	"github.com/lojasmm/tilebot/internal/session"
	"github.com/lojasmm/tilebot/internal/store"
)

// Outbox queues estimate deliveries for the email collaborator.
type Outbox interface {
	Enqueue(d store.Delivery) (store.Delivery, error)
}

const (
	eventSession pacing.EventType = "session"
	eventError   pacing.EventType = "error"
	eventPong    pacing.EventType = "pong"
)

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // message, quick_reply, email_open, email_cancel, email_submit, export, ping
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// OutboundMessage is what the widget receives.
type OutboundMessage struct {
	pacing.Event
	SessionID string `json:"session_id,omitempty"`
	Code      string `json:"code,omitempty"`
}

type Handler struct {
	sessions   *session.Manager
	dispatcher *conversation.Dispatcher
	kinds      map[conversation.Kind]bool
	timings    pacing.Timings
	outbox     Outbox
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger
	origins    []string
}

type Options struct {
	Timings        pacing.Timings
	Outbox         Outbox
	Metrics        *metrics.ChatMetrics
	Logger         *logging.Logger
	AllowedOrigins []string
}

func NewHandler(sessions *session.Manager, dispatcher *conversation.Dispatcher, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if dispatcher == nil {
		dispatcher = conversation.NewDispatcher()
	}
	kinds := make(map[conversation.Kind]bool)
	for _, k := range dispatcher.Kinds() {
		kinds[k] = true
	}
	return &Handler{
		sessions:   sessions,
		dispatcher: dispatcher,
		kinds:      kinds,
		timings:    opts.Timings,
		outbox:     opts.Outbox,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		origins:    opts.AllowedOrigins,
	}
}

// kindLabel bounds the metric label to the registered kinds; whatever a
// client invents is counted as "unknown".
func (h *Handler) kindLabel(k conversation.Kind) string {
	if h.kinds[k] {
		return string(k)
	}
	return "unknown"
}

// toInput maps a widget message type onto a conversation input kind.
func toInput(msg InboundMessage) conversation.Input {
	kind := conversation.Kind(strings.ToLower(strings.TrimSpace(msg.Type)))
	if kind == "" || kind == "message" {
		kind = conversation.KindText
	}
	return conversation.Input{
		Kind:      kind,
		Text:      msg.Text,
		Name:      msg.Name,
		Recipient: msg.Email,
	}
}

func (h *Handler) acquire(sessionID string) (*session.Session, bool) {
	s, created := h.sessions.Acquire(sessionID)
	if created {
		h.metrics.SessionStarted()
	}
	return s, created
}

// opening is what a surface shows when it attaches to a session: the
// greeting for a new conversation, the current choices for an existing one.
func opening(ctrl *conversation.Controller, created bool) pacing.Plan {
	if created {
		return pacing.Greeting(ctrl.Greeting())
	}
	st := ctrl.State()
	return pacing.Greeting(conversation.Reply{
		QuickReplies: st.Offered,
		Progress:     st.Step.Progress(),
	})
}

func (h *Handler) open(sessionID string) pacing.Plan {
	s, created := h.acquire(sessionID)
	var plan pacing.Plan
	_ = s.With(func(ctrl *conversation.Controller) error {
		plan = opening(ctrl, created)
		return nil
	})
	return plan
}

// process dispatches one input for a session and performs the collaborator
// side effects. The returned plan is what the surface should render; it
// starts with the greeting when the session had to be created, which is
// also the case after it expired under an open surface. A stale quick reply
// is rejected together with a plan holding the current choices so the
// surface can resync.
func (h *Handler) process(sessionID string, in conversation.Input) (pacing.Plan, error) {
	s, created := h.acquire(sessionID)

	var (
		out    conversation.Outcome
		resync pacing.Plan
	)
	err := s.With(func(ctrl *conversation.Controller) error {
		if created {
			resync = opening(ctrl, true)
		}
		var err error
		out, err = h.dispatcher.Dispatch(ctrl, in)
		if ie, ok := conversation.AsInputError(err); ok && ie.Type == conversation.ErrUnknownQuickReply && !created {
			resync = opening(ctrl, false)
		}
		return err
	})
	if err != nil {
		h.metrics.ObserveInput(h.kindLabel(in.Kind), "rejected")
		h.logger.Warn("webchat: input rejected", "session_id", sessionID, "kind", h.kindLabel(in.Kind), "error", err)
		return resync, err
	}

	result := "ok"
	switch {
	case out.Alert != "":
		result = "blocked"
	case out.Ignored():
		result = "ignored"
	}
	h.metrics.ObserveInput(h.kindLabel(in.Kind), result)

	if out.Reply != nil && out.Reply.Estimate != nil {
		h.metrics.ObserveEstimate(*out.Reply.Estimate)
	}
	if out.Delivery != nil {
		h.enqueue(sessionID, out.Delivery)
	}
	if out.Export != nil {
		h.logger.Info("webchat: export requested", "session_id", sessionID, "has_estimate", out.Export.Estimate != nil)
	}

	return append(resync, h.timings.Script(out)...), nil
}

func (h *Handler) enqueue(sessionID string, req *conversation.DeliveryRequest) {
	if h.outbox == nil {
		h.logger.Warn("webchat: no outbox configured, dropping delivery", "session_id", sessionID)
		return
	}
	d, err := h.outbox.Enqueue(store.Delivery{
		SessionID: sessionID,
		Name:      req.Name,
		Recipient: req.Recipient,
		TileType:  string(req.TileType),
		TileSize:  req.TileSize,
		Estimate:  req.Estimate,
	})
	if err != nil {
		h.logger.Error("webchat: failed to enqueue delivery", "session_id", sessionID, "error", err)
		return
	}
	h.logger.Info("webchat: delivery queued", "session_id", sessionID, "delivery_id", d.ID)
}

func errorMessage(err error) OutboundMessage {
	out := OutboundMessage{Event: pacing.Event{Type: eventError, Text: "Sorry, something went wrong. Please try again."}}
	if ie, ok := conversation.AsInputError(err); ok {
		out.Text = ie.Message
		out.Code = string(ie.Type)
	}
	return out
}

// errorResponse is the HTTP body for a rejected input. Events carries the
// plan the client needs to resync, if any.
type errorResponse struct {
	OutboundMessage
	Events []pacing.Event `json:"events,omitempty"`
}

// HandleMessage is the HTTP fallback: it processes one input and returns
// every event of the resulting plan at once.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = session.NewID()
	}

	plan, err := h.process(sessionID, toInput(req))
	if err != nil {
		msg := errorMessage(err)
		msg.SessionID = sessionID
		writeJSON(w, http.StatusBadRequest, errorResponse{OutboundMessage: msg, Events: plan.Events()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"events":     plan.Events(),
	})
}

// HandleState returns the current choices and progress for a session.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"events":     h.open(sessionID).Events(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
