package webchat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lojasmm/tilebot/internal/pacing"
	"github.com/lojasmm/tilebot/internal/session"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsQueueSize = 64
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(h.origins, origin)
		},
	}
}

// HandleWebSocket upgrades the connection and streams paced replies. Each
// connection has its own player, so a new input fast-forwards whatever the
// previous one still had pending.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("webchat: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = session.NewID()
	}
	logger := h.logger.With("session_id", sessionID)

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan OutboundMessage, wsQueueSize)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	push := func(out OutboundMessage) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}
	player := pacing.NewPlayer(func(e pacing.Event) { push(OutboundMessage{Event: e}) })

	push(OutboundMessage{Event: pacing.Event{Type: eventSession}, SessionID: sessionID})
	player.Play(ctx, h.open(sessionID))
	logger.Info("webchat: connection opened")

	for {
		var in InboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			logger.Debug("webchat: connection closed", "error", err)
			cancel()
			<-writerDone
			return
		}

		if strings.EqualFold(strings.TrimSpace(in.Type), "ping") {
			push(OutboundMessage{Event: pacing.Event{Type: eventPong}})
			continue
		}

		plan, err := h.process(sessionID, toInput(in))
		if err != nil {
			player.Flush()
			push(errorMessage(err))
		}
		if len(plan) > 0 {
			player.Play(ctx, plan)
		}
	}
}
