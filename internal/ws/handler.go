package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kparks44/rumble-backend/internal/hub"
	"github.com/kparks44/rumble-backend/internal/queue"
	"github.com/kparks44/rumble-backend/internal/room"
	"github.com/kparks44/rumble-backend/internal/wire"
)

const (
	maxNicknameLen = 30
	maxChatLen     = 500
	writeTimeout   = 3 * time.Second
	// Long enough to survive a full 90s turn with no client traffic;
	// heartbeats flow during countdowns anyway.
	readTimeout = 4 * time.Minute
)

func Handler(h *hub.Hub, q *queue.Queue, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Origin policy is enforced by the CORS layer in httpapi.
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		outbox := make(chan wire.ServerMessage, 32)
		clog := log.With(zap.String("conn_id", connID))

		h.Inbox() <- hub.Register{ConnID: connID, Outbox: outbox}
		h.Inbox() <- hub.BroadcastQueueUpdate{QueueSize: q.Size()}
		defer func() {
			// Unregister tears down any session this connection was in.
			h.Inbox() <- hub.Unregister{ConnID: connID}
			if q.Remove(connID) {
				clog.Info("removed from queue on disconnect")
			}
			h.Inbox() <- hub.BroadcastQueueUpdate{QueueSize: q.Size()}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case msg := <-outbox:
					payload, err := json.Marshal(msg)
					if err != nil {
						clog.Error("marshal failed", zap.String("type", msg.Type), zap.Error(err))
						continue
					}
					ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
					_ = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
				}
			}
		}()

		c := &client{
			connID: connID,
			outbox: outbox,
			hub:    h,
			queue:  q,
			log:    clog,
		}

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm wire.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				c.pushError("bad json")
				continue
			}
			c.dispatch(cm)
		}
	}
}

// client is the per-connection dispatch state; currentRoomID tracks the
// session last joined so chat (which carries no session id) can be routed.
type client struct {
	connID        string
	currentRoomID string
	outbox        chan wire.ServerMessage
	hub           *hub.Hub
	queue         *queue.Queue
	log           *zap.Logger
}

func (c *client) dispatch(cm wire.ClientMessage) {
	switch cm.Type {
	case wire.TypeJoinQueue:
		c.joinQueue(cm)

	case wire.TypeLeaveQueue:
		if c.queue.Remove(c.connID) {
			c.hub.Inbox() <- hub.BroadcastQueueUpdate{QueueSize: c.queue.Size()}
		}

	case wire.TypeJoinRoom:
		if cm.SessionID == "" {
			return
		}
		if rm := c.room(cm.SessionID); rm != nil {
			c.currentRoomID = cm.SessionID
			rm.Inbox() <- room.Join{ConnID: c.connID, Outbox: c.outbox}
		}

	case wire.TypeWebRTCSignal:
		if len(cm.Signal) == 0 {
			return
		}
		if rm := c.room(cm.SessionID); rm != nil {
			rm.Inbox() <- room.Relay{ConnID: c.connID, Type: wire.TypeWebRTCSignal, Data: cm.Signal}
		}

	case wire.TypeChatMessage:
		c.chat(cm)

	case wire.TypeSwitchMic:
		if rm := c.room(cm.SessionID); rm != nil {
			rm.Inbox() <- room.SwitchMic{ConnID: c.connID}
		}

	case wire.TypeStartCountdown:
		// Best-effort peer notification; the server stays authoritative.
		if rm := c.room(cm.SessionID); rm != nil {
			rm.Inbox() <- room.Relay{ConnID: c.connID, Type: wire.TypeCountdownStarted}
		}

	case wire.TypeVoteNewWords:
		if cm.Vote == nil {
			return
		}
		if rm := c.room(cm.SessionID); rm != nil {
			rm.Inbox() <- room.Vote{ConnID: c.connID, On: *cm.Vote}
		}

	case wire.TypeRequestMic:
		if rm := c.room(cm.SessionID); rm != nil {
			rm.Inbox() <- room.ResyncPrivilege{ConnID: c.connID}
		}

	case wire.TypeForceMute:
		if rm := c.room(c.sessionOr(cm.SessionID)); rm != nil {
			rm.Inbox() <- room.Relay{ConnID: c.connID, Type: wire.TypeForceMuted}
		}

	case wire.TypeHeartbeat:
		if rm := c.room(cm.SessionID); rm != nil {
			rm.Inbox() <- room.Heartbeat{ConnID: c.connID}
		}

	case wire.TypeSkipBattle:
		if rm := c.room(cm.SessionID); rm != nil {
			rm.Inbox() <- room.Leave{ConnID: c.connID, Skipped: true}
		}

	default:
		c.pushError("unknown type")
	}
}

func (c *client) joinQueue(cm wire.ClientMessage) {
	nickname, err := SanitizeNickname(cm.Nickname)
	if err != nil {
		c.pushError(err.Error())
		return
	}

	entry := queue.Entry{
		ConnID:   c.connID,
		Nickname: nickname,
		JoinedAt: time.Now(),
		Outbox:   c.outbox,
	}
	if err := c.queue.Enqueue(entry); err != nil {
		// Duplicate identity is rejected silently; no session is created.
		c.log.Info("enqueue rejected", zap.String("nickname", nickname), zap.Error(err))
		return
	}
	c.hub.Inbox() <- hub.BroadcastQueueUpdate{QueueSize: c.queue.Size()}
}

func (c *client) chat(cm wire.ClientMessage) {
	if cm.User == "" {
		return
	}
	message := strings.TrimSpace(cm.Message)
	if message == "" {
		return
	}
	if len(message) > maxChatLen {
		message = message[:maxChatLen]
	}
	if rm := c.room(c.currentRoomID); rm != nil {
		rm.Inbox() <- room.Relay{
			ConnID: c.connID,
			Type:   wire.TypeChatMessage,
			Data:   wire.Chat{User: cm.User, Message: message},
		}
	}
}

// room resolves a session id to its live room; nil for unknown or expired
// sessions so every handler degrades to a no-op.
func (c *client) room(sessionID string) *room.Room {
	if sessionID == "" {
		return nil
	}
	reply := make(chan *room.Room, 1)
	c.hub.Inbox() <- hub.GetRoom{ID: sessionID, Reply: reply}
	return <-reply
}

func (c *client) sessionOr(sessionID string) string {
	if sessionID != "" {
		return sessionID
	}
	return c.currentRoomID
}

func (c *client) pushError(msg string) {
	select {
	case c.outbox <- wire.ServerMessage{Type: wire.TypeError, Data: wire.Error{Message: msg}}:
	default:
	}
}
