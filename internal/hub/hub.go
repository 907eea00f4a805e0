package hub

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kparks44/rumble-backend/internal/battle"
	"github.com/kparks44/rumble-backend/internal/queue"
	"github.com/kparks44/rumble-backend/internal/room"
	"github.com/kparks44/rumble-backend/internal/wire"
)

// beatPlaylist is the fixed set of backing tracks; one is chosen per session
// and shared by both participants.
var beatPlaylist = []string{
	"hmm-freestyle-beat",
	"12am-freestyle",
	"what-ya-mean",
	"late-night-mobbin",
}

const wordsPerSession = 2

type HubMsg interface{ isHubMsg() }

// CreateRoom allocates a session for two paired participants: words drawn from
// the selector, beat and initial mic holder chosen uniformly at random.
type CreateRoom struct {
	A, B  queue.Entry
	Reply chan *room.Room
}

type GetRoom struct {
	ID    string
	Reply chan *room.Room
}

type RemoveRoom struct {
	ID string
}

// Register adds a connection to the global broadcast set. Queue stats are
// public and go to every connection; session content never travels this path.
type Register struct {
	ConnID string
	Outbox chan wire.ServerMessage
}

type Unregister struct {
	ConnID string
}

// BroadcastQueueUpdate fans queue stats out to every registered connection.
// The queue computes its own size; the hub only adds the online count.
type BroadcastQueueUpdate struct {
	QueueSize int
}

type Stats struct {
	Reply chan StatsView
}

type StatsView struct {
	ActiveRooms int
	UsersOnline int
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()           {}
func (GetRoom) isHubMsg()              {}
func (RemoveRoom) isHubMsg()           {}
func (Register) isHubMsg()             {}
func (Unregister) isHubMsg()           {}
func (BroadcastQueueUpdate) isHubMsg() {}
func (Stats) isHubMsg()                {}
func (ShutdownHub) isHubMsg()          {}

// WordSource draws unique word sets for new sessions.
type WordSource interface {
	DrawAvoiding(n int, seen map[string]bool) []string
}

type Hub struct {
	inbox      chan HubMsg
	rooms      map[string]*room.Room
	membership map[string]string // connID -> roomID
	conns      map[string]chan wire.ServerMessage
	selector   WordSource
	rules      battle.Rules
	clock      clockwork.Clock
	rng        *rand.Rand
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

type Options struct {
	Selector WordSource
	Rules    battle.Rules
	Clock    clockwork.Clock
	Rand     *rand.Rand
	Log      *zap.Logger
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:      make(chan HubMsg, 64),
		rooms:      make(map[string]*room.Room),
		membership: make(map[string]string),
		conns:      make(map[string]chan wire.ServerMessage),
		selector:   opts.Selector,
		rules:      opts.Rules,
		clock:      opts.Clock,
		rng:        opts.Rand,
		log:        opts.Log,
		ctx:        ctx,
		cancel:     cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.createRoom(msg.A, msg.B)

			case GetRoom:
				msg.Reply <- h.rooms[msg.ID] // may be nil

			case RemoveRoom:
				if rm, ok := h.rooms[msg.ID]; ok {
					delete(h.rooms, msg.ID)
					for connID, roomID := range h.membership {
						if roomID == rm.ID {
							delete(h.membership, connID)
						}
					}
				}

			case Register:
				h.conns[msg.ConnID] = msg.Outbox

			case Unregister:
				delete(h.conns, msg.ConnID)
				// A vanished participant terminates its session immediately.
				if roomID, ok := h.membership[msg.ConnID]; ok {
					delete(h.membership, msg.ConnID)
					if rm := h.rooms[roomID]; rm != nil {
						rm.Inbox() <- room.Leave{ConnID: msg.ConnID}
					}
				}

			case BroadcastQueueUpdate:
				h.broadcast(wire.ServerMessage{
					Type: wire.TypeQueueUpdate,
					Data: wire.QueueUpdate{QueueSize: msg.QueueSize, UsersOnline: len(h.conns)},
				})

			case Stats:
				msg.Reply <- StatsView{ActiveRooms: len(h.rooms), UsersOnline: len(h.conns)}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) createRoom(a, b queue.Entry) *room.Room {
	id := uuid.NewString()
	holder := a.ConnID
	if h.rng.IntN(2) == 1 {
		holder = b.ConnID
	}

	rm := room.New(h.ctx, room.Config{
		ID:            id,
		A:             room.Participant{ConnID: a.ConnID, Nickname: a.Nickname, Outbox: a.Outbox},
		B:             room.Participant{ConnID: b.ConnID, Nickname: b.Nickname, Outbox: b.Outbox},
		Words:         h.selector.DrawAvoiding(wordsPerSession, nil),
		Beat:          beatPlaylist[h.rng.IntN(len(beatPlaylist))],
		InitialHolder: holder,
		Rules:         h.rules,
		Clock:         h.clock,
		Log:           h.log,
		Selector:      h.selector,
		OnClose: func(roomID string) {
			h.inbox <- RemoveRoom{ID: roomID}
		},
	})

	h.rooms[id] = rm
	h.membership[a.ConnID] = id
	h.membership[b.ConnID] = id
	return rm
}

func (h *Hub) broadcast(msg wire.ServerMessage) {
	for connID, ch := range h.conns {
		select {
		case ch <- msg:
			// ok
		default:
			h.log.Warn("dropping broadcast for slow connection", zap.String("conn_id", connID))
		}
	}
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	clear(h.membership)
	clear(h.conns)
	h.cancel()
}
