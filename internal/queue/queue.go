package queue

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kparks44/rumble-backend/internal/wire"
)

var ErrNicknameTaken = errors.New("nickname already queued under another connection")

// Entry is a participant awaiting pairing.
type Entry struct {
	ConnID   string
	Nickname string
	JoinedAt time.Time
	Outbox   chan wire.ServerMessage
}

// PairFunc creates the session for two freshly matched participants and
// returns its id. It runs inside the queue's critical section so no two
// enqueues can consume the same head entry.
type PairFunc func(a, b Entry) (string, error)

type Queue struct {
	mu      sync.Mutex
	entries []Entry
	pair    PairFunc
	log     *zap.Logger
}

func New(pair PairFunc, log *zap.Logger) *Queue {
	return &Queue{pair: pair, log: log}
}

// Enqueue adds a participant, pairing immediately with the head of the queue
// when one is waiting. A stale entry under the same connection id is replaced
// first (reconnect churn); the same nickname under a different connection is
// rejected. Both matched sides are notified on their outboxes.
func (q *Queue) Enqueue(e Entry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(e.ConnID)

	for _, waiting := range q.entries {
		if waiting.Nickname == e.Nickname && waiting.ConnID != e.ConnID {
			q.log.Info("rejecting duplicate nickname",
				zap.String("nickname", e.Nickname),
				zap.String("conn_id", e.ConnID))
			return ErrNicknameTaken
		}
	}

	if len(q.entries) > 0 {
		opponent := q.entries[0]
		q.entries = q.entries[1:]

		sessionID, err := q.pair(opponent, e)
		if err != nil {
			// Put the opponent back at the head; the joiner can retry.
			q.entries = append([]Entry{opponent}, q.entries...)
			return err
		}

		send(opponent.Outbox, wire.ServerMessage{
			Type: wire.TypeMatchFound,
			Data: wire.MatchFound{SessionID: sessionID, Opponent: e.Nickname},
		})
		send(e.Outbox, wire.ServerMessage{
			Type: wire.TypeMatchFound,
			Data: wire.MatchFound{SessionID: sessionID, Opponent: opponent.Nickname},
		})

		q.log.Info("match created",
			zap.String("session_id", sessionID),
			zap.String("a", opponent.Nickname),
			zap.String("b", e.Nickname))
		return nil
	}

	q.entries = append(q.entries, e)
	q.log.Info("queued", zap.String("nickname", e.Nickname), zap.Int("queue_size", len(q.entries)))
	return nil
}

// Remove drops the entry for a connection; no-op if absent.
func (q *Queue) Remove(connID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(connID)
}

func (q *Queue) removeLocked(connID string) bool {
	for i, e := range q.entries {
		if e.ConnID == connID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// send never blocks: a participant whose outbox is full misses the push and
// resyncs from later authoritative messages.
func send(ch chan wire.ServerMessage, msg wire.ServerMessage) {
	select {
	case ch <- msg:
	default:
	}
}
