package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kparks44/rumble-backend/internal/battle"
	"github.com/kparks44/rumble-backend/internal/wire"
)

type Msg interface{ isRoomMsg() }

// Join marks a participant ready and rebinds its outbox. When both sides of a
// not-yet-started session are ready the battle starts exactly once; re-joins
// after start are no-ops.
type Join struct {
	ConnID string
	Outbox chan wire.ServerMessage
}

func (Join) isRoomMsg() {}

// Leave terminates the session. Voluntary skips and involuntary disconnects
// are distinguished only by the notification the peer receives.
type Leave struct {
	ConnID  string
	Skipped bool
}

func (Leave) isRoomMsg() {}

type SwitchMic struct{ ConnID string }

func (SwitchMic) isRoomMsg() {}

type Vote struct {
	ConnID string
	On     bool
}

func (Vote) isRoomMsg() {}

// Relay forwards an opaque payload to the sender's peer. The room never
// interprets Data; it is the pass-through for handshake signals, chat text,
// force-mute, and best-effort countdown notifications.
type Relay struct {
	ConnID string
	Type   string
	Data   any
}

func (Relay) isRoomMsg() {}

// ResyncPrivilege re-sends the sender's authoritative mic state.
type ResyncPrivilege struct{ ConnID string }

func (ResyncPrivilege) isRoomMsg() {}

// Heartbeat is accepted at any time and changes nothing. It exists so idle
// connections stay warm during countdown windows.
type Heartbeat struct{ ConnID string }

func (Heartbeat) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetState reflects internal state without data races; test-only.
type GetState struct{ Reply chan View }

func (GetState) isRoomMsg() {}

type View struct {
	Started bool
	Closed  bool
	Beat    string
	State   battle.State
}

type Participant struct {
	ConnID   string
	Nickname string
	Ready    bool
	Outbox   chan wire.ServerMessage
}

// WordSource draws n words, preferring ones the session has not seen.
type WordSource interface {
	DrawAvoiding(n int, seen map[string]bool) []string
}

type Config struct {
	ID            string
	A, B          Participant
	Words         []string
	Beat          string
	InitialHolder string
	Rules         battle.Rules
	Clock         clockwork.Clock
	Log           *zap.Logger
	Selector      WordSource
	OnClose       func(id string)
}

type Room struct {
	ID string

	inbox        chan Msg
	participants [2]*Participant
	state        battle.State
	beat         string
	initial      string
	started      bool
	closed       bool
	seenWords    map[string]bool
	selector     WordSource
	clock        clockwork.Clock
	budgetTimer  clockwork.Timer
	log          *zap.Logger
	onClose      func(id string)
	ctx          context.Context
	cancel       context.CancelFunc
}

func New(parent context.Context, cfg Config) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		ID:           cfg.ID,
		inbox:        make(chan Msg, 64),
		participants: [2]*Participant{&cfg.A, &cfg.B},
		state:        battle.NewState(cfg.A.ConnID, cfg.B.ConnID, cfg.Words, cfg.Rules),
		beat:         cfg.Beat,
		initial:      cfg.InitialHolder,
		seenWords:    map[string]bool{},
		selector:     cfg.Selector,
		clock:        cfg.Clock,
		log:          cfg.Log.With(zap.String("room_id", cfg.ID)),
		onClose:      cfg.OnClose,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, w := range cfg.Words {
		r.seenWords[w] = true
	}

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.close()
			return

		case <-r.budgetChan():
			r.onBudgetFired()

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.onJoin(msg)

			case Leave:
				r.onLeave(msg)
				if r.closed {
					return
				}

			case SwitchMic:
				r.onSwitch(msg.ConnID)

			case Vote:
				r.onVote(msg)

			case Relay:
				r.onRelay(msg)

			case ResyncPrivilege:
				if p := r.find(msg.ConnID); p != nil {
					r.push(p, wire.ServerMessage{
						Type: wire.TypeMicGranted,
						Data: wire.MicPrivilege{HasPrivilege: r.state.HasPrivilege(p.ConnID)},
					})
				}

			case Heartbeat:
				// keep-alive only

			case GetState:
				msg.Reply <- View{Started: r.started, Closed: r.closed, Beat: r.beat, State: r.state}

			case Shutdown:
				r.close()
				return
			}
		}
	}
}

func (r *Room) onJoin(msg Join) {
	p := r.find(msg.ConnID)
	if p == nil {
		return
	}
	p.Ready = true
	if msg.Outbox != nil {
		p.Outbox = msg.Outbox
	}

	if r.started {
		return
	}
	if !r.participants[0].Ready || !r.participants[1].Ready {
		r.log.Info("participant ready, waiting for opponent", zap.String("conn_id", msg.ConnID))
		return
	}

	events, next, err := battle.Apply(r.state, battle.Command{Type: battle.CmdStart, Holder: r.initial}, r.clock.Now())
	if err != nil {
		r.log.Error("failed to start battle", zap.Error(err))
		return
	}
	r.state = next
	r.started = true

	for i, p := range r.participants {
		opponent := r.participants[1-i]
		r.push(p, wire.ServerMessage{
			Type: wire.TypeBattleStart,
			Data: wire.BattleStart{
				Opponent:        opponent.Nickname,
				Words:           r.state.Words,
				IsInitiator:     i == 0,
				HasMicPrivilege: r.state.Holder == p.ConnID,
				SelectedBeat:    r.beat,
			},
		})
	}
	r.armBudgetTimer()
	r.log.Info("battle started",
		zap.String("first", r.state.Holder),
		zap.String("beat", r.beat),
		zap.Bool("started_event", battle.ContainsEvent(events, battle.EvtStarted)))
}

func (r *Room) onSwitch(connID string) {
	events, next, err := battle.Apply(r.state, battle.Command{Type: battle.CmdSwitchMic, From: connID}, r.clock.Now())
	if err != nil {
		// Debounced or out-of-turn requests are expected under network
		// jitter; absorb them without touching state.
		r.log.Debug("switch rejected", zap.String("conn_id", connID), zap.Error(err))
		return
	}
	r.state = next
	r.dispatch(events)

	if r.state.Phase == battle.PhaseActive {
		r.armBudgetTimer()
	}
}

func (r *Room) onVote(msg Vote) {
	events, next, err := battle.Apply(r.state, battle.Command{Type: battle.CmdVote, From: msg.ConnID, On: msg.On}, r.clock.Now())
	if err != nil {
		r.log.Debug("vote rejected", zap.String("conn_id", msg.ConnID), zap.Error(err))
		return
	}
	r.state = next
	r.dispatch(events)
}

func (r *Room) onRelay(msg Relay) {
	if r.find(msg.ConnID) == nil {
		return
	}
	peer := r.find(r.state.Other(msg.ConnID))
	if peer == nil {
		return
	}
	r.push(peer, wire.ServerMessage{Type: msg.Type, Data: msg.Data})
}

func (r *Room) onLeave(msg Leave) {
	if r.closed || r.find(msg.ConnID) == nil {
		return
	}

	reason := battle.EndOpponentLeft
	notify := wire.TypeOpponentLeft
	if msg.Skipped {
		reason = battle.EndOpponentSkipped
		notify = wire.TypeOpponentSkipped
	}

	if _, next, err := battle.Apply(r.state, battle.Command{Type: battle.CmdTerminate, Reason: reason}, r.clock.Now()); err == nil {
		r.state = next
	}

	if peer := r.find(r.state.Other(msg.ConnID)); peer != nil {
		r.push(peer, wire.ServerMessage{Type: notify})
	}
	r.log.Info("session terminated", zap.String("by", msg.ConnID), zap.Bool("skipped", msg.Skipped))
	r.close()
}

// dispatch turns battle events into authoritative pushes. Privilege updates go
// to both participants independently, each with its own value; vote progress
// goes to the voter's peer only.
func (r *Room) dispatch(events []battle.Event) {
	for _, evt := range events {
		switch evt.Type {
		case battle.EvtPrivilegeSwitched:
			for _, p := range r.participants {
				r.push(p, wire.ServerMessage{
					Type: wire.TypeMicUpdated,
					Data: wire.MicPrivilege{HasPrivilege: r.state.Holder == p.ConnID},
				})
			}
			r.log.Info("mic switched", zap.String("holder", r.state.Holder), zap.Int("turn_count", r.state.TurnCount))

		case battle.EvtWordsRegenerated:
			fresh := r.selector.DrawAvoiding(len(r.state.Words), r.seenWords)
			r.state = r.state.SetWords(fresh)
			for _, w := range fresh {
				r.seenWords[w] = true
			}
			for _, p := range r.participants {
				r.push(p, wire.ServerMessage{Type: wire.TypeNewWords, Data: wire.NewWords{Words: fresh}})
			}
			r.log.Info("words regenerated", zap.Strings("words", fresh), zap.Int("change_count", r.state.WordChangeCount))

		case battle.EvtVoteChanged:
			if peer := r.find(r.state.Other(evt.Voter)); peer != nil {
				r.push(peer, wire.ServerMessage{
					Type: wire.TypeVoteUpdate,
					Data: wire.VoteUpdate{Votes: evt.Votes, OpponentVoted: r.state.Votes[evt.Voter]},
				})
			}

		case battle.EvtEnded:
			r.stopBudgetTimer()
			for _, p := range r.participants {
				r.push(p, wire.ServerMessage{Type: wire.TypeBattleEnded, Data: wire.BattleEnded{Reason: string(evt.Reason)}})
			}
			r.log.Info("battle ended", zap.String("reason", string(evt.Reason)))
		}
	}
}

// armBudgetTimer schedules a one-shot fire at the projected instant the audio
// budget runs out, replacing any previous timer.
func (r *Room) armBudgetTimer() {
	r.stopBudgetTimer()
	d := r.state.BudgetDeadline().Sub(r.clock.Now())
	if d <= 0 {
		d = time.Millisecond
	}
	r.budgetTimer = r.clock.NewTimer(d)
}

func (r *Room) stopBudgetTimer() {
	if r.budgetTimer == nil {
		return
	}
	if !r.budgetTimer.Stop() {
		select {
		case <-r.budgetTimer.Chan():
		default:
		}
	}
	r.budgetTimer = nil
}

func (r *Room) budgetChan() <-chan time.Time {
	if r.budgetTimer == nil {
		return nil
	}
	return r.budgetTimer.Chan()
}

func (r *Room) onBudgetFired() {
	r.budgetTimer = nil
	events, next, err := battle.Apply(r.state, battle.Command{Type: battle.CmdBudgetExpired}, r.clock.Now())
	if err != nil {
		return
	}
	r.state = next
	if len(events) == 0 {
		// Stale fire; the deadline moved with a later switch.
		r.armBudgetTimer()
		return
	}
	r.dispatch(events)
}

func (r *Room) find(connID string) *Participant {
	for _, p := range r.participants {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// push never blocks the loop: a participant with a full outbox misses the
// message and recovers from the next authoritative push.
func (r *Room) push(p *Participant, msg wire.ServerMessage) {
	if p.Outbox == nil {
		return
	}
	select {
	case p.Outbox <- msg:
	default:
		r.log.Warn("dropping message for slow participant",
			zap.String("conn_id", p.ConnID), zap.String("type", msg.Type))
	}
}

func (r *Room) close() {
	if r.closed {
		return
	}
	r.closed = true
	r.stopBudgetTimer()
	r.cancel()
	if r.onClose != nil {
		go r.onClose(r.ID)
	}
}
