package battle

import (
	"errors"
	"time"
)

var ErrNotStarted = errors.New("battle not started")
var ErrAlreadyStarted = errors.New("battle already started")
var ErrBattleEnded = errors.New("battle already ended")
var ErrNotParticipant = errors.New("not a participant")
var ErrNotHolder = errors.New("sender does not hold the mic")
var ErrSwitchDebounced = errors.New("switch inside debounce window")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseActive  Phase = "active"
	PhaseEnded   Phase = "ended"
)

type EndReason string

const (
	EndTurnLimit       EndReason = "turn-limit"
	EndAudioBudget     EndReason = "audio-budget"
	EndOpponentLeft    EndReason = "opponent-left"
	EndOpponentSkipped EndReason = "opponent-skipped"
)

type Rules struct {
	TurnSeconds        int
	CountdownSeconds   int
	AudioBudgetSeconds int
	MaxSwitches        int
	WordChangeLimit    int
	DebounceWindow     time.Duration
}

func DefaultRules() Rules {
	return Rules{
		TurnSeconds:        90,
		CountdownSeconds:   5,
		AudioBudgetSeconds: 360,
		MaxSwitches:        4,
		WordChangeLimit:    2,
		DebounceWindow:     time.Second,
	}
}

// State is the server-authoritative half of the turn coordinator. Holder and
// TurnCount are only ever mutated through Apply; clients mirror them from
// pushes and never set them.
type State struct {
	Phase        Phase
	Participants [2]string // connection ids, fixed at creation
	Holder       string
	TurnCount    int
	Words        []string
	Votes        map[string]bool

	ShouldRegenerateWords bool
	WordChangeCount       int
	LastSwitchAt          time.Time

	// ActiveSince is when the current active window opened (the countdown
	// after a switch does not count against the audio budget).
	ActiveSince   time.Time
	ActiveElapsed time.Duration
	EndReason     EndReason
	Rules         Rules
}

func NewState(a, b string, words []string, rules Rules) State {
	return State{
		Phase:        PhaseWaiting,
		Participants: [2]string{a, b},
		Words:        words,
		Votes:        map[string]bool{},
		Rules:        rules,
	}
}

func (s State) IsParticipant(connID string) bool {
	return connID == s.Participants[0] || connID == s.Participants[1]
}

// Other returns the participant opposite connID.
func (s State) Other(connID string) string {
	if connID == s.Participants[0] {
		return s.Participants[1]
	}
	return s.Participants[0]
}

func (s State) HasPrivilege(connID string) bool {
	return s.Phase != PhaseWaiting && s.Holder == connID
}

// BudgetDeadline is the instant the audio budget runs out if no further switch
// arrives. Meaningful only while the battle is active.
func (s State) BudgetDeadline() time.Time {
	remaining := time.Duration(s.Rules.AudioBudgetSeconds)*time.Second - s.ActiveElapsed
	return s.ActiveSince.Add(remaining)
}

type CommandType string

const (
	CmdStart         CommandType = "Start"
	CmdSwitchMic     CommandType = "SwitchMic"
	CmdVote          CommandType = "Vote"
	CmdBudgetExpired CommandType = "BudgetExpired"
	CmdTerminate     CommandType = "Terminate"
)

type Command struct {
	Type   CommandType
	From   string
	Holder string // CmdStart: the declared initial holder
	On     bool   // CmdVote
	Reason EndReason
}

type EventType string

const (
	EvtStarted           EventType = "Started"
	EvtPrivilegeSwitched EventType = "PrivilegeSwitched"
	EvtWordsRegenerated  EventType = "WordsRegenerated"
	EvtVoteChanged       EventType = "VoteChanged"
	EvtEnded             EventType = "Ended"
)

type Event struct {
	Type   EventType
	Holder string
	Voter  string
	Votes  int
	Reason EndReason
}

// Apply runs one command against the state and returns the events it produced
// plus the successor state. The caller supplies now so the debounce window and
// budget accrual never read the wall clock themselves.
func Apply(s State, cmd Command, now time.Time) ([]Event, State, error) {
	ns := s

	switch cmd.Type {
	case CmdStart:
		if s.Phase == PhaseEnded {
			return nil, s, ErrBattleEnded
		}
		if s.Phase == PhaseActive {
			return nil, s, ErrAlreadyStarted
		}
		if !s.IsParticipant(cmd.Holder) {
			return nil, s, ErrNotParticipant
		}
		ns.Phase = PhaseActive
		ns.Holder = cmd.Holder
		// The initial hand-off counts as switch 1 of MaxSwitches.
		ns.TurnCount = 1
		ns.LastSwitchAt = now
		ns.ActiveSince = now.Add(time.Duration(ns.Rules.CountdownSeconds) * time.Second)
		return []Event{{Type: EvtStarted, Holder: ns.Holder}}, ns, nil

	case CmdSwitchMic:
		if s.Phase == PhaseEnded {
			return nil, s, ErrBattleEnded
		}
		if s.Phase != PhaseActive {
			return nil, s, ErrNotStarted
		}
		if !s.IsParticipant(cmd.From) {
			return nil, s, ErrNotParticipant
		}
		if cmd.From != s.Holder {
			return nil, s, ErrNotHolder
		}
		if now.Sub(s.LastSwitchAt) < s.Rules.DebounceWindow {
			return nil, s, ErrSwitchDebounced
		}

		if now.After(s.ActiveSince) {
			ns.ActiveElapsed += now.Sub(s.ActiveSince)
		}
		ns.Holder = s.Other(s.Holder)
		ns.TurnCount++
		ns.LastSwitchAt = now
		ns.ActiveSince = now.Add(time.Duration(ns.Rules.CountdownSeconds) * time.Second)

		events := []Event{{Type: EvtPrivilegeSwitched, Holder: ns.Holder}}

		if ns.ShouldRegenerateWords {
			ns.ShouldRegenerateWords = false
			ns.WordChangeCount++
			ns.Votes = map[string]bool{}
			events = append(events, Event{Type: EvtWordsRegenerated})
		}

		if ns.TurnCount >= ns.Rules.MaxSwitches {
			ns.Phase = PhaseEnded
			ns.EndReason = EndTurnLimit
			events = append(events, Event{Type: EvtEnded, Reason: EndTurnLimit})
		} else if ns.ActiveElapsed >= time.Duration(ns.Rules.AudioBudgetSeconds)*time.Second {
			ns.Phase = PhaseEnded
			ns.EndReason = EndAudioBudget
			events = append(events, Event{Type: EvtEnded, Reason: EndAudioBudget})
		}
		return events, ns, nil

	case CmdVote:
		if s.Phase == PhaseEnded {
			return nil, s, ErrBattleEnded
		}
		if !s.IsParticipant(cmd.From) {
			return nil, s, ErrNotParticipant
		}
		ns.Votes = map[string]bool{}
		for k := range s.Votes {
			ns.Votes[k] = true
		}
		if cmd.On {
			ns.Votes[cmd.From] = true
		} else {
			delete(ns.Votes, cmd.From)
		}
		// Regeneration capability is consumed, not throttled: once the word
		// change limit is spent the flag can never be raised again.
		ns.ShouldRegenerateWords = len(ns.Votes) == 2 && ns.WordChangeCount < ns.Rules.WordChangeLimit
		return []Event{{Type: EvtVoteChanged, Voter: cmd.From, Votes: len(ns.Votes)}}, ns, nil

	case CmdBudgetExpired:
		if s.Phase != PhaseActive {
			return nil, s, ErrNotStarted
		}
		elapsed := s.ActiveElapsed
		if now.After(s.ActiveSince) {
			elapsed += now.Sub(s.ActiveSince)
		}
		if elapsed < time.Duration(s.Rules.AudioBudgetSeconds)*time.Second {
			// Stale fire from a timer armed before the last switch.
			return nil, s, nil
		}
		ns.ActiveElapsed = elapsed
		ns.Phase = PhaseEnded
		ns.EndReason = EndAudioBudget
		return []Event{{Type: EvtEnded, Reason: EndAudioBudget}}, ns, nil

	case CmdTerminate:
		if s.Phase == PhaseEnded {
			return nil, s, ErrBattleEnded
		}
		ns.Phase = PhaseEnded
		ns.EndReason = cmd.Reason
		return []Event{{Type: EvtEnded, Reason: cmd.Reason}}, ns, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// SetWords installs a freshly drawn word set after an EvtWordsRegenerated.
// The draw itself lives with the registry, which owns the selector.
func (s State) SetWords(words []string) State {
	s.Words = words
	return s
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
