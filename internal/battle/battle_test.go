package battle

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func activeState() State {
	s := NewState("a", "b", []string{"pizza", "wolf"}, DefaultRules())
	_, s, err := Apply(s, Command{Type: CmdStart, Holder: "a"}, t0)
	if err != nil {
		panic(err)
	}
	return s
}

func TestStart(t *testing.T) {
	s := NewState("a", "b", []string{"pizza", "wolf"}, DefaultRules())

	events, next, err := Apply(s, Command{Type: CmdStart, Holder: "a"}, t0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if next.Phase != PhaseActive {
		t.Fatalf("want active, got %v", next.Phase)
	}
	if next.Holder != "a" {
		t.Fatalf("want holder a, got %q", next.Holder)
	}
	// The initial hand-off counts as switch 1 of 4.
	if next.TurnCount != 1 {
		t.Fatalf("want turn count 1, got %d", next.TurnCount)
	}
	if !ContainsEvent(events, EvtStarted) {
		t.Fatalf("expected Started event")
	}
	// Countdown time never counts against the audio budget.
	wantActive := t0.Add(5 * time.Second)
	if !next.ActiveSince.Equal(wantActive) {
		t.Fatalf("want active since %v, got %v", wantActive, next.ActiveSince)
	}

	if _, _, err := Apply(next, Command{Type: CmdStart, Holder: "b"}, t0); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("want ErrAlreadyStarted, got %v", err)
	}
}

func TestSwitchRejections(t *testing.T) {
	cases := []struct {
		name    string
		setup   func() State
		from    string
		at      time.Time
		wantErr error
	}{
		{
			name:    "before start",
			setup:   func() State { return NewState("a", "b", nil, DefaultRules()) },
			from:    "a",
			at:      t0,
			wantErr: ErrNotStarted,
		},
		{
			name:    "non-holder cannot switch",
			setup:   activeState,
			from:    "b",
			at:      t0.Add(90 * time.Second),
			wantErr: ErrNotHolder,
		},
		{
			name:    "stranger cannot switch",
			setup:   activeState,
			from:    "c",
			at:      t0.Add(90 * time.Second),
			wantErr: ErrNotParticipant,
		},
		{
			name:    "inside debounce window",
			setup:   activeState,
			from:    "a",
			at:      t0.Add(500 * time.Millisecond),
			wantErr: ErrSwitchDebounced,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.setup()
			_, next, err := Apply(s, Command{Type: CmdSwitchMic, From: tc.from}, tc.at)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if next.Holder != s.Holder || next.TurnCount != s.TurnCount {
				t.Fatalf("rejected switch mutated state: %+v", next)
			}
		})
	}
}

func TestSwitchDebounceIdempotence(t *testing.T) {
	s := activeState()

	// Two requests within 1000ms of the last switch produce one flip.
	_, s, err := Apply(s, Command{Type: CmdSwitchMic, From: "a"}, t0.Add(90*time.Second))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Holder != "b" || s.TurnCount != 2 {
		t.Fatalf("want holder b turn 2, got %q turn %d", s.Holder, s.TurnCount)
	}

	if _, _, err := Apply(s, Command{Type: CmdSwitchMic, From: "b"}, t0.Add(90*time.Second+500*time.Millisecond)); !errors.Is(err, ErrSwitchDebounced) {
		t.Fatalf("want ErrSwitchDebounced, got %v", err)
	}

	_, s, err = Apply(s, Command{Type: CmdSwitchMic, From: "b"}, t0.Add(90*time.Second+1100*time.Millisecond))
	if err != nil {
		t.Fatalf("third attempt after window should succeed: %v", err)
	}
	if s.Holder != "a" || s.TurnCount != 3 {
		t.Fatalf("want holder a turn 3, got %q turn %d", s.Holder, s.TurnCount)
	}
}

func TestTurnCountTermination(t *testing.T) {
	s := activeState()
	at := t0

	holders := []string{"b", "a", "b"}
	for i, want := range holders {
		at = at.Add(90 * time.Second)
		events, next, err := Apply(s, Command{Type: CmdSwitchMic, From: s.Holder}, at)
		if err != nil {
			t.Fatalf("switch %d: %v", i+2, err)
		}
		s = next
		if s.Holder != want {
			t.Fatalf("switch %d: want holder %q, got %q", i+2, want, s.Holder)
		}
		// Exactly one participant holds the mic at every point.
		if s.HasPrivilege("a") == s.HasPrivilege("b") {
			t.Fatalf("mic exclusivity violated: %+v", s)
		}
		ended := ContainsEvent(events, EvtEnded)
		if i == len(holders)-1 && !ended {
			t.Fatalf("want Ended on 4th switch")
		}
		if i < len(holders)-1 && ended {
			t.Fatalf("ended early on switch %d", i+2)
		}
	}

	if s.Phase != PhaseEnded || s.EndReason != EndTurnLimit || s.TurnCount != 4 {
		t.Fatalf("want ended at turn 4 by turn-limit, got %+v", s)
	}

	if _, _, err := Apply(s, Command{Type: CmdSwitchMic, From: s.Holder}, at.Add(90*time.Second)); !errors.Is(err, ErrBattleEnded) {
		t.Fatalf("want ErrBattleEnded after termination, got %v", err)
	}
	if s.TurnCount > 4 {
		t.Fatalf("turn count exceeded 4: %d", s.TurnCount)
	}
}

func TestAudioBudgetEndsOnSwitch(t *testing.T) {
	rules := DefaultRules()
	s := NewState("a", "b", nil, rules)
	_, s, _ = Apply(s, Command{Type: CmdStart, Holder: "a"}, t0)

	// One very long turn burns the whole 360s budget before the turn limit.
	events, s, err := Apply(s, Command{Type: CmdSwitchMic, From: "a"}, t0.Add(370*time.Second))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ContainsEvent(events, EvtEnded) || s.EndReason != EndAudioBudget {
		t.Fatalf("want audio-budget end, got %+v", s)
	}
	if s.ActiveElapsed < 360*time.Second {
		t.Fatalf("budget accounting off: %v", s.ActiveElapsed)
	}
}

func TestBudgetExpiredCommand(t *testing.T) {
	s := activeState()

	// Stale fire: nowhere near the deadline, nothing happens.
	events, next, err := Apply(s, Command{Type: CmdBudgetExpired}, t0.Add(100*time.Second))
	if err != nil || len(events) != 0 || next.Phase != PhaseActive {
		t.Fatalf("stale fire should be a no-op: events=%v err=%v phase=%v", events, err, next.Phase)
	}

	// Real fire at the deadline (countdown excluded: 5s + 360s).
	events, next, err = Apply(s, Command{Type: CmdBudgetExpired}, t0.Add(365*time.Second))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ContainsEvent(events, EvtEnded) || next.EndReason != EndAudioBudget {
		t.Fatalf("want audio-budget end, got %+v", next)
	}
}

func TestVoteFlagAndCap(t *testing.T) {
	s := activeState()

	_, s, err := Apply(s, Command{Type: CmdVote, From: "a", On: true}, t0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.ShouldRegenerateWords {
		t.Fatalf("single vote must not flag regeneration")
	}

	_, s, _ = Apply(s, Command{Type: CmdVote, From: "b", On: true}, t0)
	if !s.ShouldRegenerateWords {
		t.Fatalf("both votes should flag regeneration")
	}

	// Un-voting clears the flag.
	_, s, _ = Apply(s, Command{Type: CmdVote, From: "b", On: false}, t0)
	if s.ShouldRegenerateWords {
		t.Fatalf("unvote should clear the flag")
	}
	_, s, _ = Apply(s, Command{Type: CmdVote, From: "b", On: true}, t0)

	// The flag is consumed by the next accepted switch.
	events, s, err := Apply(s, Command{Type: CmdSwitchMic, From: "a"}, t0.Add(90*time.Second))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ContainsEvent(events, EvtWordsRegenerated) {
		t.Fatalf("want WordsRegenerated on switch")
	}
	if s.WordChangeCount != 1 || s.ShouldRegenerateWords || len(s.Votes) != 0 {
		t.Fatalf("regeneration bookkeeping off: %+v", s)
	}

	// Second regeneration consumes the capability entirely.
	_, s, _ = Apply(s, Command{Type: CmdVote, From: "a", On: true}, t0)
	_, s, _ = Apply(s, Command{Type: CmdVote, From: "b", On: true}, t0)
	events, s, _ = Apply(s, Command{Type: CmdSwitchMic, From: "b"}, t0.Add(181*time.Second))
	if !ContainsEvent(events, EvtWordsRegenerated) || s.WordChangeCount != 2 {
		t.Fatalf("second regeneration should work: %+v", s)
	}

	// Voting still toggles, but the flag can never be raised again.
	_, s, _ = Apply(s, Command{Type: CmdVote, From: "a", On: true}, t0)
	_, s, _ = Apply(s, Command{Type: CmdVote, From: "b", On: true}, t0)
	if s.ShouldRegenerateWords {
		t.Fatalf("word change cap exceeded")
	}
	if s.WordChangeCount > 2 {
		t.Fatalf("wordChangeCount exceeded 2: %d", s.WordChangeCount)
	}
}

func TestTerminateIsFinal(t *testing.T) {
	s := activeState()

	events, s, err := Apply(s, Command{Type: CmdTerminate, Reason: EndOpponentSkipped}, t0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ContainsEvent(events, EvtEnded) || s.EndReason != EndOpponentSkipped {
		t.Fatalf("want skip termination, got %+v", s)
	}

	if _, _, err := Apply(s, Command{Type: CmdTerminate, Reason: EndOpponentLeft}, t0); !errors.Is(err, ErrBattleEnded) {
		t.Fatalf("second terminate must fail: %v", err)
	}
	if _, _, err := Apply(s, Command{Type: CmdVote, From: "a", On: true}, t0); !errors.Is(err, ErrBattleEnded) {
		t.Fatalf("vote after end must fail: %v", err)
	}
}
