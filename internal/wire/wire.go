package wire

import "encoding/json"

// Client -> Server
// join-queue:            {nickname}
// leave-queue:           {}
// join-room:             {sessionId, nickname}
// webrtc-signal:         {sessionId, signal}   signal is opaque, never parsed
// chat-message:          {user, message}
// switch-mic-privilege:  {sessionId}
// start-countdown:       {sessionId}
// vote-new-words:        {sessionId, vote}
// request-mic-privilege: {sessionId}
// force-mute-opponent:   {sessionId}
// heartbeat:             {sessionId}
// skip-battle:           {sessionId}

type ClientMessage struct {
	Type      string          `json:"type"`
	Nickname  string          `json:"nickname,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Signal    json.RawMessage `json:"signal,omitempty"`
	User      string          `json:"user,omitempty"`
	Message   string          `json:"message,omitempty"`
	Vote      *bool           `json:"vote,omitempty"`
}

const (
	TypeJoinQueue       = "join-queue"
	TypeLeaveQueue      = "leave-queue"
	TypeJoinRoom        = "join-room"
	TypeWebRTCSignal    = "webrtc-signal"
	TypeChatMessage     = "chat-message"
	TypeSwitchMic       = "switch-mic-privilege"
	TypeStartCountdown  = "start-countdown"
	TypeVoteNewWords    = "vote-new-words"
	TypeRequestMic      = "request-mic-privilege"
	TypeForceMute       = "force-mute-opponent"
	TypeHeartbeat       = "heartbeat"
	TypeSkipBattle      = "skip-battle"
)

// Server -> Client types.
const (
	TypeQueueUpdate       = "queue-update"
	TypeMatchFound        = "match-found"
	TypeBattleStart       = "battle-start"
	TypeMicUpdated        = "mic-privilege-updated"
	TypeMicGranted        = "mic-privilege-granted"
	TypeNewWords          = "new-words-generated"
	TypeVoteUpdate        = "new-words-vote-update"
	TypeBattleEnded       = "battle-ended"
	TypeOpponentLeft      = "opponent-left"
	TypeOpponentSkipped   = "opponent-skipped"
	TypeForceMuted        = "force-mute"
	TypeCountdownStarted  = "start-countdown"
	TypeError             = "error"
)

// ServerMessage is the envelope for every server push. Data holds one of the
// payload structs below, or a json.RawMessage for relayed signals.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type QueueUpdate struct {
	QueueSize   int `json:"queueSize"`
	UsersOnline int `json:"usersOnline"`
}

type MatchFound struct {
	SessionID string `json:"sessionId"`
	Opponent  string `json:"opponent"`
}

type BattleStart struct {
	Opponent        string   `json:"opponent"`
	Words           []string `json:"words"`
	IsInitiator     bool     `json:"isInitiator"`
	HasMicPrivilege bool     `json:"hasMicPrivilege"`
	SelectedBeat    string   `json:"selectedBeat"`
}

type MicPrivilege struct {
	HasPrivilege bool `json:"hasPrivilege"`
}

type NewWords struct {
	Words []string `json:"words"`
}

type VoteUpdate struct {
	Votes         int  `json:"votes"`
	OpponentVoted bool `json:"opponentVoted"`
}

type BattleEnded struct {
	Reason string `json:"reason"`
}

type Chat struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

type Error struct {
	Message string `json:"message"`
}
