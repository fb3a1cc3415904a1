// internal/game/events.go
package game

import "github.com/google/uuid"

// EventType is an enum-like type for outbound room notifications.
type EventType string

const (
	EventJoined      EventType = "joined"      // successful join, sent to the joiner only
	EventWaiting     EventType = "waiting"     // room has exactly one member
	EventRoomFull    EventType = "roomFull"    // join rejected, sent to the rejected joiner only
	EventGameStart   EventType = "gameStart"   // room transitioned Waiting -> Playing
	EventRoundResult EventType = "roundResult" // one resolution completed
	EventNotYourTurn EventType = "notYourTurn" // chooseAttribute rejected, sent to the caller only
	EventGameOver    EventType = "gameOver"    // a deck reached zero (or forfeit)
	EventPlayerLeft  EventType = "playerLeft"  // a member disconnected while others remain
)

// Event is the payload of one outbound notification. Fields are populated per
// event type; everything else is omitted from the JSON encoding.
//
// Deck contents and counts are snapshots taken at emission time, so later
// mutations never retroactively change what was communicated.
type Event struct {
	Type    EventType `json:"type"`
	RoomKey string    `json:"roomKey,omitempty"`

	SelfID      string `json:"selfId,omitempty"`
	MemberCount int    `json:"memberCount,omitempty"`

	CallerID     string  `json:"callerId,omitempty"`
	OpponentID   string  `json:"opponentId,omitempty"`
	CallerCard   *Card   `json:"callerCard,omitempty"`
	OpponentCard *Card   `json:"opponentCard,omitempty"`
	Outcome      Outcome `json:"outcome,omitempty"`

	Turn      string            `json:"turn,omitempty"`
	Decks     map[string][]Card `json:"decksByPlayerId,omitempty"`
	Remaining map[string]int    `json:"remainingCountsByPlayerId,omitempty"`

	WinnerID string `json:"winnerId,omitempty"`
	LeftID   string `json:"leftId,omitempty"`
}

// Notice pairs an Event with the set of players it is addressed to. The
// transport layer fans a Notice out to the matching live connections; the
// core never sees a socket.
type Notice struct {
	To    []uuid.UUID
	Event Event
}

func noticeTo(id uuid.UUID, ev Event) Notice {
	return Notice{To: []uuid.UUID{id}, Event: ev}
}
