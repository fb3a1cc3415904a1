// internal/game/room.go
package game

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a Room.
type Status string

const (
	StatusWaiting  Status = "waiting"  // fewer than two members, no decks dealt
	StatusPlaying  Status = "playing"  // two members, decks dealt, turn assigned
	StatusFinished Status = "finished" // terminal; the room is removed right after
)

// MaxPlayers is the hard cap on room membership.
const MaxPlayers = 2

// DealFunc splits the card catalog into the two starting decks, assigned to
// slots in join order. The first slice may hold one more card than the second
// when the catalog size is odd.
type DealFunc func(rng *rand.Rand) (first, second []Card)

// PlayerSlot binds a player identifier to their deck. Deck is nil until the
// room starts playing.
type PlayerSlot struct {
	ID   uuid.UUID
	Deck *Deck
}

// Room holds the authoritative state of one game instance: up to two player
// slots in join order, the current turn holder, and a lifecycle status.
//
// Room performs no locking of its own. All mutations are serialized by the
// SessionGateway's single-writer dispatch, which is what keeps a round
// resolution atomic with respect to the pair of cards it moves.
type Room struct {
	Key    string
	Slots  []*PlayerSlot
	Turn   uuid.UUID
	Status Status

	deal DealFunc
	rng  *rand.Rand
	log  *logrus.Logger
}

// NewRoom builds a Waiting room. rng drives both the deck shuffle and the
// first-turn coin flip; tests inject a seeded source.
func NewRoom(key string, deal DealFunc, rng *rand.Rand, logger *logrus.Logger) *Room {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Room{
		Key:    key,
		Status: StatusWaiting,
		deal:   deal,
		rng:    rng,
		log:    logger,
	}
}

// Member reports whether id currently occupies a slot.
func (r *Room) Member(id uuid.UUID) bool {
	return r.slot(id) != nil
}

// MemberIDs returns the slot identifiers in join order.
func (r *Room) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Slots))
	for _, s := range r.Slots {
		ids = append(ids, s.ID)
	}
	return ids
}

// MemberCount returns the number of occupied slots.
func (r *Room) MemberCount() int {
	return len(r.Slots)
}

func (r *Room) slot(id uuid.UUID) *PlayerSlot {
	for _, s := range r.Slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *Room) opponentOf(id uuid.UUID) *PlayerSlot {
	for _, s := range r.Slots {
		if s.ID != id {
			return s
		}
	}
	return nil
}

// Join admits playerID into the room. A duplicate join is an idempotent
// re-confirmation; a join on a full room is rejected without any state
// change. The second successful join deals the decks, flips for the first
// turn and moves the room to Playing.
func (r *Room) Join(playerID uuid.UUID) []Notice {
	if r.Member(playerID) {
		return []Notice{noticeTo(playerID, Event{
			Type:    EventJoined,
			RoomKey: r.Key,
			SelfID:  playerID.String(),
		})}
	}

	if len(r.Slots) >= MaxPlayers {
		r.log.Warnf("room %s: join rejected for %s, room full", r.Key, playerID)
		return []Notice{noticeTo(playerID, Event{Type: EventRoomFull})}
	}

	r.Slots = append(r.Slots, &PlayerSlot{ID: playerID})
	r.log.Infof("room %s: player %s joined (%d/%d)", r.Key, playerID, len(r.Slots), MaxPlayers)

	notices := []Notice{noticeTo(playerID, Event{
		Type:    EventJoined,
		RoomKey: r.Key,
		SelfID:  playerID.String(),
	})}

	if len(r.Slots) < MaxPlayers {
		notices = append(notices, Notice{
			To:    r.MemberIDs(),
			Event: Event{Type: EventWaiting, MemberCount: len(r.Slots)},
		})
		return notices
	}

	// Second player is in: deal and start.
	first, second := r.deal(r.rng)
	r.Slots[0].Deck = NewDeck(first)
	r.Slots[1].Deck = NewDeck(second)
	r.Turn = r.Slots[r.rng.Intn(MaxPlayers)].ID
	r.Status = StatusPlaying
	r.log.Infof("room %s: game started, turn %s", r.Key, r.Turn)

	notices = append(notices, Notice{
		To: r.MemberIDs(),
		Event: Event{
			Type:  EventGameStart,
			Decks: r.deckSnapshots(),
			Turn:  r.Turn.String(),
		},
	})
	return notices
}

// ChooseAttribute runs one round resolution on behalf of playerID. Anything
// other than the current turn holder acting on a Playing room is rejected
// with a notice to the caller only and no state change.
func (r *Room) ChooseAttribute(playerID uuid.UUID, attributeKey string) []Notice {
	caller := r.slot(playerID)
	if r.Status != StatusPlaying || caller == nil || r.Turn != playerID {
		return []Notice{noticeTo(playerID, Event{Type: EventNotYourTurn})}
	}
	opponent := r.opponentOf(playerID)

	// Defensive: an already-empty deck here should be unreachable, since the
	// room finishes on the resolution that empties it. Settle immediately in
	// favor of whoever still holds cards.
	if caller.Deck.Len() == 0 || opponent.Deck.Len() == 0 {
		winner := playerID
		if caller.Deck.Len() == 0 {
			winner = opponent.ID
		}
		r.log.Warnf("room %s: empty deck at round start, ending game for %s", r.Key, winner)
		return r.finish(winner)
	}

	callerCard, _ := caller.Deck.DrawFront()
	opponentCard, _ := opponent.Deck.DrawFront()

	outcome, attrKnown := resolveRound(callerCard, opponentCard, attributeKey)
	if !attrKnown {
		// Client-data warning, never fatal: an unknown attribute key resolves
		// as a draw to keep the room running.
		r.log.Warnf("room %s: attribute %q not present on card %s or %s, resolving as draw",
			r.Key, attributeKey, callerCard.ID, opponentCard.ID)
	}

	switch outcome {
	case OutcomeCaller:
		caller.Deck.Append(callerCard, opponentCard)
		r.Turn = caller.ID
	case OutcomeOpponent:
		opponent.Deck.Append(opponentCard, callerCard)
		r.Turn = opponent.ID
	case OutcomeDraw:
		caller.Deck.Append(callerCard)
		opponent.Deck.Append(opponentCard)
		// Turn unchanged: the caller keeps it on a draw.
	}

	notices := []Notice{{
		To: r.MemberIDs(),
		Event: Event{
			Type:         EventRoundResult,
			CallerID:     caller.ID.String(),
			OpponentID:   opponent.ID.String(),
			CallerCard:   &callerCard,
			OpponentCard: &opponentCard,
			Outcome:      outcome,
			Turn:         r.Turn.String(),
			Decks:        r.deckSnapshots(),
			Remaining:    r.remainingCounts(),
		},
	}}

	// Exactly one deck can reach zero in a round.
	if caller.Deck.Len() == 0 {
		notices = append(notices, r.finish(opponent.ID)...)
	} else if opponent.Deck.Len() == 0 {
		notices = append(notices, r.finish(caller.ID)...)
	}
	return notices
}

// Leave removes playerID from the room. A departure during Playing forfeits
// the game to the remaining member; the caller (gateway) removes the room
// from the registry once it is Finished or empty.
func (r *Room) Leave(playerID uuid.UUID) []Notice {
	if !r.Member(playerID) {
		return nil
	}

	slots := r.Slots[:0]
	for _, s := range r.Slots {
		if s.ID != playerID {
			slots = append(slots, s)
		}
	}
	r.Slots = slots
	r.log.Infof("room %s: player %s left (%d remaining)", r.Key, playerID, len(r.Slots))

	if len(r.Slots) == 0 {
		return nil
	}

	notices := []Notice{{
		To:    r.MemberIDs(),
		Event: Event{Type: EventPlayerLeft, LeftID: playerID.String()},
	}}
	if r.Status == StatusPlaying {
		// Forfeiture: the remaining player wins outright.
		notices = append(notices, r.finish(r.Slots[0].ID)...)
	}
	return notices
}

// finish moves the room to its terminal state and emits the gameOver notice.
func (r *Room) finish(winner uuid.UUID) []Notice {
	r.Status = StatusFinished
	r.log.Infof("room %s: game over, winner %s", r.Key, winner)
	return []Notice{{
		To:    r.MemberIDs(),
		Event: Event{Type: EventGameOver, WinnerID: winner.String()},
	}}
}

func (r *Room) deckSnapshots() map[string][]Card {
	decks := make(map[string][]Card, len(r.Slots))
	for _, s := range r.Slots {
		if s.Deck != nil {
			decks[s.ID.String()] = s.Deck.Snapshot()
		}
	}
	return decks
}

func (r *Room) remainingCounts() map[string]int {
	counts := make(map[string]int, len(r.Slots))
	for _, s := range r.Slots {
		if s.Deck != nil {
			counts[s.ID.String()] = s.Deck.Len()
		}
	}
	return counts
}
