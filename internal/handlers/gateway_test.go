// internal/handlers/gateway_test.go
package handlers

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcgill/statclash/internal/catalog"
	"github.com/jmcgill/statclash/internal/game"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// newTestGateway builds a gateway with a fixed deal and a seeded rng.
func newTestGateway(first, second []game.Card) *SessionGateway {
	gw := NewSessionGateway(quietLogger(), func(*rand.Rand) ([]game.Card, []game.Card) {
		return first, second
	}, "")
	gw.rng = rand.New(rand.NewSource(11))
	return gw
}

func hpCard(id string, hp float64) game.Card {
	return game.Card{ID: id, Name: id, Stats: map[string]float64{"hp": hp}}
}

func eventsFor(notices []game.Notice, id uuid.UUID) []game.Event {
	var evs []game.Event
	for _, n := range notices {
		for _, to := range n.To {
			if to == id {
				evs = append(evs, n.Event)
				break
			}
		}
	}
	return evs
}

func eventTypes(evs []game.Event) []game.EventType {
	var types []game.EventType
	for _, ev := range evs {
		types = append(types, ev.Type)
	}
	return types
}

// joinBoth joins a then b into roomKey and returns the room with the turn
// forced onto a for determinism.
func joinBoth(t *testing.T, gw *SessionGateway, roomKey string, a, b uuid.UUID) *game.Room {
	t.Helper()
	gw.Handle(a, Action{Type: ActionJoin, RoomKey: roomKey})
	gw.Handle(b, Action{Type: ActionJoin, RoomKey: roomKey})
	room, ok := gw.registry.Find(roomKey)
	require.True(t, ok)
	require.Equal(t, game.StatusPlaying, room.Status)
	room.Turn = a
	return room
}

// TestJoinFlow walks the full join sequence: first join waits, second join
// starts the game with decks covering the full catalog.
func TestJoinFlow(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	gw := NewSessionGateway(quietLogger(), cat.Partition, "")
	gw.rng = rand.New(rand.NewSource(11))
	a, b := uuid.New(), uuid.New()

	notices := gw.Handle(a, Action{Type: ActionJoin, RoomKey: "r1"})
	evsA := eventsFor(notices, a)
	require.Equal(t, []game.EventType{game.EventJoined, game.EventWaiting}, eventTypes(evsA))
	assert.Equal(t, 1, evsA[1].MemberCount)

	room, ok := gw.registry.Find("r1")
	require.True(t, ok)
	assert.Equal(t, game.StatusWaiting, room.Status)

	notices = gw.Handle(b, Action{Type: ActionJoin, RoomKey: "r1"})
	evsB := eventsFor(notices, b)
	require.Equal(t, []game.EventType{game.EventJoined, game.EventGameStart}, eventTypes(evsB))

	start := evsB[1]
	total := len(start.Decks[a.String()]) + len(start.Decks[b.String()])
	assert.Equal(t, cat.Size(), total)
	assert.True(t, start.Turn == a.String() || start.Turn == b.String())
	assert.Equal(t, game.StatusPlaying, room.Status)
}

func TestJoinEmptyKeyUsesDefaultRoom(t *testing.T) {
	gw := newTestGateway(nil, nil)
	a := uuid.New()

	gw.Handle(a, Action{Type: ActionJoin, RoomKey: "  "})

	_, ok := gw.registry.Find(DefaultRoomKey)
	assert.True(t, ok)
}

func TestJoinIsIdempotentPerPlayer(t *testing.T) {
	gw := newTestGateway(nil, nil)
	a := uuid.New()

	gw.Handle(a, Action{Type: ActionJoin, RoomKey: "r1"})
	notices := gw.Handle(a, Action{Type: ActionJoin, RoomKey: "r1"})

	require.Equal(t, []game.EventType{game.EventJoined}, eventTypes(eventsFor(notices, a)))
	room, _ := gw.registry.Find("r1")
	assert.Equal(t, 1, room.MemberCount())
}

func TestJoinFullRoomRejectsThirdPlayer(t *testing.T) {
	gw := newTestGateway([]game.Card{hpCard("a1", 90)}, []game.Card{hpCard("b1", 10)})
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	room := joinBoth(t, gw, "r1", a, b)

	notices := gw.Handle(c, Action{Type: ActionJoin, RoomKey: "r1"})

	require.Equal(t, []game.EventType{game.EventRoomFull}, eventTypes(eventsFor(notices, c)))
	assert.Equal(t, []uuid.UUID{a, b}, room.MemberIDs())
	assert.Empty(t, eventsFor(notices, a))
	assert.Empty(t, eventsFor(notices, b))
}

func TestChooseRejectsNonTurnHolder(t *testing.T) {
	gw := newTestGateway(
		[]game.Card{hpCard("a1", 90), hpCard("a2", 40)},
		[]game.Card{hpCard("b1", 10), hpCard("b2", 70)},
	)
	a, b := uuid.New(), uuid.New()
	room := joinBoth(t, gw, "r1", a, b)

	notices := gw.Handle(b, Action{Type: ActionChooseAttribute, RoomKey: "r1", AttributeKey: "hp"})

	require.Equal(t, []game.EventType{game.EventNotYourTurn}, eventTypes(eventsFor(notices, b)))
	assert.Empty(t, eventsFor(notices, a), "the other member must not be notified")
	assert.Equal(t, a, room.Turn)
	assert.Equal(t, 2, room.Slots[0].Deck.Len())
	assert.Equal(t, 2, room.Slots[1].Deck.Len())
}

func TestChooseStrictWin(t *testing.T) {
	gw := newTestGateway(
		[]game.Card{hpCard("a1", 90), hpCard("a2", 40)},
		[]game.Card{hpCard("b1", 10), hpCard("b2", 70)},
	)
	a, b := uuid.New(), uuid.New()
	room := joinBoth(t, gw, "r1", a, b)

	notices := gw.Handle(a, Action{Type: ActionChooseAttribute, RoomKey: "r1", AttributeKey: "hp"})

	evs := eventsFor(notices, b)
	require.Equal(t, []game.EventType{game.EventRoundResult}, eventTypes(evs))
	res := evs[0]
	assert.Equal(t, game.OutcomeCaller, res.Outcome)
	assert.Equal(t, a.String(), res.Turn)
	assert.Equal(t, 3, room.Slots[0].Deck.Len())
	assert.Equal(t, 1, room.Slots[1].Deck.Len())
}

// TestPlayToGameOver plays a one-card game to the end: the final resolution
// emits roundResult then gameOver, and the room vanishes from the registry.
func TestPlayToGameOver(t *testing.T) {
	gw := newTestGateway([]game.Card{hpCard("a1", 90)}, []game.Card{hpCard("b1", 10)})
	a, b := uuid.New(), uuid.New()
	joinBoth(t, gw, "r1", a, b)

	notices := gw.Handle(a, Action{Type: ActionChooseAttribute, RoomKey: "r1", AttributeKey: "hp"})

	evs := eventsFor(notices, b)
	require.Equal(t, []game.EventType{game.EventRoundResult, game.EventGameOver}, eventTypes(evs))
	assert.Equal(t, a.String(), evs[1].WinnerID)

	_, ok := gw.registry.Find("r1")
	assert.False(t, ok, "finished room must be removed from the registry")

	// A fresh join under the same key recreates a Waiting room.
	gw.Handle(a, Action{Type: ActionJoin, RoomKey: "r1"})
	room, ok := gw.registry.Find("r1")
	require.True(t, ok)
	assert.Equal(t, game.StatusWaiting, room.Status)
	assert.Equal(t, 1, room.MemberCount())
}

// TestDisconnectForfeits covers the forfeiture policy: a mid-game disconnect
// forfeits to the remaining player and removes the room.
func TestDisconnectForfeits(t *testing.T) {
	gw := newTestGateway([]game.Card{hpCard("a1", 90)}, []game.Card{hpCard("b1", 10)})
	a, b := uuid.New(), uuid.New()
	joinBoth(t, gw, "r1", a, b)

	notices := gw.Disconnect(a)

	evs := eventsFor(notices, b)
	require.Equal(t, []game.EventType{game.EventPlayerLeft, game.EventGameOver}, eventTypes(evs))
	assert.Equal(t, a.String(), evs[0].LeftID)
	assert.Equal(t, b.String(), evs[1].WinnerID)

	_, ok := gw.registry.Find("r1")
	assert.False(t, ok)

	// The remaining player's membership is cleared, so they can start over.
	joined := gw.Handle(b, Action{Type: ActionJoin, RoomKey: "r1"})
	require.Equal(t, []game.EventType{game.EventJoined, game.EventWaiting}, eventTypes(eventsFor(joined, b)))
}

func TestDisconnectWhileWaitingRemovesRoom(t *testing.T) {
	gw := newTestGateway(nil, nil)
	a := uuid.New()
	gw.Handle(a, Action{Type: ActionJoin, RoomKey: "r1"})

	notices := gw.Disconnect(a)

	assert.Empty(t, notices)
	_, ok := gw.registry.Find("r1")
	assert.False(t, ok)
}

func TestDisconnectWithoutMembershipIsNoOp(t *testing.T) {
	gw := newTestGateway(nil, nil)
	assert.Empty(t, gw.Disconnect(uuid.New()))
}

func TestChooseOnNonexistentRoom(t *testing.T) {
	gw := newTestGateway(nil, nil)
	a := uuid.New()

	notices := gw.Handle(a, Action{Type: ActionChooseAttribute, RoomKey: "ghost", AttributeKey: "hp"})

	require.Equal(t, []game.EventType{game.EventNotYourTurn}, eventTypes(eventsFor(notices, a)))
}

func TestChooseAsNonMemberDoesNotTouchRoom(t *testing.T) {
	gw := newTestGateway([]game.Card{hpCard("a1", 90)}, []game.Card{hpCard("b1", 10)})
	a, b := uuid.New(), uuid.New()
	room := joinBoth(t, gw, "r1", a, b)

	stranger := uuid.New()
	notices := gw.Handle(stranger, Action{Type: ActionChooseAttribute, RoomKey: "r1", AttributeKey: "hp"})

	require.Equal(t, []game.EventType{game.EventNotYourTurn}, eventTypes(eventsFor(notices, stranger)))
	assert.Equal(t, game.StatusPlaying, room.Status)
	assert.Equal(t, 1, room.Slots[0].Deck.Len())
}

func TestJoinDifferentRoomLeavesCurrentOne(t *testing.T) {
	gw := newTestGateway([]game.Card{hpCard("a1", 90)}, []game.Card{hpCard("b1", 10)})
	a, b := uuid.New(), uuid.New()
	joinBoth(t, gw, "r1", a, b)

	notices := gw.Handle(a, Action{Type: ActionJoin, RoomKey: "r2"})

	// Leaving r1 forfeits to b; a lands alone in r2.
	evsB := eventsFor(notices, b)
	require.Equal(t, []game.EventType{game.EventPlayerLeft, game.EventGameOver}, eventTypes(evsB))

	_, ok := gw.registry.Find("r1")
	assert.False(t, ok)
	r2, ok := gw.registry.Find("r2")
	require.True(t, ok)
	assert.True(t, r2.Member(a))
}

func TestUnknownActionIsIgnored(t *testing.T) {
	gw := newTestGateway(nil, nil)
	assert.Empty(t, gw.Handle(uuid.New(), Action{Type: "sing"}))
}

func TestRoomSummaries(t *testing.T) {
	gw := newTestGateway([]game.Card{hpCard("a1", 90)}, []game.Card{hpCard("b1", 10)})
	a, b := uuid.New(), uuid.New()
	joinBoth(t, gw, "r1", a, b)
	gw.Handle(uuid.New(), Action{Type: ActionJoin, RoomKey: "r2"})

	summaries := gw.RoomSummaries()
	require.Len(t, summaries, 2)

	byKey := map[string]RoomSummary{}
	for _, s := range summaries {
		byKey[s.Key] = s
	}
	assert.Equal(t, 2, byKey["r1"].Members)
	assert.Equal(t, game.StatusPlaying, byKey["r1"].Status)
	assert.Equal(t, 1, byKey["r2"].Members)
	assert.Equal(t, game.StatusWaiting, byKey["r2"].Status)
}
