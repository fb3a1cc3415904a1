// internal/game/deck.go
package game

// Deck is one player's ordered remaining cards. The front card is the next
// card to be played; won cards go to the back.
type Deck struct {
	cards []Card
}

// NewDeck builds a deck over its own copy of cards, so the caller's slice
// stays untouched by later draws.
func NewDeck(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}

// DrawFront removes and returns the front card. ok is false on an empty deck.
func (d *Deck) DrawFront() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// Append pushes cards onto the back of the deck in the given order.
func (d *Deck) Append(cards ...Card) {
	d.cards = append(d.cards, cards...)
}

// Snapshot returns a copy of the deck contents. Notifications carry
// snapshots, never the live slice.
func (d *Deck) Snapshot() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
