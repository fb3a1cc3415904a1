// internal/catalog/catalog.go

// Package catalog supplies the immutable card set and the partition-and-
// shuffle operation that produces the two starting decks. The game core
// treats it as an external collaborator: it only ever sees the DealFunc.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/jmcgill/statclash/internal/game"
)

//go:embed cards.json
var defaultCardsJSON []byte

// Catalog is an immutable, validated card list.
type Catalog struct {
	cards []game.Card
}

// New validates cards and wraps them in a Catalog. At least two cards are
// required so a deal can give each player a non-empty deck; duplicate IDs are
// rejected because a card must live in exactly one deck at a time.
func New(cards []game.Card) (*Catalog, error) {
	if len(cards) < 2 {
		return nil, fmt.Errorf("catalog needs at least 2 cards, got %d", len(cards))
	}
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if c.ID == "" {
			return nil, fmt.Errorf("catalog card %q has an empty id", c.Name)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("catalog has duplicate card id %q", c.ID)
		}
		seen[c.ID] = true
	}
	owned := make([]game.Card, len(cards))
	copy(owned, cards)
	return &Catalog{cards: owned}, nil
}

// Default parses the embedded card set.
func Default() (*Catalog, error) {
	return parse(defaultCardsJSON)
}

// Load reads a card set from a JSON file with the same shape as the embedded
// default.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var cards []game.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(cards)
}

// Size returns the number of cards in the catalog.
func (c *Catalog) Size() int {
	return len(c.cards)
}

// Cards returns a copy of the card list.
func (c *Catalog) Cards() []game.Card {
	out := make([]game.Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Partition shuffles a copy of the catalog and splits it into two disjoint
// decks covering it exactly once. The first deck takes the extra card when
// the catalog size is odd, favoring the first-joined player.
//
// Partition satisfies game.DealFunc.
func (c *Catalog) Partition(rng *rand.Rand) (first, second []game.Card) {
	shuffled := c.Cards()
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	mid := (len(shuffled) + 1) / 2
	return shuffled[:mid], shuffled[mid:]
}
