// internal/game/card.go
package game

// Card is an immutable catalog entry. Stats maps an attribute key (e.g. "hp",
// "attack") to its numeric value. The engine never mutates a Card; decks only
// move cards around.
type Card struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Stats map[string]float64 `json:"stats"`
}
