// internal/game/resolver.go
package game

// Outcome describes who won a single round from the caller's perspective.
type Outcome string

const (
	OutcomeCaller   Outcome = "caller"
	OutcomeOpponent Outcome = "opponent"
	OutcomeDraw     Outcome = "draw"
)

// resolveRound compares the two played cards on the chosen attribute. The
// second return is false when either card lacks the attribute; the round then
// falls through to a draw so the state machine stays total over arbitrary
// attribute keys (the engine does not validate keys against the catalog
// schema).
//
// NaN stat values also land in the draw branch, since neither strict
// comparison holds for them.
func resolveRound(callerCard, opponentCard Card, attributeKey string) (Outcome, bool) {
	cv, cok := callerCard.Stats[attributeKey]
	ov, ook := opponentCard.Stats[attributeKey]
	known := cok && ook

	switch {
	case known && cv > ov:
		return OutcomeCaller, true
	case known && cv < ov:
		return OutcomeOpponent, true
	default:
		return OutcomeDraw, known
	}
}
