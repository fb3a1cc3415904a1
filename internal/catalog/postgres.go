// internal/catalog/postgres.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmcgill/statclash/internal/game"
)

// LoadPostgres reads the card set from a `cards` table:
//
//	CREATE TABLE cards (
//	    id    TEXT PRIMARY KEY,
//	    name  TEXT NOT NULL,
//	    stats JSONB NOT NULL
//	);
//
// The catalog is loaded once at startup and is immutable afterwards; the
// database is never touched during play.
func LoadPostgres(ctx context.Context, db *pgxpool.Pool) (*Catalog, error) {
	q := `SELECT id, name, stats FROM cards ORDER BY id`
	rows, err := db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []game.Card
	for rows.Next() {
		var (
			id, name  string
			statsJSON []byte
		)
		if err := rows.Scan(&id, &name, &statsJSON); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		stats := map[string]float64{}
		if err := json.Unmarshal(statsJSON, &stats); err != nil {
			return nil, fmt.Errorf("parse stats for card %s: %w", id, err)
		}
		cards = append(cards, game.Card{ID: id, Name: name, Stats: stats})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return New(cards)
}
