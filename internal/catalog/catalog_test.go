// internal/catalog/catalog_test.go
package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcgill/statclash/internal/game"
)

func TestDefaultCatalogParses(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 16, cat.Size())

	for _, c := range cat.Cards() {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Name)
		assert.Contains(t, c.Stats, "hp")
	}
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	_, err := New([]game.Card{{ID: "only"}})
	assert.Error(t, err, "a single card cannot be dealt to two players")

	_, err = New([]game.Card{{ID: "dup"}, {ID: "dup"}})
	assert.Error(t, err, "duplicate ids break single-deck ownership")

	_, err = New([]game.Card{{ID: "a"}, {ID: ""}})
	assert.Error(t, err)
}

func TestPartitionCoversCatalogExactlyOnce(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	first, second := cat.Partition(rand.New(rand.NewSource(99)))

	assert.Equal(t, cat.Size(), len(first)+len(second))
	assert.Equal(t, len(first), len(second), "even catalog splits evenly")

	seen := map[string]int{}
	for _, c := range append(append([]game.Card{}, first...), second...) {
		seen[c.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "card %s dealt %d times", id, n)
	}
	assert.Len(t, seen, cat.Size())
}

func TestPartitionOddSplitFavorsFirstPlayer(t *testing.T) {
	cards := []game.Card{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"},
	}
	cat, err := New(cards)
	require.NoError(t, err)

	first, second := cat.Partition(rand.New(rand.NewSource(3)))
	assert.Len(t, first, 3)
	assert.Len(t, second, 2)
}

func TestPartitionDeterministicUnderSeed(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	f1, s1 := cat.Partition(rand.New(rand.NewSource(7)))
	f2, s2 := cat.Partition(rand.New(rand.NewSource(7)))

	assert.Equal(t, f1, f2)
	assert.Equal(t, s1, s2)
}

func TestPartitionDoesNotMutateCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)
	before := cat.Cards()

	cat.Partition(rand.New(rand.NewSource(5)))

	assert.Equal(t, before, cat.Cards())
}
