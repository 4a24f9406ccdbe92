package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckComposition(t *testing.T) {
	d := NewDeck(1)
	require.Equal(t, DeckSize, d.Len())

	ranks := map[int]int{}
	values := map[string]int{}
	ids := map[uuid.UUID]struct{}{}
	for _, c := range d.Cards() {
		ids[c.ID] = struct{}{}
		switch c.Kind {
		case models.KindNumber:
			ranks[c.Rank]++
		default:
			values[c.Value()]++
		}
	}

	assert.Len(t, ids, DeckSize, "every card has its own identity")
	assert.Equal(t, 1, ranks[0])
	for rank := 1; rank <= 11; rank++ {
		assert.Equal(t, rank, ranks[rank], "rank %d", rank)
	}
	for _, v := range []string{"x2", "+2", "+4", "+6", "+8", "+10"} {
		assert.Equal(t, 1, values[v], "modifier %s", v)
	}
	for _, a := range []models.SpecialAction{models.ActionFreeze, models.ActionForceDrawThree, models.ActionShieldGrant} {
		assert.Equal(t, 3, values[string(a)], "special %s", a)
	}
}

func TestNewDeckDeterministicPerSeed(t *testing.T) {
	faces := func(d *Deck) []string {
		var out []string
		for _, c := range d.Cards() {
			out = append(out, c.Value())
		}
		return out
	}
	assert.Equal(t, faces(NewDeck(7)), faces(NewDeck(7)))
	assert.NotEqual(t, faces(NewDeck(7)), faces(NewDeck(8)))
}

func TestDeckDrawFromTail(t *testing.T) {
	a, b := models.NewNumberCard(1), models.NewNumberCard(2)
	d := &Deck{}
	d.setCards([]*models.Card{a, b})

	c, err := d.Draw()
	require.NoError(t, err)
	assert.Same(t, b, c)
	c, err = d.Draw()
	require.NoError(t, err)
	assert.Same(t, a, c)

	_, err = d.Draw()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestDeckReshuffleKeepsTopDiscard(t *testing.T) {
	d := NewDeck(3)
	d.setCards(nil)
	discard := []*models.Card{models.NewNumberCard(4), models.NewAddCard(2), models.NewNumberCard(9)}
	top := discard[2]

	remaining, err := d.Reshuffle(discard)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Same(t, top, remaining[0])
	assert.Equal(t, 2, d.Len())
	for _, c := range d.Cards() {
		assert.NotEqual(t, top.ID, c.ID)
	}
}

func TestDeckReshuffleEmptyDiscard(t *testing.T) {
	d := NewDeck(3)
	d.setCards(nil)
	_, err := d.Reshuffle(nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}
