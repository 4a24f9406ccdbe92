// internal/game/deck.go
package game

import (
	"fmt"
	"math/rand"

	"github.com/jason-s-yu/flipseven/internal/models"
)

// DeckSize is the number of cards generated for every session.
const DeckSize = 82

var modifierCards = []struct {
	op     models.ModifierOp
	amount int
}{
	{models.OpMultiply, 2},
	{models.OpAdd, 2},
	{models.OpAdd, 4},
	{models.OpAdd, 6},
	{models.OpAdd, 8},
	{models.OpAdd, 10},
}

var specialCards = []models.SpecialAction{
	models.ActionFreeze,
	models.ActionForceDrawThree,
	models.ActionShieldGrant,
}

// buildCards returns the unshuffled multiset: one 0, n copies of each rank n in 1..11,
// the six modifiers and three copies of each special.
func buildCards() []*models.Card {
	cards := make([]*models.Card, 0, DeckSize)
	cards = append(cards, models.NewNumberCard(0))
	for rank := 1; rank <= 11; rank++ {
		for i := 0; i < rank; i++ {
			cards = append(cards, models.NewNumberCard(rank))
		}
	}
	for _, m := range modifierCards {
		if m.op == models.OpMultiply {
			cards = append(cards, models.NewMultiplyCard(m.amount))
		} else {
			cards = append(cards, models.NewAddCard(m.amount))
		}
	}
	for _, a := range specialCards {
		for i := 0; i < 3; i++ {
			cards = append(cards, models.NewSpecialCard(a))
		}
	}
	return cards
}

// Deck is the draw pile. The draw end is the tail of cards.
type Deck struct {
	cards []*models.Card
	rng   *rand.Rand
}

// NewDeck builds the full deck and shuffles it with a source seeded by seed.
func NewDeck(seed int64) *Deck {
	d := &Deck{
		cards: buildCards(),
		rng:   rand.New(rand.NewSource(seed)),
	}
	d.shuffle()
	return d
}

// shuffle applies a Fisher-Yates permutation in place.
func (d *Deck) shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Len is the number of cards left to draw.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the pile, bottom first.
func (d *Deck) Cards() []*models.Card {
	out := make([]*models.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Draw removes and returns the tail card.
func (d *Deck) Draw() (*models.Card, error) {
	n := len(d.cards)
	if n == 0 {
		return nil, ErrEmptyDeck
	}
	c := d.cards[n-1]
	d.cards[n-1] = nil
	d.cards = d.cards[:n-1]
	return c, nil
}

// Reshuffle turns discard into the new draw pile, keeping its most recent card
// aside. It returns the discard pile that remains (just the set-aside card).
func (d *Deck) Reshuffle(discard []*models.Card) ([]*models.Card, error) {
	if len(discard) == 0 {
		return discard, fmt.Errorf("reshuffle with empty discard pile: %w", ErrEmptyDeck)
	}
	top := discard[len(discard)-1]
	rest := discard[:len(discard)-1]

	d.cards = append(d.cards, rest...)
	d.shuffle()
	return []*models.Card{top}, nil
}

// setCards replaces the pile contents. Used to lay out deterministic decks.
func (d *Deck) setCards(cards []*models.Card) {
	d.cards = cards
}
