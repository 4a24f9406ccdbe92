package game

import "github.com/jason-s-yu/flipseven/internal/models"

const (
	// FullFlipSize is the number of distinct number cards that ends a hand with a bonus.
	FullFlipSize = 7
	// FullFlipBonus is added on top of the folded total for a full flip.
	FullFlipBonus = 15
	// TargetScore finishes the game once any banked score reaches it.
	TargetScore = 200
)

// Score folds a hand left to right in draw order: number cards add their rank to
// the running total and modifiers apply to whatever total exists at that point.
// [4, x2] is 8 while [x2, 4] is 4. Special cards score nothing. Seven distinct
// number ranks add FullFlipBonus to the result.
func Score(hand []*models.Card) int {
	total := 0
	distinct := make(map[int]struct{}, FullFlipSize)
	for _, c := range hand {
		switch c.Kind {
		case models.KindNumber:
			total += c.Rank
			distinct[c.Rank] = struct{}{}
		case models.KindModifier:
			total = c.Apply(total)
		case models.KindSpecial:
		}
	}
	if len(distinct) == FullFlipSize {
		total += FullFlipBonus
	}
	return total
}
