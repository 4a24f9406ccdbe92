// internal/models/card.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// CardKind is the closed set of card families in the deck.
type CardKind int

const (
	KindNumber CardKind = iota
	KindModifier
	KindSpecial
)

func (k CardKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindModifier:
		return "modifier"
	case KindSpecial:
		return "special"
	}
	return fmt.Sprintf("CardKind(%d)", int(k))
}

// ModifierOp is how a modifier card folds into a running hand total.
type ModifierOp int

const (
	OpAdd ModifierOp = iota
	OpMultiply
)

// SpecialAction names the three action cards that need a target to resolve.
type SpecialAction string

const (
	ActionFreeze         SpecialAction = "freeze"
	ActionForceDrawThree SpecialAction = "flip three"
	ActionShieldGrant    SpecialAction = "second chance"
)

// Valid reports whether a is one of the known special actions.
func (a SpecialAction) Valid() bool {
	switch a {
	case ActionFreeze, ActionForceDrawThree, ActionShieldGrant:
		return true
	}
	return false
}

// Card is an immutable deck card. Exactly one of Rank, (Op, Amount) or Action is
// meaningful, selected by Kind. ID gives every physical card its own identity so
// that piles can be audited for conservation.
type Card struct {
	ID     uuid.UUID
	Kind   CardKind
	Rank   int
	Op     ModifierOp
	Amount int
	Action SpecialAction
}

// NewNumberCard returns a number card of the given rank.
func NewNumberCard(rank int) *Card {
	return &Card{ID: uuid.New(), Kind: KindNumber, Rank: rank}
}

// NewAddCard returns a flat "+amount" modifier.
func NewAddCard(amount int) *Card {
	return &Card{ID: uuid.New(), Kind: KindModifier, Op: OpAdd, Amount: amount}
}

// NewMultiplyCard returns a "x factor" modifier.
func NewMultiplyCard(factor int) *Card {
	return &Card{ID: uuid.New(), Kind: KindModifier, Op: OpMultiply, Amount: factor}
}

// NewSpecialCard returns an action card.
func NewSpecialCard(action SpecialAction) *Card {
	return &Card{ID: uuid.New(), Kind: KindSpecial, Action: action}
}

// Value is the face value as players see it: "7", "x2", "+10", "freeze".
func (c *Card) Value() string {
	switch c.Kind {
	case KindNumber:
		return strconv.Itoa(c.Rank)
	case KindModifier:
		if c.Op == OpMultiply {
			return "x" + strconv.Itoa(c.Amount)
		}
		return "+" + strconv.Itoa(c.Amount)
	case KindSpecial:
		return string(c.Action)
	}
	return ""
}

// Apply folds a modifier card into total. Non-modifier cards leave it unchanged.
func (c *Card) Apply(total int) int {
	if c.Kind != KindModifier {
		return total
	}
	if c.Op == OpMultiply {
		return total * c.Amount
	}
	return total + c.Amount
}

func (c *Card) String() string {
	return c.Kind.String() + ":" + c.Value()
}

type cardJSON struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
	Type  string    `json:"type"`
}

// MarshalJSON emits the wire shape {"id","value","type"}.
func (c *Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{ID: c.ID, Value: c.Value(), Type: c.Kind.String()})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCard(raw.Type, raw.Value)
	if err != nil {
		return err
	}
	parsed.ID = raw.ID
	*c = *parsed
	return nil
}

// ParseCard rebuilds a card from its type name and face value. The result has a
// fresh ID.
func ParseCard(kind, value string) (*Card, error) {
	switch kind {
	case "number":
		rank, err := strconv.Atoi(value)
		if err != nil || rank < 0 || rank > 12 {
			return nil, fmt.Errorf("invalid number card %q", value)
		}
		return NewNumberCard(rank), nil
	case "modifier":
		if len(value) < 2 {
			return nil, fmt.Errorf("invalid modifier card %q", value)
		}
		amount, err := strconv.Atoi(value[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid modifier card %q", value)
		}
		switch value[0] {
		case '+':
			return NewAddCard(amount), nil
		case 'x':
			return NewMultiplyCard(amount), nil
		}
		return nil, fmt.Errorf("invalid modifier card %q", value)
	case "special":
		action := SpecialAction(value)
		if !action.Valid() {
			return nil, fmt.Errorf("invalid special card %q", value)
		}
		return NewSpecialCard(action), nil
	}
	return nil, fmt.Errorf("unknown card type %q", kind)
}
