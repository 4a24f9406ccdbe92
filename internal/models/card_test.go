package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardValue(t *testing.T) {
	tests := []struct {
		card *Card
		want string
		kind string
	}{
		{NewNumberCard(0), "0", "number"},
		{NewNumberCard(12), "12", "number"},
		{NewAddCard(10), "+10", "modifier"},
		{NewMultiplyCard(2), "x2", "modifier"},
		{NewSpecialCard(ActionFreeze), "freeze", "special"},
		{NewSpecialCard(ActionForceDrawThree), "flip three", "special"},
		{NewSpecialCard(ActionShieldGrant), "second chance", "special"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.card.Value())
			assert.Equal(t, tt.kind, tt.card.Kind.String())

			data, err := json.Marshal(tt.card)
			require.NoError(t, err)
			var back Card
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, *tt.card, back)
		})
	}
}

func TestCardApply(t *testing.T) {
	assert.Equal(t, 14, NewAddCard(4).Apply(10))
	assert.Equal(t, 20, NewMultiplyCard(2).Apply(10))
	assert.Equal(t, 10, NewNumberCard(5).Apply(10))
	assert.Equal(t, 10, NewSpecialCard(ActionFreeze).Apply(10))
}

func TestParseCardRejects(t *testing.T) {
	for _, tt := range []struct{ kind, value string }{
		{"number", "13"},
		{"number", "seven"},
		{"modifier", "-2"},
		{"modifier", "x"},
		{"special", "joker"},
		{"wild", "1"},
	} {
		_, err := ParseCard(tt.kind, tt.value)
		assert.Error(t, err, "%s %s", tt.kind, tt.value)
	}
}

func TestSpecialActionValid(t *testing.T) {
	assert.True(t, ActionFreeze.Valid())
	assert.False(t, SpecialAction("").Valid())
	assert.False(t, SpecialAction("skip").Valid())
}
