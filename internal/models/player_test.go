package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerHandQueries(t *testing.T) {
	p := NewPlayer(uuid.New(), "p")
	assert.Equal(t, StatusStart, p.Status)
	assert.True(t, p.Status.Active())

	five := NewNumberCard(5)
	freeze := NewSpecialCard(ActionFreeze)
	p.Hand = []*Card{five, NewAddCard(5), freeze}

	assert.True(t, p.HasRank(5))
	assert.False(t, p.HasRank(4))
	assert.Equal(t, 1, p.NumberCount(), "a +5 is not a number card")

	assert.Nil(t, p.PendingSpecial())
	p.LastDrawn = freeze
	assert.Same(t, freeze, p.PendingSpecial())

	removed, ok := p.RemoveCard(freeze.ID)
	require.True(t, ok)
	assert.Same(t, freeze, removed)
	assert.Len(t, p.Hand, 2)
	_, ok = p.RemoveCard(freeze.ID)
	assert.False(t, ok)

	p.Status = StatusStopped
	assert.False(t, p.Status.Active())
}

func TestPlayerCloneIsIndependent(t *testing.T) {
	p := NewPlayer(uuid.New(), "p")
	p.Hand = []*Card{NewNumberCard(1)}
	cp := p.Clone()
	p.Hand = append(p.Hand, NewNumberCard(2))
	p.Hand[0] = NewNumberCard(9)

	require.Len(t, cp.Hand, 1)
	assert.Equal(t, 1, cp.Hand[0].Rank)
}
