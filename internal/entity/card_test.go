package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCard_Value(t *testing.T) {
	// Given: ordinary cards and a joker
	tests := []struct {
		name string
		card Card
		want int
	}{
		{name: "low card", card: Card{Suit: Heart, Rank: 3}, want: 3},
		{name: "face card", card: Card{Suit: Star, Rank: 13}, want: 13},
		{name: "joker", card: NewJoker(), want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Then: the point value matches
			assert.Equal(t, tt.want, tt.card.Value())
		})
	}
}

func TestCard_IsWild(t *testing.T) {
	// Given: a round where 3s are wild
	wildRank := 3

	// Then: jokers and the wild rank are wild, everything else is not
	assert.True(t, NewJoker().IsWild(wildRank))
	assert.True(t, Card{Suit: Heart, Rank: 3}.IsWild(wildRank))
	assert.False(t, Card{Suit: Heart, Rank: 4}.IsWild(wildRank))
	assert.False(t, Card{Suit: Spade, Rank: 13}.IsWild(wildRank))
}

func TestCard_Equality(t *testing.T) {
	// Given: two cards with the same suit and rank
	a := Card{Suit: Spade, Rank: 7}
	b := Card{Suit: Spade, Rank: 7}

	// Then: equality is structural
	require.Equal(t, a, b)
	require.NotEqual(t, a, Card{Suit: Heart, Rank: 7})
	require.NotEqual(t, a, Card{Suit: Spade, Rank: 8})
}
