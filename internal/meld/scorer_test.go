package meld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/entity"
)

func card(suit entity.Suit, rank int) entity.Card {
	return entity.Card{Suit: suit, Rank: rank}
}

func TestScore_NaturalRun(t *testing.T) {
	// Given: three consecutive hearts in a round where 3s are wild
	hand := []entity.Card{
		card(entity.Heart, 5),
		card(entity.Heart, 6),
		card(entity.Heart, 7),
	}

	// When: the hand is scored
	result := Score(hand, 3)

	// Then: the whole hand melds as one run and nothing counts
	require.Len(t, result.Runs, 1)
	assert.Len(t, result.Runs[0], 3)
	assert.Empty(t, result.Books)
	assert.Empty(t, result.Remaining)
	assert.Zero(t, result.Score)
}

func TestScore_WildCountsItsOwnValueWhenUnmatched(t *testing.T) {
	// Given: a 13, a wild 3 and a 4 that cannot form any group of three
	hand := []entity.Card{
		card(entity.Heart, 13),
		card(entity.Heart, 3),
		card(entity.Heart, 4),
	}

	// When: the hand is scored with 3s wild
	result := Score(hand, 3)

	// Then: every card is leftover and the wild counts its nominal rank
	assert.Empty(t, result.Books)
	assert.Empty(t, result.Runs)
	require.Len(t, result.Remaining, 3)
	assert.Equal(t, 20, result.Score)
}

func TestScore_WildsMeldIntoABook(t *testing.T) {
	// Given: a joker and a wild 3 around a lone 4
	hand := []entity.Card{
		entity.NewJoker(),
		card(entity.Heart, 3),
		card(entity.Heart, 4),
	}

	// When: the hand is scored with 3s wild
	result := Score(hand, 3)

	// Then: the wilds complete a group of three and the hand scores zero
	require.Len(t, result.Books, 1)
	assert.Empty(t, result.Remaining)
	assert.Zero(t, result.Score)
	// Then: both wilds report the rank they stood in for
	require.Len(t, result.WildcardRoles, 2)
	for _, role := range result.WildcardRoles {
		assert.Equal(t, GroupBook, role.UsedIn)
		assert.Equal(t, 4, role.AssignedRank)
	}
}

func TestScore_WildsCompleteARun(t *testing.T) {
	// Given: two naturals whose run can only close around both wilds
	hand := []entity.Card{
		entity.NewJoker(),
		card(entity.Heart, 3),
		card(entity.Heart, 4),
		card(entity.Heart, 5),
	}

	// When: the hand is scored with 3s wild
	result := Score(hand, 3)

	// Then: a four-card run absorbs every card, no book can
	require.Len(t, result.Runs, 1)
	assert.Len(t, result.Runs[0], 4)
	assert.Empty(t, result.Remaining)
	assert.Zero(t, result.Score)
	require.Len(t, result.WildcardRoles, 2)
	for _, role := range result.WildcardRoles {
		assert.Equal(t, GroupRun, role.UsedIn)
		assert.Equal(t, entity.Heart, role.AssignedSuit)
	}
}

func TestScore_FourCardRunStaysTogether(t *testing.T) {
	// Given: four consecutive spades
	hand := []entity.Card{
		card(entity.Spade, 5),
		card(entity.Spade, 6),
		card(entity.Spade, 7),
		card(entity.Spade, 8),
	}

	// When: the hand is scored
	result := Score(hand, 11)

	// Then: all four cards sit in a single run, none are shed
	require.Len(t, result.Runs, 1)
	assert.Len(t, result.Runs[0], 4)
	assert.Empty(t, result.Remaining)
	assert.Zero(t, result.Score)
}

func TestScore_PrefersBookOnEqualValue(t *testing.T) {
	// Given: a 7 and two jokers, usable as either a book of 7s or a run
	hand := []entity.Card{
		card(entity.Heart, 7),
		entity.NewJoker(),
		entity.NewJoker(),
	}

	// When: the hand is scored
	result := Score(hand, 3)

	// Then: the book wins the tie
	require.Len(t, result.Books, 1)
	assert.Empty(t, result.Runs)
	assert.Zero(t, result.Score)
}

func TestScore_MixedHandLeavesCheapestRemainder(t *testing.T) {
	// Given: a natural book of 9s, a run candidate and two stray cards
	hand := []entity.Card{
		card(entity.Heart, 9),
		card(entity.Spade, 9),
		card(entity.Club, 9),
		card(entity.Diamond, 5),
		card(entity.Diamond, 6),
		card(entity.Diamond, 7),
		card(entity.Star, 13),
		card(entity.Heart, 4),
	}

	// When: the hand is scored with 11s wild
	result := Score(hand, 11)

	// Then: book and run are both kept, only the strays count
	require.Len(t, result.Books, 1)
	require.Len(t, result.Runs, 1)
	require.Len(t, result.Remaining, 2)
	assert.Equal(t, 17, result.Score)
}

func TestScore_GroupsAreDisjoint(t *testing.T) {
	// Given: a hand where a shared card could serve two overlapping groups
	hand := []entity.Card{
		card(entity.Heart, 5),
		card(entity.Heart, 6),
		card(entity.Heart, 7),
		card(entity.Spade, 7),
		card(entity.Club, 7),
		card(entity.Star, 3),
	}

	// When: the hand is scored with 4s wild
	result := Score(hand, 4)

	// Then: every card appears in exactly one group or in the remainder
	total := len(result.Remaining)
	for _, book := range result.Books {
		total += len(book)
	}
	for _, run := range result.Runs {
		total += len(run)
	}
	assert.Equal(t, len(hand), total)
}

func TestScore_Deterministic(t *testing.T) {
	// Given: an awkward hand with wilds and overlap
	hand := []entity.Card{
		card(entity.Heart, 5),
		card(entity.Heart, 6),
		card(entity.Spade, 6),
		card(entity.Club, 6),
		entity.NewJoker(),
		card(entity.Star, 12),
	}

	// When: the same hand is scored twice
	first := Score(hand, 7)
	second := Score(hand, 7)

	// Then: the decomposition is identical
	assert.Equal(t, first, second)
}

func TestScore_EmptyHand(t *testing.T) {
	result := Score(nil, 3)

	assert.Zero(t, result.Score)
	assert.Empty(t, result.Books)
	assert.Empty(t, result.Runs)
	assert.Empty(t, result.Remaining)
}

func TestScore_AllWildHand(t *testing.T) {
	// Given: a hand of nothing but wilds
	hand := []entity.Card{
		entity.NewJoker(),
		entity.NewJoker(),
		card(entity.Heart, 6),
		card(entity.Spade, 6),
	}

	// When: the hand is scored with 6s wild
	result := Score(hand, 6)

	// Then: the wilds meld among themselves for a zero score
	require.Len(t, result.Books, 1)
	assert.Len(t, result.Books[0], 4)
	assert.Zero(t, result.Score)
	assert.Len(t, result.WildcardRoles, 4)
}

func TestArranged(t *testing.T) {
	// Given: a scored hand with a run and leftovers
	hand := []entity.Card{
		card(entity.Star, 13),
		card(entity.Heart, 5),
		card(entity.Heart, 6),
		card(entity.Heart, 7),
		card(entity.Spade, 4),
	}

	result := Score(hand, 10)

	// When: the result is arranged for presentation
	arranged := result.Arranged()

	// Then: melded cards come first, leftovers follow in ascending rank
	require.Len(t, arranged, len(hand))
	assert.Equal(t, card(entity.Heart, 5), arranged[0])
	assert.Equal(t, card(entity.Heart, 6), arranged[1])
	assert.Equal(t, card(entity.Heart, 7), arranged[2])
	assert.Equal(t, card(entity.Spade, 4), arranged[3])
	assert.Equal(t, card(entity.Star, 13), arranged[4])
}
