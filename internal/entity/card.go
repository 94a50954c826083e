package entity

import "fmt"

type Suit string

const (
	Heart   Suit = "heart"
	Spade   Suit = "spade"
	Club    Suit = "club"
	Diamond Suit = "diamond"
	Star    Suit = "star"
	Joker   Suit = "joker"
)

const (
	MinRank = 3
	MaxRank = 13

	// JokerRank is the sentinel rank jokers always carry.
	JokerRank = 99

	jokerValue = 50
)

// Suits lists the five ordinary suits in deck order. Jokers are not a suit
// a regular card can have.
var Suits = []Suit{Heart, Spade, Club, Diamond, Star}

// Card is an immutable suit/rank pair. Equality is structural.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

func NewJoker() Card {
	return Card{Suit: Joker, Rank: JokerRank}
}

func (that Card) IsJoker() bool {
	return that.Suit == Joker || that.Rank == JokerRank
}

// IsWild reports whether the card substitutes for any rank or suit slot in
// a round whose wild rank is wildRank.
func (that Card) IsWild(wildRank int) bool {
	return that.IsJoker() || that.Rank == wildRank
}

// Value is the card's point value. It counts toward a player's score only
// when the card ends up unmatched.
func (that Card) Value() int {
	if that.IsJoker() {
		return jokerValue
	}
	return that.Rank
}

func (that Card) String() string {
	if that.IsJoker() {
		return "joker"
	}
	return fmt.Sprintf("%d%s", that.Rank, that.Suit)
}
