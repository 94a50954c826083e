package entity

import (
	"math/rand"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/apperror"
)

const (
	setsInDeck   = 2
	jokersPerSet = 3
)

// Deck owns the full multiset of 116 cards: two sets of five suits with
// ranks 3 through 13, plus six jokers.
type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	cards := make([]Card, 0, setsInDeck*(len(Suits)*(MaxRank-MinRank+1)+jokersPerSet))
	for range setsInDeck {
		for _, suit := range Suits {
			for rank := MinRank; rank <= MaxRank; rank++ {
				cards = append(cards, Card{Suit: suit, Rank: rank})
			}
		}
		for range jokersPerSet {
			cards = append(cards, NewJoker())
		}
	}

	return &Deck{cards: cards}
}

func (that *Deck) Shuffle() {
	rand.Shuffle(len(that.cards), func(i, j int) { //nolint: gosec // it's ok
		that.cards[i], that.cards[j] = that.cards[j], that.cards[i]
	})
}

// Draw removes and returns the card at the front of the deck.
func (that *Deck) Draw() (Card, error) {
	if len(that.cards) == 0 {
		return Card{}, apperror.ErrDeckEmpty
	}

	card := that.cards[0]
	that.cards = that.cards[1:]

	return card, nil
}

// Recycle returns cards back into the deck and reshuffles. Used when the
// deck runs dry mid-round and the discard pile minus its top card is fed
// back in.
func (that *Deck) Recycle(cards []Card) {
	that.cards = append(that.cards, cards...)
	that.Shuffle()
}

func (that *Deck) Size() int {
	return len(that.cards)
}

// Cards returns a copy of the remaining cards in draw order.
func (that *Deck) Cards() []Card {
	out := make([]Card, len(that.cards))
	copy(out, that.cards)
	return out
}
