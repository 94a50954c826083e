// Package meld holds the optimal-meld scorer: given a hand and the round's
// wild rank it finds the disjoint collection of books and runs that leaves
// the cheapest possible set of unmatched cards.
package meld

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/entity"
)

type GroupKind string

const (
	GroupBook GroupKind = "book"
	GroupRun  GroupKind = "run"
)

const (
	minGroupSize = 3
	maxBookSize  = 5
)

// WildcardRole records what a wild card stood in for inside a chosen group.
type WildcardRole struct {
	Card         entity.Card `json:"card"`
	AssignedRank int         `json:"assigned_rank"`
	AssignedSuit entity.Suit `json:"assigned_suit,omitempty"`
	UsedIn       GroupKind   `json:"used_in"`
}

// Result is the scorer's full decomposition of a hand.
type Result struct {
	Books         [][]entity.Card `json:"books"`
	Runs          [][]entity.Card `json:"runs"`
	WildcardRoles []WildcardRole  `json:"wildcard_roles"`
	Remaining     []entity.Card   `json:"remaining"`
	Score         int             `json:"score"`
}

type slot struct {
	rank int
	suit entity.Suit
}

// group is one candidate book or run over hand-card indexes. For runs the
// ids are kept in window order so the reconstruction reads 3,4,5...
type group struct {
	kind     GroupKind
	ids      []int
	mask     int
	value    int
	assigned map[int]slot // wild id -> the slot it fills
}

// Score is a pure function of the hand and the wild rank: no retained state
// between calls, deterministic output.
//
// Tie-break policy: candidate groups are generated books first (rank then
// size ascending), then runs (suit order heart, spade, club, diamond, star;
// window start then length ascending). The selection keeps the first
// maximizing chain in that order, so on equal value books win over runs.
// The numeric score is invariant under ties, only the breakdown varies.
func Score(hand []entity.Card, wildRank int) Result {
	n := len(hand)
	if n == 0 {
		return Result{}
	}

	wildIDs := make([]int, 0, n)
	normalsByRank := make(map[int][]int)
	normalsBySuitRank := make(map[entity.Suit]map[int][]int)
	for id, card := range hand {
		if card.IsWild(wildRank) {
			wildIDs = append(wildIDs, id)
			continue
		}
		normalsByRank[card.Rank] = append(normalsByRank[card.Rank], id)
		if normalsBySuitRank[card.Suit] == nil {
			normalsBySuitRank[card.Suit] = make(map[int][]int)
		}
		normalsBySuitRank[card.Suit][card.Rank] = append(normalsBySuitRank[card.Suit][card.Rank], id)
	}

	if len(wildIDs) == n && n >= minGroupSize {
		return allWildResult(hand)
	}

	enum := newEnumerator(hand)
	enum.books(normalsByRank, wildIDs)
	enum.runs(normalsBySuitRank, wildIDs)

	chosen, coveredMask := selectGroups(enum.groups, n)

	return buildResult(hand, chosen, coveredMask)
}

// allWildResult melts a hand made entirely of wilds into books without the
// full search: any n >= 3 splits into books of 3 to 5 cards.
func allWildResult(hand []entity.Card) Result {
	var result Result

	rest := make([]entity.Card, len(hand))
	copy(rest, hand)
	for len(rest) > 0 {
		size := len(rest)
		if size > maxBookSize {
			size = minGroupSize
		}
		book := rest[:size]
		rest = rest[size:]
		result.Books = append(result.Books, book)
		for _, card := range book {
			result.WildcardRoles = append(result.WildcardRoles, WildcardRole{
				Card:         card,
				AssignedRank: entity.MinRank,
				UsedIn:       GroupBook,
			})
		}
	}

	return result
}

type enumerator struct {
	hand   []entity.Card
	groups []group
	seen   map[string]struct{}
}

func newEnumerator(hand []entity.Card) *enumerator {
	return &enumerator{
		hand: hand,
		seen: make(map[string]struct{}),
	}
}

// register dedupes candidates by (kind, sorted ids, wild assignment) so no
// group is considered twice.
func (that *enumerator) register(kind GroupKind, ids []int, assigned map[int]slot) {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	key := fmt.Sprintf("%s:%v", kind, sorted)
	for _, id := range sorted {
		if s, ok := assigned[id]; ok {
			key += fmt.Sprintf("|%d=%d%s", id, s.rank, s.suit)
		}
	}
	if _, ok := that.seen[key]; ok {
		return
	}
	that.seen[key] = struct{}{}

	mask := 0
	value := 0
	for _, id := range ids {
		mask |= 1 << id
		value += that.hand[id].Value()
	}

	owned := make([]int, len(ids))
	copy(owned, ids)

	that.groups = append(that.groups, group{
		kind:     kind,
		ids:      owned,
		mask:     mask,
		value:    value,
		assigned: assigned,
	})
}

// books enumerates every feasible same-rank group of 3 to 5 cards,
// including all-wild books, for every rank.
func (that *enumerator) books(normalsByRank map[int][]int, wildIDs []int) {
	for rank := entity.MinRank; rank <= entity.MaxRank; rank++ {
		normals := normalsByRank[rank]
		maxSize := min(maxBookSize, len(normals)+len(wildIDs))
		for size := minGroupSize; size <= maxSize; size++ {
			minNormals := max(0, size-len(wildIDs))
			for k := minNormals; k <= min(len(normals), size); k++ {
				for _, normalSubset := range combinations(normals, k) {
					for _, wildSubset := range combinations(wildIDs, size-k) {
						ids := make([]int, 0, size)
						ids = append(ids, normalSubset...)
						ids = append(ids, wildSubset...)
						assigned := make(map[int]slot, len(wildSubset))
						for _, wid := range wildSubset {
							assigned[wid] = slot{rank: rank}
						}
						that.register(GroupBook, ids, assigned)
					}
				}
			}
		}
	}
}

// runs enumerates every contiguous rank window of length >= 3 per suit,
// choosing for each window slot either a real card of that rank and suit
// or an unused wild. Wilds are consumed in ascending hand order so each
// wild subset appears exactly once; all-wild runs fall out of the same
// recursion.
func (that *enumerator) runs(normalsBySuitRank map[entity.Suit]map[int][]int, wildIDs []int) {
	for _, suit := range entity.Suits {
		rankMap := normalsBySuitRank[suit]
		for start := entity.MinRank; start <= entity.MaxRank-minGroupSize+1; start++ {
			maxLen := entity.MaxRank - start + 1
			for length := minGroupSize; length <= maxLen; length++ {
				if !that.runFeasible(rankMap, start, length, len(wildIDs)) {
					continue
				}
				that.fillRun(suit, rankMap, wildIDs, start, length)
			}
		}
	}
}

// runFeasible is a cheap prune: every slot needs either a real card of its
// rank or a wild.
func (that *enumerator) runFeasible(rankMap map[int][]int, start, length, wilds int) bool {
	present := 0
	for rank := start; rank < start+length; rank++ {
		if len(rankMap[rank]) > 0 {
			present++
		}
	}
	return present+wilds >= length
}

func (that *enumerator) fillRun(suit entity.Suit, rankMap map[int][]int, wildIDs []int, start, length int) {
	ids := make([]int, 0, length)
	assigned := make(map[int]slot)

	var rec func(pos, usedMask, lastWild int)
	rec = func(pos, usedMask, lastWild int) {
		if pos == length {
			that.register(GroupRun, ids, cloneAssigned(assigned))
			return
		}

		rank := start + pos
		for _, id := range rankMap[rank] {
			if usedMask&(1<<id) != 0 {
				continue
			}
			ids = append(ids, id)
			rec(pos+1, usedMask|1<<id, lastWild)
			ids = ids[:len(ids)-1]
		}

		for _, wid := range wildIDs {
			if wid <= lastWild || usedMask&(1<<wid) != 0 {
				continue
			}
			ids = append(ids, wid)
			assigned[wid] = slot{rank: rank, suit: suit}
			rec(pos+1, usedMask|1<<wid, wid)
			delete(assigned, wid)
			ids = ids[:len(ids)-1]
		}
	}

	rec(0, 0, -1)
}

func cloneAssigned(assigned map[int]slot) map[int]slot {
	out := make(map[int]slot, len(assigned))
	for id, s := range assigned {
		out[id] = s
	}
	return out
}

// selectGroups solves maximum-weight disjoint group selection with a
// memo table indexed by the bitmask of consumed cards. The table lives only
// for this call.
func selectGroups(groups []group, n int) ([]group, int) {
	size := 1 << n
	memo := make([]int, size)
	choice := make([]int, size)
	for i := range memo {
		memo[i] = -1
	}

	var best func(mask int) int
	best = func(mask int) int {
		if memo[mask] >= 0 {
			return memo[mask]
		}

		bestVal := 0
		bestChoice := -1
		for gi, g := range groups {
			if mask&g.mask != 0 {
				continue
			}
			if v := g.value + best(mask|g.mask); v > bestVal {
				bestVal = v
				bestChoice = gi
			}
		}

		memo[mask] = bestVal
		choice[mask] = bestChoice

		return bestVal
	}

	best(0)

	chosen := make([]group, 0)
	mask := 0
	for {
		gi := choice[mask]
		if gi < 0 {
			break
		}
		chosen = append(chosen, groups[gi])
		mask |= groups[gi].mask
	}

	return chosen, mask
}

func buildResult(hand []entity.Card, chosen []group, coveredMask int) Result {
	var result Result

	for _, g := range chosen {
		cards := make([]entity.Card, 0, len(g.ids))
		for _, id := range g.ids {
			cards = append(cards, hand[id])
		}

		switch g.kind {
		case GroupBook:
			result.Books = append(result.Books, cards)
		case GroupRun:
			result.Runs = append(result.Runs, cards)
		}

		for _, id := range g.ids {
			s, ok := g.assigned[id]
			if !ok {
				continue
			}
			result.WildcardRoles = append(result.WildcardRoles, WildcardRole{
				Card:         hand[id],
				AssignedRank: s.rank,
				AssignedSuit: s.suit,
				UsedIn:       g.kind,
			})
		}
	}

	for id, card := range hand {
		if coveredMask&(1<<id) == 0 {
			result.Remaining = append(result.Remaining, card)
			result.Score += card.Value()
		}
	}

	return result
}

// Arranged reorders the hand for presentation: books, then runs, then the
// remaining cards sorted by ascending rank. Purely cosmetic.
func (that Result) Arranged() []entity.Card {
	out := make([]entity.Card, 0)
	for _, book := range that.Books {
		out = append(out, book...)
	}
	for _, run := range that.Runs {
		out = append(out, run...)
	}

	remaining := make([]entity.Card, len(that.Remaining))
	copy(remaining, that.Remaining)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Rank < remaining[j].Rank
	})

	return append(out, remaining...)
}

// combinations returns every k-element subset of ids in lexicographic
// order. k == 0 yields the single empty subset.
func combinations(ids []int, k int) [][]int {
	if k == 0 {
		return [][]int{{}}
	}
	if k > len(ids) {
		return nil
	}

	var out [][]int
	subset := make([]int, 0, k)

	var rec func(offset int)
	rec = func(offset int) {
		if len(subset) == k {
			picked := make([]int, k)
			copy(picked, subset)
			out = append(out, picked)
			return
		}
		for i := offset; i <= len(ids)-(k-len(subset)); i++ {
			subset = append(subset, ids[i])
			rec(i + 1)
			subset = subset[:len(subset)-1]
		}
	}

	rec(0)

	return out
}
