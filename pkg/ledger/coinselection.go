package ledger

import (
	"fmt"
	"sort"
)

const (
	// maxSelectionRatio bounds how much the selected amount may exceed the
	// target before a larger combination of smaller coins is preferred.
	maxSelectionRatio = 10
	// maxExhaustiveCoins bounds the number of candidates explored with the
	// combination search, falling back to a greedy pick beyond it.
	maxExhaustiveCoins = 16
)

// SelectUtxos performs a coin selection over the given outputs and returns
// a subset of those carrying only the base unit that covers targetAmount,
// along with the exceeding change. Outputs holding tokens are never
// selected.
func SelectUtxos(
	utxos []Utxo, targetAmount uint64,
) (coins []Utxo, change uint64, err error) {
	candidates := make([]Utxo, 0, len(utxos))
	for _, u := range utxos {
		if !u.Value.HasTokens() {
			candidates = append(candidates, u)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Value.Amount > candidates[j].Value.Amount
	})

	values := make([]uint64, 0, len(candidates))
	for _, u := range candidates {
		values = append(values, u.Value.Amount)
	}

	indexes := getBestCombination(values, targetAmount)
	if len(indexes) <= 0 {
		err = fmt.Errorf(
			"%w: available %d, required %d",
			ErrInsufficientFunds, sum(values), targetAmount,
		)
		return
	}

	var total uint64
	for _, i := range indexes {
		total += candidates[i].Value.Amount
		coins = append(coins, candidates[i])
	}
	change = total - targetAmount
	return
}

// getBestCombination selects as few as possible items, sorted in descending
// order, whose sum covers target without exceeding it by more than
// maxSelectionRatio times. It returns the indexes of the selected items:
//  1. set size = 1
//  2. check every combination of size items, return the first that matches
//  3. if none matches, size++ and go to step 2
//
// If no combination matches, the first single item covering target is
// returned, otherwise the shortest prefix of items that covers it.
func getBestCombination(items []uint64, target uint64) []int {
	if len(items) <= maxExhaustiveCoins {
		for size := 1; size <= len(items); size++ {
			if indexes := findCombination(items, size, target); indexes != nil {
				return indexes
			}
		}
	}

	for i, v := range items {
		if v >= target {
			return []int{i}
		}
	}

	var total uint64
	for i, v := range items {
		total += v
		if total >= target {
			indexes := make([]int, 0, i+1)
			for j := 0; j <= i; j++ {
				indexes = append(indexes, j)
			}
			return indexes
		}
	}
	return nil
}

// findCombination visits every combination of size items in lexicographic
// order of indexes and returns the first one whose sum is within range.
func findCombination(items []uint64, size int, target uint64) []int {
	combination := make([]int, 0, size)

	var visit func(offset int, partial uint64) bool
	visit = func(offset int, partial uint64) bool {
		if len(combination) == size {
			return partial >= target && partial <= target*maxSelectionRatio
		}
		for i := offset; i <= len(items)-(size-len(combination)); i++ {
			combination = append(combination, i)
			if visit(i+1, partial+items[i]) {
				return true
			}
			combination = combination[:len(combination)-1]
		}
		return false
	}

	if visit(0, 0) {
		return combination
	}
	return nil
}

func sum(items []uint64) uint64 {
	var total uint64
	for _, v := range items {
		total += v
	}
	return total
}
