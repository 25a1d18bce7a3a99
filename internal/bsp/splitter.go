package bsp

import (
	"fmt"
	"math"
	"strings"

	"octbsp/internal/polygon"
)

// Mode selects the heuristic used to choose splitting planes
type Mode int

const (
	// MinimizeSplits tests every polygon and picks the plane causing the
	// fewest splits.
	MinimizeSplits Mode = iota
	// MostOnSplitter picks the plane shared by the most polygons.
	MostOnSplitter
	// Random picks any polygon.
	Random
	// Balanced picks the plane that best balances front and back.
	Balanced
	// AlmostMinimizeSplits is MinimizeSplits over a bounded candidate set.
	AlmostMinimizeSplits
	// AlmostBalanced is Balanced over a bounded candidate set.
	AlmostBalanced
	// BalanceAndSplits weighs balance against splits.
	BalanceAndSplits
	// AlmostBalanceAndSplits is BalanceAndSplits over a bounded candidate set.
	AlmostBalanceAndSplits
)

var modeNames = map[Mode]string{
	MinimizeSplits:         "minimize-splits",
	MostOnSplitter:         "most-on-splitter",
	Random:                 "random",
	Balanced:               "balanced",
	AlmostMinimizeSplits:   "almost-minimize-splits",
	AlmostBalanced:         "almost-balanced",
	BalanceAndSplits:       "balance-and-splits",
	AlmostBalanceAndSplits: "almost-balance-and-splits",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts a mode name such as "minimize-splits" to a Mode
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown bsp mode %q", s)
}

func (m Mode) almost() bool {
	return m == AlmostMinimizeSplits || m == AlmostBalanced || m == AlmostBalanceAndSplits
}

// candidates returns the polygon indices evaluated as splitters
func (t *Tree) candidates(n int) []int {
	limit := n
	if t.mode.almost() && t.maxCandidates > 0 && t.maxCandidates < n {
		limit = t.maxCandidates
	}

	out := make([]int, limit)
	step := float64(n) / float64(limit)
	for i := range out {
		out[i] = int(float64(i) * step)
	}
	return out
}

// selectSplitter returns the index of the polygon whose plane splits polys
func (t *Tree) selectSplitter(polys []polygon.Polygon) int {
	if len(polys) == 1 {
		return 0
	}
	if t.mode == Random {
		return t.rng.Intn(len(polys))
	}

	best, bestCost := 0, math.MaxInt
	for _, i := range t.candidates(len(polys)) {
		cost := t.splitterCost(polys, i, bestCost)
		if cost < bestCost {
			best, bestCost = i, cost
		}
	}
	return best
}

// splitterCost scores polygon i as splitter; lower is better. Split-only
// modes give up as soon as the running count reaches bestCost.
func (t *Tree) splitterCost(polys []polygon.Polygon, i, bestCost int) int {
	plane := polys[i].Plane()
	splitOnly := t.mode == MinimizeSplits || t.mode == AlmostMinimizeSplits

	front, back, splits, same := 0, 0, 0, 0
	for j, p := range polys {
		if j == i {
			continue
		}
		switch p.Classify(plane) {
		case polygon.SamePlane:
			same++
		case polygon.Front:
			front++
		case polygon.Back:
			back++
		case polygon.SplitNeeded:
			splits++
			front++
			back++
			if splitOnly && splits >= bestCost {
				return splits
			}
		}
	}

	balance := front - back
	if balance < 0 {
		balance = -balance
	}

	switch t.mode {
	case MostOnSplitter:
		return -same
	case Balanced, AlmostBalanced:
		return balance
	case BalanceAndSplits, AlmostBalanceAndSplits:
		return balance + t.splitWeight*splits
	default:
		return splits
	}
}
