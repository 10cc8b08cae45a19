// Package lexico ranks candidate swaps by a lexicographic distance cost.
//
// # Cost Vector
//
// Given the pairs of physical nodes that are about to interact, a
// [Comparator] counts how many pairs sit at each distance. The resulting
// [Vector] has one bucket per distance from the topology diameter down to
// zero, so index 0 holds the pairs furthest apart. Vectors compare
// lexicographically and smaller is better: removing one pair from the
// longest distance outweighs any improvement further down.
//
// # Swaps
//
// [Comparator.CostAfterSwap] evaluates a [Swap] incrementally, touching
// only the two pairs that involve its endpoints. [Comparator.PruneToBest]
// keeps every swap that reaches the minimal vector; breaking the remaining
// ties is left to the caller.
package lexico
