// Package random provides cryptographically secure selection helpers for
// raffle draws.
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure Fisher-Yates shuffle of the slice.
func Shuffle[T any](slice []T) error {
	n := len(slice)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// Pick draws up to count elements uniformly at random without replacement.
// When count exceeds the slice length every element is returned. The input
// slice is not modified.
func Pick[T any](slice []T, count int) ([]T, error) {
	if count <= 0 || len(slice) == 0 {
		return nil, nil
	}
	pool := make([]T, len(slice))
	copy(pool, slice)
	if err := Shuffle(pool); err != nil {
		return nil, err
	}
	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count], nil
}
