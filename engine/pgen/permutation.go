package pgen

import (
	"fmt"
	"io"
	"math/rand"
)

const PermutationSize = 256

// PermutationTable maps a byte to a byte. Entries are drawn independently, so
// values may repeat and some may be missing.
type PermutationTable [PermutationSize]uint8

// NewPermutationTable fills a table with one byte read from src per entry.
func NewPermutationTable(src io.Reader) (PermutationTable, error) {
	var p PermutationTable
	if src == nil {
		return p, fmt.Errorf("%w: nil source", ErrRandomSource)
	}
	_, err := io.ReadFull(src, p[:])
	if err != nil {
		return PermutationTable{}, fmt.Errorf("%w: %s", ErrRandomSource, err)
	}
	return p, nil
}

// SeededSource returns a deterministic byte stream for the given seed
func SeededSource(seed int64) io.Reader {
	return randFromSeed(seed)
}

func randFromSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// IdentityPermutation returns the table [0, 1, ..., 255].
func IdentityPermutation() PermutationTable {
	var p PermutationTable
	for i := range p {
		p[i] = uint8(i)
	}
	return p
}

// ShuffledPermutation returns a true permutation of 0..255 (Fisher-Yates), for
// comparing against the default independent draws.
func ShuffledPermutation(r *rand.Rand) PermutationTable {
	p := IdentityPermutation()
	r.Shuffle(PermutationSize, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

// GradientIndex folds the lattice coordinates through the table and returns an
// index in [0, 31].
func (p *PermutationTable) GradientIndex(coords ...int) int {
	return p.fold(coords)
}

// hash is GradientIndex over the first n entries of a fixed size corner
func (p *PermutationTable) hash(n int, corner *[4]int) int {
	return p.fold(corner[:n])
}

// fold chains h = perm[(c + h) & 0xff] across coords, starting from
// perm[c0 & 0xff].
func (p *PermutationTable) fold(coords []int) int {
	if len(coords) == 0 {
		return 0
	}
	h := int(p[coords[0]&0xff])
	for _, c := range coords[1:] {
		h = int(p[(c+h)&0xff])
	}
	return h & 0x1f
}

// Distinct reports how many different values the table holds
func (p *PermutationTable) Distinct() int {
	var seen [PermutationSize]bool
	n := 0
	for _, v := range p {
		if !seen[v] {
			seen[v] = true
			n++
		}
	}
	return n
}
