/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modexp

import (
	"encoding/binary"
	"math/big"

	"github.com/bits-and-blooms/bitset"
)

// exponentBits exposes the binary digits of a non-negative exponent.
type exponentBits struct {
	set *bitset.BitSet
	len int
}

func newExponentBits(e *big.Int) *exponentBits {
	raw := e.Bytes()
	words := make([]uint64, (len(raw)+7)/8)
	for i := range words {
		var chunk [8]byte
		hi := len(raw) - 8*i
		lo := hi - 8
		if lo < 0 {
			lo = 0
		}
		copy(chunk[8-(hi-lo):], raw[lo:hi])
		words[i] = binary.BigEndian.Uint64(chunk[:])
	}

	return &exponentBits{
		set: bitset.From(words),
		len: e.BitLen(),
	}
}

// BitLen returns the position of the most significant set bit plus one.
func (b *exponentBits) BitLen() int { return b.len }

// Test reports whether bit i is set.
func (b *exponentBits) Test(i int) bool {
	return b.set.Test(uint(i))
}

// NextSet returns the position of the lowest set bit at or above i. The
// caller guarantees that such a bit exists.
func (b *exponentBits) NextSet(i int) int {
	next, ok := b.set.NextSet(uint(i))
	if !ok {
		return b.len
	}
	return int(next)
}

// Window returns the bits [lo..hi] as an unsigned integer, hi−lo < 64.
func (b *exponentBits) Window(lo, hi int) uint64 {
	var u uint64
	for j := hi; j >= lo; j-- {
		u <<= 1
		if b.set.Test(uint(j)) {
			u |= 1
		}
	}
	return u
}
