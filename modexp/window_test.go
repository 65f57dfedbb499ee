/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modexp

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPowMScenario(t *testing.T) {
	t.Parallel()

	r, err := PowM(big.NewInt(4), big.NewInt(4), big.NewInt(10000), &ExpOpts{Window: 4})
	require.NoError(t, err)
	require.Equal(t, int64(256), r.Int64())

	_, err = PowM(big.NewInt(4), big.NewInt(4), big.NewInt(10000), &ExpOpts{Window: 4, Montgomery: true})
	require.True(t, errors.Is(err, ErrInvalidModulus))
}

func TestPowMWindowIndependence(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for _, bits := range []int{8, 64, 257, 1024} {
		n := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
		n.SetBit(n, 0, 1)
		n.SetBit(n, bits-1, 1)
		base := new(big.Int).Rand(rng, n)
		e := new(big.Int).Rand(rng, n)
		expected := new(big.Int).Exp(base, e, n)

		for w := 1; w <= 6; w++ {
			for _, mont := range []bool{false, true} {
				t.Run(fmt.Sprintf("bits=%d/window=%d/montgomery=%t", bits, w, mont), func(t *testing.T) {
					r, err := PowM(base, e, n, &ExpOpts{Window: w, Montgomery: mont})
					require.NoError(t, err)
					requireIntEqual(t, expected, r)
				})
			}
		}
	}
}

func TestPowMEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, exp, n int64
		expected     int64
	}{
		{base: 5, exp: 0, n: 7, expected: 1},
		{base: 5, exp: 0, n: 1, expected: 0},
		{base: 0, exp: 0, n: 9, expected: 1},
		{base: 0, exp: 5, n: 9, expected: 0},
		{base: 12, exp: 1, n: 7, expected: 5},
		{base: -3, exp: 3, n: 7, expected: 1},
		{base: 2, exp: 1000, n: 1001, expected: new(big.Int).Exp(big.NewInt(2), big.NewInt(1000), big.NewInt(1001)).Int64()},
	}

	for _, tc := range tests {
		for _, mont := range []bool{false, true} {
			for _, w := range []int{1, 3, 64} {
				r, err := PowM(big.NewInt(tc.base), big.NewInt(tc.exp), big.NewInt(tc.n), &ExpOpts{Window: w, Montgomery: mont})
				require.NoError(t, err)
				require.Equal(t, tc.expected, r.Int64(), "%d^%d mod %d (window %d, montgomery %t)", tc.base, tc.exp, tc.n, w, mont)
			}
		}
	}
}

func TestPowMDefaults(t *testing.T) {
	t.Parallel()

	r, err := PowM(big.NewInt(68), big.NewInt(65537), big.NewInt(109), nil)
	require.NoError(t, err)
	requireIntEqual(t, new(big.Int).Exp(big.NewInt(68), big.NewInt(65537), big.NewInt(109)), r)

	opts := DefaultExpOpts()
	require.Equal(t, &ExpOpts{Window: 4, Montgomery: true}, opts)
	opts.Window = 2
	require.Equal(t, DefaultWindow, DefaultExpOpts().Window)
}

func TestPowMInvalidInput(t *testing.T) {
	t.Parallel()

	for _, w := range []int{0, -1, 65, 256} {
		_, err := PowM(big.NewInt(2), big.NewInt(3), big.NewInt(7), &ExpOpts{Window: w})
		require.True(t, errors.Is(err, ErrInvalidWindowSize), "window %d: %v", w, err)
		_, err = PowM(big.NewInt(2), big.NewInt(3), big.NewInt(7), &ExpOpts{Window: w, Montgomery: true})
		require.True(t, errors.Is(err, ErrInvalidWindowSize), "window %d: %v", w, err)
	}

	_, err := PowM(big.NewInt(2), big.NewInt(3), big.NewInt(7), &ExpOpts{Window: 0})
	require.EqualError(t, err, "window 0 is outside [1, 64]: invalid window size")

	_, err = PowM(big.NewInt(2), big.NewInt(-3), big.NewInt(7), nil)
	require.True(t, errors.Is(err, ErrNegativeExponent))

	_, err = PowM(big.NewInt(2), big.NewInt(3), big.NewInt(0), &ExpOpts{Window: 4})
	require.True(t, errors.Is(err, ErrInvalidModulus))
}

func TestPowMTableLimit(t *testing.T) {
	t.Parallel()

	allOnes := func(bits uint) *big.Int {
		return new(big.Int).Sub(new(big.Int).Lsh(bigOne, bits), bigOne)
	}
	n := big.NewInt(1000003)

	for _, mont := range []bool{false, true} {
		_, err := PowM(big.NewInt(3), allOnes(64), n, &ExpOpts{Window: 64, Montgomery: mont})
		require.True(t, errors.Is(err, ErrInvalidWindowSize), "montgomery %t: %v", mont, err)
		require.EqualError(t, err, "window 64 needs 9223372036854775808 precomputed powers, more than 65536: invalid window size")

		_, err = PowM(big.NewInt(3), allOnes(40), n, &ExpOpts{Window: 40, Montgomery: mont})
		require.True(t, errors.Is(err, ErrInvalidWindowSize), "montgomery %t: %v", mont, err)

		_, err = PowM(big.NewInt(3), allOnes(18), n, &ExpOpts{Window: 18, Montgomery: mont})
		require.True(t, errors.Is(err, ErrInvalidWindowSize), "montgomery %t: %v", mont, err)

		// a full 17 bit window fills the table exactly
		r, err := PowM(big.NewInt(3), allOnes(17), n, &ExpOpts{Window: 17, Montgomery: mont})
		require.NoError(t, err)
		requireIntEqual(t, new(big.Int).Exp(big.NewInt(3), allOnes(17), n), r)

		// wide windows stay usable when the exponent is short
		r, err = PowM(big.NewInt(3), big.NewInt(65537), n, &ExpOpts{Window: 64, Montgomery: mont})
		require.NoError(t, err)
		requireIntEqual(t, new(big.Int).Exp(big.NewInt(3), big.NewInt(65537), n), r)
	}
}

func TestSlidingWindows(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		e := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), 300))
		for w := 1; w <= 8; w++ {
			windows := slidingWindows(newExponentBits(e), w)

			rebuilt := new(big.Int)
			for _, win := range windows {
				require.GreaterOrEqual(t, win.shift, 1)
				require.LessOrEqual(t, win.shift, w)
				if win.digit == 0 {
					require.Equal(t, 1, win.shift, "zero bits are consumed one at a time")
				} else {
					require.Equal(t, uint64(1), win.digit&1, "windows end on a set bit")
					require.Equal(t, win.shift, big.NewInt(0).SetUint64(win.digit).BitLen(), "windows start on a set bit")
				}
				rebuilt.Lsh(rebuilt, uint(win.shift))
				rebuilt.Add(rebuilt, new(big.Int).SetUint64(win.digit))
			}
			requireIntEqual(t, e, rebuilt)
		}
	}
}

func TestSlidingWindowsExample(t *testing.T) {
	t.Parallel()

	// 0b101100011 with w=3: [101] [1] 0 0 0 [11]
	e := big.NewInt(0x163)
	windows := slidingWindows(newExponentBits(e), 3)
	require.Equal(t, []window{
		{shift: 3, digit: 5},
		{shift: 1, digit: 1},
		{shift: 1},
		{shift: 1},
		{shift: 1},
		{shift: 2, digit: 3},
	}, windows)

	require.Empty(t, slidingWindows(newExponentBits(big.NewInt(0)), 4))
}

func TestExpMultiplicationCount(t *testing.T) {
	t.Parallel()

	n, _ := new(big.Int).SetString("C7970CEEDCC3B0754490201A7AA613CD73911081C790F5F1A8726F463550BB5B7FF0DB8E1EA1189EC72F93D1650011BD721AEEACC2ACDE32A04107F0648C2813A31F5B0B7765FF8B44B4B6FFC93384B646EB09C7CF5E8592D40EA33C80039F35B4F14A04B51F7BFD781BE4D1673164BA8EB991C2C4D730BBBE35F592BDEF524AF7E8DAEFD26C66FC02C479AF89D64D373F442709439DE66CEB955F3EA37D5159F6135809F85334B5CB1813ADDC80CD05609F10AC6A95AD65872C909525BDAD32BC729592642920F24C61DC5B3C3B7923E56B16A4D9D373D8721F24A3FC0F1B3131F55615172866BCCC30F95054C824E733A5EB6817F7BC16399D48C6361CC7E5", 16)
	e := big.NewInt(65537)
	d, err := NewDomain(n)
	require.NoError(t, err)
	base := d.Convert(big.NewInt(42))

	counts := map[int]int{}
	var results []*big.Int
	for _, w := range []int{1, 2, 4, 6} {
		c := &CountingMultiplier[Element]{Multiplier: d}
		r, err := Exp(c, base, e, w)
		require.NoError(t, err)
		counts[w] = c.Count
		results = append(results, d.Redux(r))
	}
	for _, r := range results[1:] {
		requireIntEqual(t, results[0], r)
	}

	// 65537 = 2^16 + 1: 17 squarings and 2 multiplies at every window size,
	// plus the base squaring used to build the table.
	require.Equal(t, 17+2+1, counts[1])
	require.Equal(t, 17+2+1, counts[4])

	rng := rand.New(rand.NewSource(3))
	bigExp := new(big.Int).Rand(rng, n)
	one := &CountingMultiplier[Element]{Multiplier: d}
	four := &CountingMultiplier[Element]{Multiplier: d}
	_, err = Exp(one, base, bigExp, 1)
	require.NoError(t, err)
	_, err = Exp(four, base, bigExp, 4)
	require.NoError(t, err)
	require.Less(t, four.Count, one.Count)
}

func TestModulus(t *testing.T) {
	t.Parallel()

	_, err := NewModulus(big.NewInt(0))
	require.True(t, errors.Is(err, ErrInvalidModulus))

	m, err := NewModulus(big.NewInt(10000))
	require.NoError(t, err)
	require.Equal(t, int64(1), m.One().Int64())
	require.Equal(t, int64(256), m.Mul(big.NewInt(16), big.NewInt(16)).Int64())

	m, err = NewModulus(big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, int64(0), m.One().Int64())
}
