/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modexp

import (
	"math/big"

	"github.com/pkg/errors"
)

const (
	MinWindow     = 1
	MaxWindow     = 64
	DefaultWindow = 4

	// MaxTableEntries bounds the odd-power table of a single
	// exponentiation. A window of 17 bits fills it exactly.
	MaxTableEntries = 1 << 16
)

// Multiplier is the ring an exponentiation runs in. The type parameter tags
// the representation: *big.Int for standard form, Element for Montgomery
// form.
type Multiplier[T any] interface {
	One() T
	Mul(a, b T) T
}

// Modulus multiplies standard form residues directly modulo N.
type Modulus struct {
	n *big.Int
}

// NewModulus returns a Multiplier for arithmetic modulo n > 0.
func NewModulus(n *big.Int) (*Modulus, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, errors.Wrapf(ErrInvalidModulus, "modulus must be positive, got %v", n)
	}
	return &Modulus{n: new(big.Int).Set(n)}, nil
}

func (m *Modulus) One() *big.Int {
	return new(big.Int).Mod(bigOne, m.n)
}

func (m *Modulus) Mul(a, b *big.Int) *big.Int {
	t := new(big.Int).Mul(a, b)
	return t.Mod(t, m.n)
}

// CountingMultiplier counts the multiplications performed through it. It is
// not safe for concurrent use.
type CountingMultiplier[T any] struct {
	Multiplier[T]
	Count int
}

func (c *CountingMultiplier[T]) Mul(a, b T) T {
	c.Count++
	return c.Multiplier.Mul(a, b)
}

// A window is one step of the exponent recoding: square the accumulator
// shift times, then multiply by base^digit unless digit is zero.
type window struct {
	shift int
	digit uint64
}

// slidingWindows recodes e, most significant bits first. A zero bit becomes
// a single squaring. A set bit at position i opens a window reaching down to
// max(i−w+1, 0), which is then shrunk upwards to the lowest set bit inside
// it, so that every window starts and ends on a set bit and its digit is odd.
func slidingWindows(bits *exponentBits, w int) []window {
	var windows []window
	for i := bits.BitLen() - 1; i >= 0; {
		if !bits.Test(i) {
			windows = append(windows, window{shift: 1})
			i--
			continue
		}

		l := i - w + 1
		if l < 0 {
			l = 0
		}
		l = bits.NextSet(l)

		windows = append(windows, window{
			shift: i - l + 1,
			digit: bits.Window(l, i),
		})
		i = l - 1
	}
	return windows
}

// oddPowers returns base^1, base^3, ..., base^(2·size−1).
func oddPowers[T any](m Multiplier[T], base T, size int) []T {
	table := make([]T, size)
	table[0] = base
	sq := m.Mul(base, base)
	for i := 1; i < size; i++ {
		table[i] = m.Mul(table[i-1], sq)
	}
	return table
}

// Exp computes base^e in the ring m using sliding window exponentiation
// with windows of at most w bits.
//
// The odd-power table is sized for the largest digit the recoding of e
// produces, which for w no larger than the bit length of e is almost always
// the full 2^(w−1) entries. Entries past the largest digit would never be
// read. A recoding that would need more than MaxTableEntries powers is
// rejected with ErrInvalidWindowSize before anything is allocated.
func Exp[T any](m Multiplier[T], base T, e *big.Int, w int) (T, error) {
	var zero T
	if w < MinWindow || w > MaxWindow {
		return zero, errors.Wrapf(ErrInvalidWindowSize, "window %d is outside [%d, %d]", w, MinWindow, MaxWindow)
	}
	if e == nil || e.Sign() < 0 {
		return zero, errors.Wrapf(ErrNegativeExponent, "exponent %v", e)
	}

	windows := slidingWindows(newExponentBits(e), w)

	var maxDigit uint64
	for _, win := range windows {
		if win.digit > maxDigit {
			maxDigit = win.digit
		}
	}

	var table []T
	if maxDigit > 0 {
		// maxDigit is odd, so this equals (maxDigit-1)/2+1 and stays below 2^63
		entries := maxDigit/2 + 1
		if entries > MaxTableEntries {
			return zero, errors.Wrapf(ErrInvalidWindowSize, "window %d needs %d precomputed powers, more than %d", w, entries, MaxTableEntries)
		}
		table = oddPowers(m, base, int(entries))
	}

	acc := m.One()
	for _, win := range windows {
		for j := 0; j < win.shift; j++ {
			acc = m.Mul(acc, acc)
		}
		if win.digit != 0 {
			acc = m.Mul(acc, table[(win.digit-1)/2])
		}
	}

	return acc, nil
}

// ExpOpts selects how PowM runs.
type ExpOpts struct {
	// Window is the largest number of exponent bits consumed per table
	// lookup.
	Window int

	// Montgomery runs the exponentiation inside the Montgomery domain of
	// the modulus, which then has to be odd.
	Montgomery bool
}

// DefaultExpOpts returns a new instance every time.
func DefaultExpOpts() *ExpOpts {
	return &ExpOpts{
		Window:     DefaultWindow,
		Montgomery: true,
	}
}

// PowM returns base^e mod n. Values go in and come out in standard form;
// when opts.Montgomery is set they are converted into the Montgomery domain
// of n for the duration of the call. A nil opts means DefaultExpOpts.
func PowM(base, e, n *big.Int, opts *ExpOpts) (*big.Int, error) {
	if opts == nil {
		opts = DefaultExpOpts()
	}

	if !opts.Montgomery {
		m, err := NewModulus(n)
		if err != nil {
			return nil, err
		}
		return Exp[*big.Int](m, new(big.Int).Mod(base, n), e, opts.Window)
	}

	d, err := NewDomain(n)
	if err != nil {
		return nil, err
	}
	r, err := Exp[Element](d, d.Convert(base), e, opts.Window)
	if err != nil {
		return nil, err
	}
	return d.Redux(r), nil
}
