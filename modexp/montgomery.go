/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modexp

import (
	"math/big"

	"github.com/pkg/errors"
)

var bigOne = big.NewInt(1)

// Element is a residue held in Montgomery form, that is v·R mod N for the
// Domain that produced it. Standard form values are plain *big.Int.
type Element struct {
	v *big.Int
}

// Int returns a copy of the raw Montgomery form integer.
func (e Element) Int() *big.Int {
	if e.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(e.v)
}

// Domain holds the (N, R) pair for an odd modulus together with the
// inverses needed by the reduction.
type Domain struct {
	n    *big.Int
	r    *big.Int
	rInv *big.Int // R⁻¹ mod N
	nNeg *big.Int // −N⁻¹ mod R
}

// FindR returns the smallest power of two R > N with gcd(R, N) = 1.
func FindR(n *big.Int) (*big.Int, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, errors.Wrapf(ErrInvalidModulus, "modulus must be positive, got %v", n)
	}
	if n.Bit(0) == 0 {
		return nil, errors.Wrapf(ErrInvalidModulus, "modulus %X is even", n)
	}

	r := big.NewInt(2)
	g := new(big.Int)
	for {
		if r.Cmp(n) > 0 {
			g.GCD(nil, nil, r, n)
			if g.Cmp(bigOne) == 0 {
				return r, nil
			}
		}
		r.Lsh(r, 1)
	}
}

// NewDomain sets up Montgomery arithmetic modulo n.
func NewDomain(n *big.Int) (*Domain, error) {
	r, err := FindR(n)
	if err != nil {
		return nil, err
	}

	// x·R + y·N = 1, so x ≡ R⁻¹ (mod N) and y ≡ N⁻¹ (mod R).
	x, y := new(big.Int), new(big.Int)
	new(big.Int).GCD(x, y, r, n)

	rInv := x.Mod(x, n)
	nNeg := y.Neg(y)
	nNeg.Mod(nNeg, r)

	return &Domain{
		n:    new(big.Int).Set(n),
		r:    r,
		rInv: rInv,
		nNeg: nNeg,
	}, nil
}

// Modulus returns N.
func (d *Domain) Modulus() *big.Int { return new(big.Int).Set(d.n) }

// Radix returns R.
func (d *Domain) Radix() *big.Int { return new(big.Int).Set(d.r) }

// RInverse returns R⁻¹ mod N.
func (d *Domain) RInverse() *big.Int { return new(big.Int).Set(d.rInv) }

// Convert maps the standard form value t into Montgomery form, t·R mod N.
func (d *Domain) Convert(t *big.Int) Element {
	v := new(big.Int).Mul(t, d.r)
	return Element{v: v.Mod(v, d.n)}
}

// Redux maps e out of Montgomery form.
func (d *Domain) Redux(e Element) *big.Int {
	if e.v == nil {
		return new(big.Int)
	}
	return d.Reduce(e.v)
}

// Reduce computes t·R⁻¹ mod N for 0 ≤ t < N·R:
//
//	m = (t · (−N⁻¹ mod R)) mod R
//	u = (t + m·N) / R
//
// and returns u mod N.
func (d *Domain) Reduce(t *big.Int) *big.Int {
	m := new(big.Int).Mul(t, d.nNeg)
	m.Mod(m, d.r)

	u := m.Mul(m, d.n)
	u.Add(u, t)
	u.Rsh(u, uint(d.r.BitLen()-1))

	return u.Mod(u, d.n)
}

// Mul multiplies two Montgomery form elements, redux(a·b mod N).
func (d *Domain) Mul(a, b Element) Element {
	t := new(big.Int).Mul(a.v, b.v)
	t.Mod(t, d.n)
	return Element{v: d.Reduce(t)}
}

// One returns 1 in Montgomery form.
func (d *Domain) One() Element {
	return d.Convert(bigOne)
}

// Add returns (a+b) mod N.
func (d *Domain) Add(a, b Element) Element {
	return Element{v: AddMod(a.v, b.v, d.n)}
}

// Sub returns (a−b) mod N.
func (d *Domain) Sub(a, b Element) Element {
	return Element{v: SubMod(a.v, b.v, d.n)}
}

// AddMod returns (a+b) mod n. Since conversion into Montgomery form is linear
// the result is meaningful for operands in either form, provided both share
// it.
func AddMod(a, b, n *big.Int) *big.Int {
	s := new(big.Int).Add(a, b)
	return s.Mod(s, n)
}

// SubMod returns (a−b) mod n, in [0, n).
func SubMod(a, b, n *big.Int) *big.Int {
	s := new(big.Int).Sub(a, b)
	return s.Mod(s, n)
}
