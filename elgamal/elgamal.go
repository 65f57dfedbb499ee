/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package elgamal implements ElGamal encryption over a prime order subgroup
// of Z_p^*, with all exponentiations delegated to modexp.
package elgamal

import (
	"math/big"

	"github.com/hyperledger-labs/modmul/entropy"
	"github.com/hyperledger-labs/modmul/modexp"
	"github.com/pkg/errors"
)

// maxNonceAttempts bounds rejection sampling in NewNonce. A single draw lands
// in [1, q) with probability at least one quarter.
const maxNonceAttempts = 64

// PublicKey holds the group parameters and h = g^x mod p.
type PublicKey struct {
	P *big.Int
	Q *big.Int
	G *big.Int
	H *big.Int
}

// PrivateKey is the secret exponent x alongside the group it belongs to. H may
// be nil; decryption does not use it.
type PrivateKey struct {
	PublicKey
	X *big.Int
}

type Ciphertext struct {
	C1 *big.Int
	C2 *big.Int
}

// Encrypt computes, with a = r mod q,
//
//	c1 = g^a mod p
//	c2 = h^a · m mod p
func Encrypt(pub *PublicKey, m, r *big.Int, opts *modexp.ExpOpts) (*Ciphertext, error) {
	if pub.Q.Sign() <= 0 {
		return nil, errors.Errorf("group order must be positive, got %v", pub.Q)
	}
	a := new(big.Int).Mod(r, pub.Q)

	c1, err := modexp.PowM(pub.G, a, pub.P, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal encryption failed")
	}
	s, err := modexp.PowM(pub.H, a, pub.P, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal encryption failed")
	}

	c2 := s.Mul(s, m)
	return &Ciphertext{C1: c1, C2: c2.Mod(c2, pub.P)}, nil
}

// EncryptRandom encrypts m under a fresh nonce drawn from src.
func EncryptRandom(pub *PublicKey, m *big.Int, src entropy.Source, opts *modexp.ExpOpts) (*Ciphertext, error) {
	r, err := NewNonce(src, pub.Q)
	if err != nil {
		return nil, err
	}
	return Encrypt(pub, m, r, opts)
}

// Decrypt recovers m = c1^(−x mod q) · c2 mod p.
func Decrypt(priv *PrivateKey, ct *Ciphertext, opts *modexp.ExpOpts) (*big.Int, error) {
	if priv.Q.Sign() <= 0 {
		return nil, errors.Errorf("group order must be positive, got %v", priv.Q)
	}
	a := new(big.Int).Neg(priv.X)
	a.Mod(a, priv.Q)

	s, err := modexp.PowM(ct.C1, a, priv.P, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "elgamal decryption failed")
	}

	m := s.Mul(s, ct.C2)
	return m.Mod(m, priv.P), nil
}

// NewNonce draws r uniformly from [1, q) using src.
func NewNonce(src entropy.Source, q *big.Int) (*big.Int, error) {
	if q.Cmp(big.NewInt(1)) <= 0 {
		return nil, errors.Errorf("group order must exceed 1, got %v", q)
	}

	n := q.BitLen()
	for i := 0; i < maxNonceAttempts; i++ {
		bits, err := src.RandomBits(n)
		if err != nil {
			return nil, errors.WithMessage(err, "failed drawing nonce")
		}
		r := entropy.ToInt(bits)
		if r.Sign() > 0 && r.Cmp(q) < 0 {
			return r, nil
		}
	}
	return nil, errors.Wrapf(entropy.ErrRandomnessUnavailable, "no nonce in [1, %X) after %d draws", q, maxNonceAttempts)
}
