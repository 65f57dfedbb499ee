/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rsa implements textbook RSA encryption and CRT decryption on top of
// the modexp engine. Keys are taken as given; nothing here checks that the
// components are consistent with each other.
package rsa

import (
	"math/big"

	"github.com/hyperledger-labs/modmul/modexp"
	"github.com/pkg/errors"
)

// PublicKey is an RSA public key.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// CRTPrivateKey is an RSA private key in the layout records carry it. N, D
// and Ip are kept so a key round-trips through a record unchanged; CRT
// decryption only needs P, Q, Dp, Dq and Iq.
type CRTPrivateKey struct {
	N  *big.Int
	D  *big.Int
	P  *big.Int
	Q  *big.Int
	Dp *big.Int
	Dq *big.Int
	Ip *big.Int
	Iq *big.Int
}

// Encrypt returns m^e mod N.
func Encrypt(pub *PublicKey, m *big.Int, opts *modexp.ExpOpts) (*big.Int, error) {
	c, err := modexp.PowM(m, pub.E, pub.N, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa encryption failed")
	}
	return c, nil
}

// DecryptCRT recovers m from c using the Chinese remainder theorem:
//
//	m_p = (c mod p)^d_p mod p
//	m_q = (c mod q)^d_q mod q
//	h   = i_q·(m_p − m_q) mod p
//	m   = m_q + h·q
func DecryptCRT(priv *CRTPrivateKey, c *big.Int, opts *modexp.ExpOpts) (*big.Int, error) {
	mp, err := modexp.PowM(new(big.Int).Mod(c, priv.P), priv.Dp, priv.P, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa decryption failed modulo p")
	}
	mq, err := modexp.PowM(new(big.Int).Mod(c, priv.Q), priv.Dq, priv.Q, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa decryption failed modulo q")
	}

	h := modexp.SubMod(mp, mq, priv.P)
	h.Mul(h, priv.Iq)
	h.Mod(h, priv.P)

	m := h.Mul(h, priv.Q)
	return m.Add(m, mq), nil
}

// Decrypt returns c^d mod N without the CRT speedup.
func Decrypt(priv *CRTPrivateKey, c *big.Int, opts *modexp.ExpOpts) (*big.Int, error) {
	m, err := modexp.PowM(c, priv.D, priv.N, opts)
	if err != nil {
		return nil, errors.WithMessage(err, "rsa decryption failed")
	}
	return m, nil
}
