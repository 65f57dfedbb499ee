/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package processor

import (
	"math/big"
	"sort"
	"strings"

	"github.com/hyperledger-labs/modmul/elgamal"
	"github.com/hyperledger-labs/modmul/entropy"
	"github.com/hyperledger-labs/modmul/modexp"
	"github.com/hyperledger-labs/modmul/rsa"
	"github.com/pkg/errors"
)

// ErrUnknownOperation is returned by Lookup for names no operation answers to.
var ErrUnknownOperation = errors.New("unknown operation")

// ApplyFunc transforms one input record into one output record.
type ApplyFunc func(values []*big.Int) ([]*big.Int, error)

// Operation is a record transformation selectable by name.
type Operation struct {
	Name    string
	Aliases []string
	// Arity is the number of integers in an input record.
	Arity int
	Apply ApplyFunc
}

// Registry holds the operations available to a batch.
type Registry struct {
	byName map[string]*Operation
	ops    []*Operation
}

// NewRegistry returns the RSA and ElGamal operations bound to the given
// engine options. src supplies ElGamal encryption nonces.
func NewRegistry(opts *modexp.ExpOpts, src entropy.Source) *Registry {
	r := &Registry{byName: map[string]*Operation{}}
	r.Register(&Operation{
		Name:    "rsa-encrypt",
		Aliases: []string{"stage1"},
		Arity:   3,
		Apply: func(v []*big.Int) ([]*big.Int, error) {
			c, err := rsa.Encrypt(&rsa.PublicKey{N: v[0], E: v[1]}, v[2], opts)
			if err != nil {
				return nil, err
			}
			return []*big.Int{c}, nil
		},
	})
	r.Register(&Operation{
		Name:    "rsa-decrypt",
		Aliases: []string{"stage2"},
		Arity:   9,
		Apply: func(v []*big.Int) ([]*big.Int, error) {
			key := &rsa.CRTPrivateKey{
				N:  v[0],
				D:  v[1],
				P:  v[2],
				Q:  v[3],
				Dp: v[4],
				Dq: v[5],
				Ip: v[6],
				Iq: v[7],
			}
			m, err := rsa.DecryptCRT(key, v[8], opts)
			if err != nil {
				return nil, err
			}
			return []*big.Int{m}, nil
		},
	})
	r.Register(&Operation{
		Name:    "elgamal-encrypt",
		Aliases: []string{"stage3"},
		Arity:   5,
		Apply: func(v []*big.Int) ([]*big.Int, error) {
			pub := &elgamal.PublicKey{P: v[0], Q: v[1], G: v[2], H: v[3]}
			ct, err := elgamal.EncryptRandom(pub, v[4], src, opts)
			if err != nil {
				return nil, err
			}
			return []*big.Int{ct.C1, ct.C2}, nil
		},
	})
	r.Register(&Operation{
		Name:    "elgamal-decrypt",
		Aliases: []string{"stage4"},
		Arity:   6,
		Apply: func(v []*big.Int) ([]*big.Int, error) {
			priv := &elgamal.PrivateKey{
				PublicKey: elgamal.PublicKey{P: v[0], Q: v[1], G: v[2]},
				X:         v[3],
			}
			m, err := elgamal.Decrypt(priv, &elgamal.Ciphertext{C1: v[4], C2: v[5]}, opts)
			if err != nil {
				return nil, err
			}
			return []*big.Int{m}, nil
		},
	})
	return r
}

// Register adds op under its name and aliases, replacing any operation
// previously registered under the same names.
func (r *Registry) Register(op *Operation) {
	r.ops = append(r.ops, op)
	r.byName[op.Name] = op
	for _, alias := range op.Aliases {
		r.byName[alias] = op
	}
}

// Lookup returns the operation answering to name, case insensitively.
func (r *Registry) Lookup(name string) (*Operation, error) {
	op, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOperation, "'%s' is not one of [%s]", name, strings.Join(r.Names(), ", "))
	}
	return op, nil
}

// Operations returns the registered operations in registration order.
func (r *Registry) Operations() []*Operation {
	return append([]*Operation(nil), r.ops...)
}

// Names returns every name and alias, sorted.
func (r *Registry) Names() []string {
	var names []string
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
