/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pairing defines the arithmetic layer shared by all schemes in
// this module: a Type-3 bilinear group (G1, G2, GT) of prime order with
// an efficiently computable pairing e: G1 x G2 -> GT.
//
// Group operations are written additively, as in the underlying bn256
// library: Add is the group operation, ScalarMult is exponentiation and
// Neg is the inverse. In GT this means that Add corresponds to the
// multiplication of two pairing values. Elements are immutable values;
// every operation returns a new element.
//
// Two backends are provided, NewBN256 and NewBLS12381. Elements of
// different backends must not be mixed; doing so panics.
package pairing

import (
	"crypto/subtle"
	"math/big"

	"github.com/pkg/errors"
)

// Names of the supported curves.
const (
	BN256        = "bn256"
	BLS12381     = "bls12381"
	DefaultCurve = BN256
)

// ErrMalformedElement is returned when bytes do not encode
// an element of the expected group.
var ErrMalformedElement = errors.New("group element is not of the proper form")

// G1 is an element of the first source group.
type G1 interface {
	Add(G1) G1
	ScalarMult(k *big.Int) G1
	Neg() G1
	Marshal() []byte
}

// G2 is an element of the second source group.
type G2 interface {
	Add(G2) G2
	ScalarMult(k *big.Int) G2
	Neg() G2
	Marshal() []byte
}

// GT is an element of the target group.
type GT interface {
	Add(GT) GT
	ScalarMult(k *big.Int) GT
	Neg() GT
	Marshal() []byte
}

// Group is a bilinear group together with hashing and
// (de)serialization of its elements. Scalars passed to
// ScalarMult are reduced modulo Order, so negative scalars
// are allowed.
type Group interface {
	// Name returns the name of the curve.
	Name() string
	// Order returns the prime order p of G1, G2 and GT.
	Order() *big.Int

	G1Generator() G1
	G2Generator() G2
	// GTGenerator returns e(g1, g2) for the two generators.
	GTGenerator() GT

	G1Identity() G1
	GTIdentity() GT

	// Pair computes the bilinear pairing e(a, b).
	Pair(a G1, b G2) GT
	// HashToG1 maps msg to an element of G1 whose discrete
	// logarithm is unknown. Different domains give
	// independent hash functions.
	HashToG1(domain string, msg []byte) (G1, error)

	UnmarshalG1(b []byte) (G1, error)
	UnmarshalG2(b []byte) (G2, error)
	UnmarshalGT(b []byte) (GT, error)
}

// ByName returns the group with the given curve name.
// An empty name selects DefaultCurve.
func ByName(name string) (Group, error) {
	switch name {
	case "", BN256:
		return NewBN256(), nil
	case BLS12381:
		return NewBLS12381(), nil
	default:
		return nil, errors.Errorf("unknown curve %q", name)
	}
}

// Equal reports whether two elements have the same canonical
// encoding. The comparison is done in constant time.
func Equal(a, b interface{ Marshal() []byte }) bool {
	if a == nil || b == nil {
		return false
	}

	return subtle.ConstantTimeCompare(a.Marshal(), b.Marshal()) == 1
}

// reduce returns k mod p in [0, p).
func reduce(k, p *big.Int) *big.Int {
	return new(big.Int).Mod(k, p)
}
