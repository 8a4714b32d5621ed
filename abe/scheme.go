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

// Package abe implements ciphertext-policy attribute based encryption
// with proxy re-encryption.
//
// A data owner encrypts a payload under an access policy. A user whose
// attributes satisfy the policy can decrypt it directly. Alternatively the
// user can delegate: ReKeyGen produces a re-encryption key that lets a
// semi-trusted proxy transform the ciphertext into one that a chosen
// receiver, holding attributes that satisfy a second policy, can decrypt.
// The proxy learns neither the payload nor any private key. The receiver
// checks the transformation with Verify before decrypting.
//
// The construction is a Waters style CP-ABE over an asymmetric pairing
// with the payload encrypted by ChaCha20-Poly1305 under a key derived from
// a random element of GT. Delegation re-randomizes the delegator's key and
// blinds it with a value that is encapsulated for the receiver only.
package abe

import (
	"math/big"
	"runtime"

	"github.com/cabshare/abepre/pairing"
	"github.com/cabshare/abepre/sample"
	"github.com/pkg/errors"
)

// DefaultMaxPlaintextSize is the default bound on the payload size.
const DefaultMaxPlaintextSize = 16 << 20

// Config configures a Scheme.
type Config struct {
	// Curve names the pairing group, see pairing.ByName.
	Curve string
	// MaxPlaintextSize bounds the size of encrypted payloads in bytes.
	MaxPlaintextSize int
	// Workers bounds the number of goroutines used for
	// per-row and per-attribute group arithmetic.
	Workers int
}

// DefaultConfig returns the configuration used by NewScheme when
// fields are left empty.
func DefaultConfig() Config {
	return Config{
		Curve:            pairing.DefaultCurve,
		MaxPlaintextSize: DefaultMaxPlaintextSize,
		Workers:          runtime.NumCPU(),
	}
}

// Scheme represents a CP-ABE scheme with proxy re-encryption over
// a fixed pairing group. It holds no secret state and is safe for
// concurrent use.
type Scheme struct {
	Group pairing.Group
	P     *big.Int

	maxPlaintextSize int
	workers          int
}

// NewScheme configures a new instance of the scheme. Zero fields of
// cfg take their values from DefaultConfig.
func NewScheme(cfg Config) (*Scheme, error) {
	def := DefaultConfig()
	if cfg.Curve == "" {
		cfg.Curve = def.Curve
	}
	if cfg.MaxPlaintextSize <= 0 {
		cfg.MaxPlaintextSize = def.MaxPlaintextSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	group, err := pairing.ByName(cfg.Curve)
	if err != nil {
		return nil, err
	}

	return &Scheme{
		Group:            group,
		P:                group.Order(),
		maxPlaintextSize: cfg.MaxPlaintextSize,
		workers:          cfg.Workers,
	}, nil
}

// checkPublic returns ErrUninitialized for missing parameters and
// ErrMalformedKey for parameters of another curve.
func (s *Scheme) checkPublic(pp *PublicParams) error {
	if pp == nil {
		return ErrUninitialized
	}
	if pp.Curve != s.Group.Name() {
		return errors.Wrapf(ErrMalformedKey, "parameters for curve %s, scheme uses %s",
			pp.Curve, s.Group.Name())
	}

	return nil
}

// randomExponent samples a uniform element of [1, p).
func (s *Scheme) randomExponent() (*big.Int, error) {
	return sample.NewUniformNonZero(s.P).Sample()
}

// randomGT samples a uniform element of GT.
func (s *Scheme) randomGT() (pairing.GT, error) {
	k, err := s.randomExponent()
	if err != nil {
		return nil, err
	}

	return s.Group.GTGenerator().ScalarMult(k), nil
}

// hashAttribute maps an attribute label to G1.
func (s *Scheme) hashAttribute(label string) (pairing.G1, error) {
	return s.Group.HashToG1(domainAttribute, []byte(label))
}
