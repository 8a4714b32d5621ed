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

package abe

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/cabshare/abepre/internal/parallel"
	"github.com/cabshare/abepre/pairing"
	"github.com/cabshare/abepre/sample"
	"github.com/pkg/errors"
)

// AttributeKey is the part of a decryption key bound to one attribute.
type AttributeKey struct {
	Attribute string
	K         pairing.G1
	KPrime    pairing.G2
}

// AttributeKeys is a decryption key for a set of attributes.
// Components[i] belongs to Attributes[i].
type AttributeKeys struct {
	Attributes []string
	K          pairing.G1
	L          pairing.G2
	Components []AttributeKey
}

// components indexes the attribute keys by label.
func (a *AttributeKeys) components() map[string]AttributeKey {
	m := make(map[string]AttributeKey, len(a.Components))
	for _, c := range a.Components {
		m[c.Attribute] = c
	}
	return m
}

func (a *AttributeKeys) validate() error {
	if a.K == nil || a.L == nil || len(a.Components) != len(a.Attributes) {
		return errors.Wrap(ErrMalformedKey, "incomplete attribute keys")
	}
	for i, c := range a.Components {
		if c.Attribute != a.Attributes[i] || c.K == nil || c.KPrime == nil {
			return errors.Wrapf(ErrMalformedKey, "attribute key %d", i)
		}
	}

	return nil
}

// PublicKey identifies a user. PseudoID is a pseudonymous identifier
// that reveals nothing about the attributes of the user, and
// Z = g^z is the public part of the personal key z.
type PublicKey struct {
	PseudoID string
	Z        pairing.G1
}

// UserKeys are the keys issued to a user by KeyGen. The personal
// secret z is unexported and has no serialized form.
type UserKeys struct {
	AttributeKeys
	Public *PublicKey

	z *big.Int
}

// String describes the keys without revealing secret material.
func (k *UserKeys) String() string {
	if k == nil || k.Public == nil {
		return "UserKeys(nil)"
	}
	return fmt.Sprintf("UserKeys(ptid=%s, attributes=%v)", k.Public.PseudoID, k.Attributes)
}

// KeyGen issues keys for the given attributes. Labels are trimmed,
// deduplicated and sorted. The seed is mixed into the pseudonymous
// identifier together with fresh randomness, so the identifier of the
// keys is unique even if the seed is reused.
func (s *Scheme) KeyGen(params *SystemParams, attributes []string, seed []byte) (*UserKeys, error) {
	if params == nil || params.master == nil {
		return nil, ErrUninitialized
	}
	pp := params.Public
	if err := s.checkPublic(pp); err != nil {
		return nil, err
	}
	attributes = normalizeAttributes(attributes)
	if len(attributes) == 0 {
		return nil, ErrEmptyAttributeSet
	}

	t, err := s.randomExponent()
	if err != nil {
		return nil, err
	}
	z, err := s.randomExponent()
	if err != nil {
		return nil, err
	}

	betaT := new(big.Int).Mul(params.master.beta, t)
	keys := &UserKeys{
		AttributeKeys: AttributeKeys{
			Attributes: attributes,
			K:          params.master.gAlpha.Add(pp.G.ScalarMult(betaT)),
			L:          pp.G2.ScalarMult(t),
			Components: make([]AttributeKey, len(attributes)),
		},
		z: z,
	}

	err = parallel.ForEach(s.workers, len(attributes), func(i int) error {
		u, err := sample.NewUniform(s.P).Sample()
		if err != nil {
			return err
		}
		hx, err := s.hashAttribute(attributes[i])
		if err != nil {
			return err
		}
		keys.Components[i] = AttributeKey{
			Attribute: attributes[i],
			K:         hx.ScalarMult(t).Add(pp.H.ScalarMult(u)),
			KPrime:    pp.G2.ScalarMult(u),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys.Public = &PublicKey{
		PseudoID: pseudoID(seed, t),
		Z:        pp.G.ScalarMult(z),
	}

	return keys, nil
}

func pseudoID(seed []byte, t *big.Int) string {
	tr := newTranscript(domainPseudoID)
	tr.bytes(seed)
	tr.bigInt(t)
	sum := tr.sum()

	return hex.EncodeToString(sum[:])
}
