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
	"fmt"

	"github.com/cabshare/abepre/internal/parallel"
	"github.com/cabshare/abepre/internal/symmetric"
	"github.com/cabshare/abepre/pairing"
	"github.com/cabshare/abepre/sample"
	"github.com/pkg/errors"
)

// Capsule carries the element W = g2^b of a re-encryption key to the
// receiver. A random delta in GT is encapsulated under an access policy,
// Session = delta * e(g, g2)^(alpha*s) and C0 = g2^s with rows computed as
// in a Ciphertext, and Envelope holds W sealed under a key derived from
// delta.
type Capsule struct {
	Session  pairing.GT
	C0       pairing.G2
	Rows     []RowComponent
	Envelope Payload
}

// ReencryptionKey lets a proxy transform ciphertexts that the delegator
// can decrypt into ciphertexts for one receiver. It contains the
// delegator's key re-randomized and blinded by Z^b, where Z = g^z is the
// public key of the receiver. The receiver learns only g2^b from Capsule,
// which removes the blinding from a pairing with a ciphertext but does not
// reveal Z^b itself.
type ReencryptionKey struct {
	Curve string
	AttributeKeys
	TargetPolicy *AccessPolicy
	Capsule      Capsule
	FromPseudoID string
	ToPseudoID   string
	ReceiverKey  pairing.G1
}

// String describes the key without revealing key material.
func (rk *ReencryptionKey) String() string {
	if rk == nil {
		return "ReencryptionKey(nil)"
	}
	return fmt.Sprintf("ReencryptionKey(from=%s, to=%s)", rk.FromPseudoID, rk.ToPseudoID)
}

// ReKeyGen derives a re-encryption key from the keys of the delegator to
// the receiver identified by its public key. The transformed ciphertexts
// can be decrypted only by the receiver, and only with attributes that
// satisfy target.
//
// It fails with ErrUnsatisfiedPolicy if target cannot be satisfied even by
// all of its own labels.
func (s *Scheme) ReKeyGen(pp *PublicParams, delegator *UserKeys, receiver *PublicKey, target *AccessPolicy) (*ReencryptionKey, error) {
	if err := s.checkPublic(pp); err != nil {
		return nil, err
	}
	if delegator == nil || delegator.Public == nil {
		return nil, errors.Wrap(ErrMalformedKey, "missing delegator keys")
	}
	if len(delegator.Attributes) == 0 {
		return nil, ErrEmptyAttributeSet
	}
	if err := delegator.validate(); err != nil {
		return nil, err
	}
	if receiver == nil || receiver.Z == nil {
		return nil, errors.Wrap(ErrMalformedKey, "missing receiver public key")
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := Reconstruct(target.Attributes(), target, s.P); err != nil {
		return nil, errors.Wrap(err, "target policy")
	}

	// re-randomize the delegator key: t -> t + theta, u_x -> u_x + v_x
	theta, err := s.randomExponent()
	if err != nil {
		return nil, err
	}
	attributes := append([]string(nil), delegator.Attributes...)
	comps := make([]AttributeKey, len(attributes))
	err = parallel.ForEach(s.workers, len(attributes), func(i int) error {
		v, err := sample.NewUniform(s.P).Sample()
		if err != nil {
			return err
		}
		hx, err := s.hashAttribute(attributes[i])
		if err != nil {
			return err
		}
		c := delegator.Components[i]
		comps[i] = AttributeKey{
			Attribute: attributes[i],
			K:         c.K.Add(hx.ScalarMult(theta)).Add(pp.H.ScalarMult(v)),
			KPrime:    c.KPrime.Add(pp.G2.ScalarMult(v)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b, err := s.randomExponent()
	if err != nil {
		return nil, err
	}
	delta, err := s.randomGT()
	if err != nil {
		return nil, err
	}
	capsule, err := s.encapsulate(pp, delta, target)
	if err != nil {
		return nil, err
	}
	envelope, err := sealEnvelope(delta, pp.G2.ScalarMult(b))
	if err != nil {
		return nil, err
	}
	capsule.Envelope = *envelope

	k := delegator.K.Add(pp.GBeta.ScalarMult(theta)).Add(receiver.Z.ScalarMult(b))

	return &ReencryptionKey{
		Curve: s.Group.Name(),
		AttributeKeys: AttributeKeys{
			Attributes: attributes,
			K:          k,
			L:          delegator.L.Add(pp.G2.ScalarMult(theta)),
			Components: comps,
		},
		TargetPolicy: target,
		Capsule:      *capsule,
		FromPseudoID: delegator.Public.PseudoID,
		ToPseudoID:   receiver.PseudoID,
		ReceiverKey:  receiver.Z,
	}, nil
}

// encapsulate encrypts delta under policy. The envelope is left empty.
func (s *Scheme) encapsulate(pp *PublicParams, delta pairing.GT, policy *AccessPolicy) (*Capsule, error) {
	secret, err := s.randomExponent()
	if err != nil {
		return nil, err
	}
	rows, err := s.encryptRows(pp, policy, secret)
	if err != nil {
		return nil, err
	}

	return &Capsule{
		Session: delta.Add(pp.EggAlpha.ScalarMult(secret)),
		C0:      pp.G2.ScalarMult(secret),
		Rows:    rows,
	}, nil
}

// rerandomize returns a capsule encapsulating the same element under
// fresh randomness: the exponent s becomes s + s'' and every row gets
// fresh shares of s'' and fresh blinding. The envelope is kept.
func (s *Scheme) rerandomize(pp *PublicParams, c *Capsule, policy *AccessPolicy) (*Capsule, error) {
	if c.Session == nil || c.C0 == nil || len(c.Rows) != policy.Mat.Rows() {
		return nil, errors.Wrap(ErrMalformedKey, "incomplete capsule")
	}
	fresh, err := s.encapsulate(pp, s.Group.GTIdentity(), policy)
	if err != nil {
		return nil, err
	}

	rows := make([]RowComponent, len(c.Rows))
	for i, r := range c.Rows {
		if r.C == nil || r.D == nil || r.E == nil {
			return nil, errors.Wrapf(ErrMalformedKey, "capsule row %d is incomplete", i)
		}
		f := fresh.Rows[i]
		rows[i] = RowComponent{C: r.C.Add(f.C), D: r.D.Add(f.D), E: r.E.Add(f.E)}
	}

	return &Capsule{
		Session:  c.Session.Add(fresh.Session),
		C0:       c.C0.Add(fresh.C0),
		Rows:     rows,
		Envelope: c.Envelope,
	}, nil
}

func sealEnvelope(delta pairing.GT, w pairing.G2) (*Payload, error) {
	key, err := symmetric.DeriveKey(delta.Marshal(), infoEnvelope)
	if err != nil {
		return nil, err
	}
	box, err := symmetric.Seal(key, w.Marshal(), []byte(infoEnvelope))
	if err != nil {
		return nil, err
	}

	return &Payload{Nonce: box.Nonce, Body: box.Body, Tag: box.Tag}, nil
}

// openEnvelope recovers W from the envelope of a capsule holding delta.
func (s *Scheme) openEnvelope(delta pairing.GT, p *Payload) (pairing.G2, error) {
	key, err := symmetric.DeriveKey(delta.Marshal(), infoEnvelope)
	if err != nil {
		return nil, err
	}
	box := &symmetric.Box{Nonce: p.Nonce, Body: p.Body, Tag: p.Tag}
	b, err := symmetric.Open(key, box, []byte(infoEnvelope))
	if err != nil {
		return nil, errors.Wrap(ErrAuthenticationFailed, "capsule envelope")
	}
	w, err := s.Group.UnmarshalG2(b)
	if err != nil {
		return nil, errors.Wrap(ErrIntegrityMismatch, "capsule envelope")
	}

	return w, nil
}
