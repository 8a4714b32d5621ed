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
	"math/big"

	"github.com/cabshare/abepre/internal/parallel"
	"github.com/cabshare/abepre/internal/symmetric"
	"github.com/cabshare/abepre/pairing"
	"github.com/cabshare/abepre/sample"
	"github.com/pkg/errors"
)

// RowComponent is the part of a ciphertext belonging to one row of
// the access policy.
type RowComponent struct {
	C pairing.G1
	D pairing.G2
	E pairing.G1
}

// Payload is the symmetrically encrypted plaintext.
type Payload struct {
	Nonce []byte
	Body  []byte
	Tag   []byte
}

// Ciphertext represents a payload encrypted under an access policy.
// Rows[i] belongs to row i of Policy. Session blinds the random
// element of GT from which the payload key is derived. C0 = g2^s and
// C1 = g^s share the exponent s of Session. Binding commits to the
// plaintext and IntegrityHash to all other fields.
type Ciphertext struct {
	Curve         string
	Policy        *AccessPolicy
	Session       pairing.GT
	C0            pairing.G2
	C1            pairing.G1
	Rows          []RowComponent
	Payload       Payload
	Binding       [32]byte
	IntegrityHash [32]byte
}

// digest computes the integrity hash over every field except
// IntegrityHash itself.
func (ct *Ciphertext) digest() [32]byte {
	t := newTranscript(domainIntegrity)
	t.string(ct.Curve)
	t.policy(ct.Policy)
	t.element(ct.Session)
	t.element(ct.C0)
	t.element(ct.C1)
	t.rows(ct.Rows)
	t.payload(ct.Payload)
	t.bytes(ct.Binding[:])

	return t.sum()
}

// checkIntegrity recomputes the integrity hash and checks the
// structure of the ciphertext and that it was produced over curve.
func (ct *Ciphertext) checkIntegrity(curve string) error {
	if ct == nil {
		return errors.Wrap(ErrIntegrityMismatch, "missing ciphertext")
	}
	if ct.Curve != curve {
		return errors.Wrapf(ErrIntegrityMismatch, "ciphertext for curve %s", ct.Curve)
	}
	if ct.Session == nil || ct.C0 == nil || ct.C1 == nil || ct.Policy == nil || len(ct.Rows) != ct.Policy.Mat.Rows() {
		return errors.Wrap(ErrIntegrityMismatch, "incomplete ciphertext")
	}
	if !hashEqual(ct.digest(), ct.IntegrityHash) {
		return errors.Wrap(ErrIntegrityMismatch, "ciphertext was modified")
	}

	return nil
}

// Encrypt encrypts plaintext under the access policy. The plaintext may
// be empty and is bounded by the configured maximal size.
func (s *Scheme) Encrypt(pp *PublicParams, plaintext []byte, policy *AccessPolicy) (*Ciphertext, error) {
	if err := s.checkPublic(pp); err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if len(plaintext) > s.maxPlaintextSize {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "%d bytes, limit is %d",
			len(plaintext), s.maxPlaintextSize)
	}

	secret, err := s.randomExponent()
	if err != nil {
		return nil, err
	}
	rows, err := s.encryptRows(pp, policy, secret)
	if err != nil {
		return nil, err
	}

	kappa, err := s.randomGT()
	if err != nil {
		return nil, err
	}
	payload, err := sealPayload(kappa, plaintext)
	if err != nil {
		return nil, err
	}

	ct := &Ciphertext{
		Curve:   s.Group.Name(),
		Policy:  policy,
		Session: kappa.Add(pp.EggAlpha.ScalarMult(secret)),
		C0:      pp.G2.ScalarMult(secret),
		C1:      pp.G.ScalarMult(secret),
		Rows:    rows,
		Payload: *payload,
		Binding: bindingDigest(plaintext),
	}
	ct.IntegrityHash = ct.digest()

	return ct, nil
}

// encryptRows shares secret according to policy and computes
// C_i = GBeta^lambda_i * H(rho(i))^-r_i, D_i = G2^r_i and E_i = H^-r_i
// for fresh r_i.
func (s *Scheme) encryptRows(pp *PublicParams, policy *AccessPolicy, secret *big.Int) ([]RowComponent, error) {
	lambda, err := Share(policy, secret, s.P, sample.NewUniform(s.P))
	if err != nil {
		return nil, err
	}

	rows := make([]RowComponent, len(lambda))
	err = parallel.ForEach(s.workers, len(rows), func(i int) error {
		r, err := sample.NewUniform(s.P).Sample()
		if err != nil {
			return err
		}
		hx, err := s.hashAttribute(policy.RowToAttrib[i])
		if err != nil {
			return err
		}
		negR := new(big.Int).Neg(r)
		rows[i] = RowComponent{
			C: pp.GBeta.ScalarMult(lambda[i]).Add(hx.ScalarMult(negR)),
			D: pp.G2.ScalarMult(r),
			E: pp.H.ScalarMult(negR),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func sealPayload(kappa pairing.GT, plaintext []byte) (*Payload, error) {
	key, err := symmetric.DeriveKey(kappa.Marshal(), infoPayload)
	if err != nil {
		return nil, err
	}
	box, err := symmetric.Seal(key, plaintext, []byte(infoPayload))
	if err != nil {
		return nil, err
	}

	return &Payload{Nonce: box.Nonce, Body: box.Body, Tag: box.Tag}, nil
}
