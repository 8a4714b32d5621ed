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
	"github.com/cabshare/abepre/internal/parallel"
	"github.com/cabshare/abepre/internal/symmetric"
	"github.com/cabshare/abepre/pairing"
	"github.com/pkg/errors"
)

// Decrypt decrypts a ciphertext directly with the keys of a user whose
// attributes satisfy its policy. It checks the integrity hash before
// anything else and the plaintext binding after decryption.
func (s *Scheme) Decrypt(pp *PublicParams, ct *Ciphertext, keys *UserKeys) ([]byte, error) {
	if err := s.checkPublic(pp); err != nil {
		return nil, err
	}
	if keys == nil {
		return nil, errors.Wrap(ErrMalformedKey, "missing keys")
	}
	if err := ct.checkIntegrity(s.Group.Name()); err != nil {
		return nil, err
	}

	eggAlphaS, err := s.recoverSecret(ct.Policy, ct.Rows, ct.C0, &keys.AttributeKeys)
	if err != nil {
		return nil, err
	}
	kappa := ct.Session.Add(eggAlphaS.Neg())

	return openPayload(kappa, &ct.Payload, ct.Binding)
}

// DecryptReencrypted decrypts a transformed ciphertext with the keys of
// its receiver. The transformation is verified first and nothing is
// decrypted if verification fails.
func (s *Scheme) DecryptReencrypted(pp *PublicParams, rct *ReencryptedCiphertext, keys *UserKeys) ([]byte, error) {
	ok, err := s.Verify(pp, rct, keys)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVerificationFailed
	}
	if keys.z == nil {
		return nil, errors.Wrap(ErrMalformedKey, "missing personal key")
	}

	delta, err := s.openCapsule(rct.Policy, &rct.Capsule, keys)
	if err != nil {
		return nil, err
	}
	w, err := s.openEnvelope(delta, &rct.Capsule.Envelope)
	if err != nil {
		return nil, err
	}

	// Transformed = e(g, g2)^(alpha*s) * e(Z^b, C0) and
	// e(Z^b, g2^s) = e(g^s, g2^b)^z
	blinding := s.Group.Pair(rct.C1, w).ScalarMult(keys.z)
	eggAlphaS := rct.Transformed.Add(blinding.Neg())
	kappa := rct.Session.Add(eggAlphaS.Neg())

	return openPayload(kappa, &rct.Payload, rct.Binding)
}

// openCapsule recovers the element delta encapsulated under policy.
func (s *Scheme) openCapsule(policy *AccessPolicy, c *Capsule, keys *UserKeys) (pairing.GT, error) {
	if c.Session == nil || c.C0 == nil || policy == nil || len(c.Rows) != policy.Mat.Rows() {
		return nil, errors.Wrap(ErrIntegrityMismatch, "incomplete capsule")
	}
	eggAlphaS, err := s.recoverSecret(policy, c.Rows, c.C0, &keys.AttributeKeys)
	if err != nil {
		return nil, err
	}

	return c.Session.Add(eggAlphaS.Neg()), nil
}

// recoverSecret computes e(K, C0) / prod_j (e(C_i, L) e(K_x, D_i) e(E_i, K'_x))^omega_j
// over the rows i = rows[j] labeled by an attribute x of the keys. For a key
// K = g^(alpha + beta*t) * X this equals e(g, g2)^(alpha*s) * e(X, C0).
func (s *Scheme) recoverSecret(policy *AccessPolicy, rows []RowComponent, c0 pairing.G2, keys *AttributeKeys) (pairing.GT, error) {
	if err := keys.validate(); err != nil {
		return nil, err
	}
	used, omega, err := Reconstruct(keys.Attributes, policy, s.P)
	if err != nil {
		return nil, err
	}
	comps := keys.components()

	terms := make([]pairing.GT, len(used))
	err = parallel.ForEach(s.workers, len(used), func(j int) error {
		if omega[j].Sign() == 0 {
			return nil
		}
		i := used[j]
		kx := comps[policy.RowToAttrib[i]]
		r := rows[i]
		if r.C == nil || r.D == nil || r.E == nil {
			return errors.Wrapf(ErrIntegrityMismatch, "row %d is incomplete", i)
		}
		term := s.Group.Pair(r.C, keys.L).
			Add(s.Group.Pair(kx.K, r.D)).
			Add(s.Group.Pair(r.E, kx.KPrime))
		terms[j] = term.ScalarMult(omega[j])
		return nil
	})
	if err != nil {
		return nil, err
	}

	denom := s.Group.GTIdentity()
	for _, term := range terms {
		if term != nil {
			denom = denom.Add(term)
		}
	}

	return s.Group.Pair(keys.K, c0).Add(denom.Neg()), nil
}

func openPayload(kappa pairing.GT, p *Payload, binding [32]byte) ([]byte, error) {
	key, err := symmetric.DeriveKey(kappa.Marshal(), infoPayload)
	if err != nil {
		return nil, err
	}
	box := &symmetric.Box{Nonce: p.Nonce, Body: p.Body, Tag: p.Tag}
	plaintext, err := symmetric.Open(key, box, []byte(infoPayload))
	if err != nil {
		return nil, errors.Wrap(ErrAuthenticationFailed, err.Error())
	}
	if !hashEqual(bindingDigest(plaintext), binding) {
		return nil, errors.Wrap(ErrIntegrityMismatch, "plaintext does not match its binding")
	}

	return plaintext, nil
}

