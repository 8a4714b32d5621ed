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
	"crypto/subtle"

	"github.com/cabshare/abepre/pairing"
	"github.com/pkg/errors"
)

// Verify checks that rct was produced for the receiver holding keys and
// was not modified afterwards. It recomputes the verification tag
// g^H(F), where F hashes every field of rct together with the public key
// of the receiver, and compares it to the carried tag in constant time.
//
// A false result with a nil error means rct was modified in transit or is
// meant for someone else. The tag is computed from public values only, so
// it does not authenticate the proxy: anyone who knows the receiver's
// public key can build a transformed ciphertext of a plaintext of their
// choosing that passes Verify. Verify detects modification of a
// transformed ciphertext, not its origin.
func (s *Scheme) Verify(pp *PublicParams, rct *ReencryptedCiphertext, keys *UserKeys) (bool, error) {
	if err := s.checkPublic(pp); err != nil {
		return false, err
	}
	if keys == nil || keys.Public == nil || keys.Public.Z == nil {
		return false, errors.Wrap(ErrMalformedKey, "missing receiver keys")
	}
	if rct == nil || rct.Curve != s.Group.Name() || !rct.complete() {
		return false, nil
	}

	expected, err := s.verificationTag(pp, rct, keys.Public.PseudoID, keys.Public.Z)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(expected, rct.VerificationTag) == 1, nil
}

func (rct *ReencryptedCiphertext) complete() bool {
	if rct.Policy == nil || rct.Session == nil || rct.C0 == nil || rct.C1 == nil || rct.Transformed == nil ||
		rct.Capsule.Session == nil || rct.Capsule.C0 == nil {
		return false
	}
	if rct.Policy.Validate() != nil || len(rct.Capsule.Rows) != rct.Policy.Mat.Rows() {
		return false
	}
	for _, r := range rct.Capsule.Rows {
		if r.C == nil || r.D == nil || r.E == nil {
			return false
		}
	}

	return true
}

// verificationTag computes g^H(F) for the receiver with the given
// pseudonymous identifier and personal public key z.
func (s *Scheme) verificationTag(pp *PublicParams, rct *ReencryptedCiphertext, receiver string, z pairing.G1) ([]byte, error) {
	t := newTranscript(domainTag)
	t.string(rct.Curve)
	t.policy(rct.Policy)
	t.element(rct.Session)
	t.element(rct.C0)
	t.element(rct.C1)
	t.element(rct.Transformed)
	t.element(rct.Capsule.Session)
	t.element(rct.Capsule.C0)
	t.rows(rct.Capsule.Rows)
	t.payload(rct.Capsule.Envelope)
	t.payload(rct.Payload)
	t.bytes(rct.Binding[:])
	t.string(rct.FromPseudoID)
	t.string(rct.ToPseudoID)
	t.string(receiver)
	t.element(z)
	f := t.sum()

	exp, err := hashToScalar(domainTag, rawBytes(f[:]), s.P)
	if err != nil {
		return nil, err
	}

	return pp.G.ScalarMult(exp).Marshal(), nil
}

// rawBytes lets a digest be hashed like a group element.
type rawBytes []byte

func (b rawBytes) Marshal() []byte { return b }
