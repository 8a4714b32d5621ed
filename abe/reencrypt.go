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
	"github.com/cabshare/abepre/pairing"
	"github.com/pkg/errors"
)

// ReencryptedCiphertext is a ciphertext transformed by a proxy for one
// receiver. Session, C0, C1, Payload and Binding are carried over
// unchanged from the source ciphertext. Transformed =
// e(g, g2)^(alpha*s) * e(Z^b, C0), where Z is the public key of the
// receiver and g2^b travels in Capsule, which is encapsulated under
// Policy.
type ReencryptedCiphertext struct {
	Curve           string
	Policy          *AccessPolicy
	Session         pairing.GT
	C0              pairing.G2
	C1              pairing.G1
	Transformed     pairing.GT
	Capsule         Capsule
	Payload         Payload
	Binding         [32]byte
	FromPseudoID    string
	ToPseudoID      string
	VerificationTag []byte
}

// ReEncrypt transforms ct with the re-encryption key rk. The attributes
// of the delegator behind rk must satisfy the policy of ct. The proxy
// running ReEncrypt learns neither the payload nor any private key.
func (s *Scheme) ReEncrypt(pp *PublicParams, ct *Ciphertext, rk *ReencryptionKey) (*ReencryptedCiphertext, error) {
	if err := s.checkPublic(pp); err != nil {
		return nil, err
	}
	if rk == nil || rk.ReceiverKey == nil || rk.TargetPolicy == nil {
		return nil, errors.Wrap(ErrMalformedKey, "missing re-encryption key")
	}
	if rk.Curve != s.Group.Name() {
		return nil, errors.Wrapf(ErrMalformedKey, "re-encryption key for curve %s", rk.Curve)
	}
	if err := rk.TargetPolicy.Validate(); err != nil {
		return nil, err
	}
	if err := ct.checkIntegrity(s.Group.Name()); err != nil {
		return nil, err
	}
	// the receiver unblinds with C1, so it must share the exponent of C0
	if !pairing.Equal(s.Group.Pair(ct.C1, pp.G2), s.Group.Pair(pp.G, ct.C0)) {
		return nil, errors.Wrap(ErrIntegrityMismatch, "inconsistent ciphertext exponents")
	}

	transformed, err := s.recoverSecret(ct.Policy, ct.Rows, ct.C0, &rk.AttributeKeys)
	if err != nil {
		return nil, err
	}
	capsule, err := s.rerandomize(pp, &rk.Capsule, rk.TargetPolicy)
	if err != nil {
		return nil, err
	}

	rct := &ReencryptedCiphertext{
		Curve:        s.Group.Name(),
		Policy:       rk.TargetPolicy,
		Session:      ct.Session,
		C0:           ct.C0,
		C1:           ct.C1,
		Transformed:  transformed,
		Capsule:      *capsule,
		Payload:      ct.Payload,
		Binding:      ct.Binding,
		FromPseudoID: rk.FromPseudoID,
		ToPseudoID:   rk.ToPseudoID,
	}
	tag, err := s.verificationTag(pp, rct, rk.ToPseudoID, rk.ReceiverKey)
	if err != nil {
		return nil, err
	}
	rct.VerificationTag = tag

	return rct, nil
}
