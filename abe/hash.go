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
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"hash"
	"math/big"

	"github.com/cabshare/abepre/sample"
)

// Domain separation tags. Each hash in the scheme uses its own tag.
const (
	domainAttribute = "abepre/attribute"
	domainPseudoID  = "abepre/ptid"
	domainBinding   = "abepre/binding"
	domainIntegrity = "abepre/integrity"
	domainTag       = "abepre/tag"

	infoPayload  = "abepre/payload"
	infoEnvelope = "abepre/envelope"
)

// transcript hashes a sequence of length prefixed fields, so that
// distinct field sequences never produce the same input to SHA-256.
type transcript struct {
	h hash.Hash
}

func newTranscript(domain string) *transcript {
	t := &transcript{h: sha256.New()}
	t.string(domain)
	return t
}

func (t *transcript) bytes(b []byte) {
	var l [8]byte
	binary.BigEndian.PutUint64(l[:], uint64(len(b)))
	t.h.Write(l[:])
	t.h.Write(b)
}

func (t *transcript) string(s string) {
	t.bytes([]byte(s))
}

func (t *transcript) int(i int) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	t.h.Write(b[:])
}

func (t *transcript) element(e interface{ Marshal() []byte }) {
	if e == nil {
		t.bytes(nil)
		return
	}
	t.bytes(e.Marshal())
}

func (t *transcript) bigInt(x *big.Int) {
	if x == nil {
		t.bytes(nil)
		return
	}
	t.int(x.Sign())
	t.bytes(x.Bytes())
}

func (t *transcript) policy(a *AccessPolicy) {
	if a == nil {
		t.int(-1)
		return
	}
	t.int(a.Mat.Rows())
	t.int(a.Mat.Cols())
	for i, row := range a.Mat {
		for _, x := range row {
			t.bigInt(x)
		}
		if i < len(a.RowToAttrib) {
			t.string(a.RowToAttrib[i])
		}
	}
}

func (t *transcript) rows(rows []RowComponent) {
	t.int(len(rows))
	for _, r := range rows {
		t.element(r.C)
		t.element(r.D)
		t.element(r.E)
	}
}

func (t *transcript) payload(p Payload) {
	t.bytes(p.Nonce)
	t.bytes(p.Body)
	t.bytes(p.Tag)
}

func (t *transcript) sum() [32]byte {
	var out [32]byte
	copy(out[:], t.h.Sum(nil))
	return out
}

// hashToScalar maps an element to a uniformly distributed scalar
// in [0, p). The SHA-256 digest of the element seeds a deterministic
// sampler, which avoids the bias of reducing the digest modulo p.
func hashToScalar(domain string, e interface{ Marshal() []byte }, p *big.Int) (*big.Int, error) {
	t := newTranscript(domain)
	t.element(e)
	key := t.sum()

	return sample.NewUniformDet(p, &key).Sample()
}

// bindingDigest commits to the plaintext.
func bindingDigest(plaintext []byte) [32]byte {
	t := newTranscript(domainBinding)
	t.bytes(plaintext)
	return t.sum()
}

func hashEqual(a, b [32]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
