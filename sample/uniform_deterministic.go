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

package sample

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/salsa20"
)

// UniformDet samples values from the interval [0, max) deterministically.
// Randomness is taken from the salsa20 keystream of the given key, so
// equal keys always yield equal sequences of values.
type UniformDet struct {
	key     *[32]byte
	max     *big.Int
	maxBits int
	counter uint64
}

// NewUniformDet returns an instance of the UniformDet sampler.
// It accepts an upper bound on the sampled values and a 32 byte key.
func NewUniformDet(max *big.Int, key *[32]byte) *UniformDet {
	maxBits := new(big.Int).Sub(max, big.NewInt(1)).BitLen()
	return &UniformDet{
		key:     key,
		max:     max,
		maxBits: maxBits,
	}
}

// Sample returns the next value in [0, max). Candidates that are
// too big are rejected and the keystream is advanced, hence the
// output is uniform.
func (u *UniformDet) Sample() (*big.Int, error) {
	if u.maxBits == 0 {
		return big.NewInt(0), nil
	}
	maxBytes := (u.maxBits + 7) / 8
	over := uint(maxBytes*8 - u.maxBits)

	in := make([]byte, maxBytes)
	out := make([]byte, maxBytes)
	nonce := make([]byte, 8)
	for {
		binary.BigEndian.PutUint64(nonce, u.counter)
		u.counter++
		salsa20.XORKeyStream(out, in, nonce, u.key)

		out[0] = out[0] >> over
		ret := new(big.Int).SetBytes(out)
		if ret.Cmp(u.max) < 0 {
			return ret, nil
		}
	}
}
