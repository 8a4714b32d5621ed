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
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

// UniformRange samples random values from the interval [min, max).
type UniformRange struct {
	min *big.Int
	max *big.Int
}

// NewUniformRange returns an instance of the UniformRange sampler.
// It accepts lower and upper bounds on the sampled values.
func NewUniformRange(min, max *big.Int) *UniformRange {
	return &UniformRange{
		min: min,
		max: max,
	}
}

// Sample samples random values from the interval [min, max).
func (u *UniformRange) Sample() (*big.Int, error) {
	width := new(big.Int).Sub(u.max, u.min)
	if width.Sign() <= 0 {
		return nil, errors.Errorf("empty sampling interval [%s, %s)", u.min, u.max)
	}
	r, err := rand.Int(rand.Reader, width)
	if err != nil {
		return nil, errors.Wrap(err, "reading randomness")
	}

	return r.Add(r, u.min), nil
}

// NewUniform returns an instance of the UniformRange sampler
// sampling from the interval [0, max).
func NewUniform(max *big.Int) *UniformRange {
	return NewUniformRange(big.NewInt(0), max)
}

// NewUniformNonZero returns an instance of the UniformRange sampler
// sampling from the interval [1, max). It is used for exponents
// that must not vanish.
func NewUniformNonZero(max *big.Int) *UniformRange {
	return NewUniformRange(big.NewInt(1), max)
}

// NewBit returns an instance of the UniformRange sampler
// sampling a single random bit (value 0 or 1).
func NewBit() *UniformRange {
	return NewUniform(big.NewInt(2))
}
