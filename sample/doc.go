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

// Package sample includes samplers for sampling random values
// from different probability distributions.
//
// Package sample provides the Sampler interface
// along with different implementations of this interface.
// Its primary purpose is support choosing random *big.Int values
// from selected probability distributions.
//
// Implementations of the Sampler interface are used
// to sample exponents and secret-sharing vectors over Z_p,
// while UniformDet derives scalars deterministically from
// a 32 byte seed, which is how group elements are hashed
// into Z_p.
package sample

import "math/big"

// Sampler samples random big integer values.
// Implementations of this interface provide a method for
// sampling random values from the desired distribution.
type Sampler interface {
	// Sample samples random big integer values,
	// possibly returning an error.
	Sample() (*big.Int, error)
}
