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
	"strings"

	"github.com/cabshare/abepre/data"
	"github.com/cabshare/abepre/sample"
	"github.com/pkg/errors"
)

// Share splits the secret s into one share per row of the policy.
// It samples v = (s, r_2,..., r_n) with r_i uniform in Z_p and returns
// the vector of shares lambda = Mat * v mod p, so that lambda[i] is the
// share of the attribute RowToAttrib[i].
func Share(policy *AccessPolicy, s, p *big.Int, sampler sample.Sampler) (data.Vector, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	v, err := data.NewRandomVector(policy.Mat.Cols(), sampler)
	if err != nil {
		return nil, err
	}
	v[0] = new(big.Int).Set(s)

	lambda, err := policy.Mat.MulVec(v)
	if err != nil {
		return nil, err
	}

	return lambda.Mod(p), nil
}

// Reconstruct finds the rows of the policy that are labeled by one of the
// given attributes and coefficients omega over Z_p such that
// sum_j omega[j] * Mat[rows[j]] = [1, 0,..., 0]. Hence for shares lambda
// produced by Share, sum_j omega[j] * lambda[rows[j]] = s mod p.
//
// It returns an error wrapping ErrUnsatisfiedPolicy if the attributes
// do not satisfy the policy, and ErrMalformedPolicy if the policy is
// invalid.
func Reconstruct(attributes []string, policy *AccessPolicy, p *big.Int) ([]int, data.Vector, error) {
	if err := policy.Validate(); err != nil {
		return nil, nil, err
	}

	owned := make(map[string]bool, len(attributes))
	for _, a := range attributes {
		owned[strings.TrimSpace(a)] = true
	}
	var rows []int
	for i, label := range policy.RowToAttrib {
		if owned[label] {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, nil, errors.Wrap(ErrUnsatisfiedPolicy, "no attribute is used by the policy")
	}

	mat, err := policy.Mat.SelectRows(rows)
	if err != nil {
		return nil, nil, err
	}
	omega, err := data.GaussianEliminationSolver(mat.Transpose(),
		data.NewUnitVector(policy.Mat.Cols()), p)
	if err != nil {
		return nil, nil, errors.Wrap(ErrUnsatisfiedPolicy, err.Error())
	}

	return rows, omega, nil
}
