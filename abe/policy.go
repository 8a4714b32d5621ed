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
	"sort"
	"strings"

	"github.com/cabshare/abepre/data"
	"github.com/pkg/errors"
)

// AccessPolicy represents a linear secret sharing scheme given by a
// monotone span program describing which attributes are needed to decrypt
// a ciphertext. It includes a matrix Mat and a mapping from the rows of Mat
// to attribute labels. The policy allows decryption by an entity with a set
// of attributes A if and only if the rows of Mat mapped to an element of A
// span the vector [1, 0,..., 0].
//
// The same label may be assigned to several rows.
type AccessPolicy struct {
	Mat         data.Matrix
	RowToAttrib []string
}

// NewAccessPolicy returns a validated AccessPolicy with rows of mat
// labeled by rowToAttrib.
func NewAccessPolicy(mat data.Matrix, rowToAttrib []string) (*AccessPolicy, error) {
	a := &AccessPolicy{Mat: mat, RowToAttrib: rowToAttrib}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks that the matrix is non-empty and rectangular and that
// every row carries a non-empty label without surrounding spaces. It returns an error wrapping
// ErrMalformedPolicy otherwise.
func (a *AccessPolicy) Validate() error {
	if a == nil {
		return errors.Wrap(ErrMalformedPolicy, "missing policy")
	}
	if a.Mat.Rows() == 0 || a.Mat.Cols() == 0 {
		return errors.Wrap(ErrMalformedPolicy, "empty matrix")
	}
	for i, row := range a.Mat {
		if len(row) != a.Mat.Cols() {
			return errors.Wrapf(ErrMalformedPolicy, "row %d has %d elements, expected %d",
				i, len(row), a.Mat.Cols())
		}
		for _, x := range row {
			if x == nil {
				return errors.Wrapf(ErrMalformedPolicy, "row %d has a missing element", i)
			}
		}
	}
	if len(a.RowToAttrib) != a.Mat.Rows() {
		return errors.Wrapf(ErrMalformedPolicy, "%d labels for %d rows",
			len(a.RowToAttrib), a.Mat.Rows())
	}
	for i, label := range a.RowToAttrib {
		if label == "" {
			return errors.Wrapf(ErrMalformedPolicy, "row %d has an empty label", i)
		}
		// keys are issued for trimmed labels only
		if strings.TrimSpace(label) != label {
			return errors.Wrapf(ErrMalformedPolicy, "row %d label %q has surrounding spaces", i, label)
		}
	}

	return nil
}

// Attributes returns the distinct labels used in the policy, sorted.
func (a *AccessPolicy) Attributes() []string {
	return normalizeAttributes(a.RowToAttrib)
}

// normalizeAttributes trims, deduplicates and sorts attribute labels,
// dropping empty ones.
func normalizeAttributes(attributes []string) []string {
	seen := make(map[string]bool, len(attributes))
	out := make([]string, 0, len(attributes))
	for _, a := range attributes {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Strings(out)

	return out
}

// BooleanToPolicy takes as an input a boolean expression (without a NOT
// gate) over attribute labels and outputs an AccessPolicy representing the
// expression, i.e. a matrix whose rows correspond to attributes used in the
// expression and with the property that a boolean expression assigning 1 to
// some attributes is satisfied iff the corresponding rows span the vector
// [1, 0,..., 0]. Gates are written AND and OR, sub-expressions may be put in
// brackets, for example
//
//	(role:driver AND zone:north) OR role:dispatcher
func BooleanToPolicy(boolExp string) (*AccessPolicy, error) {
	vec := make(data.Vector, 1)
	vec[0] = big.NewInt(1)
	policy, _, err := booleanToPolicyIterative(boolExp, vec, 1)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedPolicy, err.Error())
	}

	return policy, nil
}

// booleanToPolicyIterative iteratively builds a policy by splitting the
// expression into two parts separated by an AND or OR gate, generating a
// policy on each of them, and joining both together. The algorithm is
// known as Lewko-Waters algorithm, see Appendix G in
// https://eprint.iacr.org/2010/351.pdf.
func booleanToPolicyIterative(boolExp string, vec data.Vector, c int) (*AccessPolicy, int, error) {
	boolExp = strings.TrimSpace(boolExp)
	if boolExp == "" {
		return nil, 0, errors.New("empty expression")
	}
	numBrc := 0
	var c1 int
	var cOut int
	var p1 *AccessPolicy
	var p2 *AccessPolicy
	var err error
	found := false

	// find the main AND or OR gate and iteratively call the function on
	// both the sub-expressions
	for i := 0; i < len(boolExp) && !found; i++ {
		switch boolExp[i] {
		case '(':
			numBrc++
			continue
		case ')':
			numBrc--
			if numBrc < 0 {
				return nil, 0, errors.New("unbalanced brackets")
			}
			continue
		}
		if numBrc != 0 {
			continue
		}
		if isGate(boolExp, i, "AND") {
			vec1, vec2 := makeAndVecs(vec, c)
			p1, c1, err = booleanToPolicyIterative(boolExp[:i], vec1, c+1)
			if err != nil {
				return nil, 0, err
			}
			p2, cOut, err = booleanToPolicyIterative(boolExp[i+3:], vec2, c1)
			if err != nil {
				return nil, 0, err
			}
			found = true
		} else if isGate(boolExp, i, "OR") {
			p1, c1, err = booleanToPolicyIterative(boolExp[:i], vec, c)
			if err != nil {
				return nil, 0, err
			}
			p2, cOut, err = booleanToPolicyIterative(boolExp[i+2:], vec, c1)
			if err != nil {
				return nil, 0, err
			}
			found = true
		}
	}
	if numBrc > 0 && !found {
		return nil, 0, errors.New("unbalanced brackets")
	}

	// If the AND or OR gate is not found then there are two options,
	// either the whole expression is in brackets, or the expression
	// is only one attribute.
	if !found {
		if boolExp[0] == '(' && boolExp[len(boolExp)-1] == ')' {
			return booleanToPolicyIterative(boolExp[1:len(boolExp)-1], vec, c)
		}
		if strings.ContainsAny(boolExp, "() \t\n") {
			return nil, 0, errors.Errorf("invalid attribute %q", boolExp)
		}

		mat := make(data.Matrix, 1)
		mat[0] = make(data.Vector, c)
		for i := 0; i < c; i++ {
			if i < len(vec) {
				mat[0][i] = new(big.Int).Set(vec[i])
			} else {
				mat[0][i] = big.NewInt(0)
			}
		}

		return &AccessPolicy{Mat: mat, RowToAttrib: []string{boolExp}}, c, nil
	}

	// otherwise we join the two policies into one, padding the
	// rows of the first one with zeros
	mat := make(data.Matrix, len(p1.Mat)+len(p2.Mat))
	for i := 0; i < len(p1.Mat); i++ {
		mat[i] = make(data.Vector, cOut)
		for j := 0; j < len(p1.Mat[0]); j++ {
			mat[i][j] = p1.Mat[i][j]
		}
		for j := len(p1.Mat[0]); j < cOut; j++ {
			mat[i][j] = big.NewInt(0)
		}
	}
	for i := 0; i < len(p2.Mat); i++ {
		mat[i+len(p1.Mat)] = p2.Mat[i]
	}
	rowToAttrib := append(p1.RowToAttrib, p2.RowToAttrib...)

	return &AccessPolicy{Mat: mat, RowToAttrib: rowToAttrib}, cOut, nil
}

// isGate reports whether the gate keyword starts at position i of exp
// and is delimited by whitespace or brackets.
func isGate(exp string, i int, gate string) bool {
	if !strings.HasPrefix(exp[i:], gate) {
		return false
	}
	if i == 0 || i+len(gate) >= len(exp) {
		return false
	}
	before, after := exp[i-1], exp[i+len(gate)]

	return isDelim(before) && isDelim(after)
}

func isDelim(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '(' || b == ')'
}

// makeAndVecs is a helping structure that given a vector and and counter
// creates two new vectors used whenever an AND gate is found in a iterative
// step of BooleanToPolicy
func makeAndVecs(vec data.Vector, c int) (data.Vector, data.Vector) {
	vec1 := data.NewConstantVector(c+1, big.NewInt(0))
	vec2 := data.NewConstantVector(c+1, big.NewInt(0))
	for i := 0; i < len(vec); i++ {
		vec2[i].Set(vec[i])
	}
	vec1[c] = big.NewInt(-1)
	vec2[c] = big.NewInt(1)

	return vec1, vec2
}
