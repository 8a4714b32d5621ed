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

package abe_test

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/cabshare/abepre/abe"
	"github.com/cabshare/abepre/data"
	"github.com/cabshare/abepre/pairing"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var curves = []string{pairing.BN256, pairing.BLS12381}

func newScheme(t *testing.T, curve string) (*abe.Scheme, *abe.SystemParams) {
	a, err := abe.NewScheme(abe.Config{Curve: curve})
	if err != nil {
		t.Fatalf("Failed to create the scheme: %v", err)
	}
	params, err := a.Setup()
	if err != nil {
		t.Fatalf("Failed to generate system parameters: %v", err)
	}

	return a, params
}

func TestScheme(t *testing.T) {
	for _, curve := range curves {
		t.Run(curve, func(t *testing.T) {
			// create a new instance of the scheme and the system parameters
			a, params := newScheme(t, curve)
			pp := params.Public

			// create a message to be encrypted under a boolean policy
			msg := []byte("pickup at 5th and Main, 21:40")
			policy, err := abe.BooleanToPolicy("role:driver AND (zone:north OR zone:south)")
			if err != nil {
				t.Fatalf("Failed to generate the policy: %v", err)
			}
			ct, err := a.Encrypt(pp, msg, policy)
			if err != nil {
				t.Fatalf("Failed to encrypt: %v", err)
			}
			assert.Equal(t, curve, ct.Curve)
			assert.Len(t, ct.Rows, 3)

			// a user with sufficient attributes decrypts
			driver, err := a.KeyGen(params, []string{"zone:south", "role:driver", "zone:south"}, []byte("driver-1"))
			if err != nil {
				t.Fatalf("Failed to generate keys: %v", err)
			}
			assert.Equal(t, []string{"role:driver", "zone:south"}, driver.Attributes)
			assert.True(t, a.Match(driver.Attributes, policy))

			decrypted, err := a.Decrypt(pp, ct, driver)
			if err != nil {
				t.Fatalf("Failed to decrypt: %v", err)
			}
			assert.Equal(t, msg, decrypted)

			// a user with insufficient attributes does not
			rider, err := a.KeyGen(params, []string{"role:rider", "zone:north"}, []byte("rider-1"))
			if err != nil {
				t.Fatalf("Failed to generate keys: %v", err)
			}
			assert.False(t, a.Match(rider.Attributes, policy))
			_, err = a.Decrypt(pp, ct, rider)
			assert.True(t, errors.Is(err, abe.ErrUnsatisfiedPolicy))
		})
	}
}

func TestEmptyPlaintext(t *testing.T) {
	a, params := newScheme(t, pairing.BN256)
	policy, err := abe.BooleanToPolicy("a")
	require.NoError(t, err)
	keys, err := a.KeyGen(params, []string{"a"}, nil)
	require.NoError(t, err)

	ct, err := a.Encrypt(params.Public, nil, policy)
	require.NoError(t, err)
	decrypted, err := a.Decrypt(params.Public, ct, keys)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestThresholdPolicy(t *testing.T) {
	a, params := newScheme(t, pairing.BLS12381)
	// 2-of-3 threshold given directly by a matrix
	mat := data.Matrix{
		data.NewVector([]*big.Int{big.NewInt(1), big.NewInt(1)}),
		data.NewVector([]*big.Int{big.NewInt(1), big.NewInt(2)}),
		data.NewVector([]*big.Int{big.NewInt(1), big.NewInt(3)}),
	}
	policy, err := abe.NewAccessPolicy(mat, []string{"x", "y", "z"})
	require.NoError(t, err)
	msg := []byte("threshold")
	ct, err := a.Encrypt(params.Public, msg, policy)
	require.NoError(t, err)

	for _, attrs := range [][]string{{"x", "y"}, {"x", "z"}, {"y", "z"}, {"x", "y", "z"}} {
		keys, err := a.KeyGen(params, attrs, nil)
		require.NoError(t, err)
		decrypted, err := a.Decrypt(params.Public, ct, keys)
		require.NoError(t, err, "attributes %v", attrs)
		assert.Equal(t, msg, decrypted)
	}
	keys, err := a.KeyGen(params, []string{"z", "w"}, nil)
	require.NoError(t, err)
	_, err = a.Decrypt(params.Public, ct, keys)
	assert.True(t, errors.Is(err, abe.ErrUnsatisfiedPolicy))
}

func TestSchemeErrors(t *testing.T) {
	a, err := abe.NewScheme(abe.Config{MaxPlaintextSize: 16})
	require.NoError(t, err)
	policy, err := abe.BooleanToPolicy("a OR b")
	require.NoError(t, err)

	// nothing works before Setup
	_, err = a.Encrypt(nil, []byte("msg"), policy)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = a.KeyGen(nil, []string{"a"}, nil)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = a.KeyGen(&abe.SystemParams{}, []string{"a"}, nil)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = a.Decrypt(nil, nil, nil)
	assert.Equal(t, abe.ErrUninitialized, err)

	params, err := a.Setup()
	require.NoError(t, err)
	pp := params.Public

	_, err = a.KeyGen(params, nil, nil)
	assert.Equal(t, abe.ErrEmptyAttributeSet, err)
	_, err = a.KeyGen(params, []string{" ", ""}, nil)
	assert.Equal(t, abe.ErrEmptyAttributeSet, err)

	_, err = a.Encrypt(pp, bytes.Repeat([]byte{1}, 17), policy)
	assert.True(t, errors.Is(err, abe.ErrPayloadTooLarge))
	_, err = a.Encrypt(pp, bytes.Repeat([]byte{1}, 16), policy)
	assert.NoError(t, err)

	_, err = a.Encrypt(pp, []byte("msg"), &abe.AccessPolicy{})
	assert.True(t, errors.Is(err, abe.ErrMalformedPolicy))
	_, err = a.Encrypt(pp, []byte("msg"), nil)
	assert.True(t, errors.Is(err, abe.ErrMalformedPolicy))

	ct, err := a.Encrypt(pp, []byte("msg"), policy)
	require.NoError(t, err)
	_, err = a.Decrypt(pp, ct, nil)
	assert.True(t, errors.Is(err, abe.ErrMalformedKey))
	_, err = a.Decrypt(pp, nil, nil)
	assert.True(t, errors.Is(err, abe.ErrMalformedKey))

	// parameters of another curve are rejected
	other, otherParams := newScheme(t, pairing.BLS12381)
	_, err = a.Encrypt(otherParams.Public, []byte("msg"), policy)
	assert.True(t, errors.Is(err, abe.ErrMalformedKey))
	otherKeys, err := other.KeyGen(otherParams, []string{"a"}, nil)
	require.NoError(t, err)
	_, err = other.Decrypt(otherParams.Public, ct, otherKeys)
	assert.True(t, errors.Is(err, abe.ErrIntegrityMismatch))
}

func TestDecryptTampered(t *testing.T) {
	a, params := newScheme(t, pairing.BN256)
	pp := params.Public
	policy, err := abe.BooleanToPolicy("a AND b")
	require.NoError(t, err)
	keys, err := a.KeyGen(params, []string{"a", "b"}, nil)
	require.NoError(t, err)

	tamper := map[string]func(ct *abe.Ciphertext){
		"body":    func(ct *abe.Ciphertext) { ct.Payload.Body[0] ^= 1 },
		"tag":     func(ct *abe.Ciphertext) { ct.Payload.Tag[0] ^= 1 },
		"binding": func(ct *abe.Ciphertext) { ct.Binding[0] ^= 1 },
		"session": func(ct *abe.Ciphertext) { ct.Session = ct.Session.Add(pp.EGG) },
		"c0":      func(ct *abe.Ciphertext) { ct.C0 = ct.C0.Add(pp.G2) },
		"c1":      func(ct *abe.Ciphertext) { ct.C1 = ct.C1.Add(pp.G) },
		"row":     func(ct *abe.Ciphertext) { ct.Rows[1].D = ct.Rows[1].D.Add(pp.G2) },
		"label":   func(ct *abe.Ciphertext) { ct.Policy = &abe.AccessPolicy{Mat: ct.Policy.Mat, RowToAttrib: []string{"a", "c"}} },
		"rows":    func(ct *abe.Ciphertext) { ct.Rows = ct.Rows[:1] },
		"hash":    func(ct *abe.Ciphertext) { ct.IntegrityHash[31] ^= 0x80 },
	}
	for name, f := range tamper {
		ct, err := a.Encrypt(pp, []byte("some payload"), policy)
		require.NoError(t, err)
		f(ct)
		_, err = a.Decrypt(pp, ct, keys)
		assert.True(t, errors.Is(err, abe.ErrIntegrityMismatch), "%s: %v", name, err)
	}
}

func TestKeyGenPseudoID(t *testing.T) {
	a, params := newScheme(t, pairing.BN256)

	k1, err := a.KeyGen(params, []string{"a"}, []byte("seed"))
	require.NoError(t, err)
	k2, err := a.KeyGen(params, []string{"a"}, []byte("seed"))
	require.NoError(t, err)
	assert.NotEmpty(t, k1.Public.PseudoID)
	assert.NotEqual(t, k1.Public.PseudoID, k2.Public.PseudoID)
	assert.False(t, pairing.Equal(k1.Public.Z, k2.Public.Z))

	assert.True(t, strings.Contains(k1.String(), k1.Public.PseudoID))
	assert.NotContains(t, params.String(), "alpha")
}

func TestMatch(t *testing.T) {
	a, err := abe.NewScheme(abe.DefaultConfig())
	require.NoError(t, err)
	policy, err := abe.BooleanToPolicy("(a AND b) OR (c AND d)")
	require.NoError(t, err)

	assert.True(t, a.Match([]string{"a", "b"}, policy))
	assert.True(t, a.Match([]string{"d", "c", "x"}, policy))
	assert.False(t, a.Match([]string{"a", "c"}, policy))
	assert.False(t, a.Match(nil, policy))
	assert.False(t, a.Match([]string{"a"}, nil))

	// labels are compared the way KeyGen stores them
	assert.True(t, a.Match([]string{" a", "b "}, policy))
	padded := &abe.AccessPolicy{Mat: policy.Mat, RowToAttrib: []string{" a", "b", "c", "d"}}
	assert.False(t, a.Match([]string{"a", "b"}, padded))
	sp, err := a.Setup()
	require.NoError(t, err)
	_, err = a.Encrypt(sp.Public, []byte("msg"), padded)
	assert.True(t, errors.Is(err, abe.ErrMalformedPolicy))
}
