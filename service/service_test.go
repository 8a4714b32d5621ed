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

package service_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/cabshare/abepre/abe"
	"github.com/cabshare/abepre/service"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthoritySetupOnce(t *testing.T) {
	a, err := service.NewAuthority(abe.Config{})
	require.NoError(t, err)
	assert.False(t, a.Initialized())
	_, err = a.PublicParams()
	assert.Equal(t, abe.ErrUninitialized, err)

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)
	published := make([]*abe.PublicParams, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			published[i], results[i] = a.Setup()
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner *abe.PublicParams
	for i, err := range results {
		if err == nil {
			winners++
			winner = published[i]
			continue
		}
		assert.Equal(t, abe.ErrAlreadyInitialized, err)
	}
	assert.Equal(t, 1, winners)
	assert.True(t, a.Initialized())

	pp, err := a.PublicParams()
	require.NoError(t, err)
	assert.Same(t, winner, pp)

	_, err = a.Setup()
	assert.Equal(t, abe.ErrAlreadyInitialized, err)
}

func TestServiceUninitialized(t *testing.T) {
	s, err := service.New(abe.DefaultConfig())
	require.NoError(t, err)
	policy, err := abe.BooleanToPolicy("a")
	require.NoError(t, err)

	_, err = s.KeyGen([]string{"a"}, nil)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = s.Encrypt([]byte("msg"), policy)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = s.ReKeyGen("x", "y", policy)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = s.ReEncrypt(nil, nil)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = s.Verify("x", nil)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = s.Decrypt("x", nil)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = s.DecryptReencrypted("x", nil)
	assert.Equal(t, abe.ErrUninitialized, err)
	_, err = s.PublicKey("x")
	assert.Equal(t, abe.ErrUninitialized, err)

	ok, err := s.Match([]string{"a", "b"}, policy)
	assert.Equal(t, abe.ErrUninitialized, err)
	assert.False(t, ok)
	assert.False(t, s.Initialized())
	assert.Equal(t, 0, s.Keys.Len())
}

func TestServiceFlow(t *testing.T) {
	s, err := service.New(abe.Config{Workers: 2})
	require.NoError(t, err)
	_, err = s.Setup()
	require.NoError(t, err)

	rider, err := s.KeyGen([]string{"role:rider", "city:ljubljana"}, []byte("rider"))
	require.NoError(t, err)
	driver, err := s.KeyGen([]string{"role:driver", "city:ljubljana"}, []byte("driver"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Keys.Len())
	target, err := abe.BooleanToPolicy("role:driver")
	require.NoError(t, err)

	pk, err := s.PublicKey(driver.Public.PseudoID)
	require.NoError(t, err)
	assert.Equal(t, driver.Public, pk)

	ok, err := s.Match(driver.Attributes, target)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Match(rider.Attributes, target)
	require.NoError(t, err)
	assert.False(t, ok)

	// the rider stores a request only riders can read
	source, err := abe.BooleanToPolicy("role:rider AND city:ljubljana")
	require.NoError(t, err)
	msg := []byte(`{"from": "Presernov trg", "to": "BTC"}`)
	ct, err := s.Encrypt(msg, source)
	require.NoError(t, err)

	plaintext, err := s.Decrypt(rider.Public.PseudoID, ct)
	require.NoError(t, err)
	assert.Equal(t, msg, plaintext)
	_, err = s.Decrypt(driver.Public.PseudoID, ct)
	assert.True(t, errors.Is(err, abe.ErrUnsatisfiedPolicy))
	assert.Equal(t, http.StatusForbidden, service.Status(err))

	// and shares it with the driver through a proxy
	rk, err := s.ReKeyGen(rider.Public.PseudoID, driver.Public.PseudoID, target)
	require.NoError(t, err)
	rct, err := s.ReEncrypt(ct, rk)
	require.NoError(t, err)
	assert.Equal(t, rider.Public.PseudoID, rct.FromPseudoID)
	assert.Equal(t, driver.Public.PseudoID, rct.ToPseudoID)

	ok, err = s.Verify(driver.Public.PseudoID, rct)
	require.NoError(t, err)
	assert.True(t, ok)
	plaintext, err = s.DecryptReencrypted(driver.Public.PseudoID, rct)
	require.NoError(t, err)
	assert.Equal(t, msg, plaintext)

	// the rider is not the receiver
	ok, err = s.Verify(rider.Public.PseudoID, rct)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.DecryptReencrypted(rider.Public.PseudoID, rct)
	assert.Equal(t, abe.ErrVerificationFailed, err)
	assert.Equal(t, http.StatusUnprocessableEntity, service.Status(err))

	_, err = s.ReKeyGen("nobody", driver.Public.PseudoID, target)
	assert.True(t, errors.Is(err, service.ErrUnknownIdentifier))
	assert.Equal(t, http.StatusNotFound, service.Status(err))
	_, err = s.Decrypt("nobody", ct)
	assert.True(t, errors.Is(err, service.ErrUnknownIdentifier))
}

func TestKeyRegistry(t *testing.T) {
	s, err := service.New(abe.DefaultConfig())
	require.NoError(t, err)
	_, err = s.Setup()
	require.NoError(t, err)

	keys, err := s.KeyGen([]string{"a"}, nil)
	require.NoError(t, err)

	r := service.NewKeyRegistry()
	require.NoError(t, r.Put(keys))
	err = r.Put(keys)
	assert.True(t, errors.Is(err, service.ErrDuplicateIdentifier))
	assert.True(t, errors.Is(r.Put(nil), abe.ErrMalformedKey))

	got, err := r.Get(keys.Public.PseudoID)
	require.NoError(t, err)
	assert.Same(t, keys, got)

	// concurrent issuance produces distinct identifiers
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.KeyGen([]string{fmt.Sprintf("attr:%d", i)}, []byte("same seed"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 7, s.Keys.Len())
}

func TestStatus(t *testing.T) {
	for err, code := range map[error]int{
		nil:                                        http.StatusOK,
		abe.ErrUninitialized:                       http.StatusBadRequest,
		errors.Wrap(abe.ErrMalformedPolicy, "x"):   http.StatusBadRequest,
		abe.ErrMalformedKey:                        http.StatusBadRequest,
		abe.ErrEmptyAttributeSet:                   http.StatusBadRequest,
		abe.ErrUnsatisfiedPolicy:                   http.StatusForbidden,
		service.ErrUnknownIdentifier:               http.StatusNotFound,
		abe.ErrAlreadyInitialized:                  http.StatusConflict,
		service.ErrDuplicateIdentifier:             http.StatusConflict,
		abe.ErrPayloadTooLarge:                     http.StatusRequestEntityTooLarge,
		errors.Wrap(abe.ErrIntegrityMismatch, "x"): http.StatusUnprocessableEntity,
		abe.ErrVerificationFailed:                  http.StatusUnprocessableEntity,
		abe.ErrAuthenticationFailed:                http.StatusUnprocessableEntity,
		errors.New("entropy source failed"):        http.StatusInternalServerError,
	} {
		assert.Equal(t, code, service.Status(err), "%v", err)
	}
}
