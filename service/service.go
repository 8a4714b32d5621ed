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

package service

import (
	"github.com/cabshare/abepre/abe"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// Service runs the algorithms of the scheme against the parameters of
// an Authority and the keys of a KeyRegistry. Users are addressed by
// their pseudonymous identifiers. Nothing is computed before the
// parameters are published.
type Service struct {
	*Authority
	Keys *KeyRegistry
}

// New creates a service with an uninitialized authority and an empty
// registry.
func New(cfg abe.Config) (*Service, error) {
	authority, err := NewAuthority(cfg)
	if err != nil {
		return nil, err
	}

	return &Service{Authority: authority, Keys: NewKeyRegistry()}, nil
}

// KeyGen issues keys for the attributes and registers them under their
// pseudonymous identifier. The returned keys are meant for their holder
// only.
func (s *Service) KeyGen(attributes []string, seed []byte) (*abe.UserKeys, error) {
	params, err := s.systemParams()
	if err != nil {
		return nil, err
	}
	keys, err := s.scheme.KeyGen(params, attributes, seed)
	if err != nil {
		return nil, err
	}
	if err := s.Keys.Put(keys); err != nil {
		return nil, err
	}
	vlog.VI(1).Infof("issued keys %s for %d attributes", keys.Public.PseudoID, len(keys.Attributes))

	return keys, nil
}

// PublicKey returns the public key registered under the identifier.
func (s *Service) PublicKey(ptid string) (*abe.PublicKey, error) {
	if _, err := s.PublicParams(); err != nil {
		return nil, err
	}
	keys, err := s.Keys.Get(ptid)
	if err != nil {
		return nil, err
	}

	return keys.Public, nil
}

// Encrypt encrypts plaintext under the policy.
func (s *Service) Encrypt(plaintext []byte, policy *abe.AccessPolicy) (*abe.Ciphertext, error) {
	pp, err := s.PublicParams()
	if err != nil {
		return nil, err
	}

	return s.scheme.Encrypt(pp, plaintext, policy)
}

// Match reports whether the attributes satisfy the policy. Like every
// other operation it fails with abe.ErrUninitialized before Setup.
func (s *Service) Match(attributes []string, policy *abe.AccessPolicy) (bool, error) {
	if _, err := s.PublicParams(); err != nil {
		return false, err
	}

	return s.scheme.Match(attributes, policy), nil
}

// ReKeyGen derives a re-encryption key from the keys of the user from
// to the user to, for ciphertexts re-encrypted under target.
func (s *Service) ReKeyGen(from, to string, target *abe.AccessPolicy) (*abe.ReencryptionKey, error) {
	pp, err := s.PublicParams()
	if err != nil {
		return nil, err
	}
	delegator, err := s.Keys.Get(from)
	if err != nil {
		return nil, errors.Wrap(err, "delegator")
	}
	receiver, err := s.Keys.Get(to)
	if err != nil {
		return nil, errors.Wrap(err, "receiver")
	}

	rk, err := s.scheme.ReKeyGen(pp, delegator, receiver.Public, target)
	if err != nil {
		return nil, err
	}
	vlog.VI(1).Infof("derived re-encryption key %s -> %s", from, to)

	return rk, nil
}

// ReEncrypt transforms ct with rk. It uses no registered keys and can
// run on a proxy that holds only the public parameters.
func (s *Service) ReEncrypt(ct *abe.Ciphertext, rk *abe.ReencryptionKey) (*abe.ReencryptedCiphertext, error) {
	pp, err := s.PublicParams()
	if err != nil {
		return nil, err
	}
	rct, err := s.scheme.ReEncrypt(pp, ct, rk)
	if err != nil {
		return nil, err
	}
	vlog.VI(1).Infof("re-encrypted ciphertext %s -> %s", rct.FromPseudoID, rct.ToPseudoID)

	return rct, nil
}

// Verify checks rct for the user registered under ptid. A failed check
// is logged as evidence of tampering.
func (s *Service) Verify(ptid string, rct *abe.ReencryptedCiphertext) (bool, error) {
	pp, err := s.PublicParams()
	if err != nil {
		return false, err
	}
	keys, err := s.Keys.Get(ptid)
	if err != nil {
		return false, err
	}

	ok, err := s.scheme.Verify(pp, rct, keys)
	if err != nil {
		return false, err
	}
	if !ok {
		vlog.Errorf("re-encrypted ciphertext failed verification for %s", ptid)
	}

	return ok, nil
}

// Decrypt decrypts ct with the keys registered under ptid.
func (s *Service) Decrypt(ptid string, ct *abe.Ciphertext) ([]byte, error) {
	pp, err := s.PublicParams()
	if err != nil {
		return nil, err
	}
	keys, err := s.Keys.Get(ptid)
	if err != nil {
		return nil, err
	}

	return s.scheme.Decrypt(pp, ct, keys)
}

// DecryptReencrypted verifies and decrypts rct with the keys registered
// under ptid.
func (s *Service) DecryptReencrypted(ptid string, rct *abe.ReencryptedCiphertext) ([]byte, error) {
	pp, err := s.PublicParams()
	if err != nil {
		return nil, err
	}
	keys, err := s.Keys.Get(ptid)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.scheme.DecryptReencrypted(pp, rct, keys)
	if errors.Is(err, abe.ErrVerificationFailed) {
		vlog.Errorf("re-encrypted ciphertext failed verification for %s", ptid)
	}

	return plaintext, err
}
