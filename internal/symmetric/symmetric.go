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

// Package symmetric encrypts payloads under keys derived from
// pairing values. Keys are derived with HKDF-SHA256 and payloads
// are sealed with ChaCha20-Poly1305.
package symmetric

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// NonceSize is the size of the random nonce of a Box.
const NonceSize = chacha20poly1305.NonceSize

// TagSize is the size of the authentication tag of a Box.
const TagSize = chacha20poly1305.Overhead

// ErrOpen is returned when a Box fails authentication.
var ErrOpen = errors.New("message authentication failed")

// Box is an authenticated ciphertext.
type Box struct {
	Nonce []byte
	Body  []byte
	Tag   []byte
}

// DeriveKey derives a 32 byte key from secret. The info string
// separates keys derived for different purposes.
func DeriveKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "deriving key")
	}

	return key, nil
}

// Seal encrypts and authenticates plaintext together with the
// additional data ad under a fresh random nonce.
func Seal(key, plaintext, ad []byte) (*Box, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "creating cipher")
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "reading nonce")
	}

	sealed := aead.Seal(nil, nonce, plaintext, ad)
	split := len(sealed) - TagSize

	return &Box{
		Nonce: nonce,
		Body:  sealed[:split],
		Tag:   sealed[split:],
	}, nil
}

// Open authenticates and decrypts b. It returns ErrOpen if the key,
// the additional data or any part of b does not match.
func Open(key []byte, b *Box, ad []byte) ([]byte, error) {
	if b == nil || len(b.Nonce) != NonceSize || len(b.Tag) != TagSize {
		return nil, ErrOpen
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "creating cipher")
	}

	sealed := make([]byte, 0, len(b.Body)+TagSize)
	sealed = append(sealed, b.Body...)
	sealed = append(sealed, b.Tag...)
	plaintext, err := aead.Open(nil, b.Nonce, sealed, ad)
	if err != nil {
		return nil, ErrOpen
	}

	return plaintext, nil
}
