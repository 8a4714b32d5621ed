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
	"sync"

	"github.com/cabshare/abepre/abe"
	"github.com/pkg/errors"
)

// ErrUnknownIdentifier is returned for a pseudonymous identifier
// that has no registered keys.
var ErrUnknownIdentifier = errors.New("unknown pseudonymous identifier")

// ErrDuplicateIdentifier is returned when keys are registered under
// an identifier that is already taken.
var ErrDuplicateIdentifier = errors.New("pseudonymous identifier is already registered")

// KeyRegistry maps pseudonymous identifiers to issued keys. It is safe
// for concurrent use. Only complete keys are ever visible.
type KeyRegistry struct {
	mu   sync.RWMutex
	keys map[string]*abe.UserKeys
}

// NewKeyRegistry returns an empty registry.
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{keys: make(map[string]*abe.UserKeys)}
}

// Put registers keys under their pseudonymous identifier.
func (r *KeyRegistry) Put(keys *abe.UserKeys) error {
	if keys == nil || keys.Public == nil || keys.Public.PseudoID == "" {
		return errors.Wrap(abe.ErrMalformedKey, "keys without identifier")
	}
	id := keys.Public.PseudoID

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[id]; ok {
		return errors.Wrapf(ErrDuplicateIdentifier, "ptid %s", id)
	}
	r.keys[id] = keys

	return nil
}

// Get returns the keys registered under the identifier.
func (r *KeyRegistry) Get(id string) (*abe.UserKeys, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys, ok := r.keys[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownIdentifier, "ptid %s", id)
	}

	return keys, nil
}

// Len returns the number of registered identifiers.
func (r *KeyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}
