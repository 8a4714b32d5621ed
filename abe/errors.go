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
	"fmt"

	"github.com/pkg/errors"
)

var malformedStr = "is not of the proper form"

// Error kinds returned by the scheme. Errors carry context added
// with errors.Wrap, so callers should test for a kind with errors.Is.
// No error ever contains key material.
var (
	ErrUninitialized      = errors.New("system parameters are not initialized")
	ErrAlreadyInitialized = errors.New("system parameters are already initialized")

	ErrMalformedPolicy   = errors.New(fmt.Sprintf("access policy %s", malformedStr))
	ErrMalformedKey      = errors.New(fmt.Sprintf("key %s", malformedStr))
	ErrEmptyAttributeSet = errors.New("attribute set is empty")
	ErrUnsatisfiedPolicy = errors.New("attributes do not satisfy the access policy")

	ErrIntegrityMismatch    = errors.New("ciphertext integrity check failed")
	ErrVerificationFailed   = errors.New("transformed ciphertext failed verification")
	ErrAuthenticationFailed = errors.New("payload authentication failed")
	ErrPayloadTooLarge      = errors.New("plaintext exceeds the size limit")
)
