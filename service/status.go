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
	"net/http"

	"github.com/cabshare/abepre/abe"
	"github.com/pkg/errors"
)

// Status maps an error returned by this package or by package abe to
// the HTTP status code a transport layer should answer with. A nil
// error maps to 200.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, abe.ErrUninitialized),
		errors.Is(err, abe.ErrMalformedPolicy),
		errors.Is(err, abe.ErrMalformedKey),
		errors.Is(err, abe.ErrEmptyAttributeSet):
		return http.StatusBadRequest
	case errors.Is(err, abe.ErrUnsatisfiedPolicy):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownIdentifier):
		return http.StatusNotFound
	case errors.Is(err, abe.ErrAlreadyInitialized),
		errors.Is(err, ErrDuplicateIdentifier):
		return http.StatusConflict
	case errors.Is(err, abe.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, abe.ErrIntegrityMismatch),
		errors.Is(err, abe.ErrVerificationFailed),
		errors.Is(err, abe.ErrAuthenticationFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
