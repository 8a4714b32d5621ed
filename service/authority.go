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

// Package service holds the shared state of a deployment of the abe
// scheme: the system parameters, published exactly once, and a registry
// of issued keys addressed by pseudonymous identifiers. It wraps the
// algorithms of package abe so that a transport layer can refer to
// users by identifier instead of passing their keys around.
package service

import (
	"sync"
	"sync/atomic"

	"github.com/cabshare/abepre/abe"
	"v.io/x/lib/vlog"
)

// Authority owns the system parameters of a deployment. The parameters
// are published at most once; reads never block.
type Authority struct {
	scheme *abe.Scheme

	mu     sync.Mutex
	params atomic.Pointer[abe.SystemParams]
}

// NewAuthority creates an uninitialized authority for a scheme
// configured by cfg.
func NewAuthority(cfg abe.Config) (*Authority, error) {
	scheme, err := abe.NewScheme(cfg)
	if err != nil {
		return nil, err
	}

	return &Authority{scheme: scheme}, nil
}

// Scheme returns the scheme of the authority.
func (a *Authority) Scheme() *abe.Scheme {
	return a.scheme
}

// Setup generates and publishes the system parameters. It returns
// abe.ErrAlreadyInitialized if parameters were already published,
// also when another Setup won a concurrent race.
func (a *Authority) Setup() (*abe.PublicParams, error) {
	if a.Initialized() {
		return nil, abe.ErrAlreadyInitialized
	}

	params, err := a.scheme.Setup()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.params.Load() != nil {
		return nil, abe.ErrAlreadyInitialized
	}
	a.params.Store(params)
	vlog.Infof("published system parameters on curve %s", params.Public.Curve)

	return params.Public, nil
}

// Initialized reports whether the parameters were published.
func (a *Authority) Initialized() bool {
	return a.params.Load() != nil
}

// PublicParams returns the published public parameters, or
// abe.ErrUninitialized before Setup.
func (a *Authority) PublicParams() (*abe.PublicParams, error) {
	params, err := a.systemParams()
	if err != nil {
		return nil, err
	}

	return params.Public, nil
}

func (a *Authority) systemParams() (*abe.SystemParams, error) {
	params := a.params.Load()
	if params == nil {
		return nil, abe.ErrUninitialized
	}

	return params, nil
}
