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
	"math/big"

	"github.com/cabshare/abepre/pairing"
)

// PublicParams are the public system parameters. They are needed by
// every algorithm of the scheme and can be distributed freely.
type PublicParams struct {
	Curve string
	// G and G2 generate G1 and G2, EGG = e(G, G2).
	G   pairing.G1
	G2  pairing.G2
	EGG pairing.GT
	// EggAlpha = e(G, G2)^alpha.
	EggAlpha pairing.GT
	// GBeta = G^beta.
	GBeta pairing.G1
	// H = G^eta for a discarded eta. It re-randomizes
	// attribute keys and ciphertext rows.
	H pairing.G1
}

type masterSecret struct {
	alpha  *big.Int
	beta   *big.Int
	gAlpha pairing.G1
}

// SystemParams holds the public parameters together with the master
// secret produced by Setup. The master secret is unexported and has no
// serialized form; it never leaves the process that ran Setup.
type SystemParams struct {
	Public *PublicParams
	master *masterSecret
}

// String describes the parameters without revealing the master secret.
func (sp *SystemParams) String() string {
	if sp == nil || sp.Public == nil {
		return "SystemParams(nil)"
	}
	return fmt.Sprintf("SystemParams(curve=%s)", sp.Public.Curve)
}

// Setup samples the master secret and derives the public parameters.
// It fails only if randomness cannot be sampled.
func (s *Scheme) Setup() (*SystemParams, error) {
	alpha, err := s.randomExponent()
	if err != nil {
		return nil, err
	}
	beta, err := s.randomExponent()
	if err != nil {
		return nil, err
	}
	eta, err := s.randomExponent()
	if err != nil {
		return nil, err
	}

	g := s.Group.G1Generator()
	g2 := s.Group.G2Generator()
	egg := s.Group.Pair(g, g2)

	return &SystemParams{
		Public: &PublicParams{
			Curve:    s.Group.Name(),
			G:        g,
			G2:       g2,
			EGG:      egg,
			EggAlpha: egg.ScalarMult(alpha),
			GBeta:    g.ScalarMult(beta),
			H:        g.ScalarMult(eta),
		},
		master: &masterSecret{
			alpha:  alpha,
			beta:   beta,
			gAlpha: g.ScalarMult(alpha),
		},
	}, nil
}
