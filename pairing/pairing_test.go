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

package pairing_test

import (
	"math/big"
	"testing"

	"github.com/cabshare/abepre/pairing"
	"github.com/cabshare/abepre/sample"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groups() []pairing.Group {
	return []pairing.Group{pairing.NewBN256(), pairing.NewBLS12381()}
}

func TestBilinearity(t *testing.T) {
	for _, g := range groups() {
		t.Run(g.Name(), func(t *testing.T) {
			sampler := sample.NewUniform(g.Order())
			a, err := sampler.Sample()
			require.NoError(t, err)
			b, err := sampler.Sample()
			require.NoError(t, err)

			lhs := g.Pair(g.G1Generator().ScalarMult(a), g.G2Generator().ScalarMult(b))
			rhs := g.GTGenerator().ScalarMult(new(big.Int).Mul(a, b))
			assert.True(t, pairing.Equal(lhs, rhs), "e(g^a, h^b) should equal e(g, h)^ab")

			sum := g.Pair(g.G1Generator().ScalarMult(a).Add(g.G1Generator()), g.G2Generator())
			prod := g.GTGenerator().ScalarMult(a).Add(g.GTGenerator())
			assert.True(t, pairing.Equal(sum, prod))
		})
	}
}

func TestInverseAndIdentity(t *testing.T) {
	for _, g := range groups() {
		t.Run(g.Name(), func(t *testing.T) {
			x := g.GTGenerator().ScalarMult(big.NewInt(12345))
			assert.True(t, pairing.Equal(g.GTIdentity(), x.Add(x.Neg())))

			p := g.G1Generator().ScalarMult(big.NewInt(77))
			assert.True(t, pairing.Equal(g.G1Identity(), p.Add(p.Neg())))

			// negative scalars are reduced modulo the order
			q := g.G1Generator().ScalarMult(big.NewInt(-77))
			assert.True(t, pairing.Equal(p.Neg(), q))
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, g := range groups() {
		t.Run(g.Name(), func(t *testing.T) {
			k := big.NewInt(987654321)

			p1 := g.G1Generator().ScalarMult(k)
			d1, err := g.UnmarshalG1(p1.Marshal())
			require.NoError(t, err)
			assert.True(t, pairing.Equal(p1, d1))

			p2 := g.G2Generator().ScalarMult(k)
			d2, err := g.UnmarshalG2(p2.Marshal())
			require.NoError(t, err)
			assert.True(t, pairing.Equal(p2, d2))

			pt := g.GTGenerator().ScalarMult(k)
			dt, err := g.UnmarshalGT(pt.Marshal())
			require.NoError(t, err)
			assert.True(t, pairing.Equal(pt, dt))

			_, err = g.UnmarshalG1([]byte{1, 2, 3})
			assert.True(t, errors.Is(err, pairing.ErrMalformedElement))
			_, err = g.UnmarshalG1(append(p1.Marshal(), 0))
			assert.True(t, errors.Is(err, pairing.ErrMalformedElement), "trailing bytes must be rejected")
			_, err = g.UnmarshalG2(append(p2.Marshal(), 0))
			assert.True(t, errors.Is(err, pairing.ErrMalformedElement), "trailing bytes must be rejected")
			_, err = g.UnmarshalG2(p1.Marshal())
			assert.True(t, errors.Is(err, pairing.ErrMalformedElement))
			_, err = g.UnmarshalGT(pt.Marshal()[1:])
			assert.True(t, errors.Is(err, pairing.ErrMalformedElement))
		})
	}
}

func TestHashToG1(t *testing.T) {
	for _, g := range groups() {
		t.Run(g.Name(), func(t *testing.T) {
			a1, err := g.HashToG1("attr", []byte("driver"))
			require.NoError(t, err)
			a2, err := g.HashToG1("attr", []byte("driver"))
			require.NoError(t, err)
			b, err := g.HashToG1("attr", []byte("rider"))
			require.NoError(t, err)
			c, err := g.HashToG1("other", []byte("driver"))
			require.NoError(t, err)

			assert.True(t, pairing.Equal(a1, a2))
			assert.False(t, pairing.Equal(a1, b))
			assert.False(t, pairing.Equal(a1, c))
		})
	}
}

func TestByName(t *testing.T) {
	g, err := pairing.ByName("")
	require.NoError(t, err)
	assert.Equal(t, pairing.DefaultCurve, g.Name())

	g, err = pairing.ByName(pairing.BLS12381)
	require.NoError(t, err)
	assert.Equal(t, pairing.BLS12381, g.Name())

	_, err = pairing.ByName("p256")
	assert.Error(t, err)
}

func TestMixedGroupsPanic(t *testing.T) {
	bn, bls := pairing.NewBN256(), pairing.NewBLS12381()
	assert.Panics(t, func() {
		bn.G1Generator().Add(bls.G1Generator())
	})
}
