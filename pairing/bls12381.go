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

package pairing

import (
	"math/big"

	"github.com/cloudflare/circl/ecc/bls12381"
	"github.com/pkg/errors"
)

var blsOrder = new(big.Int).SetBytes(bls12381.Order())

type blsGroup struct{}

// NewBLS12381 returns the BLS12-381 group implemented by
// github.com/cloudflare/circl.
func NewBLS12381() Group {
	return blsGroup{}
}

func (blsGroup) Name() string { return BLS12381 }

func (blsGroup) Order() *big.Int { return new(big.Int).Set(blsOrder) }

func (blsGroup) G1Generator() G1 { return blsG1{bls12381.G1Generator()} }

func (blsGroup) G2Generator() G2 { return blsG2{bls12381.G2Generator()} }

func (blsGroup) GTGenerator() GT {
	return blsGT{bls12381.Pair(bls12381.G1Generator(), bls12381.G2Generator())}
}

func (blsGroup) G1Identity() G1 {
	p := new(bls12381.G1)
	p.SetIdentity()
	return blsG1{p}
}

func (blsGroup) GTIdentity() GT {
	z := new(bls12381.Gt)
	z.SetIdentity()
	return blsGT{z}
}

func (blsGroup) Pair(a G1, b G2) GT {
	return blsGT{bls12381.Pair(asBLSG1(a).p, asBLSG2(b).p)}
}

func (blsGroup) HashToG1(domain string, msg []byte) (G1, error) {
	p := new(bls12381.G1)
	p.Hash(msg, []byte(domain))
	return blsG1{p}, nil
}

func (blsGroup) UnmarshalG1(b []byte) (G1, error) {
	if len(b) != bls12381.G1SizeCompressed {
		return nil, errors.Wrapf(ErrMalformedElement, "bls12381 G1: %d bytes", len(b))
	}
	p := new(bls12381.G1)
	if err := p.SetBytes(b); err != nil {
		return nil, errors.Wrap(ErrMalformedElement, "bls12381 G1")
	}

	return blsG1{p}, nil
}

func (blsGroup) UnmarshalG2(b []byte) (G2, error) {
	if len(b) != bls12381.G2SizeCompressed {
		return nil, errors.Wrapf(ErrMalformedElement, "bls12381 G2: %d bytes", len(b))
	}
	p := new(bls12381.G2)
	if err := p.SetBytes(b); err != nil {
		return nil, errors.Wrap(ErrMalformedElement, "bls12381 G2")
	}

	return blsG2{p}, nil
}

func (blsGroup) UnmarshalGT(b []byte) (GT, error) {
	if len(b) != bls12381.GtSize {
		return nil, errors.Wrapf(ErrMalformedElement, "bls12381 GT: %d bytes", len(b))
	}
	z := new(bls12381.Gt)
	if err := z.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrap(ErrMalformedElement, "bls12381 GT")
	}

	return blsGT{z}, nil
}

func blsScalar(k *big.Int) *bls12381.Scalar {
	s := new(bls12381.Scalar)
	s.SetBytes(reduce(k, blsOrder).Bytes())
	return s
}

type blsG1 struct{ p *bls12381.G1 }

func asBLSG1(e G1) blsG1 {
	v, ok := e.(blsG1)
	if !ok {
		panic("pairing: G1 element of a different group")
	}
	return v
}

func (e blsG1) Add(o G1) G1 {
	r := new(bls12381.G1)
	r.Add(e.p, asBLSG1(o).p)
	return blsG1{r}
}

func (e blsG1) ScalarMult(k *big.Int) G1 {
	r := new(bls12381.G1)
	r.ScalarMult(blsScalar(k), e.p)
	return blsG1{r}
}

func (e blsG1) Neg() G1 {
	r := new(bls12381.G1)
	*r = *e.p
	r.Neg()
	return blsG1{r}
}

func (e blsG1) Marshal() []byte { return e.p.BytesCompressed() }

type blsG2 struct{ p *bls12381.G2 }

func asBLSG2(e G2) blsG2 {
	v, ok := e.(blsG2)
	if !ok {
		panic("pairing: G2 element of a different group")
	}
	return v
}

func (e blsG2) Add(o G2) G2 {
	r := new(bls12381.G2)
	r.Add(e.p, asBLSG2(o).p)
	return blsG2{r}
}

func (e blsG2) ScalarMult(k *big.Int) G2 {
	r := new(bls12381.G2)
	r.ScalarMult(blsScalar(k), e.p)
	return blsG2{r}
}

func (e blsG2) Neg() G2 {
	r := new(bls12381.G2)
	*r = *e.p
	r.Neg()
	return blsG2{r}
}

func (e blsG2) Marshal() []byte { return e.p.BytesCompressed() }

type blsGT struct{ z *bls12381.Gt }

func asBLSGT(e GT) blsGT {
	v, ok := e.(blsGT)
	if !ok {
		panic("pairing: GT element of a different group")
	}
	return v
}

func (e blsGT) Add(o GT) GT {
	r := new(bls12381.Gt)
	r.Mul(e.z, asBLSGT(o).z)
	return blsGT{r}
}

func (e blsGT) ScalarMult(k *big.Int) GT {
	r := new(bls12381.Gt)
	r.Exp(e.z, blsScalar(k))
	return blsGT{r}
}

func (e blsGT) Neg() GT {
	r := new(bls12381.Gt)
	r.Inv(e.z)
	return blsGT{r}
}

func (e blsGT) Marshal() []byte {
	b, err := e.z.MarshalBinary()
	if err != nil {
		// Gt encodes into a fixed size buffer and cannot fail.
		panic(err)
	}
	return b
}
