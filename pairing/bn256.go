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

	"github.com/fentec-project/bn256"
	"github.com/pkg/errors"
)

type bn256Group struct{}

// NewBN256 returns the Barreto-Naehrig group implemented by
// github.com/fentec-project/bn256.
func NewBN256() Group {
	return bn256Group{}
}

func (bn256Group) Name() string { return BN256 }

func (bn256Group) Order() *big.Int { return new(big.Int).Set(bn256.Order) }

func (bn256Group) G1Generator() G1 {
	return bnG1{new(bn256.G1).ScalarBaseMult(big.NewInt(1))}
}

func (bn256Group) G2Generator() G2 {
	return bnG2{new(bn256.G2).ScalarBaseMult(big.NewInt(1))}
}

func (bn256Group) GTGenerator() GT {
	return bnGT{new(bn256.GT).ScalarBaseMult(big.NewInt(1))}
}

func (bn256Group) G1Identity() G1 {
	return bnG1{new(bn256.G1).ScalarBaseMult(big.NewInt(0))}
}

func (bn256Group) GTIdentity() GT {
	return bnGT{new(bn256.GT).ScalarBaseMult(big.NewInt(0))}
}

func (bn256Group) Pair(a G1, b G2) GT {
	return bnGT{bn256.Pair(asBNG1(a).p, asBNG2(b).p)}
}

func (bn256Group) HashToG1(domain string, msg []byte) (G1, error) {
	h, err := bn256.HashG1(domain + "|" + string(msg))
	if err != nil {
		return nil, errors.Wrap(err, "hashing to G1")
	}

	return bnG1{h}, nil
}

func (bn256Group) UnmarshalG1(b []byte) (G1, error) {
	p := new(bn256.G1)
	rest, err := p.Unmarshal(b)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedElement, "bn256 G1: %v", err)
	}
	if len(rest) != 0 {
		return nil, errors.Wrap(ErrMalformedElement, "bn256 G1: trailing bytes")
	}

	return bnG1{p}, nil
}

func (bn256Group) UnmarshalG2(b []byte) (G2, error) {
	p := new(bn256.G2)
	rest, err := p.Unmarshal(b)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedElement, "bn256 G2: %v", err)
	}
	if len(rest) != 0 {
		return nil, errors.Wrap(ErrMalformedElement, "bn256 G2: trailing bytes")
	}

	return bnG2{p}, nil
}

func (bn256Group) UnmarshalGT(b []byte) (GT, error) {
	p := new(bn256.GT)
	rest, err := p.Unmarshal(b)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedElement, "bn256 GT: %v", err)
	}
	if len(rest) != 0 {
		return nil, errors.Wrap(ErrMalformedElement, "bn256 GT: trailing bytes")
	}

	return bnGT{p}, nil
}

// The wrapped points are never modified after construction.
// Marshal copies first, since bn256 normalizes its receiver.

type bnG1 struct{ p *bn256.G1 }

func asBNG1(e G1) bnG1 {
	v, ok := e.(bnG1)
	if !ok {
		panic("pairing: G1 element of a different group")
	}
	return v
}

func (e bnG1) Add(o G1) G1 {
	return bnG1{new(bn256.G1).Add(e.p, asBNG1(o).p)}
}

func (e bnG1) ScalarMult(k *big.Int) G1 {
	return bnG1{new(bn256.G1).ScalarMult(e.p, reduce(k, bn256.Order))}
}

func (e bnG1) Neg() G1 {
	return bnG1{new(bn256.G1).Neg(e.p)}
}

func (e bnG1) Marshal() []byte {
	return new(bn256.G1).Set(e.p).Marshal()
}

type bnG2 struct{ p *bn256.G2 }

func asBNG2(e G2) bnG2 {
	v, ok := e.(bnG2)
	if !ok {
		panic("pairing: G2 element of a different group")
	}
	return v
}

func (e bnG2) Add(o G2) G2 {
	return bnG2{new(bn256.G2).Add(e.p, asBNG2(o).p)}
}

func (e bnG2) ScalarMult(k *big.Int) G2 {
	return bnG2{new(bn256.G2).ScalarMult(e.p, reduce(k, bn256.Order))}
}

func (e bnG2) Neg() G2 {
	return bnG2{new(bn256.G2).Neg(e.p)}
}

func (e bnG2) Marshal() []byte {
	return new(bn256.G2).Set(e.p).Marshal()
}

type bnGT struct{ p *bn256.GT }

func asBNGT(e GT) bnGT {
	v, ok := e.(bnGT)
	if !ok {
		panic("pairing: GT element of a different group")
	}
	return v
}

func (e bnGT) Add(o GT) GT {
	return bnGT{new(bn256.GT).Add(e.p, asBNGT(o).p)}
}

func (e bnGT) ScalarMult(k *big.Int) GT {
	return bnGT{new(bn256.GT).ScalarMult(e.p, reduce(k, bn256.Order))}
}

func (e bnGT) Neg() GT {
	return bnGT{new(bn256.GT).Neg(e.p)}
}

func (e bnGT) Marshal() []byte {
	return new(bn256.GT).Set(e.p).Marshal()
}
