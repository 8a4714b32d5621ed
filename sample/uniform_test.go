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

package sample_test

import (
	"math/big"
	"testing"

	"github.com/cabshare/abepre/sample"
	"github.com/stretchr/testify/assert"
)

func TestUniformDet(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	max := big.NewInt(1000003)

	first := sample.NewUniformDet(max, &key)
	second := sample.NewUniformDet(max, &key)
	for i := 0; i < 100; i++ {
		a, err := first.Sample()
		assert.NoError(t, err)
		b, err := second.Sample()
		assert.NoError(t, err)
		assert.Equal(t, a, b, "equal keys must give equal values")
		assert.True(t, a.Sign() >= 0 && a.Cmp(max) < 0, "value out of range")
	}

	key[0] ^= 1
	other := sample.NewUniformDet(max, &key)
	a, _ := sample.NewUniformDet(max, &[32]byte{}).Sample()
	b, _ := other.Sample()
	assert.NotEqual(t, a, b)
}

func TestUniformRange(t *testing.T) {
	min, max := big.NewInt(10), big.NewInt(20)
	sampler := sample.NewUniformRange(min, max)
	for i := 0; i < 200; i++ {
		v, err := sampler.Sample()
		if err != nil {
			t.Fatalf("error when sampling: %v", err)
		}
		assert.True(t, v.Cmp(min) >= 0 && v.Cmp(max) < 0, "value out of range")
	}

	_, err := sample.NewUniformRange(max, min).Sample()
	assert.Error(t, err)
}

func TestUniformNonZero(t *testing.T) {
	sampler := sample.NewUniformNonZero(big.NewInt(2))
	for i := 0; i < 20; i++ {
		v, err := sampler.Sample()
		assert.NoError(t, err)
		assert.Equal(t, int64(1), v.Int64())
	}
}
