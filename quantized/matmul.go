// Copyright 2026 mlx-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package quantized

import "github.com/jamesemmott/mlx/simd"

// qmm computes result = x @ dequant(w) for one 2-D slice with w stored
// row-major: w's rows run along K, its columns along N, and each run of
// groupSize columns shares a (scale, bias) pair.
//
// The packed stream is walked with a cursor exactly once per row of x;
// each pack is unpacked into a small code buffer and accumulated into the
// result row, which is zeroed first.
func qmm[T simd.Floats](result, x []T, w []byte, scales, biases []T, M, N, K, bits, groupSize int) {
	c := codecFor[T](bits)
	packsInGroup := groupSize / c.packFactor
	wl := make([]T, c.packFactor)

	for m := range M {
		wOff := 0
		sOff := 0
		res := result[m*N : (m+1)*N]
		clear(res)

		for k := range K {
			xi := x[m*K+k]
			ri := 0
			for n := 0; n < N; n += groupSize {
				scale := scales[sOff]
				bias := biases[sOff]
				sOff++
				for range packsInGroup {
					c.unpack(w[wOff:], wl)
					for p := range c.packFactor {
						res[ri] += xi * (scale*wl[p] + bias)
						ri++
					}
					wOff += c.bytesPerPack
				}
			}
		}
	}
}

// qmmT computes result = x @ dequant(w)^T for one 2-D slice: w's rows run
// along N (one weight row per output column), its columns along K, with
// groups of groupSize along K. Each (m, n) output is a scalar dot product.
func qmmT[T simd.Floats](result, x []T, w []byte, scales, biases []T, M, N, K, bits, groupSize int) {
	c := codecFor[T](bits)
	packsInGroup := groupSize / c.packFactor
	wl := make([]T, c.packFactor)

	for m := range M {
		wOff := 0
		sOff := 0
		xRow := x[m*K : (m+1)*K]

		for n := range N {
			var sum T
			xOff := 0
			for k := 0; k < K; k += groupSize {
				scale := scales[sOff]
				bias := biases[sOff]
				sOff++
				for range packsInGroup {
					c.unpack(w[wOff:], wl)
					for p := range c.packFactor {
						sum += xRow[xOff+p] * (scale*wl[p] + bias)
					}
					wOff += c.bytesPerPack
					xOff += c.packFactor
				}
			}
			result[m*N+n] = sum
		}
	}
}
