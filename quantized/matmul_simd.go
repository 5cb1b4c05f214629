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

import (
	"encoding/binary"

	"github.com/jamesemmott/mlx/simd"
)

// laneShifts maps (bits, lanes) to the right-shift each vector lane applies
// to its source 32-bit word when unpacking codes straight into lanes. Lane
// l reads word l/(32/bits). Only combinations where the lane count is a
// multiple of the per-word code count are representable; canUseSIMD gates
// on the same condition.
var laneShifts = map[[2]int][]uint{
	{2, 16}: {0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30},
	{4, 8}:  {0, 4, 8, 12, 16, 20, 24, 28},
	{4, 16}: {0, 4, 8, 12, 16, 20, 24, 28, 0, 4, 8, 12, 16, 20, 24, 28},
	{8, 4}:  {0, 8, 16, 24},
	{8, 8}:  {0, 8, 16, 24, 0, 8, 16, 24},
	{8, 16}: {0, 8, 16, 24, 0, 8, 16, 24, 0, 8, 16, 24, 0, 8, 16, 24},
}

// canUseSIMD reports whether the vectorized transposed kernel applies: the
// bit width must divide the 32-bit word evenly and the vector lane count
// must be a multiple of the per-word code count.
func canUseSIMD[T simd.Floats](bits int) bool {
	if 32%bits != 0 {
		return false
	}
	lanes := simd.MaxLanes[T]()
	if lanes%(32/bits) != 0 {
		return false
	}
	_, ok := laneShifts[[2]int{bits, lanes}]
	return ok
}

// qmmTSIMD is the vectorized variant of qmmT. Codes are unpacked from
// 32-bit words directly into vector lanes via the laneShifts table,
// affine-transformed in-register, multiplied against a vector load of the
// activation row, and reduced by horizontal sum once per output element.
func qmmTSIMD[T simd.Floats](result, x []T, w []byte, scales, biases []T, M, N, K, bits, groupSize int) {
	packFactor := 32 / bits
	packsInGroup := groupSize / packFactor
	lanes := simd.MaxLanes[T]()
	packsPerVec := lanes / packFactor
	shifts := laneShifts[[2]int{bits, lanes}]
	mask := uint32(1)<<bits - 1
	buf := make([]T, lanes)

	for m := range M {
		wOff := 0
		sOff := 0
		xRow := x[m*K : (m+1)*K]

		for n := range N {
			acc := simd.Zero[T]()
			xOff := 0
			for k := 0; k < K; k += groupSize {
				scaleVec := simd.Set(scales[sOff])
				biasVec := simd.Set(biases[sOff])
				sOff++

				for kw := 0; kw < packsInGroup; kw += packsPerVec {
					for l := range lanes {
						word := binary.LittleEndian.Uint32(w[wOff+4*(l/packFactor):])
						buf[l] = T((word >> shifts[l]) & mask)
					}
					wOff += 4 * packsPerVec

					wf := simd.MulAdd(simd.Load(buf), scaleVec, biasVec)
					acc = simd.MulAdd(simd.Load(xRow[xOff:]), wf, acc)
					xOff += lanes
				}
			}
			result[m*N+n] = simd.ReduceSum(acc)
		}
	}
}
