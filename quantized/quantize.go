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
	"math"

	"github.com/jamesemmott/mlx/simd"
)

// quantEps floors the min/max range scale so a constant group never
// divides by zero.
const quantEps = 1e-7

// Quantize performs per-group affine quantization of w into bit-packed
// codes plus one (scale, bias) pair per group.
//
// For each group the scale starts from the min/max range over 2^bits-1
// bins, then is re-anchored so the extreme value of larger magnitude (the
// edge) reconstructs exactly: if the edge rounds to a non-zero code q0,
// scale becomes edge/q0 and bias becomes edge; otherwise bias is 0.
//
// Parameters:
//   - w: source values, len(w) a multiple of groupSize
//   - out: len(w)*bits/8 bytes of packed codes (see Pack for the layout)
//   - scales, biases: one entry per group, len(w)/groupSize each
//   - bits: 2, 3, 4, 5, 6 or 8
//   - groupSize: 32, 64 or 128
func Quantize[T simd.Floats](w []T, out []byte, scales, biases []T, bits, groupSize int) error {
	if err := checkConfig(bits, groupSize); err != nil {
		return err
	}
	if len(w)%groupSize != 0 {
		return errGroupAlignment(len(w), groupSize)
	}

	nBins := float64(uint(1)<<bits - 1)
	elPerWord := PackFactor(bits, 32)
	bytesPerWord := 4
	if !isPowerOfTwo(bits) {
		bytesPerWord = BytesPerPack(bits)
	}
	wordsPerGroup := groupSize / elPerWord
	bytesPerGroup := wordsPerGroup * bytesPerWord
	nGroups := len(w) / groupSize

	for i := range nGroups {
		group := w[i*groupSize : (i+1)*groupSize]
		wMin, wMax := groupMinMax(group)

		mask := math.Abs(wMin) > math.Abs(wMax)
		scale := max((wMax-wMin)/nBins, quantEps)
		if !mask {
			scale = -scale
		}
		edge := wMax
		if mask {
			edge = wMin
		}
		q0 := math.RoundToEven(edge / scale)
		bias := 0.0
		if q0 != 0 {
			scale = edge / q0
			bias = edge
		}

		outGroup := out[i*bytesPerGroup:]
		for j := range wordsPerGroup {
			var word uint64
			for k := range elPerWord {
				el := math.RoundToEven((float64(group[j*elPerWord+k]) - bias) / scale)
				el = min(max(el, 0), nBins)
				word |= uint64(el) << (k * bits)
			}
			o := outGroup[j*bytesPerWord:]
			if isPowerOfTwo(bits) {
				binary.LittleEndian.PutUint32(o, uint32(word))
			} else {
				o[0] = byte(word)
				o[1] = byte(word >> 8)
				o[2] = byte(word >> 16)
				if bits == 5 {
					o[3] = byte(word >> 24)
					o[4] = byte(word >> 32)
				}
			}
		}
		scales[i] = T(scale)
		biases[i] = T(bias)
	}
	return nil
}

// Dequantize reconstructs the affine approximation of a quantized buffer:
// out[i] = code[i]*scale[group(i)] + bias[group(i)].
func Dequantize[T simd.Floats](packed []byte, scales, biases []T, out []T, bits, groupSize int) error {
	if err := checkConfig(bits, groupSize); err != nil {
		return err
	}
	if len(out)%groupSize != 0 {
		return errGroupAlignment(len(out), groupSize)
	}

	c := codecFor[T](bits)
	packsInGroup := groupSize / c.packFactor
	bytesPerGroup := packsInGroup * c.bytesPerPack
	nGroups := len(out) / groupSize
	lanes := simd.MaxLanes[T]()
	groupBuf := make([]T, groupSize)

	for g := range nGroups {
		wLocal := packed[g*bytesPerGroup:]
		for p := range packsInGroup {
			c.unpack(wLocal[p*c.bytesPerPack:], groupBuf[p*c.packFactor:])
		}

		scale, bias := scales[g], biases[g]
		scaleVec := simd.Set(scale)
		biasVec := simd.Set(bias)
		outGroup := out[g*groupSize : (g+1)*groupSize]

		i := 0
		for ; i+lanes <= groupSize; i += lanes {
			v := simd.MulAdd(simd.Load(groupBuf[i:]), scaleVec, biasVec)
			simd.Store(v, outGroup[i:])
		}
		// Scalar tail
		for ; i < groupSize; i++ {
			outGroup[i] = groupBuf[i]*scale + bias
		}
	}
	return nil
}

// groupMinMax scans one group with vector min/max and a scalar tail.
func groupMinMax[T simd.Floats](group []T) (float64, float64) {
	lanes := simd.MaxLanes[T]()
	i := 0
	var mn, mx float64
	if len(group) >= lanes {
		minVec := simd.Load(group)
		maxVec := minVec
		for i = lanes; i+lanes <= len(group); i += lanes {
			v := simd.Load(group[i:])
			minVec = simd.Min(minVec, v)
			maxVec = simd.Max(maxVec, v)
		}
		mn = float64(simd.ReduceMin(minVec))
		mx = float64(simd.ReduceMax(maxVec))
	} else {
		mn = math.Inf(1)
		mx = math.Inf(-1)
	}
	for ; i < len(group); i++ {
		v := float64(group[i])
		mn = min(mn, v)
		mx = max(mx, v)
	}
	return mn, mx
}
