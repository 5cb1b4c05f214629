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
	"errors"
	"fmt"

	"github.com/jamesemmott/mlx/simd"
	"github.com/jamesemmott/mlx/tensor"
)

// ErrInvalidConfig is wrapped by every configuration error the package
// returns: unsupported bit width, unsupported group size, or buffers whose
// length does not divide into groups. It is always reported before any
// kernel touches a buffer.
var ErrInvalidConfig = errors.New("quantized: invalid configuration")

func checkConfig(bits, groupSize int) error {
	switch bits {
	case 2, 3, 4, 5, 6, 8:
	default:
		return fmt.Errorf("%w: bits must be 2, 3, 4, 5, 6 or 8, got %d", ErrInvalidConfig, bits)
	}
	switch groupSize {
	case 32, 64, 128:
	default:
		return fmt.Errorf("%w: group size must be 32, 64 or 128, got %d", ErrInvalidConfig, groupSize)
	}
	return nil
}

func errGroupAlignment(n, groupSize int) error {
	return fmt.Errorf("%w: buffer length %d is not a multiple of group size %d", ErrInvalidConfig, n, groupSize)
}

// matMulSlice runs one 2-D quantized matmul, picking the kernel once: the
// forward kernel for row-major w, and for transposed w the vectorized
// kernel whenever the lane count lines up with the per-word code count.
func matMulSlice[T simd.Floats](result, x []T, w []byte, scales, biases []T, M, N, K, bits, groupSize int, transposed bool) {
	if !transposed {
		qmm(result, x, w, scales, biases, M, N, K, bits, groupSize)
		return
	}
	if canUseSIMD[T](bits) {
		qmmTSIMD(result, x, w, scales, biases, M, N, K, bits, groupSize)
	} else {
		qmmT(result, x, w, scales, biases, M, N, K, bits, groupSize)
	}
}

// MatMul computes out = x @ dequant(w), or x @ dequant(w)^T when
// transposed, iterating any leading batch dimensions.
//
// Shapes follow the trailing dimensions: K = x.Dim(-1), M = x.Dim(-2) (1
// for a vector), N = out.Dim(-1). w holds packed codes as bytes, its last
// dimension measured in bytes; scales and biases hold one entry per group,
// group-major within each weight row. The trailing two dimensions of every
// input must be row-major contiguous (use tensor.Contiguous beforehand);
// leading batch dimensions may be arbitrarily strided or broadcast and are
// resolved through tensor.ElemToLoc. The output is dense row-major.
func MatMul[T simd.Floats](out, x tensor.Tensor[T], w tensor.Tensor[byte], scales, biases tensor.Tensor[T], bits, groupSize int, transposed bool) error {
	if err := checkConfig(bits, groupSize); err != nil {
		return err
	}

	K := x.Dim(-1)
	M := 1
	if x.Ndim() > 1 {
		M = x.Dim(-2)
	}
	N := out.Dim(-1)

	wEls, gEls := 0, 0
	if w.Ndim() > 2 {
		wEls = w.Dim(-1) * w.Dim(-2)
	}
	if scales.Ndim() > 2 {
		gEls = scales.Dim(-1) * scales.Dim(-2)
	}

	batchSize := x.Size() / (K * M)
	for i := range batchSize {
		matMulSlice(
			out.Data[i*M*N:],
			x.Data[tensor.ElemToLoc(i*M*K, x.Shape, x.Strides):],
			w.Data[tensor.ElemToLoc(i*wEls, w.Shape, w.Strides):],
			scales.Data[tensor.ElemToLoc(i*gEls, scales.Shape, scales.Strides):],
			biases.Data[tensor.ElemToLoc(i*gEls, biases.Shape, biases.Strides):],
			M, N, K, bits, groupSize, transposed)
	}
	return nil
}
