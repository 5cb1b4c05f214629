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
	"github.com/jamesemmott/mlx/simd"
	"github.com/jamesemmott/mlx/tensor"
)

// GatherMatMul is the indexed variant of MatMul for mixture-of-experts
// style routing. Instead of pairing batch slices positionally, each output
// slice i pairs the activation slice named by lhsIndices element i with the
// weight slice named by rhsIndices element i. The index tensors share a
// shape and may be strided; the number of output slices equals their size.
//
// x is viewed as a stack of M x K activation slices and w, scales, biases
// as stacks addressed by their trailing two dimensions, exactly as in
// MatMul. Out-of-range indices are not checked and will panic on access.
func GatherMatMul[T simd.Floats](out, x tensor.Tensor[T], w tensor.Tensor[byte], scales, biases tensor.Tensor[T], lhsIndices, rhsIndices tensor.Tensor[uint32], bits, groupSize int, transposed bool) error {
	if err := checkConfig(bits, groupSize); err != nil {
		return err
	}

	K := x.Dim(-1)
	M := 1
	if x.Ndim() > 1 {
		M = x.Dim(-2)
	}
	N := out.Dim(-1)

	xEls := M * K
	wEls := w.Dim(-1) * w.Dim(-2)
	gEls := scales.Dim(-1) * scales.Dim(-2)

	for i := range lhsIndices.Size() {
		xIdx := int(lhsIndices.Data[tensor.ElemToLoc(i, lhsIndices.Shape, lhsIndices.Strides)])
		wIdx := int(rhsIndices.Data[tensor.ElemToLoc(i, rhsIndices.Shape, rhsIndices.Strides)])
		matMulSlice(
			out.Data[i*M*N:],
			x.Data[tensor.ElemToLoc(xIdx*xEls, x.Shape, x.Strides):],
			w.Data[tensor.ElemToLoc(wIdx*wEls, w.Shape, w.Strides):],
			scales.Data[tensor.ElemToLoc(wIdx*gEls, scales.Shape, scales.Strides):],
			biases.Data[tensor.ElemToLoc(wIdx*gEls, biases.Shape, biases.Strides):],
			M, N, K, bits, groupSize, transposed)
	}
	return nil
}
