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

// Package tensor provides strided views over flat buffers, together with
// the stride arithmetic the quantized kernels need to walk batch
// dimensions: mapping a flat row-major index into a strided offset,
// row-major stride construction, and contiguity checks.
//
// A Tensor never owns its buffer; it only describes how to address it.
package tensor

// Tensor couples a flat buffer with a logical shape and per-dimension
// strides, both expressed in elements.
type Tensor[T any] struct {
	Data    []T
	Shape   []int
	Strides []int
}

// New returns a row-major contiguous view over data with the given shape.
func New[T any](data []T, shape ...int) Tensor[T] {
	return Tensor[T]{Data: data, Shape: shape, Strides: RowMajorStrides(shape)}
}

// Ndim returns the number of dimensions.
func (t Tensor[T]) Ndim() int {
	return len(t.Shape)
}

// Size returns the total number of logical elements.
func (t Tensor[T]) Size() int {
	return Size(t.Shape)
}

// Dim returns the extent of dimension i. Negative indices count from the
// trailing dimension, so Dim(-1) is the last axis.
func (t Tensor[T]) Dim(i int) int {
	if i < 0 {
		i += len(t.Shape)
	}
	return t.Shape[i]
}

// Stride returns the stride of dimension i, with negative indexing as in Dim.
func (t Tensor[T]) Stride(i int) int {
	if i < 0 {
		i += len(t.Strides)
	}
	return t.Strides[i]
}

// IsRowContiguous reports whether the view walks its buffer in dense
// row-major order.
func (t Tensor[T]) IsRowContiguous() bool {
	return IsRowContiguous(t.Shape, t.Strides)
}

// Contiguous returns a row-major contiguous view with the same logical
// contents. If the view is already contiguous it is returned unchanged;
// otherwise the elements are gathered into a freshly allocated buffer.
// This is the copy-to-temporary step callers perform before handing
// buffers to the kernels.
func (t Tensor[T]) Contiguous() Tensor[T] {
	if t.IsRowContiguous() {
		return t
	}
	n := t.Size()
	data := make([]T, n)
	for i := range n {
		data[i] = t.Data[ElemToLoc(i, t.Shape, t.Strides)]
	}
	return New(data, t.Shape...)
}

// Size returns the number of elements implied by shape.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// RowMajorStrides returns dense row-major strides for shape.
func RowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// IsRowContiguous reports whether shape/strides describe a dense row-major
// layout. Dimensions of extent 1 match any stride.
func IsRowContiguous(shape, strides []int) bool {
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] != 1 && strides[i] != acc {
			return false
		}
		acc *= shape[i]
	}
	return true
}

// ElemToLoc maps a flat row-major element index to the offset of that
// element in a strided buffer.
func ElemToLoc(elem int, shape, strides []int) int {
	loc := 0
	for i := len(shape) - 1; i >= 0; i-- {
		q, r := elem/shape[i], elem%shape[i]
		loc += r * strides[i]
		elem = q
	}
	return loc
}
