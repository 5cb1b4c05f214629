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

// Package simd provides the portable vector abstraction used by the
// quantized CPU kernels. Vectors carry a fixed number of lanes chosen from
// the host CPU's register width, so kernels written against this package
// pick up wider vectors on AVX-512 hardware without source changes.
//
// Basic usage:
//
//	a := simd.Load(data1)
//	b := simd.Load(data2)
//	simd.Store(simd.Add(a, b), output)
package simd

// Floats is a constraint for the floating-point element types the kernels
// operate on.
type Floats interface {
	~float32 | ~float64
}

// Vec is a portable vector of floating-point lanes.
//
// Vec instances should not be created directly; use Load, Set, or Zero.
type Vec[T Floats] struct {
	data []T
}

// NumLanes returns the number of lanes in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Data returns the underlying slice representation of the vector.
// Primarily for testing; not for performance-critical code.
func (v Vec[T]) Data() []T {
	return v.data
}
