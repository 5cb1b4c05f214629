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

package tensor

import "testing"

func TestRowMajorStrides(t *testing.T) {
	tests := []struct {
		shape []int
		want  []int
	}{
		{[]int{4}, []int{1}},
		{[]int{2, 3}, []int{3, 1}},
		{[]int{2, 3, 4}, []int{12, 4, 1}},
		{[]int{}, []int{}},
	}
	for _, tt := range tests {
		got := RowMajorStrides(tt.shape)
		if len(got) != len(tt.want) {
			t.Fatalf("shape %v: got %v, want %v", tt.shape, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("shape %v: got %v, want %v", tt.shape, got, tt.want)
				break
			}
		}
	}
}

func TestElemToLocContiguous(t *testing.T) {
	// On a contiguous layout ElemToLoc must be the identity.
	shape := []int{3, 4, 5}
	strides := RowMajorStrides(shape)
	for i := range Size(shape) {
		if got := ElemToLoc(i, shape, strides); got != i {
			t.Fatalf("ElemToLoc(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestElemToLocStrided(t *testing.T) {
	// A transposed 3x4 view of a 4x3 buffer: shape [3,4], strides [1,3].
	shape := []int{3, 4}
	strides := []int{1, 3}
	for r := range 3 {
		for c := range 4 {
			flat := r*4 + c
			want := c*3 + r
			if got := ElemToLoc(flat, shape, strides); got != want {
				t.Errorf("ElemToLoc(%d) = %d, want %d", flat, got, want)
			}
		}
	}
}

func TestIsRowContiguous(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int
		strides []int
		want    bool
	}{
		{"dense 2d", []int{2, 3}, []int{3, 1}, true},
		{"transposed", []int{3, 2}, []int{1, 3}, false},
		{"unit dim any stride", []int{1, 4}, []int{99, 1}, true},
		{"broadcast stride", []int{2, 3}, []int{0, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRowContiguous(tt.shape, tt.strides); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContiguousCopies(t *testing.T) {
	// Buffer laid out column-major; Contiguous must gather row-major.
	data := []float32{
		0, 3,
		1, 4,
		2, 5,
	}
	view := Tensor[float32]{Data: data, Shape: []int{2, 3}, Strides: []int{1, 2}}
	if view.IsRowContiguous() {
		t.Fatal("view should not be contiguous")
	}

	dense := view.Contiguous()
	want := []float32{0, 1, 2, 3, 4, 5}
	for i := range want {
		if dense.Data[i] != want[i] {
			t.Errorf("element %d: got %f, want %f", i, dense.Data[i], want[i])
		}
	}
	if !dense.IsRowContiguous() {
		t.Error("result of Contiguous is not contiguous")
	}

	// Already-contiguous views are returned as-is, no copy.
	same := dense.Contiguous()
	if &same.Data[0] != &dense.Data[0] {
		t.Error("Contiguous copied an already-contiguous view")
	}
}

func TestDimNegativeIndex(t *testing.T) {
	v := New(make([]int, 24), 2, 3, 4)
	if v.Dim(-1) != 4 || v.Dim(-2) != 3 || v.Dim(0) != 2 {
		t.Errorf("Dim indexing wrong: %d %d %d", v.Dim(-1), v.Dim(-2), v.Dim(0))
	}
	if v.Stride(-1) != 1 || v.Stride(-2) != 4 {
		t.Errorf("Stride indexing wrong: %d %d", v.Stride(-1), v.Stride(-2))
	}
	if v.Size() != 24 || v.Ndim() != 3 {
		t.Errorf("Size/Ndim wrong: %d %d", v.Size(), v.Ndim())
	}
}
