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

// Package quantized implements sub-byte affine weight quantization and
// fused quantized matrix multiplication. Weight matrices are compressed
// into 2-8 bit codes with one (scale, bias) pair per contiguous group of
// values, and matmuls stream through the packed codes directly; the
// dequantized matrix is never materialized.
//
// # Data model
//
// Each group of groupSize source values (32, 64 or 128) shares an affine
// transform:
//
//	value ≈ code*scale + bias,  code in [0, 2^bits-1]
//
// Codes are bit-packed. Power-of-two widths (2/4/8) pack into little-endian
// 32-bit words; 3/5/6-bit codes pack into fixed byte groups (8 codes in 3
// bytes, 8 in 5, 4 in 3) with a byte-exact cross-boundary layout.
//
// # Core Functions
//
//   - Quantize packs a float buffer into codes plus per-group scales/biases.
//   - Dequantize reconstructs the affine approximation.
//   - MatMul computes x @ dequant(w) or x @ dequant(w)^T over batches of
//     2-D slices, fusing unpack, affine transform, and accumulation.
//   - GatherMatMul selects the activation and weight matrix per output
//     batch element through index arrays, for expert-routing workloads.
//
// # Example Usage
//
//	w := make([]float32, 128*128)
//	packed := make([]byte, len(w)*4/8)
//	scales := make([]float32, len(w)/64)
//	biases := make([]float32, len(w)/64)
//	if err := quantized.Quantize(w, packed, scales, biases, 4, 64); err != nil {
//		...
//	}
//
// Kernels run sequentially: one call is one unit of work for an external
// scheduler (see package encoder), and every input must be
// row-major contiguous in its trailing two dimensions before the call.
package quantized
