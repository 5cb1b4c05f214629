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

// Command quantcheck quantizes a random weight matrix and reports the
// round-trip error and the deviation of the fused quantized matmul from a
// plain float matmul. Useful for eyeballing the accuracy of a bit width
// and group size combination before committing a model to it.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/jamesemmott/mlx/encoder"
	"github.com/jamesemmott/mlx/quantized"
	"github.com/jamesemmott/mlx/simd"
	"github.com/jamesemmott/mlx/tensor"
)

func main() {
	bitsFlag := flag.Int("bits", 4, "Bits per weight (2, 3, 4, 5, 6 or 8)")
	groupFlag := flag.Int("group", 64, "Quantization group size (32, 64 or 128)")
	rowsFlag := flag.Int("rows", 256, "Weight rows (output features)")
	colsFlag := flag.Int("cols", 256, "Weight columns (input features)")
	seed := flag.Int64("seed", 1, "Random seed for weights and input")
	flag.Parse()

	bits, groupSize := *bitsFlag, *groupFlag
	rows, cols := *rowsFlag, *colsFlag

	if cols%groupSize != 0 {
		fmt.Fprintln(os.Stderr, "usage: quantcheck [--bits N] [--group N] [--rows N] [--cols N] [--seed N]")
		fmt.Fprintf(os.Stderr, "cols (%d) must be a multiple of group (%d)\n", cols, groupSize)
		os.Exit(2)
	}

	rng := rand.New(rand.NewSource(*seed))
	n := rows * cols
	w := make([]float32, n)
	for i := range w {
		w[i] = float32(rng.NormFloat64())
	}

	packed := make([]byte, n*bits/8)
	scales := make([]float32, n/groupSize)
	biases := make([]float32, n/groupSize)
	if err := quantized.Quantize(w, packed, scales, biases, bits, groupSize); err != nil {
		log.Fatalf("quantize: %v", err)
	}

	deq := make([]float32, n)
	if err := quantized.Dequantize(packed, scales, biases, deq, bits, groupSize); err != nil {
		log.Fatalf("dequantize: %v", err)
	}

	var maxErr, sumSq float64
	for i := range w {
		d := float64(w[i] - deq[i])
		maxErr = math.Max(maxErr, math.Abs(d))
		sumSq += d * d
	}
	rmse := math.Sqrt(sumSq / float64(n))

	x := make([]float32, cols)
	for i := range x {
		x[i] = float32(rng.NormFloat64())
	}
	fused := make([]float32, rows)
	enc := encoder.New()
	defer enc.Close()
	var matErr error
	enc.Dispatch(func() {
		matErr = quantized.MatMul(
			tensor.New(fused, rows),
			tensor.New(x, cols),
			tensor.New(packed, rows, cols*bits/8),
			tensor.New(scales, rows, cols/groupSize),
			tensor.New(biases, rows, cols/groupSize),
			bits, groupSize, true)
	})
	enc.Synchronize()
	if matErr != nil {
		log.Fatalf("matmul: %v", matErr)
	}

	var maxDeltaT float64
	for r := 0; r < rows; r++ {
		var sum float64
		for c := 0; c < cols; c++ {
			sum += float64(deq[r*cols+c]) * float64(x[c])
		}
		maxDeltaT = math.Max(maxDeltaT, math.Abs(float64(fused[r])-sum))
	}

	// Forward pass reads the same buffer as rows x cols with groups along
	// the columns, so the input vector runs over the rows.
	xf := make([]float32, rows)
	for i := range xf {
		xf[i] = float32(rng.NormFloat64())
	}
	forward := make([]float32, cols)
	err := quantized.MatMul(
		tensor.New(forward, cols),
		tensor.New(xf, rows),
		tensor.New(packed, rows, cols*bits/8),
		tensor.New(scales, rows, cols/groupSize),
		tensor.New(biases, rows, cols/groupSize),
		bits, groupSize, false)
	if err != nil {
		log.Fatalf("matmul forward: %v", err)
	}

	var maxDeltaF float64
	for c := 0; c < cols; c++ {
		var sum float64
		for r := 0; r < rows; r++ {
			sum += float64(xf[r]) * float64(deq[r*cols+c])
		}
		maxDeltaF = math.Max(maxDeltaF, math.Abs(float64(forward[c])-sum))
	}

	fmt.Printf("bits=%d group=%d dims=%dx%d seed=%d simd=%s lanes=%d\n",
		bits, groupSize, rows, cols, *seed, simd.CurrentLevel(), simd.MaxLanes[float32]())
	fmt.Printf("round-trip: rmse=%g max=%g (%d groups)\n", rmse, maxErr, n/groupSize)
	fmt.Printf("transposed: max |fused - reference| = %g\n", maxDeltaT)
	fmt.Printf("forward:    max |fused - reference| = %g\n", maxDeltaF)
}
