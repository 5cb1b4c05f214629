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
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

func TestPackFactor(t *testing.T) {
	tests := []struct {
		bits, wsize, want int
	}{
		{2, 32, 16},
		{3, 32, 8},
		{4, 32, 8},
		{5, 32, 8},
		{6, 32, 4},
		{8, 32, 4},
		{2, 8, 4},
		{3, 8, 8},
		{4, 8, 2},
		{5, 8, 8},
		{6, 8, 4},
		{8, 8, 1},
	}
	for _, tt := range tests {
		if got := PackFactor(tt.bits, tt.wsize); got != tt.want {
			t.Errorf("PackFactor(%d, %d) = %d, want %d", tt.bits, tt.wsize, got, tt.want)
		}
	}
}

func TestBytesPerPack(t *testing.T) {
	tests := []struct {
		bits, want int
	}{
		{2, 1},
		{3, 3},
		{4, 1},
		{5, 5},
		{6, 3},
		{8, 1},
	}
	for _, tt := range tests {
		if got := BytesPerPack(tt.bits); got != tt.want {
			t.Errorf("BytesPerPack(%d) = %d, want %d", tt.bits, got, tt.want)
		}
	}
}

// TestPackLayout pins the exact byte layout: codes fill each word from the
// low bits up and words are stored little-endian.
func TestPackLayout(t *testing.T) {
	tests := []struct {
		name  string
		bits  int
		codes []uint8
		want  []byte
	}{
		{
			name:  "2bit",
			bits:  2,
			codes: []uint8{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3},
			want:  []byte{0xE4, 0xE4, 0xE4, 0xE4},
		},
		{
			name:  "3bit",
			bits:  3,
			codes: []uint8{1, 2, 3, 4, 5, 6, 7, 0},
			want:  []byte{0xD1, 0x58, 0x1F},
		},
		{
			name:  "4bit",
			bits:  4,
			codes: []uint8{1, 2, 3, 4, 5, 6, 7, 8},
			want:  []byte{0x21, 0x43, 0x65, 0x87},
		},
		{
			name:  "5bit",
			bits:  5,
			codes: []uint8{1, 2, 3, 4, 5, 6, 7, 8},
			want:  []byte{0x41, 0x0C, 0x52, 0xCC, 0x41},
		},
		{
			name:  "6bit",
			bits:  6,
			codes: []uint8{1, 2, 3, 63},
			want:  []byte{0x81, 0x30, 0xFC},
		},
		{
			name:  "8bit",
			bits:  8,
			codes: []uint8{1, 2, 3, 4},
			want:  []byte{0x01, 0x02, 0x03, 0x04},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, len(tt.want))
			Pack(tt.bits, tt.codes, dst)
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("Pack(%d, %v) = %x, want %x", tt.bits, tt.codes, dst, tt.want)
			}
		})
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, bits := range []int{2, 3, 4, 5, 6, 8} {
		t.Run(bitsName(bits), func(t *testing.T) {
			const n = 256
			codes := make([]uint8, n)
			maxCode := uint8(1)<<bits - 1
			for i := range codes {
				codes[i] = uint8(rng.Intn(int(maxCode) + 1))
			}

			packed := make([]byte, n*bits/8)
			Pack(bits, codes, packed)

			got := make([]uint8, n)
			Unpack(bits, packed, got)
			for i := range codes {
				if got[i] != codes[i] {
					t.Fatalf("code %d: got %d, want %d", i, got[i], codes[i])
				}
			}
		})
	}
}

// TestUnpackTyped checks that the float-typed codec decodes the same codes
// the byte codec does.
func TestUnpackTyped(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, bits := range []int{2, 3, 4, 5, 6, 8} {
		c8 := codecFor[uint8](bits)
		c32 := codecFor[float32](bits)
		if c8.packFactor != c32.packFactor || c8.bytesPerPack != c32.bytesPerPack {
			t.Fatalf("bits=%d: codec geometry differs between element types", bits)
		}

		codes := make([]uint8, c8.packFactor)
		for i := range codes {
			codes[i] = uint8(rng.Intn(1 << bits))
		}
		packed := make([]byte, c8.bytesPerPack)
		Pack(bits, codes, packed)

		out := make([]float32, c32.packFactor)
		c32.unpack(packed, out)
		for i := range codes {
			if out[i] != float32(codes[i]) {
				t.Errorf("bits=%d code %d: got %v, want %d", bits, i, out[i], codes[i])
			}
		}
	}
}

func bitsName(bits int) string {
	return fmt.Sprintf("%dbit", bits)
}
