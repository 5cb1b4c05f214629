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

import "encoding/binary"

// element covers the types codes are unpacked into: floats for the fused
// kernels, bytes for the codec round-trip surface.
type element interface {
	~float32 | ~float64 | ~uint8
}

func isPowerOfTwo(bits int) bool {
	return bits&(bits-1) == 0
}

// PackFactor returns the number of codes stored per wsize-bit word. The
// 3/5/6-bit layouts ignore wsize: they always pack 8, 8 and 4 codes per
// byte group respectively.
func PackFactor(bits, wsize int) int {
	switch bits {
	case 3, 5:
		return 8
	case 6:
		return 4
	}
	return wsize / bits
}

// BytesPerPack returns the byte span of one pack as consumed by the
// kernels: 1 byte for power-of-two widths, 5 bytes for 5-bit, 3 bytes for
// 3- and 6-bit.
func BytesPerPack(bits int) int {
	if isPowerOfTwo(bits) {
		return 1
	}
	if bits == 5 {
		return 5
	}
	return 3
}

// extractBits3 unpacks 8 3-bit codes from 3 bytes. Codes 2 and 5 straddle
// byte boundaries.
func extractBits3[T element](w []byte, out []T) {
	out[0] = T(w[0] & 0x7)
	out[1] = T((w[0] & 0x38) >> 3)
	out[2] = T(((w[0] & 0xc0) >> 6) + ((w[1] & 0x1) << 2))
	out[3] = T((w[1] & 0xe) >> 1)
	out[4] = T((w[1] & 0x70) >> 4)
	out[5] = T(((w[1] & 0x80) >> 7) + ((w[2] & 0x3) << 1))
	out[6] = T((w[2] & 0x1c) >> 2)
	out[7] = T((w[2] & 0xe0) >> 5)
}

// extractBits5 unpacks 8 5-bit codes from 5 bytes. Codes 1, 3, 4 and 6
// straddle byte boundaries.
func extractBits5[T element](w []byte, out []T) {
	out[0] = T(w[0] & 0x1f)
	out[1] = T(((w[0] & 0xe0) >> 5) + ((w[1] & 0x3) << 3))
	out[2] = T((w[1] & 0x7c) >> 2)
	out[3] = T(((w[1] & 0x80) >> 7) + ((w[2] & 0xf) << 1))
	out[4] = T(((w[2] & 0xf0) >> 4) + ((w[3] & 0x1) << 4))
	out[5] = T((w[3] & 0x3e) >> 1)
	out[6] = T(((w[3] & 0xc0) >> 6) + ((w[4] & 0x7) << 2))
	out[7] = T((w[4] & 0xf8) >> 3)
}

// extractBits6 unpacks 4 6-bit codes from 3 bytes. Codes 1 and 2 straddle
// byte boundaries.
func extractBits6[T element](w []byte, out []T) {
	out[0] = T(w[0] & 0x3f)
	out[1] = T(((w[0] >> 6) & 0x03) + ((w[1] & 0x0f) << 2))
	out[2] = T(((w[1] >> 4) & 0x0f) + ((w[2] & 0x03) << 4))
	out[3] = T((w[2] >> 2) & 0x3f)
}

func unpack2[T element](w []byte, out []T) {
	b := w[0]
	out[0] = T(b & 0x3)
	out[1] = T((b >> 2) & 0x3)
	out[2] = T((b >> 4) & 0x3)
	out[3] = T(b >> 6)
}

func unpack4[T element](w []byte, out []T) {
	b := w[0]
	out[0] = T(b & 0xf)
	out[1] = T(b >> 4)
}

func unpack8[T element](w []byte, out []T) {
	out[0] = T(w[0])
}

// codec bundles the per-bit-width unpack parameters used by the kernels'
// inner loops. A codec is selected once per kernel invocation, never per
// element.
type codec[T element] struct {
	packFactor   int // codes per pack
	bytesPerPack int // bytes consumed per pack
	unpack       func(w []byte, out []T)
}

// codecFor returns the codec for a supported bit width. The dispatch layer
// validates bits before any kernel runs.
func codecFor[T element](bits int) codec[T] {
	switch bits {
	case 2:
		return codec[T]{4, 1, unpack2[T]}
	case 3:
		return codec[T]{8, 3, extractBits3[T]}
	case 4:
		return codec[T]{2, 1, unpack4[T]}
	case 5:
		return codec[T]{8, 5, extractBits5[T]}
	case 6:
		return codec[T]{4, 3, extractBits6[T]}
	case 8:
		return codec[T]{1, 1, unpack8[T]}
	}
	panic("quantized: unsupported bit width")
}

// Pack bit-packs codes, each in [0, 2^bits-1], into dst. len(codes) must be
// a multiple of PackFactor(bits, 32) and dst must hold len(codes)*bits/8
// bytes. The layout is the byte-exact wire contract: little-endian 32-bit
// words for power-of-two widths, the fixed 3/5/6-bit byte groups otherwise.
func Pack(bits int, codes []uint8, dst []byte) {
	elPerWord := PackFactor(bits, 32)
	bytesPerWord := 4
	if !isPowerOfTwo(bits) {
		bytesPerWord = BytesPerPack(bits)
	}

	for j := 0; j*elPerWord < len(codes); j++ {
		var word uint64
		for k := range elPerWord {
			word |= uint64(codes[j*elPerWord+k]) << (k * bits)
		}
		out := dst[j*bytesPerWord:]
		if isPowerOfTwo(bits) {
			binary.LittleEndian.PutUint32(out, uint32(word))
		} else {
			out[0] = byte(word)
			out[1] = byte(word >> 8)
			out[2] = byte(word >> 16)
			if bits == 5 {
				out[3] = byte(word >> 24)
				out[4] = byte(word >> 32)
			}
		}
	}
}

// Unpack expands packed codes into dst, inverting Pack. len(dst) must be a
// multiple of PackFactor(bits, 32).
func Unpack(bits int, src []byte, dst []uint8) {
	c := codecFor[uint8](bits)
	for p := 0; p*c.packFactor < len(dst); p++ {
		c.unpack(src[p*c.bytesPerPack:], dst[p*c.packFactor:])
	}
}
