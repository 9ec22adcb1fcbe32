package similarity

import "math"

// Norm bytes are 8-bit floats cut out of the IEEE-754 single precision
// layout. A byte b > 0 decodes to the float32 with bit pattern
// (b + 384) << 21: six exponent bits covering 2^-31 through 2^32 and two
// explicit mantissa bits (three significant bits with the implicit one).
// Byte 0 decodes to 0 and byte 124 decodes to exactly 1.
//
// This layout is the index's on-disk contract for norms. Changing it
// invalidates every persisted norm byte.
const (
	smallFloatMantissaBits = 3
	smallFloatZeroExp      = 15

	smallFloatShift = 24 - smallFloatMantissaBits
	smallFloatZero  = (63 - smallFloatZeroExp) << smallFloatMantissaBits
)

// SmallFloatEncoding names the norm byte layout in persisted snapshots.
const SmallFloatEncoding = "smallfloat315"

// EncodeSmallFloat quantizes f into a norm byte. Encoding truncates the
// float's low mantissa bits, so DecodeSmallFloat(EncodeSmallFloat(f)) <= f
// for every non-negative f. Values below the smallest representable
// magnitude, negatives and NaN encode to 0; values at or above the largest
// encode to 255.
func EncodeSmallFloat(f float32) byte {
	if math.IsNaN(float64(f)) || f <= 0 {
		return 0
	}
	small := int32(math.Float32bits(f)) >> smallFloatShift
	if small <= smallFloatZero {
		return 0
	}
	if small >= smallFloatZero+0x100 {
		return 255
	}
	return byte(small - smallFloatZero)
}

// DecodeSmallFloat expands a norm byte into its float value.
func DecodeSmallFloat(b byte) float32 {
	if b == 0 {
		return 0
	}
	bits := (uint32(b) + smallFloatZero) << smallFloatShift
	return math.Float32frombits(bits)
}

// newNormTable precomputes DecodeSmallFloat for all 256 bytes.
func newNormTable() [256]float32 {
	var table [256]float32
	for i := range table {
		table[i] = DecodeSmallFloat(byte(i))
	}
	return table
}
