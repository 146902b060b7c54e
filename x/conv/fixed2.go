package conv

import "math"

// maxCenti bounds the scaled value so the int64 conversion below is always
// defined. Anything larger has no sensible two-fraction-digit rendering.
const maxCenti = 1 << 62

// Fixed2 writes f with exactly two fractional digits into buf and returns the
// used slice. The value is truncated toward zero after scaling by 100, never
// rounded; the fraction is always zero-padded to two digits ("0" -> "0.00").
// Negative values get a leading '-'. NaN renders as "NaN" and infinities as
// "Inf"/"-Inf". buf should be length >= 16; values whose rendering does not
// fit return the empty slice.
func Fixed2(buf []byte, f float32) []byte {
	if len(buf) < 16 {
		return buf[:0]
	}
	m := float64(f)
	if math.IsNaN(m) {
		return append(buf[:0], "NaN"...)
	}
	neg := f < 0
	if neg {
		m = -m
	}
	if math.IsInf(m, 0) {
		if neg {
			return append(buf[:0], "-Inf"...)
		}
		return append(buf[:0], "Inf"...)
	}
	if m*100 >= maxCenti {
		return buf[:0]
	}
	centi := int64(m * 100) // truncation toward zero
	ip := centi / 100
	fr := centi % 100

	i := 0
	if neg {
		buf[i] = '-'
		i++
	}
	var tmp [20]byte
	d := Itoa(tmp[:], ip)
	if i+len(d)+3 > len(buf) {
		return buf[:0]
	}
	i += copy(buf[i:], d)
	buf[i] = '.'
	i++
	buf[i] = byte('0' + fr/10)
	buf[i+1] = byte('0' + fr%10)
	return buf[:i+2]
}
