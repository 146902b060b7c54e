package conv

// Itoa writes the base-10 form of n into the tail of buf and returns the used
// slice. buf should be length >= 20 for the full int64 range; if the digits
// do not fit the empty slice is returned. No allocations, no fmt/strconv.
func Itoa(buf []byte, n int64) []byte {
	u := uint64(n)
	if n < 0 {
		u = -u // two's complement; correct for MinInt64 as well
	}
	i := len(buf)
	for {
		if i == 0 {
			return buf[:0]
		}
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	if n < 0 {
		if i == 0 {
			return buf[:0]
		}
		i--
		buf[i] = '-'
	}
	return buf[i:]
}
