package conv

const hexd = "0123456789ABCDEF"

// ByteHex writes the two uppercase hex digits of b, high nibble first.
// buf must be length >= 2.
func ByteHex(buf []byte, b byte) []byte {
	if len(buf) < 2 {
		return buf[:0]
	}
	buf[0] = hexd[b>>4]
	buf[1] = hexd[b&0xF]
	return buf[:2]
}

// BytesHex writes lowercase-insensitive (uppercase) hex of src into buf and
// returns the used slice. buf must be length >= 2*len(src).
func BytesHex(buf, src []byte) []byte {
	if len(buf) < 2*len(src) {
		return buf[:0]
	}
	for i, b := range src {
		buf[2*i] = hexd[b>>4]
		buf[2*i+1] = hexd[b&0xF]
	}
	return buf[:2*len(src)]
}
