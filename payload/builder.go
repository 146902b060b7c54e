// Package payload serializes field/value pairs into a URL-encoded form body
// inside a bounded buffer.
package payload

import (
	"weatherstation-go/errcode"
	"weatherstation-go/x/conv"
)

// Builder appends into a caller-supplied buffer and carries a sticky overflow
// error. The buffer's capacity is the hard bound: constrained targets size it
// once at boot and reuse it every cycle.
type Builder struct {
	buf []byte
	n   int
	err error
}

// NewBuilder wraps buf. len(buf) is the capacity; the builder never grows it.
func NewBuilder(buf []byte) *Builder {
	return &Builder{buf: buf}
}

// Reset empties the builder for the next cycle, clearing any sticky error.
func (b *Builder) Reset() {
	b.n = 0
	b.err = nil
}

// Err returns the sticky error, errcode.Overflow once any append did not fit.
func (b *Builder) Err() error { return b.err }

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return b.n }

// Bytes returns the built body. Valid only while Err() is nil.
func (b *Builder) Bytes() []byte { return b.buf[:b.n] }

func (b *Builder) writeByte(c byte) {
	if b.err != nil {
		return
	}
	if b.n >= len(b.buf) {
		b.err = errcode.Overflow
		return
	}
	b.buf[b.n] = c
	b.n++
}

// Raw appends s verbatim.
func (b *Builder) Raw(s string) {
	for i := 0; i < len(s); i++ {
		b.writeByte(s[i])
	}
}

// Escaped percent-encodes s: ASCII letters and digits pass through, every
// other byte value becomes '%' plus two uppercase hex digits, high nibble
// first. Worst case output is 3x the input length.
func (b *Builder) Escaped(s string) {
	var hx [2]byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) {
			b.writeByte(c)
			continue
		}
		b.writeByte('%')
		h := conv.ByteHex(hx[:], c)
		b.writeByte(h[0])
		b.writeByte(h[1])
	}
}

// Fixed2 appends v with exactly two fractional digits, truncated toward zero.
func (b *Builder) Fixed2(v float32) {
	var tmp [16]byte
	for _, c := range conv.Fixed2(tmp[:], v) {
		b.writeByte(c)
	}
}

func isAlnum(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
