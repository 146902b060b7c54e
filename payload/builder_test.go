package payload

import (
	"strings"
	"testing"

	"weatherstation-go/errcode"
)

// decode undoes Escaped. Kept in tests only; the firmware never decodes.
func decode(t *testing.T, s string) string {
	t.Helper()
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= len(s) {
			t.Fatalf("dangling escape in %q", s)
		}
		hi := hexVal(t, s[i+1])
		lo := hexVal(t, s[i+2])
		out = append(out, hi<<4|lo)
		i += 2
	}
	return string(out)
}

func hexVal(t *testing.T, c byte) byte {
	t.Helper()
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	t.Fatalf("escape digit %q is not uppercase hex", c)
	return 0
}

func escape(t *testing.T, s string) string {
	t.Helper()
	buf := make([]byte, 3*len(s)+1)
	b := NewBuilder(buf)
	b.Escaped(s)
	if b.Err() != nil {
		t.Fatalf("Escaped(%q) error: %v", s, b.Err())
	}
	return string(b.Bytes())
}

func TestEscapedIdentityOnAlnum(t *testing.T) {
	for _, s := range []string{
		"",
		"abcXYZ019",
		"KCOLO123",
	} {
		if got := escape(t, s); got != s {
			t.Fatalf("Escaped(%q) = %q, want identity", s, got)
		}
	}
}

func TestEscapedKnownBytes(t *testing.T) {
	type C struct {
		in, want string
	}
	for _, c := range []C{
		{" ", "%20"},
		{"a b", "a%20b"},
		{"p@ss/word!", "p%40ss%2Fword%21"},
		{"\x00", "%00"},
		{"\xff", "%FF"},
		{"100%", "100%25"},
	} {
		if got := escape(t, c.in); got != c.want {
			t.Fatalf("Escaped(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEscapedRoundTripAllBytes(t *testing.T) {
	var all [256]byte
	for i := range all {
		all[i] = byte(i)
	}
	in := string(all[:])
	enc := escape(t, in)
	// Output alphabet is alnum plus %XX triplets only; hexVal rejects
	// anything that is not an uppercase hex digit.
	if got := decode(t, enc); got != in {
		t.Fatalf("decode(escape(all bytes)) mismatch")
	}
	for i := 0; i < len(enc); i++ {
		c := enc[i]
		if !isAlnum(c) && c != '%' {
			t.Fatalf("encoded output contains raw byte %q", c)
		}
	}
}

func TestBuilderOverflowSticky(t *testing.T) {
	b := NewBuilder(make([]byte, 4))
	b.Raw("abcd")
	if b.Err() != nil {
		t.Fatalf("exact fit errored: %v", b.Err())
	}
	b.Raw("e")
	if errcode.Of(b.Err()) != errcode.Overflow {
		t.Fatalf("overflow: err = %v, want overflow", b.Err())
	}
	// Sticky: later appends keep the error and never write.
	b.Raw("f")
	if errcode.Of(b.Err()) != errcode.Overflow {
		t.Fatalf("sticky overflow lost: %v", b.Err())
	}
	if string(b.Bytes()[:4]) != "abcd" {
		t.Fatalf("buffer corrupted after overflow: %q", b.Bytes())
	}

	b.Reset()
	if b.Err() != nil || b.Len() != 0 {
		t.Fatalf("Reset did not clear builder")
	}
}

func TestEscapedOverflowMidTriplet(t *testing.T) {
	b := NewBuilder(make([]byte, 2))
	b.Escaped(" ")
	if errcode.Of(b.Err()) != errcode.Overflow {
		t.Fatalf("triplet past capacity: err = %v", b.Err())
	}
}

func TestWriteReportBody(t *testing.T) {
	b := NewBuilder(make([]byte, 256))
	WriteReport(b, "KCOLO1", "p@ss word", 72.5, 45.0, 52.7)
	if b.Err() != nil {
		t.Fatalf("WriteReport error: %v", b.Err())
	}
	got := string(b.Bytes())

	want := "ID=KCOLO1&PASSWORD=p%40ss%20word&action=updateraw&dateutc=now" +
		"&tempf=72.50&humidity=45.00&dewptf=52.70"
	if got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
	// The measurement fields must appear in this relative order.
	ti := strings.Index(got, "tempf=72.50")
	hi := strings.Index(got, "humidity=45.00")
	di := strings.Index(got, "dewptf=52.70")
	if ti < 0 || hi < ti || di < hi {
		t.Fatalf("field order wrong in %q", got)
	}
}

func TestWriteReportFitsWorstCase(t *testing.T) {
	const maxCred = 63
	buf := make([]byte, WorstCaseLen(maxCred))
	// Deterministic pseudo-random credentials across lengths, worst-case
	// bytes included (everything escapes except alnum).
	seed := uint32(0x1234567)
	next := func() byte {
		seed = seed*1664525 + 1013904223
		return byte(seed >> 24)
	}
	for n := 0; n <= maxCred; n++ {
		id := make([]byte, n)
		pw := make([]byte, n)
		for i := 0; i < n; i++ {
			id[i] = next()
			pw[i] = next()
		}
		b := NewBuilder(buf)
		WriteReport(b, string(id), string(pw), -999.99, 100, -999.99)
		if b.Err() != nil {
			t.Fatalf("len %d: WriteReport overflowed sized buffer: %v", n, b.Err())
		}
	}
}
