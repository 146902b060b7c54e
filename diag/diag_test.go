package diag

import (
	"bytes"
	"testing"
)

type stringer struct{}

func (stringer) String() string { return "stringy" }

func TestLogfVerbs(t *testing.T) {
	type C struct {
		format string
		args   []any
		want   string
	}
	for _, c := range []C{
		{"plain", nil, "plain\n"},
		{"state %s -> %s", []any{"awaiting_link", "ready"}, "state awaiting_link -> ready\n"},
		{"t=%f h=%f", []any{float32(22.5), float32(45.0)}, "t=22.50 h=45.00\n"},
		{"interval %d ms", []any{300000}, "interval 300000 ms\n"},
		{"wrap %d", []any{uint32(4294967295)}, "wrap 4294967295\n"},
		{"ok=%t", []any{false}, "ok=false\n"},
		{"pin %x", []any{[]byte{0xBE, 0xEF}}, "pin BEEF\n"},
		{"state %s", []any{stringer{}}, "state stringy\n"},
		{"100%%", nil, "100%\n"},
		{"bad %d", []any{"nope"}, "bad <unk>\n"},
	} {
		var out bytes.Buffer
		SetOutput(&out)
		Logf(c.format, c.args...)
		SetOutput(nil)
		if out.String() != c.want {
			t.Fatalf("Logf(%q) = %q, want %q", c.format, out.String(), c.want)
		}
	}
}
