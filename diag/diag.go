// Package diag is the station's write-only diagnostic stream. It carries a
// tiny allocation-aware formatter so MCU builds do not pull in fmt; output
// defaults to the runtime console (println) and platform bootstrap may point
// it at a UART writer instead.
//
// Supported verbs: %s %d %x %t %f %%. %f prints two fixed fraction digits.
package diag

import (
	"io"

	"weatherstation-go/x/conv"
)

var output io.Writer

// SetOutput routes the stream to w. nil restores the console fallback.
func SetOutput(w io.Writer) { output = w }

// Logf writes one formatted diagnostic line.
func Logf(format string, args ...any) {
	b := make([]byte, 0, 128)
	b = appendf(b, format, args...)
	if output == nil {
		println(string(b))
		return
	}
	b = append(b, '\n')
	output.Write(b)
}

func appendf(b []byte, format string, args ...any) []byte {
	ai := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b = append(b, c)
			continue
		}
		i++
		if i >= len(format) {
			break
		}
		verb := format[i]
		if verb == '%' {
			b = append(b, '%')
			continue
		}
		if ai >= len(args) {
			b = append(b, '%', verb)
			continue
		}
		b = appendArg(b, verb, args[ai])
		ai++
	}
	return b
}

func appendArg(b []byte, verb byte, arg any) []byte {
	var tmp [20]byte
	switch verb {
	case 's':
		switch v := arg.(type) {
		case string:
			return append(b, v...)
		case []byte:
			return append(b, v...)
		case error:
			return append(b, v.Error()...)
		case interface{ String() string }:
			return append(b, v.String()...)
		}
	case 'd':
		if n, ok := toInt64(arg); ok {
			return append(b, conv.Itoa(tmp[:], n)...)
		}
	case 'x':
		switch v := arg.(type) {
		case []byte:
			hx := make([]byte, 2*len(v))
			return append(b, conv.BytesHex(hx, v)...)
		case byte:
			return append(b, conv.ByteHex(tmp[:2], v)...)
		}
	case 't':
		if v, ok := arg.(bool); ok {
			if v {
				return append(b, "true"...)
			}
			return append(b, "false"...)
		}
	case 'f':
		switch v := arg.(type) {
		case float32:
			return append(b, conv.Fixed2(tmp[:16], v)...)
		case float64:
			return append(b, conv.Fixed2(tmp[:16], float32(v))...)
		}
	}
	return append(b, "<unk>"...)
}

func toInt64(arg any) (int64, bool) {
	switch v := arg.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}
	return 0, false
}
