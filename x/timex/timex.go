package timex

import "time"

// Ms is a wrapping millisecond timestamp. All elapsed-time arithmetic on Ms
// values must go through Elapsed so that clock wraparound is harmless.
type Ms = uint32

// NowMs returns the current time as a wrapping millisecond counter.
func NowMs() Ms { return Ms(time.Now().UnixMilli()) }

// Elapsed returns the number of milliseconds from since to now. Unsigned
// subtraction keeps the result correct across counter wraparound, as long as
// the real interval is below ~49.7 days.
func Elapsed(now, since Ms) uint32 { return now - since }
