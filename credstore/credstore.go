// Package credstore recovers null-terminated configuration strings from a
// flat persistent byte store (on-board flash, EEPROM, or a file image).
//
// Layout: N strings in fixed order, each terminated by 0x00 and at most
// MaxStringLen bytes including the terminator, followed by a single Sentinel
// byte marking the end of the table. The store is read-only at runtime;
// writing it is a provisioning concern (see cmd/provision).
package credstore

import (
	"io"

	"weatherstation-go/errcode"
)

// Sentinel marks the end of the string table. 0xFF is the erased state of
// flash/EEPROM cells, so it can never legally start a provisioned string.
const Sentinel = 0xFF

// MaxStringLen bounds one stored string, terminator included.
const MaxStringLen = 64

// Fixed roles, in table order.
const (
	FieldNetworkID = iota
	FieldNetworkSecret
	FieldAccountID
	FieldAccountSecret

	numFields
)

// Credentials holds the four provisioning strings for the process lifetime.
type Credentials struct {
	NetworkID     string
	NetworkSecret string
	AccountID     string
	AccountSecret string
}

// Zero releases the credential strings. Call exactly once on teardown.
func (c *Credentials) Zero() { *c = Credentials{} }

// ReadString returns the string stored at the zero-based index, walking the
// table from base. It returns errcode.NotFound when the table ends (sentinel
// where a string must start) before the index is reached; a zero-length
// string is a valid, distinct result. The store is never mutated.
func ReadString(dev io.ReaderAt, base int64, index int) (string, error) {
	addr := base
	for skip := 0; skip < index; skip++ {
		n, err := stringLen(dev, addr)
		if err != nil {
			return "", err
		}
		addr += int64(n) + 1 // past the terminator
	}
	n, err := stringLen(dev, addr)
	if err != nil {
		return "", err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := dev.ReadAt(out, addr); err != nil {
			return "", err
		}
	}
	return string(out), nil
}

// stringLen returns the length (excluding terminator) of the string starting
// at addr, or errcode.NotFound if the table is exhausted there. The scan is
// capped at MaxStringLen so a corrupt store cannot run away.
func stringLen(dev io.ReaderAt, addr int64) (int, error) {
	var b [1]byte
	for n := 0; n < MaxStringLen; n++ {
		if _, err := dev.ReadAt(b[:], addr+int64(n)); err != nil {
			return 0, err
		}
		if n == 0 && b[0] == Sentinel {
			return 0, errcode.NotFound
		}
		if b[0] == 0 {
			return n, nil
		}
	}
	// No terminator within the cap; treat the capped run as the whole string.
	return MaxStringLen - 1, nil
}

// Load reads all four credential strings. Any missing string is a fatal
// provisioning error: the station cannot operate without them.
func Load(dev io.ReaderAt, base int64) (Credentials, error) {
	var c Credentials
	dst := [numFields]*string{
		FieldNetworkID:     &c.NetworkID,
		FieldNetworkSecret: &c.NetworkSecret,
		FieldAccountID:     &c.AccountID,
		FieldAccountSecret: &c.AccountSecret,
	}
	for i := 0; i < numFields; i++ {
		s, err := ReadString(dev, base, i)
		if err != nil {
			if errcode.Of(err) == errcode.NotFound {
				return Credentials{}, errcode.NotProvisioned
			}
			return Credentials{}, err
		}
		*dst[i] = s
	}
	return c, nil
}
