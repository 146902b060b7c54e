package errcode

// Code is a stable, diagnostic-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK       Code = "ok"
	NotFound Code = "not_found"

	// Provisioning / credentials
	NotProvisioned Code = "not_provisioned"

	// Wireless link
	LinkAuth Code = "link_auth"

	// Sensor
	SensorTimeout  Code = "sensor_timeout"
	SensorChecksum Code = "sensor_checksum"

	// Payload building
	Overflow Code = "overflow"

	// Upload transport
	ConnectFailed Code = "connect_failed"
	PinMismatch   Code = "pin_mismatch"

	Timeout Code = "timeout"
	Error   Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
