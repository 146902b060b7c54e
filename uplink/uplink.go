// Package uplink posts a built report body to the remote weather endpoint
// over an encrypted, fingerprint-pinned connection.
package uplink

import (
	"io"

	"weatherstation-go/diag"
	"weatherstation-go/errcode"
	"weatherstation-go/x/conv"
	"weatherstation-go/x/timex"
)

// Conn is the narrow transport surface the uploader consumes. Read must not
// block indefinitely: implementations return (0, nil) after a short internal
// poll interval so the drain loop can enforce its own deadline, and io.EOF
// once the peer has closed.
type Conn interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
}

// Dialer opens a pinned encrypted connection. fingerprint is the expected
// hex SHA-256 of the peer's leaf certificate; implementations must fail the
// dial when it does not match.
type Dialer interface {
	Dial(host string, port uint16, fingerprint string) (Conn, error)
}

// Options fixes the endpoint for an Uploader.
type Options struct {
	Host        string
	Path        string
	Port        uint16
	Fingerprint string
	UserAgent   string
	// DrainTimeoutMs bounds the response-drain loop so a stalled server
	// cannot stall the station's cycle. 0 means 10 s.
	DrainTimeoutMs uint32
	// Clock defaults to timex.NowMs.
	Clock func() timex.Ms
}

// Uploader writes one report per call over a fresh connection.
type Uploader struct {
	dialer Dialer
	opt    Options
}

func New(dialer Dialer, opt Options) *Uploader {
	if opt.DrainTimeoutMs == 0 {
		opt.DrainTimeoutMs = 10_000
	}
	if opt.Clock == nil {
		opt.Clock = timex.NowMs
	}
	return &Uploader{dialer: dialer, opt: opt}
}

// Upload posts body and drains the response until the peer closes or the
// drain deadline passes. A completed round trip is success even when the
// server rejected the data at the application level; this layer does not
// parse the response.
func (u *Uploader) Upload(body []byte) error {
	c, err := u.dialer.Dial(u.opt.Host, u.opt.Port, u.opt.Fingerprint)
	if err != nil {
		diag.Logf("uplink: connect to %s failed: %s", u.opt.Host, err)
		if errcode.Of(err) == errcode.PinMismatch {
			return err
		}
		return &errcode.E{C: errcode.ConnectFailed, Op: "uplink.dial", Err: err}
	}
	defer c.Close()

	req := u.request(body)
	if _, err := c.Write(req); err != nil {
		diag.Logf("uplink: write failed: %s", err)
		return &errcode.E{C: errcode.Error, Op: "uplink.write", Err: err}
	}

	u.drain(c)
	return nil
}

// request assembles the fixed-shape POST. The body is already form-encoded;
// Content-Length is its exact byte length.
func (u *Uploader) request(body []byte) []byte {
	var num [20]byte
	req := make([]byte, 0, 192+len(body))
	req = append(req, "POST "...)
	req = append(req, u.opt.Path...)
	req = append(req, " HTTP/1.1\r\nHost: "...)
	req = append(req, u.opt.Host...)
	req = append(req, "\r\nUser-Agent: "...)
	req = append(req, u.opt.UserAgent...)
	req = append(req, "\r\nConnection: close\r\nContent-Type: application/x-www-form-urlencoded\r\nContent-Length: "...)
	req = append(req, conv.Itoa(num[:], int64(len(body)))...)
	req = append(req, "\r\n\r\n"...)
	return append(req, body...)
}

// drain reads and discards the response until close, bounded by the drain
// deadline. The response is logged only as a byte count; status is not
// interpreted, so an application-level rejection is invisible here.
func (u *Uploader) drain(c Conn) {
	var buf [64]byte
	start := u.opt.Clock()
	total := 0
	for {
		n, err := c.Read(buf[:])
		total += n
		if err == io.EOF {
			diag.Logf("uplink: response drained, %d bytes", total)
			return
		}
		if err != nil {
			diag.Logf("uplink: drain aborted after %d bytes: %s", total, err)
			return
		}
		if timex.Elapsed(u.opt.Clock(), start) >= u.opt.DrainTimeoutMs {
			diag.Logf("uplink: drain deadline after %d bytes", total)
			return
		}
	}
}
