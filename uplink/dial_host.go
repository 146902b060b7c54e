//go:build !rp2040

package uplink

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"net"
	"strconv"
	"strings"
	"time"

	"weatherstation-go/errcode"
)

// PinnedDialer dials with TLS and pins the peer by leaf-certificate SHA-256
// instead of chain validation. The pin is an expiring trust anchor: it must
// be rotated whenever the endpoint's certificate rotates.
type PinnedDialer struct {
	// DialTimeout bounds the TCP+TLS handshake. 0 means 15 s.
	DialTimeout time.Duration
	// PollInterval is the per-Read deadline so reads never block long.
	// 0 means 250 ms.
	PollInterval time.Duration
}

func (d *PinnedDialer) Dial(host string, port uint16, fingerprint string) (Conn, error) {
	want, err := hex.DecodeString(strings.ToLower(fingerprint))
	if err != nil || len(want) != sha256.Size {
		return nil, &errcode.E{C: errcode.PinMismatch, Op: "uplink.pin", Msg: "bad fingerprint config"}
	}

	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))), &tls.Config{
		// Chain validation is replaced by the pin check below.
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return errcode.PinMismatch
			}
			got := sha256.Sum256(rawCerts[0])
			for i := range got {
				if got[i] != want[i] {
					return errcode.PinMismatch
				}
			}
			return nil
		},
	})
	if err != nil {
		if strings.Contains(err.Error(), string(errcode.PinMismatch)) {
			return nil, &errcode.E{C: errcode.PinMismatch, Op: "uplink.pin", Err: err}
		}
		return nil, err
	}

	poll := d.PollInterval
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &polledConn{c: conn, poll: poll}, nil
}

// polledConn turns blocking reads into short polls so the uploader's drain
// deadline stays in charge.
type polledConn struct {
	c    *tls.Conn
	poll time.Duration
}

func (p *polledConn) Write(b []byte) (int, error) {
	p.c.SetWriteDeadline(time.Now().Add(15 * time.Second))
	return p.c.Write(b)
}

func (p *polledConn) Read(b []byte) (int, error) {
	p.c.SetReadDeadline(time.Now().Add(p.poll))
	n, err := p.c.Read(b)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, nil // poll expired, not a transport failure
		}
	}
	return n, err
}

func (p *polledConn) Close() error { return p.c.Close() }
