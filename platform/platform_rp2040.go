//go:build rp2040

package platform

import (
	"crypto/sha256"
	"crypto/tls"
	"machine"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"

	"weatherstation-go/config"
	"weatherstation-go/diag"
	"weatherstation-go/drivers/dht22"
	"weatherstation-go/errcode"
	"weatherstation-go/station"
	"weatherstation-go/uplink"
	"weatherstation-go/x/conv"
)

func setup(cfg *config.Config) (*Deps, error) {
	// Diagnostics on UART0 so logs survive a wedged USB stack.
	_ = uartx.UART0.Configure(uartx.UARTConfig{BaudRate: 115200})
	diag.SetOutput(uartx.UART0)

	dht := dht22.New(&rp2Pin{p: machine.Pin(cfg.SensorPin)})
	dht.Configure(dht22.Config{
		NowUs: func() int64 { return time.Now().UnixNano() / 1000 },
	})

	link := &wifiLink{}
	link.init()

	return &Deps{
		Link:         link,
		SensorDriver: &dht,
		Store:        machine.Flash,
		Dialer:       &rp2Dialer{pinOptional: cfg.PinOptional},
		Indicator:    &ledIndicator{p: machine.Pin(cfg.IndicatorPin)},
	}, nil
}

// rp2Pin adapts machine.Pin to the sensor driver's line interface.
type rp2Pin struct{ p machine.Pin }

func (r *rp2Pin) SetInput() {
	r.p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (r *rp2Pin) SetOutput(level bool) {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(level)
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }

type ledIndicator struct{ p machine.Pin }

func (l *ledIndicator) Set(on bool) {
	l.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.p.Set(on)
}

func (l *ledIndicator) Toggle() { l.p.Set(!l.p.Get()) }

// wifiLink runs the blocking netlink connect in a background goroutine and
// exposes the polled status the control loop expects.
type wifiLink struct {
	nl     netlink.Netlinker
	status atomic.Uint32
}

func (w *wifiLink) init() {
	w.nl, _ = probe.Probe()
	w.status.Store(uint32(station.LinkSearching))
}

func (w *wifiLink) Start(ssid, secret string) error {
	if w.nl == nil {
		return &errcode.E{C: errcode.Error, Op: "platform.link", Msg: "no wireless device"}
	}
	go w.run(ssid, secret)
	return nil
}

func (w *wifiLink) run(ssid, secret string) {
	for {
		err := w.nl.NetConnect(&netlink.ConnectParams{
			Ssid:       ssid,
			Passphrase: secret,
		})
		if err == nil {
			w.status.Store(uint32(station.LinkConnected))
			return
		}
		// Wrong passphrase is terminal; anything else keeps searching.
		if strings.Contains(err.Error(), "auth") {
			w.status.Store(uint32(station.LinkAuthFailed))
			return
		}
		diag.Logf("platform: wifi connect: %s", err)
		w.status.Store(uint32(station.LinkNoAccessPoint))
		time.Sleep(5 * time.Second)
		w.status.Store(uint32(station.LinkSearching))
	}
}

func (w *wifiLink) Status() station.LinkStatus {
	return station.LinkStatus(w.status.Load())
}

// rp2Dialer opens the pinned TLS session through whatever netdev the probe
// installed. Offloaded TLS stacks may not surface the peer certificate; an
// invisible chain fails the dial unless pin_optional is configured.
type rp2Dialer struct {
	pinOptional bool
}

func (d *rp2Dialer) Dial(host string, port uint16, fingerprint string) (uplink.Conn, error) {
	var want [sha256.Size]byte
	if len(fingerprint) != 2*sha256.Size {
		return nil, &errcode.E{C: errcode.PinMismatch, Op: "uplink.pin", Msg: "bad fingerprint length"}
	}
	for i := range want {
		hi := hexVal(fingerprint[2*i])
		lo := hexVal(fingerprint[2*i+1])
		if hi < 0 || lo < 0 {
			return nil, &errcode.E{C: errcode.PinMismatch, Op: "uplink.pin", Msg: "bad fingerprint hex"}
		}
		want[i] = byte(hi<<4 | lo)
	}

	conn, err := tls.Dial("tcp", host+":"+strconv.Itoa(int(port)), nil)
	if err != nil {
		return nil, err
	}
	if certs := conn.ConnectionState().PeerCertificates; len(certs) > 0 {
		got := sha256.Sum256(certs[0].Raw)
		if got != want {
			conn.Close()
			var buf [2 * sha256.Size]byte
			return nil, &errcode.E{C: errcode.PinMismatch, Op: "uplink.pin",
				Msg: string(conv.BytesHex(buf[:], got[:]))}
		}
	} else if d.pinOptional {
		diag.Logf("platform: tls stack hides peer chain; pin not checked")
	} else {
		conn.Close()
		return nil, &errcode.E{C: errcode.PinMismatch, Op: "uplink.pin",
			Msg: "peer chain unavailable"}
	}
	return conn, nil
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
