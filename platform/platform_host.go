//go:build !rp2040

package platform

import (
	"bytes"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"weatherstation-go/config"
	"weatherstation-go/credstore"
	"weatherstation-go/diag"
	"weatherstation-go/drivers/dht22"
	"weatherstation-go/station"
	"weatherstation-go/uplink"
)

// Host build: runs the same control loop on a Linux box with a simulated
// sensor, a file-backed credential store and the real pinned TLS dialer.
// Useful for soak-testing the loop and the endpoint without hardware.

func setup(cfg *config.Config) (*Deps, error) {
	applyEnv(cfg)

	img, err := os.ReadFile(envOr("CREDSTORE", "credstore.bin"))
	if err != nil {
		diag.Logf("platform: no credential image (%s); run cmd/provision", err)
		img = []byte{credstore.Sentinel} // empty table: provisioning error path
	}

	return &Deps{
		Link:         &hostLink{},
		SensorDriver: &simSensor{seed: 0x5eed, deciC: 215, deciRH: 500},
		Store:        bytes.NewReader(img),
		Dialer:       &uplink.PinnedDialer{},
		Indicator:    &logIndicator{},
	}, nil
}

// applyEnv lets a .env or the environment override the embedded config on
// development hosts. Firmware builds have no environment; they re-bake.
func applyEnv(cfg *config.Config) {
	_ = godotenv.Load() // missing .env is fine

	if v := os.Getenv("REPORT_HOST"); v != "" {
		cfg.ReportHost = v
	}
	if v := os.Getenv("REPORT_PATH"); v != "" {
		cfg.ReportPath = v
	}
	if v := os.Getenv("REPORT_FINGERPRINT"); v != "" {
		cfg.Fingerprint = v
	}
	if v := os.Getenv("REPORT_PORT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.ReportPort = uint16(n)
		}
	}
	if v := os.Getenv("INTERVAL_MS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			cfg.IntervalMs = uint32(n)
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// hostLink pretends the wired host network is a wireless link: it reports
// connected as soon as credentials were handed over.
type hostLink struct{ started bool }

func (l *hostLink) Start(ssid, secret string) error {
	diag.Logf("platform: host link up (ssid %s)", ssid)
	l.started = true
	return nil
}

func (l *hostLink) Status() station.LinkStatus {
	if l.started {
		return station.LinkConnected
	}
	return station.LinkSearching
}

// simSensor wanders around room conditions with a small LCG drift and
// occasionally reports a timeout, so failure paths get exercised too.
type simSensor struct {
	seed   uint32
	deciC  int16
	deciRH int16
}

func (s *simSensor) Read() (dht22.Measurement, error) {
	s.seed = s.seed*1664525 + 1013904223
	if s.seed%97 == 0 {
		return dht22.Measurement{}, dht22.ErrTimeout
	}
	s.deciC += int16(s.seed%5) - 2
	s.deciRH += int16((s.seed>>8)%7) - 3
	if s.deciRH < 0 {
		s.deciRH = 0
	}
	if s.deciRH > 1000 {
		s.deciRH = 1000
	}
	return dht22.Measurement{DeciCelsius: s.deciC, DeciRelHumidity: s.deciRH}, nil
}

// logIndicator stands in for the LED on hosts.
type logIndicator struct{ on bool }

func (l *logIndicator) Set(on bool) {
	if l.on != on {
		l.on = on
		diag.Logf("platform: indicator %t", on)
	}
}

func (l *logIndicator) Toggle() { l.on = !l.on }
