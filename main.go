package main

import (
	"time"

	"weatherstation-go/config"
	"weatherstation-go/diag"
	"weatherstation-go/platform"
	"weatherstation-go/sensor"
	"weatherstation-go/station"
	"weatherstation-go/uplink"
)

// Tick cadence of the driver loop. Short enough that the ERROR blink and the
// link poll stay responsive; the station itself schedules in wall-clock ms.
const tickEvery = 100 * time.Millisecond

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	diag.Logf("boot")

	cfg, err := config.Load()
	if err != nil {
		halt("config", err)
	}
	deps, err := platform.Setup(&cfg)
	if err != nil {
		halt("platform", err)
	}

	st := station.New(
		deps.Link,
		sensor.NewAdaptor(deps.SensorDriver, nil),
		uplink.New(deps.Dialer, uplink.Options{
			Host:           cfg.ReportHost,
			Path:           cfg.ReportPath,
			Port:           cfg.ReportPort,
			Fingerprint:    cfg.Fingerprint,
			UserAgent:      cfg.UserAgent,
			DrainTimeoutMs: cfg.DrainTimeoutMs,
		}),
		deps.Indicator,
		station.Options{
			IntervalMs:   cfg.IntervalMs,
			ErrorBlinkMs: cfg.ErrorBlinkMs,
			StoreBase:    cfg.StoreBase,
			MaxBodyLen:   cfg.MaxBodyLen,
		},
	)

	// A failed Init leaves the station in its terminal blinking state; keep
	// ticking so the fault stays visible.
	if err := st.Init(deps.Store); err != nil {
		diag.Logf("init failed: %s", err)
	}

	for {
		st.Tick()
		time.Sleep(tickEvery)
	}
}

// halt reports a boot failure forever; there is no indicator yet this early.
func halt(what string, err error) {
	for {
		diag.Logf("%s failed: %s", what, err)
		time.Sleep(5 * time.Second)
	}
}
