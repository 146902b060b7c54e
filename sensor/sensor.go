// Package sensor adapts the DHT22 driver to the station loop and classifies
// its failures into stable diagnostic categories.
package sensor

import (
	"weatherstation-go/drivers/dht22"
	"weatherstation-go/errcode"
	"weatherstation-go/x/timex"
)

// Reading is one captured measurement. It is owned transiently by the
// station and overwritten on every successful acquisition.
type Reading struct {
	TempC    float32
	Humidity float32
	TsMs     timex.Ms
}

// Driver is the single blocking read-and-checksum call consumed from the
// sensor driver.
type Driver interface {
	Read() (dht22.Measurement, error)
}

// Adaptor invokes the driver and classifies the outcome.
type Adaptor struct {
	drv   Driver
	clock func() timex.Ms
}

func NewAdaptor(drv Driver, clock func() timex.Ms) *Adaptor {
	if clock == nil {
		clock = timex.NowMs
	}
	return &Adaptor{drv: drv, clock: clock}
}

// Acquire performs one read. On failure the returned error carries one of
// errcode.SensorTimeout, errcode.SensorChecksum or errcode.Error; the
// category is for diagnostics only, retry policy does not branch on it.
func (a *Adaptor) Acquire() (Reading, error) {
	m, err := a.drv.Read()
	if err != nil {
		return Reading{}, classify(err)
	}
	return Reading{
		TempC:    m.Celsius(),
		Humidity: m.RelHumidity(),
		TsMs:     a.clock(),
	}, nil
}

func classify(err error) error {
	switch err {
	case dht22.ErrTimeout:
		return &errcode.E{C: errcode.SensorTimeout, Op: "sensor.read", Err: err}
	case dht22.ErrChecksum:
		return &errcode.E{C: errcode.SensorChecksum, Op: "sensor.read", Err: err}
	default:
		return &errcode.E{C: errcode.Error, Op: "sensor.read", Err: err}
	}
}
