// Package dht22 provides a driver for the DHT22 (AM2302) temperature/humidity
// sensor. The device speaks a timing-coded single-wire protocol:
//
//	m, err := d.Read()   // one blocking read-and-checksum, ~5 ms
//
// The driver polls the data line through a narrow Pin interface so platform
// code decides how the line is realised. Timing is measured through an
// injectable microsecond clock; on MCU builds wire it to a cycle counter.
//
// Fixed-point helpers return tenths of units (deci-°C and deci-%RH); float
// accessors are provided for callers that go on to format.
package dht22

import (
	"errors"
	"time"
)

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("dht22: timeout")
	ErrChecksum = errors.New("dht22: checksum mismatch")
	ErrNotReady = errors.New("dht22: not ready") // minimum read interval not elapsed
)

// Pin is the single data line. SetInput must enable the pull-up where the
// board has no external one.
type Pin interface {
	SetInput()
	SetOutput(level bool)
	Set(level bool)
	Get() bool
}

// Config controls protocol timing. All fields are optional.
type Config struct {
	// NowUs is the microsecond clock used for pulse measurement.
	// Defaults to a time.Now-based clock; MCU builds should inject a
	// cycle-counter clock for accuracy.
	NowUs func() int64
	// StartSignal is how long the host holds the line low to request a
	// measurement. Default 1.1 ms (datasheet minimum 1 ms).
	StartSignal time.Duration
	// PulseTimeout bounds any single wait on the line. Default 300 µs.
	PulseTimeout int64
	// BitThreshold separates a 0-bit high pulse (~27 µs) from a 1-bit
	// (~70 µs). Default 50 µs.
	BitThreshold int64
	// MinInterval is the minimum spacing between reads; the sensor needs
	// ~2 s to settle. Default 2 s. Reads inside it return ErrNotReady.
	MinInterval time.Duration
}

// Device drives one DHT22 on one pin.
type Device struct {
	pin Pin
	cfg Config

	buf      [5]byte // reuse frame buffer to avoid allocations
	haveRead bool
	lastRead int64 // µs timestamp of the last attempted read
}

// New creates the Device object only; it does not touch the line.
func New(pin Pin) Device {
	return Device{pin: pin}
}

// Configure applies optional config and parks the line high (idle).
func (d *Device) Configure(cfgs ...Config) {
	var c Config
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.NowUs == nil {
		c.NowUs = func() int64 { return time.Now().UnixNano() / 1000 }
	}
	if c.StartSignal <= 0 {
		c.StartSignal = 1100 * time.Microsecond
	}
	if c.PulseTimeout <= 0 {
		c.PulseTimeout = 300
	}
	if c.BitThreshold <= 0 {
		c.BitThreshold = 50
	}
	if c.MinInterval <= 0 {
		c.MinInterval = 2 * time.Second
	}
	d.cfg = c
	d.pin.SetInput()
}

// Read performs one full measurement: start signal, sensor handshake, 40
// timing-coded bits, checksum. It blocks for the duration of the exchange
// (single-digit milliseconds after the start signal).
func (d *Device) Read() (Measurement, error) {
	if d.cfg.NowUs == nil {
		d.Configure()
	}
	now := d.cfg.NowUs()
	if d.haveRead && now-d.lastRead < d.cfg.MinInterval.Microseconds() {
		return Measurement{}, ErrNotReady
	}
	d.haveRead = true
	d.lastRead = now

	// Host start signal: hold low, then release and listen.
	d.pin.SetOutput(false)
	time.Sleep(d.cfg.StartSignal)
	d.pin.SetInput()

	// Sensor handshake: ~80 µs low, ~80 µs high, then the first bit's low.
	if _, err := d.waitFor(false); err != nil {
		return Measurement{}, err
	}
	if _, err := d.waitFor(true); err != nil {
		return Measurement{}, err
	}
	if _, err := d.waitFor(false); err != nil {
		return Measurement{}, err
	}

	// 40 bits: each is ~50 µs low, then a high pulse whose length encodes
	// the bit. Measure highs, classify against the threshold.
	for i := range d.buf {
		d.buf[i] = 0
	}
	for bit := 0; bit < 40; bit++ {
		if _, err := d.waitFor(true); err != nil {
			return Measurement{}, err
		}
		high, err := d.waitFor(false)
		if err != nil {
			return Measurement{}, err
		}
		if high > d.cfg.BitThreshold {
			d.buf[bit/8] |= 1 << (7 - bit%8)
		}
	}
	return decode(d.buf)
}

// waitFor polls until the line reads level, returning how long the previous
// level lasted. ErrTimeout after cfg.PulseTimeout.
func (d *Device) waitFor(level bool) (int64, error) {
	start := d.cfg.NowUs()
	for d.pin.Get() != level {
		if d.cfg.NowUs()-start > d.cfg.PulseTimeout {
			return 0, ErrTimeout
		}
	}
	return d.cfg.NowUs() - start, nil
}

// decode validates the checksum and unpacks the fixed-point readings.
// Frame: humidity hi/lo (tenths of %RH), temperature hi/lo (tenths of °C,
// top bit is the sign), checksum = low byte of the sum of the first four.
func decode(frame [5]byte) (Measurement, error) {
	sum := frame[0] + frame[1] + frame[2] + frame[3]
	if sum != frame[4] {
		return Measurement{}, ErrChecksum
	}
	h := int16(uint16(frame[0])<<8 | uint16(frame[1]))
	traw := uint16(frame[2])<<8 | uint16(frame[3])
	t := int16(traw & 0x7FFF)
	if traw&0x8000 != 0 {
		t = -t
	}
	return Measurement{DeciCelsius: t, DeciRelHumidity: h}, nil
}

// Measurement holds one fixed-point reading.
type Measurement struct {
	DeciCelsius     int16 // tenths of °C
	DeciRelHumidity int16 // tenths of %RH
}

// Celsius returns the temperature in °C.
func (m Measurement) Celsius() float32 { return float32(m.DeciCelsius) / 10 }

// RelHumidity returns the relative humidity in percent.
func (m Measurement) RelHumidity() float32 { return float32(m.DeciRelHumidity) / 10 }
