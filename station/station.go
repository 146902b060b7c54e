// Package station owns the device control loop: a finite-state machine that
// sequences wireless-link acquisition, sensor polling and report uploads
// without ever blocking for long, driven by an external Tick loop.
package station

import (
	"io"

	"weatherstation-go/credstore"
	"weatherstation-go/diag"
	"weatherstation-go/errcode"
	"weatherstation-go/payload"
	"weatherstation-go/sensor"
	"weatherstation-go/weather"
	"weatherstation-go/x/timex"
)

// State is the device state. Exactly one is active; transitions happen only
// inside Tick/Init.
type State uint8

const (
	StateError State = iota // terminal
	StateAwaitingLink
	StateReadyToSample
	StateAwaitingNextSample
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateAwaitingLink:
		return "awaiting_link"
	case StateReadyToSample:
		return "ready_to_sample"
	case StateAwaitingNextSample:
		return "awaiting_next_sample"
	}
	return "unknown"
}

// LinkStatus is the connection-status query result consumed from the
// wireless stack. Reconnection itself happens in the background, outside
// this core.
type LinkStatus uint8

const (
	LinkSearching LinkStatus = iota
	LinkNoAccessPoint
	LinkAuthFailed
	LinkConnected
)

func (l LinkStatus) String() string {
	switch l {
	case LinkSearching:
		return "searching"
	case LinkNoAccessPoint:
		return "no_access_point"
	case LinkAuthFailed:
		return "auth_failed"
	case LinkConnected:
		return "connected"
	}
	return "unknown"
}

// Link is the consumed wireless-stack surface.
type Link interface {
	// Start hands the network credentials to the background link once.
	Start(ssid, secret string) error
	// Status must return promptly; it is polled every tick.
	Status() LinkStatus
}

// Sampler acquires one classified sensor reading (see package sensor).
type Sampler interface {
	Acquire() (sensor.Reading, error)
}

// Reporter uploads one built body (see package uplink).
type Reporter interface {
	Upload(body []byte) error
}

// Indicator is the visual fault indicator: steady while awaiting link, off
// after a healthy cycle, on after a faulted cycle, blinking in ERROR.
type Indicator interface {
	Set(on bool)
	Toggle()
}

// Options fixes the station's scheduling and buffer bounds.
type Options struct {
	IntervalMs   uint32 // reporting interval; 0 means 5 minutes
	ErrorBlinkMs uint32 // ERROR blink half-period; 0 means 500 ms
	StoreBase    int64
	MaxBodyLen   int // payload capacity; 0 derives from credstore.MaxStringLen
	Clock        func() timex.Ms
}

// Station is the single context object holding device state, the current
// credentials and the last reading. One Station, one Tick caller; nothing
// here is safe for concurrent use and nothing needs to be.
type Station struct {
	link     Link
	sampler  Sampler
	reporter Reporter
	ind      Indicator
	opt      Options

	state     State
	enteredMs timex.Ms
	blinkMs   timex.Ms

	creds   credstore.Credentials
	reading sensor.Reading
	dewC    float32

	body *payload.Builder
}

func New(link Link, sampler Sampler, reporter Reporter, ind Indicator, opt Options) *Station {
	if opt.IntervalMs == 0 {
		opt.IntervalMs = 5 * 60 * 1000
	}
	if opt.ErrorBlinkMs == 0 {
		opt.ErrorBlinkMs = 500
	}
	if opt.MaxBodyLen == 0 {
		opt.MaxBodyLen = payload.WorstCaseLen(credstore.MaxStringLen - 1)
	}
	if opt.Clock == nil {
		opt.Clock = timex.NowMs
	}
	return &Station{
		link:     link,
		sampler:  sampler,
		reporter: reporter,
		ind:      ind,
		opt:      opt,
		state:    StateError, // until Init succeeds
		body:     payload.NewBuilder(make([]byte, opt.MaxBodyLen)),
	}
}

// State returns the active state (diagnostics and tests).
func (s *Station) State() State { return s.state }

// Init performs the one-time provisioning step: load the four credentials
// from the persistent store and hand the network pair to the link. Any
// missing credential is fatal; the station enters ERROR and stays there.
func (s *Station) Init(store io.ReaderAt) error {
	creds, err := credstore.Load(store, s.opt.StoreBase)
	if err != nil {
		diag.Logf("station: credential load failed: %s", errcode.Of(err))
		s.enter(StateError)
		return err
	}
	s.creds = creds

	if err := s.link.Start(s.creds.NetworkID, s.creds.NetworkSecret); err != nil {
		diag.Logf("station: link start failed: %s", err)
		s.enter(StateError)
		return err
	}
	s.enter(StateAwaitingLink)
	return nil
}

// Close zeroes the credentials and parks the indicator. Call exactly once
// when tearing the station down (host builds; firmware never returns).
func (s *Station) Close() {
	s.creds.Zero()
	s.ind.Set(false)
}

// Tick advances the state machine by one step. It is invoked repeatedly by
// the outer driver loop and must never block for long; the wireless stack's
// background maintenance runs between calls.
func (s *Station) Tick() {
	now := s.opt.Clock()
	switch s.state {
	case StateError:
		// Fixed-rate blink until an external restart.
		if timex.Elapsed(now, s.blinkMs) >= s.opt.ErrorBlinkMs {
			s.ind.Toggle()
			s.blinkMs = now
		}

	case StateAwaitingLink:
		switch st := s.link.Status(); st {
		case LinkAuthFailed:
			diag.Logf("station: link %s", st)
			s.enter(StateError)
		case LinkConnected:
			diag.Logf("station: link %s", st)
			s.ind.Set(false)
			s.enter(StateReadyToSample)
		default:
			// Keep searching; steady indicator.
			s.ind.Set(true)
		}

	case StateReadyToSample:
		s.sampleAndReport()
		s.enter(StateAwaitingNextSample)

	case StateAwaitingNextSample:
		if timex.Elapsed(now, s.enteredMs) >= s.opt.IntervalMs {
			s.enter(StateReadyToSample)
		}
	}
}

// sampleAndReport runs one full cycle: acquire, derive, build, upload. Every
// failure is transient here: it is logged, reflected on the indicator, and
// retried after one full reporting interval like any normal cycle.
func (s *Station) sampleAndReport() {
	r, err := s.sampler.Acquire()
	if err != nil {
		diag.Logf("station: sensor read failed: %s", errcode.Of(err))
		s.ind.Set(true)
		return
	}
	s.reading = r
	s.dewC = weather.DewPointC(r.TempC, r.Humidity)
	diag.Logf("station: temp %f C, humidity %f %%, dew point %f C",
		r.TempC, r.Humidity, s.dewC)

	s.body.Reset()
	payload.WriteReport(s.body,
		s.creds.AccountID, s.creds.AccountSecret,
		weather.Fahrenheit(r.TempC), r.Humidity, weather.Fahrenheit(s.dewC))
	if err := s.body.Err(); err != nil {
		diag.Logf("station: payload build failed: %s", errcode.Of(err))
		s.ind.Set(true)
		return
	}

	if err := s.reporter.Upload(s.body.Bytes()); err != nil {
		s.ind.Set(true)
		return
	}
	s.ind.Set(false)
}

func (s *Station) enter(next State) {
	diag.Logf("station: state %s -> %s", s.state, next)
	s.state = next
	s.enteredMs = s.opt.Clock()
	s.blinkMs = s.enteredMs
}
