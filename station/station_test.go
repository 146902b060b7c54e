package station

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"weatherstation-go/credstore"
	"weatherstation-go/errcode"
	"weatherstation-go/sensor"
	"weatherstation-go/x/timex"
)

type fakeLink struct {
	status  LinkStatus
	ssid    string
	secret  string
	started int
	err     error
}

func (l *fakeLink) Start(ssid, secret string) error {
	l.started++
	l.ssid, l.secret = ssid, secret
	return l.err
}
func (l *fakeLink) Status() LinkStatus { return l.status }

type fakeSampler struct {
	r   sensor.Reading
	err error
	n   int
}

func (f *fakeSampler) Acquire() (sensor.Reading, error) {
	f.n++
	return f.r, f.err
}

type fakeReporter struct {
	bodies []string
	err    error
}

func (f *fakeReporter) Upload(body []byte) error {
	f.bodies = append(f.bodies, string(body))
	return f.err
}

type fakeIndicator struct {
	on      bool
	toggles int
}

func (f *fakeIndicator) Set(on bool) { f.on = on }
func (f *fakeIndicator) Toggle()     { f.on = !f.on; f.toggles++ }

func storeImage(strs ...string) *bytes.Reader {
	var img []byte
	for _, s := range strs {
		img = append(img, s...)
		img = append(img, 0)
	}
	img = append(img, credstore.Sentinel)
	return bytes.NewReader(img)
}

type rig struct {
	link     *fakeLink
	sampler  *fakeSampler
	reporter *fakeReporter
	ind      *fakeIndicator
	now      timex.Ms
	st       *Station
}

func newRig(t *testing.T, opt Options) *rig {
	t.Helper()
	r := &rig{
		link:     &fakeLink{},
		sampler:  &fakeSampler{r: sensor.Reading{TempC: 22.5, Humidity: 45}},
		reporter: &fakeReporter{},
		ind:      &fakeIndicator{},
	}
	opt.Clock = func() timex.Ms { return r.now }
	r.st = New(r.link, r.sampler, r.reporter, r.ind, opt)
	return r
}

func (r *rig) initOK(t *testing.T) {
	t.Helper()
	if err := r.st.Init(storeImage("mynet", "netpw", "KCOLO1", "apikey")); err != nil {
		t.Fatalf("Init error: %v", err)
	}
}

func TestInitLoadsCredentialsAndStartsLink(t *testing.T) {
	r := newRig(t, Options{})
	r.initOK(t)
	if r.st.State() != StateAwaitingLink {
		t.Fatalf("state after Init = %v", r.st.State())
	}
	if r.link.started != 1 || r.link.ssid != "mynet" || r.link.secret != "netpw" {
		t.Fatalf("link start: %+v", r.link)
	}
}

func TestInitIncompleteStoreIsFatal(t *testing.T) {
	r := newRig(t, Options{})
	err := r.st.Init(storeImage("mynet", "netpw"))
	if errcode.Of(err) != errcode.NotProvisioned {
		t.Fatalf("Init err = %v, want not_provisioned", err)
	}
	if r.st.State() != StateError {
		t.Fatalf("state = %v, want error", r.st.State())
	}
	if r.link.started != 0 {
		t.Fatal("link started despite provisioning failure")
	}
}

func TestInitLinkStartFailureIsFatal(t *testing.T) {
	r := newRig(t, Options{})
	r.link.err = errors.New("radio dead")
	if err := r.st.Init(storeImage("a", "b", "c", "d")); err == nil {
		t.Fatal("Init swallowed link failure")
	}
	if r.st.State() != StateError {
		t.Fatalf("state = %v, want error", r.st.State())
	}
}

func TestAuthFailureIsTerminal(t *testing.T) {
	r := newRig(t, Options{})
	r.initOK(t)
	r.link.status = LinkAuthFailed
	r.st.Tick()
	if r.st.State() != StateError {
		t.Fatalf("state = %v, want error", r.st.State())
	}
	// ERROR holds regardless of later link recovery.
	r.link.status = LinkConnected
	for i := 0; i < 10; i++ {
		r.now += 1000
		r.st.Tick()
	}
	if r.st.State() != StateError {
		t.Fatalf("left error state: %v", r.st.State())
	}
	if r.sampler.n != 0 || len(r.reporter.bodies) != 0 {
		t.Fatal("sampled or reported while in error state")
	}
}

func TestErrorStateBlinksAtFixedRate(t *testing.T) {
	r := newRig(t, Options{ErrorBlinkMs: 500})
	r.initOK(t)
	r.link.status = LinkAuthFailed
	r.st.Tick()

	for i := 0; i < 40; i++ {
		r.now += 100
		r.st.Tick()
	}
	// 4000 ms at a 500 ms half-period: 8 toggles.
	if r.ind.toggles != 8 {
		t.Fatalf("toggles = %d, want 8", r.ind.toggles)
	}
}

func TestAwaitingLinkHoldsWhileSearching(t *testing.T) {
	r := newRig(t, Options{})
	r.initOK(t)
	for _, st := range []LinkStatus{LinkSearching, LinkNoAccessPoint} {
		r.link.status = st
		r.st.Tick()
		if r.st.State() != StateAwaitingLink {
			t.Fatalf("status %v: state = %v, want awaiting_link", st, r.st.State())
		}
		if !r.ind.on {
			t.Fatalf("status %v: indicator not steady", st)
		}
	}
}

func TestConnectedMovesToReadyToSample(t *testing.T) {
	r := newRig(t, Options{})
	r.initOK(t)
	r.link.status = LinkConnected
	r.st.Tick()
	if r.st.State() != StateReadyToSample {
		t.Fatalf("state = %v, want ready_to_sample", r.st.State())
	}
}

func TestHealthyCycleEndToEnd(t *testing.T) {
	r := newRig(t, Options{IntervalMs: 300_000})
	r.initOK(t)
	r.link.status = LinkConnected
	r.st.Tick() // -> ready
	r.st.Tick() // sample + report -> awaiting next

	if r.st.State() != StateAwaitingNextSample {
		t.Fatalf("state = %v, want awaiting_next_sample", r.st.State())
	}
	if len(r.reporter.bodies) != 1 {
		t.Fatalf("uploads = %d, want 1", len(r.reporter.bodies))
	}
	body := r.reporter.bodies[0]
	// 22.5 °C / 45 %RH: dew point 11.5 °C; 72.5 °F / 52.7 °F.
	if !strings.Contains(body, "tempf=72.50&humidity=45.00&dewptf=52.70") {
		t.Fatalf("body = %q", body)
	}
	if !strings.HasPrefix(body, "ID=KCOLO1&PASSWORD=apikey&action=updateraw&dateutc=now") {
		t.Fatalf("body prefix = %q", body)
	}
	if r.ind.on {
		t.Fatal("indicator on after healthy cycle")
	}

	// Stays put until the interval elapses, then samples again.
	r.now += 299_999
	r.st.Tick()
	if r.st.State() != StateAwaitingNextSample || r.sampler.n != 1 {
		t.Fatalf("early wake: state %v, samples %d", r.st.State(), r.sampler.n)
	}
	r.now += 1
	r.st.Tick() // -> ready
	r.st.Tick() // sample again
	if r.sampler.n != 2 || len(r.reporter.bodies) != 2 {
		t.Fatalf("second cycle: samples %d, uploads %d", r.sampler.n, len(r.reporter.bodies))
	}
}

func TestSensorFailureSkipsUploadSameCadence(t *testing.T) {
	r := newRig(t, Options{IntervalMs: 300_000})
	r.initOK(t)
	r.link.status = LinkConnected
	r.st.Tick()
	r.sampler.err = &errcode.E{C: errcode.SensorTimeout, Op: "sensor.read"}
	r.st.Tick()

	if r.st.State() != StateAwaitingNextSample {
		t.Fatalf("state = %v", r.st.State())
	}
	if len(r.reporter.bodies) != 0 {
		t.Fatal("uploaded despite sensor failure")
	}
	if !r.ind.on {
		t.Fatal("indicator not showing fault")
	}

	// Failure waits the same full interval as a normal cycle.
	r.sampler.err = nil
	r.now += 300_000
	r.st.Tick()
	r.st.Tick()
	if len(r.reporter.bodies) != 1 {
		t.Fatalf("uploads after recovery = %d", len(r.reporter.bodies))
	}
	if r.ind.on {
		t.Fatal("indicator stuck on after recovery")
	}
}

func TestUploadFailureSetsFaultIndicator(t *testing.T) {
	r := newRig(t, Options{})
	r.initOK(t)
	r.link.status = LinkConnected
	r.st.Tick()
	r.reporter.err = &errcode.E{C: errcode.ConnectFailed, Op: "uplink.dial"}
	r.st.Tick()

	if r.st.State() != StateAwaitingNextSample {
		t.Fatalf("state = %v", r.st.State())
	}
	if len(r.reporter.bodies) != 1 {
		t.Fatal("upload not attempted")
	}
	if !r.ind.on {
		t.Fatal("indicator not showing fault")
	}
}

func TestSchedulingSurvivesClockWrap(t *testing.T) {
	r := newRig(t, Options{IntervalMs: 300_000})
	r.now = ^timex.Ms(0) - 10_000 // 10 s before wraparound
	r.initOK(t)
	r.link.status = LinkConnected
	r.st.Tick()
	r.st.Tick() // sample; enters awaiting at ~wrap-10s

	r.now += 200_000 // clock has wrapped
	r.st.Tick()
	if r.st.State() != StateAwaitingNextSample {
		t.Fatalf("woke early across wrap: %v", r.st.State())
	}
	r.now += 100_000 // full interval elapsed
	r.st.Tick()
	if r.st.State() != StateReadyToSample {
		t.Fatalf("missed wake across wrap: %v", r.st.State())
	}
}

func TestCloseZeroesCredentials(t *testing.T) {
	r := newRig(t, Options{})
	r.initOK(t)
	r.st.Close()
	if r.st.creds != (credstore.Credentials{}) {
		t.Fatalf("credentials not zeroed: %+v", r.st.creds)
	}
	if r.ind.on {
		t.Fatal("indicator left on")
	}
}
