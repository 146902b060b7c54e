// Package config resolves the station's build-time configuration from an
// embedded JSON document. Credentials are NOT configuration: they live in
// the persistent string table (see credstore).
package config

import (
	"errors"

	"github.com/andreyvit/tinyjson"
)

// Config is the resolved station configuration.
type Config struct {
	// Report endpoint.
	ReportHost string
	ReportPath string
	ReportPort uint16
	// Fingerprint is the hex SHA-256 of the endpoint's leaf certificate.
	// It is an expiring trust anchor: rotate it whenever the remote
	// certificate rotates (see README for the runbook).
	Fingerprint string
	// PinOptional lets the upload proceed when the TLS stack cannot
	// surface the peer chain for the pin check. Default false: no visible
	// chain means no upload.
	PinOptional bool
	UserAgent   string

	// Scheduling. The reporting interval must stay compatible with the
	// remote service's rate expectations.
	IntervalMs     uint32
	DrainTimeoutMs uint32
	ErrorBlinkMs   uint32

	// Hardware.
	SensorPin    int
	IndicatorPin int

	// Persistent string table geometry.
	StoreBase int64

	// Upload body capacity.
	MaxBodyLen int
}

// Defaults applied for absent keys.
const (
	defaultIntervalMs     = 5 * 60 * 1000
	defaultDrainTimeoutMs = 10 * 1000
	defaultErrorBlinkMs   = 500
	defaultReportPort     = 443
	defaultUserAgent      = "weatherstation-go/0.1"
	defaultMaxBodyLen     = 512
)

// EmbeddedConfigLookup allows overriding how the raw document is resolved.
var EmbeddedConfigLookup = func() ([]byte, bool) {
	return embeddedConfig, len(embeddedConfig) > 0
}

// Load parses the embedded document and applies defaults.
func Load() (Config, error) {
	raw, ok := EmbeddedConfigLookup()
	if !ok {
		return Config{}, errors.New("no embedded config")
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return Config{}, errors.New("embedded config is not a JSON object")
	}

	c := Config{
		ReportHost:     str(m, "report_host"),
		ReportPath:     str(m, "report_path"),
		ReportPort:     uint16(num(m, "report_port", defaultReportPort)),
		Fingerprint:    str(m, "fingerprint"),
		PinOptional:    boolean(m, "pin_optional"),
		UserAgent:      str(m, "user_agent"),
		IntervalMs:     uint32(num(m, "interval_ms", defaultIntervalMs)),
		DrainTimeoutMs: uint32(num(m, "drain_timeout_ms", defaultDrainTimeoutMs)),
		ErrorBlinkMs:   uint32(num(m, "error_blink_ms", defaultErrorBlinkMs)),
		SensorPin:      int(num(m, "sensor_pin", 15)),
		IndicatorPin:   int(num(m, "indicator_pin", 25)),
		StoreBase:      int64(num(m, "store_base", 0)),
		MaxBodyLen:     int(num(m, "max_body_len", defaultMaxBodyLen)),
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.ReportHost == "" || c.ReportPath == "" {
		return Config{}, errors.New("report endpoint not configured")
	}
	return c, nil
}

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func num(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return def
}

func boolean(m map[string]any, key string) bool {
	v, ok := m[key].(bool)
	return ok && v
}
