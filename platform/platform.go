// Package platform wires the station's narrow collaborator interfaces to a
// concrete target: real pins, radio and flash on rp2040, simulations and
// files on a host build.
package platform

import (
	"io"

	"weatherstation-go/config"
	"weatherstation-go/sensor"
	"weatherstation-go/station"
	"weatherstation-go/uplink"
)

// Deps is everything the control loop consumes from the outside world.
type Deps struct {
	Link         station.Link
	SensorDriver sensor.Driver
	Store        io.ReaderAt
	Dialer       uplink.Dialer
	Indicator    station.Indicator
}

// Setup builds the target's dependency set. It may adjust cfg (host builds
// apply environment overrides).
func Setup(cfg *config.Config) (*Deps, error) {
	return setup(cfg)
}
