package fakedevice

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"
)

// Zone is the only zone the fake device accepts
const Zone = "ZONE1"

// maxVolumeStep is the top of the volume step range; steps map 1:1 to percent
const maxVolumeStep = 100

// Info is the wire form of /smoip/system/info
type Info struct {
	Name     string `json:"name"`
	Model    string `json:"model"`
	Timezone string `json:"timezone"`
	Locale   string `json:"locale"`
	UDN      string `json:"udn"`
	UnitID   string `json:"unit_id"`
	API      string `json:"api"`
}

// Source is the wire form of one /smoip/system/sources entry
type Source struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DefaultName       string `json:"default_name"`
	Nameable          bool   `json:"nameable"`
	UISelectable      bool   `json:"ui_selectable"`
	Description       string `json:"description"`
	DescriptionLocale string `json:"description_locale"`
	PreferredOrder    int    `json:"preferred_order"`
}

// State is the wire form of /smoip/zone/state
type State struct {
	Source        string `json:"source"`
	Power         bool   `json:"power"`
	PreAmpMode    bool   `json:"pre_amp_mode"`
	PreAmpState   bool   `json:"pre_amp_state"`
	Mute          bool   `json:"mute"`
	VolumeStep    int    `json:"volume_step"`
	VolumePercent int    `json:"volume_percent"`
	VolumeDB      *int   `json:"volume_db,omitempty"`
}

// BadRequestError is returned by Apply for parameters the device rejects
type BadRequestError struct {
	Param   string
	Message string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

// Device holds the simulated device state. It is safe for concurrent use.
type Device struct {
	mu      sync.RWMutex
	info    Info
	sources []Source
	state   State
}

// NewDevice returns a device with a CXN-like identity, in standby on AirPlay
func NewDevice() *Device {
	d := &Device{}
	d.Reset()
	return d
}

// Reset restores the default identity, sources and state
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.info = Info{
		Name:     "Living Room",
		Model:    "CXN (v2)",
		Timezone: "Europe/London",
		Locale:   "en_GB",
		UDN:      "02680b2c-6f2e-4e3a-9a1c-000d4b5e6f70",
		UnitID:   "A0B1C2D3E4",
		API:      "1.8",
	}
	d.sources = defaultSources()
	d.state = State{
		Source:        "AIRPLAY",
		Power:         false,
		VolumeStep:    30,
		VolumePercent: 30,
	}
}

func defaultSources() []Source {
	entry := func(id, name, desc string, order int) Source {
		return Source{
			ID:                id,
			Name:              name,
			DefaultName:       name,
			Nameable:          true,
			UISelectable:      true,
			Description:       desc,
			DescriptionLocale: desc,
			PreferredOrder:    order,
		}
	}
	sources := []Source{
		entry("AIRPLAY", "AirPlay", "AirPlay", 0),
		entry("UPNP", "Media Library", "UPnP", 1),
		entry("SPOTIFY", "Spotify", "Spotify Connect", 2),
		entry("SPDIF_COAX", "D1", "Digital Co-axial", 3),
		entry("SPDIF_TOSLINK", "D2", "Digital Optical", 4),
		entry("USB_AUDIO", "USB Audio", "USB Audio", 5),
		entry("MEDIA_PLAYER", "Media Player", "Internal player", 6),
	}
	// Internal player is driven by other sources and never offered in a menu
	sources[6].Nameable = false
	sources[6].UISelectable = false
	return sources
}

// Info returns the device identity
func (d *Device) Info() Info {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info
}

// Sources returns a copy of the source list in preferred order
func (d *Device) Sources() []Source {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Source, len(d.sources))
	copy(out, d.sources)
	return out
}

// State returns the current zone state
func (d *Device) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot()
}

// SetState overwrites the zone state. Tests use it to seed a scenario.
func (d *Device) SetState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
	d.state.VolumeDB = nil
}

// snapshot copies the state, filling volume_db when the device is powered.
// Caller holds d.mu.
func (d *Device) snapshot() State {
	s := d.state
	if s.Power {
		db := volumeDB(s.VolumeStep)
		s.VolumeDB = &db
	} else {
		s.VolumeDB = nil
	}
	return s
}

// volumeDB maps a step onto the attenuation range -100dB..0dB
func volumeDB(step int) int {
	return step - maxVolumeStep
}

// Apply validates the zone/state query parameters and applies the mutations
// they carry. Either every mutation is applied or none is.
func (d *Device) Apply(q url.Values) (State, error) {
	if zone := q.Get("zone"); zone != Zone {
		return State{}, &BadRequestError{Param: "zone", Message: fmt.Sprintf("unknown zone %q", zone)}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state

	if v, ok := lookup(q, "power"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return State{}, &BadRequestError{Param: "power", Message: "must be true or false"}
		}
		next.Power = b
	}

	if v, ok := lookup(q, "mute"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return State{}, &BadRequestError{Param: "mute", Message: "must be true or false"}
		}
		next.Mute = b
	}

	if v, ok := lookup(q, "volume_percent"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			return State{}, &BadRequestError{Param: "volume_percent", Message: "must be an integer 0-100"}
		}
		next.VolumePercent = n
		next.VolumeStep = n * maxVolumeStep / 100
	}

	if v, ok := lookup(q, "volume_step_change"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return State{}, &BadRequestError{Param: "volume_step_change", Message: "must be an integer"}
		}
		next.VolumeStep = clamp(next.VolumeStep+n, 0, maxVolumeStep)
		next.VolumePercent = next.VolumeStep * 100 / maxVolumeStep
	}

	if v, ok := lookup(q, "source"); ok {
		if !d.hasSource(v) {
			return State{}, &BadRequestError{Param: "source", Message: fmt.Sprintf("unknown source %q", v)}
		}
		next.Source = v
	}

	d.state = next
	return d.snapshot(), nil
}

func (d *Device) hasSource(id string) bool {
	for _, s := range d.sources {
		if s.ID == id {
			return true
		}
	}
	return false
}

func lookup(q url.Values, key string) (string, bool) {
	if _, ok := q[key]; !ok {
		return "", false
	}
	return q.Get(key), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
