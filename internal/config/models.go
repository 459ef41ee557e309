package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// It stores named devices and application preferences.
type Registry struct {
	Version     int                `yaml:"version" toml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty" toml:"devices,omitempty"` // Keyed by device name
	Preferences *Preferences       `yaml:"preferences,omitempty" toml:"preferences,omitempty"`
}

// Device is a saved StreamMagic device, keyed by a short name in the Registry.
type Device struct {
	Host     string    `yaml:"host" toml:"host"`                             // Host or host:port of the control API
	Nickname string    `yaml:"nickname,omitempty" toml:"nickname,omitempty"` // Display name
	Model    string    `yaml:"model,omitempty" toml:"model,omitempty"`       // Last reported model
	UDN      string    `yaml:"udn,omitempty" toml:"udn,omitempty"`           // Last reported unique device name
	LastSeen time.Time `yaml:"last_seen,omitempty" toml:"last_seen,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultDevice  string `yaml:"default_device,omitempty" toml:"default_device,omitempty"` // Used when --device is not given
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`                   // Per-request timeout
	RetryAttempts  int    `yaml:"retry_attempts" toml:"retry_attempts"`                     // 1 disables retries
}

// DefaultPreferences returns the preferences used when the file has none
func DefaultPreferences() *Preferences {
	return &Preferences{
		TimeoutSeconds: 100,
		RetryAttempts:  1,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Devices:     make(map[string]*Device),
		Preferences: DefaultPreferences(),
	}
}

// GetDevice returns the device saved under name, or nil.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// AddDevice saves host under name, replacing any previous entry.
func (r *Registry) AddDevice(name, host string) (*Device, error) {
	name = strings.TrimSpace(name)
	host = strings.TrimSpace(host)
	if name == "" {
		return nil, fmt.Errorf("device name must not be empty")
	}
	if host == "" {
		return nil, fmt.Errorf("device host must not be empty")
	}
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	device := &Device{Host: host}
	r.Devices[name] = device
	return device, nil
}

// RemoveDevice deletes the named device, reporting whether it existed. A
// default device pointing at it is cleared.
func (r *Registry) RemoveDevice(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	if r.Preferences != nil && r.Preferences.DefaultDevice == name {
		r.Preferences.DefaultDevice = ""
	}
	return true
}

// UpdateDeviceSeen records identity details reported by a device.
func (r *Registry) UpdateDeviceSeen(name, model, udn string) {
	device := r.Devices[name]
	if device == nil {
		return
	}
	device.Model = model
	device.UDN = udn
	device.LastSeen = time.Now()
}

// DeviceNames returns saved device names in sorted order.
func (r *Registry) DeviceNames() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveHost maps a saved device name to its host. Anything else is returned
// unchanged, so a literal host works wherever a name does. An empty input
// resolves the default device.
func (r *Registry) ResolveHost(nameOrHost string) (string, error) {
	nameOrHost = strings.TrimSpace(nameOrHost)
	if nameOrHost == "" {
		if r.Preferences == nil || r.Preferences.DefaultDevice == "" {
			return "", fmt.Errorf("no device given and no default device configured")
		}
		nameOrHost = r.Preferences.DefaultDevice
	}

	if device := r.Devices[nameOrHost]; device != nil {
		return device.Host, nil
	}
	return nameOrHost, nil
}

// NameForHost returns the name a host is saved under, if any.
func (r *Registry) NameForHost(host string) (string, bool) {
	for _, name := range r.DeviceNames() {
		if r.Devices[name].Host == host {
			return name, true
		}
	}
	return "", false
}
