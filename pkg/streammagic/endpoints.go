package streammagic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	pathSystemInfo    = "/smoip/system/info"
	pathSystemSources = "/smoip/system/sources"
	pathZoneState     = "/smoip/zone/state"
)

// zoneQuery builds "zone=ZONE1&k1=v1&k2=v2". The zone parameter always comes
// first; the remaining pairs keep the given order.
func zoneQuery(pairs ...string) string {
	var b strings.Builder
	b.WriteString("zone=")
	b.WriteString(url.QueryEscape(DefaultZone))
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(pairs[i]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pairs[i+1]))
	}
	return b.String()
}

// GetInfo retrieves the device identity
func (c *Client) GetInfo(ctx context.Context) (Info, error) {
	body, err := c.execute(ctx, http.MethodGet, pathSystemInfo, "")
	if err != nil {
		return Info{}, err
	}
	data, err := payload(body, "data")
	if err != nil {
		return Info{}, err
	}
	return DecodeInfo(data)
}

// GetSources retrieves the device inputs in the device's order
func (c *Client) GetSources(ctx context.Context) ([]Source, error) {
	body, err := c.execute(ctx, http.MethodGet, pathSystemSources, "")
	if err != nil {
		return nil, err
	}
	data, err := payload(body, "data")
	if err != nil {
		return nil, err
	}
	return DecodeSources(data)
}

// GetState retrieves the current zone state. The result is never cached.
func (c *Client) GetState(ctx context.Context) (State, error) {
	body, err := c.execute(ctx, http.MethodGet, pathZoneState, zoneQuery())
	if err != nil {
		return State{}, err
	}
	data, err := payload(body, "data")
	if err != nil {
		return State{}, err
	}
	return DecodeState(data)
}

// Ping checks that the device answers the control API
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetInfo(ctx)
	return err
}

// CurrentSource returns the source whose ID matches the active source in the
// zone state. Both values are fetched fresh.
func (c *Client) CurrentSource(ctx context.Context) (Source, error) {
	state, err := c.GetState(ctx)
	if err != nil {
		return Source{}, err
	}
	sources, err := c.GetSources(ctx)
	if err != nil {
		return Source{}, err
	}
	src, ok := FindSource(sources, state.Source)
	if !ok {
		return Source{}, NewFieldError("data.source", fmt.Sprintf("active source %q is not in the source list", state.Source))
	}
	return src, nil
}

func (c *Client) updateZoneState(ctx context.Context, pairs ...string) error {
	_, err := c.execute(ctx, http.MethodGet, pathZoneState, zoneQuery(pairs...))
	return err
}

// SetPower switches the device on or to standby
func (c *Client) SetPower(ctx context.Context, on bool) error {
	return c.updateZoneState(ctx, "power", strconv.FormatBool(on))
}

// PowerOn switches the device on
func (c *Client) PowerOn(ctx context.Context) error {
	return c.SetPower(ctx, true)
}

// PowerOff switches the device to standby
func (c *Client) PowerOff(ctx context.Context) error {
	return c.SetPower(ctx, false)
}

// VolumeStepUp raises the volume by one step
func (c *Client) VolumeStepUp(ctx context.Context) error {
	return c.updateZoneState(ctx, "volume_step_change", "1")
}

// VolumeStepDown lowers the volume by one step
func (c *Client) VolumeStepDown(ctx context.Context) error {
	return c.updateZoneState(ctx, "volume_step_change", "-1")
}

// SetVolumePercent sets the volume to a percentage in 0-100.
// Out-of-range values fail with a validation error before any request is made.
func (c *Client) SetVolumePercent(ctx context.Context, volume int) error {
	if err := ValidateVolumePercent(volume); err != nil {
		return err
	}
	return c.updateZoneState(ctx, "volume_percent", strconv.Itoa(volume))
}

// SetMute mutes or unmutes the zone
func (c *Client) SetMute(ctx context.Context, mute bool) error {
	return c.updateZoneState(ctx, "mute", strconv.FormatBool(mute))
}

// MuteOn mutes the zone
func (c *Client) MuteOn(ctx context.Context) error {
	return c.SetMute(ctx, true)
}

// MuteOff unmutes the zone
func (c *Client) MuteOff(ctx context.Context) error {
	return c.SetMute(ctx, false)
}

// SetSource selects the given input
func (c *Client) SetSource(ctx context.Context, src Source) error {
	return c.updateZoneState(ctx, "source", src.ID)
}
