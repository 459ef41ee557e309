package streammagic

import (
	"context"
	"net/http"
	"testing"
)

func TestZoneQuery(t *testing.T) {
	tests := []struct {
		pairs []string
		want  string
	}{
		{nil, "zone=ZONE1"},
		{[]string{"power", "true"}, "zone=ZONE1&power=true"},
		{[]string{"volume_step_change", "-1"}, "zone=ZONE1&volume_step_change=-1"},
		{[]string{"source", "SPDIF COAX", "mute", "false"}, "zone=ZONE1&source=SPDIF+COAX&mute=false"},
		{[]string{"dangling"}, "zone=ZONE1"},
	}
	for _, tt := range tests {
		if got := zoneQuery(tt.pairs...); got != tt.want {
			t.Errorf("zoneQuery(%v) = %q, want %q", tt.pairs, got, tt.want)
		}
	}
}

func TestZoneMutations_Query(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(`{}`))
	c := newTestClient(t, ds.host())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"PowerOn", func() error { return c.PowerOn(ctx) }, "zone=ZONE1&power=true"},
		{"PowerOff", func() error { return c.PowerOff(ctx) }, "zone=ZONE1&power=false"},
		{"VolumeStepUp", func() error { return c.VolumeStepUp(ctx) }, "zone=ZONE1&volume_step_change=1"},
		{"VolumeStepDown", func() error { return c.VolumeStepDown(ctx) }, "zone=ZONE1&volume_step_change=-1"},
		{"SetVolumePercent", func() error { return c.SetVolumePercent(ctx, 55) }, "zone=ZONE1&volume_percent=55"},
		{"MuteOn", func() error { return c.MuteOn(ctx) }, "zone=ZONE1&mute=true"},
		{"MuteOff", func() error { return c.MuteOff(ctx) }, "zone=ZONE1&mute=false"},
		{"SetSource", func() error { return c.SetSource(ctx, Source{ID: "SPOTIFY"}) }, "zone=ZONE1&source=SPOTIFY"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("%s() error = %v", tt.name, err)
			}
			reqs := ds.recorded()
			if len(reqs) != i+1 {
				t.Fatalf("expected %d requests, got %d", i+1, len(reqs))
			}
			got := reqs[i]
			if got.Path != pathZoneState || got.Query != tt.want {
				t.Errorf("request = %s?%s, want %s?%s", got.Path, got.Query, pathZoneState, tt.want)
			}
		})
	}
}

func TestSetVolumePercent_Bounds(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(`{}`))
	c := newTestClient(t, ds.host())
	ctx := context.Background()

	for _, v := range []int{-1, 101} {
		err := c.SetVolumePercent(ctx, v)
		if !IsValidationError(err) {
			t.Errorf("SetVolumePercent(%d) error = %v, want validation error", v, err)
		}
	}
	if n := len(ds.recorded()); n != 0 {
		t.Fatalf("out-of-range volume sent %d requests, want 0", n)
	}

	for _, v := range []int{0, 100} {
		if err := c.SetVolumePercent(ctx, v); err != nil {
			t.Errorf("SetVolumePercent(%d) error = %v", v, err)
		}
	}
	if n := len(ds.recorded()); n != 2 {
		t.Errorf("boundary volumes sent %d requests, want 2", n)
	}
}

func TestGetState_SendsZone(t *testing.T) {
	ds := newDeviceServer(t, jsonHandler(stateJSON))
	c := newTestClient(t, ds.host())

	state, err := c.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if !state.Power || state.VolumePercent != 40 {
		t.Errorf("GetState() = %+v", state)
	}
	if q := ds.recorded()[0].Query; q != "zone=ZONE1" {
		t.Errorf("query = %q, want zone=ZONE1", q)
	}
}

func TestGetInfoAndSources(t *testing.T) {
	ds := newDeviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathSystemInfo:
			jsonHandler(infoJSON)(w, r)
		case pathSystemSources:
			jsonHandler(sourcesJSON)(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	c := newTestClient(t, ds.host())
	ctx := context.Background()

	info, err := c.GetInfo(ctx)
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if info.APIVersion != "1.8" {
		t.Errorf("APIVersion = %q, want 1.8", info.APIVersion)
	}

	sources, err := c.GetSources(ctx)
	if err != nil {
		t.Fatalf("GetSources() error = %v", err)
	}
	if len(sources) != 2 || sources[0].ID != "AIRPLAY" {
		t.Errorf("GetSources() = %+v", sources)
	}

	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestCurrentSource_UnknownActive(t *testing.T) {
	ds := newDeviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathZoneState:
			jsonHandler(`{"data":{"source":"TUNER","power":true,"pre_amp_mode":false,"pre_amp_state":false,"mute":false,"volume_step":10,"volume_percent":10}}`)(w, r)
		default:
			jsonHandler(sourcesJSON)(w, r)
		}
	})
	c := newTestClient(t, ds.host())

	_, err := c.CurrentSource(context.Background())
	e, ok := AsError(err)
	if !ok || e.Reason != ReasonField || e.Field != "data.source" {
		t.Errorf("CurrentSource() error = %v, want field error on data.source", err)
	}
}
