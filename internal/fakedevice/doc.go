// Package fakedevice is an in-memory StreamMagic device that speaks the SMOIP
// HTTP control API.
//
// It serves the three endpoints the client uses:
//
//	GET /smoip/system/info
//	GET /smoip/system/sources
//	GET /smoip/zone/state?zone=ZONE1[&power=..][&volume_step_change=..]
//	                      [&volume_percent=..][&mute=..][&source=..]
//
// Every response is wrapped in {"data": ...}. Mutations on /smoip/zone/state
// are validated as a whole and applied together; an unknown zone, source or
// malformed value yields 400 and leaves the state untouched.
//
// Faults can be injected per path through a FaultRegistry:
//
//	h := fakedevice.NewHandler(fakedevice.NewDevice())
//	h.Faults.Set(fakedevice.PathState, fakedevice.FaultConfig{StatusCode: 503})
//	srv := httptest.NewServer(h.Router())
//
// The streammagic CLI runs the same handler via "streammagic fake-device".
package fakedevice
