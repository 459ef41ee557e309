// Package ui provides terminal UI components for the streammagic CLI.
//
// The main component is RemoteModel, a Bubble Tea model that acts as a remote
// control for one device:
//
//	p      toggle power
//	+ / -  volume step up / down
//	m      toggle mute
//	tab    next selectable source
//	r      reload identity, sources and state
//	q      quit
//
// Every device call runs as a tea.Cmd. A spinner is shown while it is in
// flight and the zone state is read back after each change.
//
// RunRemote falls back to a plain-text snapshot when stdout is not a
// terminal, so "streammagic remote | cat" still prints something useful.
// PrintError renders client errors with their troubleshooting hint.
package ui
