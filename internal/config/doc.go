// Package config manages the streammagic CLI configuration file.
//
// The file stores named devices (so "--device lounge" can stand in for an IP
// address) and preferences such as the default device, request timeout and
// retry count. The library itself never reads it.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/streammagic/config.yaml or $HOME/.config/streammagic/config.yaml
//   - macOS: $HOME/.config/streammagic/config.yaml
//   - Windows: %LOCALAPPDATA%\streammagic\config.yaml
//
// A file passed explicitly may be YAML or TOML; the extension decides.
//
// # Usage Example
//
//	registry, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
//	if _, err := registry.AddDevice("lounge", "192.168.1.20"); err != nil {
//	    return err
//	}
//	registry.Preferences.DefaultDevice = "lounge"
//
//	if err := registry.Save(); err != nil {
//	    return err
//	}
//
//	host, err := registry.ResolveHost("lounge") // "192.168.1.20"
//
// Saves are atomic (temporary file plus rename) and serialized by a mutex.
package config
