package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/streammagic/internal/logging"
	"github.com/muurk/streammagic/internal/ui"
	"github.com/muurk/streammagic/pkg/streammagic"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(remoteCmd)
}

// infoCmd shows the device identity
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device information",
	Example: `  streammagic info --device 192.168.1.20
  streammagic info --device lounge --format json`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.GetInfo(cmd.Context())
	if err != nil {
		return err
	}
	rememberDevice(client.Host(), info)

	switch outputFormat {
	case "compact":
		fmt.Println(info.Summary())
	case "json":
		return printJSON(info)
	default:
		if ui.IsTerminal(os.Stdout) {
			fmt.Println(ui.DeviceCard(info, client.Host()).Render())
			return nil
		}
		fmt.Print(info.FormatDetailed())
	}
	return nil
}

// rememberDevice records identity details for a saved device
func rememberDevice(host string, info streammagic.Info) {
	reg, err := loadRegistry()
	if err != nil {
		return
	}
	name, ok := reg.NameForHost(host)
	if !ok {
		return
	}
	reg.UpdateDeviceSeen(name, info.Model, info.UDN)
	if err := saveRegistry(reg); err != nil {
		logging.Warn("Failed to update saved device", zap.String("device", name), zap.Error(err))
	}
}

// sourcesCmd lists the device inputs
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List device sources",
	Long: `List the inputs the device offers. The active source is marked with '*'.
Sources the device hides from its own menus are omitted unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

var showAllSources bool

func init() {
	sourcesCmd.Flags().BoolVar(&showAllSources, "all", false, "Include sources hidden from the device menus")
}

func runSources(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	sources, err := client.GetSources(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(sources)
	}

	state, err := client.GetState(cmd.Context())
	if err != nil {
		return err
	}

	if showAllSources {
		for i := range sources {
			sources[i].UISelectable = true
		}
	}

	if outputFormat == "compact" {
		var ids []string
		for _, s := range sources {
			if s.UISelectable {
				ids = append(ids, s.ID)
			}
		}
		fmt.Println(strings.Join(ids, " "))
		return nil
	}
	fmt.Print(streammagic.FormatSources(sources, state.Source))
	return nil
}

// stateCmd shows the zone state
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show power, source, volume and mute state",
	Args:  cobra.NoArgs,
	RunE:  runState,
}

func runState(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	state, err := client.GetState(cmd.Context())
	if err != nil {
		return err
	}
	return printState(state)
}

func printState(state streammagic.State) error {
	switch outputFormat {
	case "compact":
		fmt.Println(state.FormatCompact())
	case "json":
		return printJSON(state)
	default:
		fmt.Print(state.FormatDetailed())
	}
	return nil
}

// powerCmd switches the device on or to standby
var powerCmd = &cobra.Command{
	Use:       "power on|off",
	Short:     "Switch the device on or to standby",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		return mutate(cmd.Context(), func(ctx context.Context, c *streammagic.Client) error {
			return c.SetPower(ctx, on)
		})
	},
}

// volumeCmd steps or sets the volume
var volumeCmd = &cobra.Command{
	Use:   "volume up|down|<0-100>",
	Short: "Step the volume or set it as a percentage",
	Example: `  streammagic volume up
  streammagic volume 35`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var op func(context.Context, *streammagic.Client) error

		switch strings.ToLower(args[0]) {
		case "up", "+":
			op = func(ctx context.Context, c *streammagic.Client) error { return c.VolumeStepUp(ctx) }
		case "down", "-":
			op = func(ctx context.Context, c *streammagic.Client) error { return c.VolumeStepDown(ctx) }
		default:
			percent, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid volume %q: want up, down or a number 0-100", args[0])
			}
			// Checked before connecting so a bad value never reaches the device
			if err := streammagic.ValidateVolumePercent(percent); err != nil {
				return err
			}
			op = func(ctx context.Context, c *streammagic.Client) error { return c.SetVolumePercent(ctx, percent) }
		}

		return mutate(cmd.Context(), op)
	},
}

// muteCmd mutes or unmutes the zone
var muteCmd = &cobra.Command{
	Use:       "mute on|off",
	Short:     "Mute or unmute",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mute, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		return mutate(cmd.Context(), func(ctx context.Context, c *streammagic.Client) error {
			return c.SetMute(ctx, mute)
		})
	},
}

// sourceCmd selects an input
var sourceCmd = &cobra.Command{
	Use:   "source <id>",
	Short: "Select a source by id (see 'streammagic sources')",
	Example: `  streammagic source AIRPLAY
  streammagic source spdif_coax`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.ToUpper(args[0])
		return mutate(cmd.Context(), func(ctx context.Context, c *streammagic.Client) error {
			sources, err := c.GetSources(ctx)
			if err != nil {
				return err
			}
			src, ok := streammagic.FindSource(sources, id)
			if !ok {
				ids := make([]string, 0, len(sources))
				for _, s := range sources {
					ids = append(ids, s.ID)
				}
				return fmt.Errorf("unknown source %q (available: %s)", id, strings.Join(ids, ", "))
			}
			return c.SetSource(ctx, src)
		})
	},
}

// mutate runs op and prints the resulting zone state
func mutate(ctx context.Context, op func(context.Context, *streammagic.Client) error) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := op(ctx, client); err != nil {
		return err
	}

	state, err := client.GetState(ctx)
	if err != nil {
		return err
	}
	return printState(state)
}

// remoteCmd launches the interactive remote
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Interactive remote control",
	Long: `Launch an interactive remote control for the device.

Keys: p power, +/- volume, m mute, tab next source, r refresh, q quit.
When stdout is not a terminal the current state is printed instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()

		return ui.RunRemote(cmd.Context(), client, client.Host(), os.Stdout)
	},
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q: want on or off", s)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
