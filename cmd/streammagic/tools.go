package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/streammagic/internal/fakedevice"
	"github.com/muurk/streammagic/internal/trace"
)

func init() {
	rootCmd.AddCommand(fakeDeviceCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(deviceCmd)

	traceCmd.AddCommand(traceDumpCmd)

	deviceCmd.AddCommand(deviceAddCmd)
	deviceCmd.AddCommand(deviceListCmd)
	deviceCmd.AddCommand(deviceRemoveCmd)
}

// fake-device flags
var (
	listenAddr  string
	fakeLatency time.Duration
)

// fakeDeviceCmd runs a local simulator of the control API
var fakeDeviceCmd = &cobra.Command{
	Use:   "fake-device",
	Short: "Run a simulated StreamMagic device",
	Long: `Run an in-memory StreamMagic device that serves the SMOIP control API.

Useful for trying the CLI without hardware:

  streammagic fake-device --listen 127.0.0.1:8080 &
  streammagic --device 127.0.0.1:8080 power on`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := fakedevice.New(&fakedevice.Config{Addr: listenAddr, Latency: fakeLatency}, fakedevice.NewDevice())
		if err != nil {
			return err
		}
		fmt.Printf("Fake device listening on http://%s\n", srv.Addr())
		return srv.Start(cmd.Context())
	},
}

func init() {
	fakeDeviceCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:8080", "Listen address")
	fakeDeviceCmd.Flags().DurationVar(&fakeLatency, "latency", 0, "Delay added to every response")
}

// traceCmd groups trace file commands
var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect trace files written with --trace",
}

var failedOnly bool

var traceDumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the requests recorded in a trace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := trace.NewReader(args[0])
		if err != nil {
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		defer r.Close()
		if failedOnly {
			r.FailedOnly()
		}
		return dumpTrace(os.Stdout, r)
	},
}

func init() {
	traceDumpCmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed attempts")
}

func dumpTrace(w io.Writer, r *trace.Reader) error {
	enc := json.NewEncoder(w)
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read trace: %w", err)
		}

		if outputFormat == "json" {
			if err := enc.Encode(ev); err != nil {
				return err
			}
			continue
		}

		status := fmt.Sprintf("%d", ev.StatusCode)
		if ev.StatusCode == 0 {
			status = "---"
		}
		fmt.Fprintf(w, "%s %s #%d %s %s %s %v\n",
			ev.Timestamp.Format(time.RFC3339Nano), shortID(ev.RequestID), ev.Attempt,
			ev.Method, ev.URL, status, ev.Duration.Round(time.Millisecond))
		if ev.Failed() && outputFormat == "detailed" {
			fmt.Fprintf(w, "    %s\n", ev.Error)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// deviceCmd manages saved devices
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage saved devices",
}

var makeDefault bool

var deviceAddCmd = &cobra.Command{
	Use:   "add <name> <host>",
	Short: "Save a device under a name",
	Example: `  streammagic device add lounge 192.168.1.20 --default
  streammagic --device lounge state`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		if _, err := reg.AddDevice(args[0], args[1]); err != nil {
			return err
		}
		if makeDefault || reg.Preferences.DefaultDevice == "" {
			reg.Preferences.DefaultDevice = args[0]
		}
		if err := saveRegistry(reg); err != nil {
			return err
		}
		fmt.Printf("Saved %s -> %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	deviceAddCmd.Flags().BoolVar(&makeDefault, "default", false, "Make this the default device")
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(reg.Devices)
		}
		if len(reg.Devices) == 0 {
			fmt.Println("No saved devices. Add one with 'streammagic device add <name> <host>'.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tNAME\tHOST\tMODEL\tLAST SEEN")
		for _, name := range reg.DeviceNames() {
			d := reg.Devices[name]
			marker := ""
			if name == reg.Preferences.DefaultDevice {
				marker = "*"
			}
			seen := "-"
			if !d.LastSeen.IsZero() {
				seen = d.LastSeen.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, name, d.Host, d.Model, seen)
		}
		return tw.Flush()
	},
}

var deviceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget a saved device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		if !reg.RemoveDevice(args[0]) {
			return fmt.Errorf("no saved device named %q", args[0])
		}
		if err := saveRegistry(reg); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}
