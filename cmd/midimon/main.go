// Command midimon lists MIDI ports and prints what arrives on an input, for
// checking a loopback of midistyle's output.
//
//	midimon list               sources and destinations
//	midimon watch              report ports as they come and go
//	midimon sniff "IAC Bus 1"  print Start/Clock/Stop and style messages
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"midistyle/debug"
	"midistyle/midi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		timeout  time.Duration
		debugLog bool
	)
	cmd := &cobra.Command{
		Use:           "midimon",
		Short:         "Inspect MIDI ports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugLog {
				return debug.Enable(debug.DefaultPath())
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Disable()
		},
	}
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", midi.DefaultTimeout, "give up on a hung MIDI driver after this long")
	cmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write a debug log")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List sources and destinations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listPorts(cmd.OutOrStdout(), timeout)
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Report ports as they are added and removed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for change := range midi.Watch(cmd.Context(), time.Second) {
					printChange(cmd.OutOrStdout(), change)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "sniff <source>",
			Short: "Print messages received on a source (index or name)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return sniff(cmd.Context(), cmd.OutOrStdout(), args[0], timeout)
			},
		},
	)
	return cmd
}

func listPorts(out io.Writer, timeout time.Duration) error {
	srcs, err := midi.ListSources(timeout)
	if err != nil {
		return err
	}
	dests, err := midi.ListDestinations(timeout)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Sources ===")
	for _, s := range srcs {
		fmt.Fprintln(out, s)
	}
	fmt.Fprintln(out, "\n=== Destinations ===")
	for _, d := range dests {
		fmt.Fprintln(out, d)
	}
	return nil
}

func printChange(out io.Writer, c midi.PortChange) {
	stamp := time.Now().Format("15:04:05")
	for _, name := range c.Added {
		fmt.Fprintf(out, "%s  + %s\n", stamp, name)
	}
	for _, name := range c.Removed {
		fmt.Fprintf(out, "%s  - %s\n", stamp, name)
	}
}

func sniff(ctx context.Context, out io.Writer, address string, timeout time.Duration) error {
	l, err := midi.Listen(address, timeout)
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Fprintf(out, "listening on %s, Ctrl+C to stop\n", l.Name())
	var s sniffer
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-l.Messages():
			if line, ok := s.describe(r.Message); ok {
				fmt.Fprintf(out, "%10.3f  %s\n", r.At.Seconds(), line)
			}
		}
	}
}
