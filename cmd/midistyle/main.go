// Command midistyle turns a style file into Yamaha style control events and
// either plays them on a MIDI destination or saves them as a Standard MIDI
// File.
//
// Usage:
//
//	midistyle -i song.txt -p "PSR-S975"     play on a destination
//	midistyle -i song.txt -o song.mid       save as SMF
//	midistyle -l                            list destinations
//	midistyle tokens                        style file reference
//
// Each line of a style file is "<beat offset> <token>":
//
//	000 TS44
//	000 MAIN_A
//	000 C
//	004 Am7
//	008 STOP
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
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
