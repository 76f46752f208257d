package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"midistyle/config"
	"midistyle/debug"
	"midistyle/midi"
	"midistyle/playback"
	"midistyle/style"
	"midistyle/theme"
	"midistyle/timeline"
	"midistyle/tui"
	"midistyle/widgets"
)

type options struct {
	input       string
	output      string
	port        string
	tempo       uint32
	list        bool
	timeSig     string
	configPath  string
	debug       bool
	ui          bool
	dump        bool
	noMetronome bool
	ppqn        uint16
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "midistyle",
		Short: "Play or save Yamaha style control sequences",
		Long: `midistyle reads a style file (one "<offset> <token>" per line, offset in
beats) and either streams section, chord and tempo changes to a MIDI
destination in sync with MIDI clock, or saves them as a Standard MIDI File.

Configuration is read from ~/.config/midistyle/config.yaml; flags win.
Run 'midistyle tokens' for the token reference.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "style file to read")
	f.StringVarP(&o.output, "output", "o", "", "save as Standard MIDI File instead of playing")
	f.StringVarP(&o.port, "port", "p", "", "destination port (index or name)")
	f.Uint32VarP(&o.tempo, "tempo", "t", 0, "fixed tempo in BPM, ignores tempo lines")
	f.BoolVarP(&o.list, "list", "l", false, "list destinations and exit")
	f.StringVar(&o.timeSig, "time-signature", "", "initial time signature N/D (default 4/4)")
	f.StringVar(&o.configPath, "config", "", "config file (default ~/.config/midistyle/config.yaml)")
	f.BoolVar(&o.debug, "debug", false, "write a debug log")
	f.BoolVar(&o.ui, "ui", false, "show the live monitor while playing")
	f.BoolVar(&o.dump, "dump", false, "print the decoded timeline")
	f.BoolVar(&o.noMetronome, "no-metronome", false, "no count-in and clicks in saved files")
	f.Uint16Var(&o.ppqn, "ppqn", 0, "pulses per quarter note (default from config)")
	cmd.MarkFlagsMutuallyExclusive("output", "port")

	cmd.AddCommand(newTokensCmd())
	return cmd
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Show the style file token reference",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), widgets.RenderKeyHelp(widgets.GrammarHelp()))
		},
	}
}

func (o *options) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadWithPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.ppqn > 0 {
		cfg.PPQN = o.ppqn
	}
	if o.port != "" {
		cfg.Port = o.port
	}
	if o.noMetronome {
		cfg.Metronome = false
	}
	return cfg, nil
}

func (o *options) run(ctx context.Context, out io.Writer) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	if o.debug {
		if err := debug.Enable(cfg.DebugLog); err != nil {
			return errors.Wrap(err, "enable debug log")
		}
		defer debug.Disable()
	}

	if o.list {
		return listDestinations(out)
	}
	if o.input == "" {
		return errors.New("no input file, use -i")
	}

	opts, err := o.builderOptions()
	if err != nil {
		return err
	}
	tl, err := loadTimeline(o.input, cfg.PPQN, opts...)
	if err != nil {
		return err
	}

	pal, err := theme.Load(cfg.Palette)
	if err != nil {
		return err
	}
	th := theme.New(pal)

	fmt.Fprintln(out, widgets.RenderSummary(timeline.Summarize(tl), th))
	if o.dump {
		fmt.Fprintln(out, widgets.RenderTimeline(tl, th))
	}

	if o.output != "" {
		return save(tl, o.output, cfg.Metronome, out)
	}
	if cfg.Port == "" {
		return errors.New("no destination, use -p, -o or set port in the config")
	}
	return o.play(ctx, tl, cfg, th, out)
}

func (o *options) builderOptions() ([]timeline.Option, error) {
	var opts []timeline.Option
	if o.tempo > 0 {
		if o.tempo < 4 {
			return nil, errors.Errorf("tempo %d BPM is too slow", o.tempo)
		}
		opts = append(opts, timeline.WithTempo(o.tempo))
	}
	if o.timeSig != "" {
		ts, err := parseTimeSignature(o.timeSig)
		if err != nil {
			return nil, err
		}
		opts = append(opts, timeline.WithTimeSignature(ts))
	}
	return opts, nil
}

// parseTimeSignature accepts N/4 and N/8 with N from 1 to 9
func parseTimeSignature(s string) (style.TimeSignature, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return style.TimeSignature{}, errors.Errorf("time signature %q: want N/D", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > 9 {
		return style.TimeSignature{}, errors.Errorf("time signature %q: numerator must be 1-9", s)
	}
	ts := style.TimeSignature{Numerator: uint8(n)}
	switch den {
	case "4":
		ts.DenominatorPow2 = 2
	case "8":
		ts.DenominatorPow2 = 3
	default:
		return style.TimeSignature{}, errors.Errorf("time signature %q: denominator must be 4 or 8", s)
	}
	return ts, nil
}

// loadTimeline decodes a style file. Undecodable lines are skipped; structural
// errors stop the load.
func loadTimeline(path string, ppqn uint16, opts ...timeline.Option) (*timeline.Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	defer f.Close()

	b := timeline.NewBuilder(ppqn, opts...)
	sc := style.NewScanner(f)
	for sc.Scan() {
		l := sc.Line()
		if err := b.Push(l.Offset, l.Event); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, l.Number)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	debug.Log("timeline", "%s: %d lines skipped", path, sc.Skipped())
	return b.Finish(), nil
}

func save(tl *timeline.Timeline, path string, metronome bool, out io.Writer) error {
	if metronome {
		n := timeline.AddMetronome(tl)
		debug.Log("timeline", "metronome: %d clicks", n)
	}
	if err := timeline.WriteFile(tl, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", path)
	return nil
}

func listDestinations(out io.Writer) error {
	dests, err := midi.ListDestinations(midi.DefaultTimeout)
	if err != nil {
		return err
	}
	if len(dests) == 0 {
		fmt.Fprintln(out, "no MIDI destinations")
		return nil
	}
	fmt.Fprintln(out, "  #  Name")
	for _, d := range dests {
		fmt.Fprintln(out, d)
	}
	return nil
}

func (o *options) play(ctx context.Context, tl *timeline.Timeline, cfg *config.Config, th *theme.Theme, out io.Writer) error {
	poll, err := cfg.Poll()
	if err != nil {
		return err
	}
	port, err := midi.OpenDestination(cfg.Port, midi.DefaultTimeout)
	if err != nil {
		return err
	}
	defer port.Close()

	q := playback.NewPortQueue(port.Send, cfg.QueueCapacity)
	if o.ui {
		err = playMonitored(ctx, tl, q, poll, o.input+" → "+port.Name(), th)
	} else {
		fmt.Fprintf(out, "playing on %s, Ctrl+C to stop\n", port.Name())
		report := playback.ReporterFunc(func(p playback.Progress) {
			fmt.Fprintf(out, "\r%s", p)
		})
		err = playback.New(tl, q, playback.WithPollInterval(poll), playback.WithReporter(report)).Run(ctx)
		fmt.Fprintln(out)
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "stopped")
		return nil
	}
	return err
}

func playMonitored(ctx context.Context, tl *timeline.Timeline, q playback.Queue, poll time.Duration, title string, th *theme.Theme) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan playback.Progress, 8)
	done := make(chan error, 1)
	sched := playback.New(tl, q, playback.WithPollInterval(poll), playback.WithReporter(playback.ChanReporter(updates)))
	go func() {
		done <- sched.Run(ctx)
	}()

	m := tui.NewModel(title, timeline.Summarize(tl), th, updates, done, cancel)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return errors.Wrap(err, "monitor")
	}
	return final.(tui.Model).Err()
}
