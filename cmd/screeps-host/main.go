// Command screeps-host loads a guest module, runs it against a scenario
// world for a number of ticks and prints what every tick produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/screeps-wasm/config"
	"github.com/wippyai/screeps-wasm/host"
	"github.com/wippyai/screeps-wasm/runtime"
)

var (
	tickStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type options struct {
	wasm        string
	world       string
	config      string
	record      string
	logLevel    string
	ticks       int
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.wasm, "wasm", "", "Path to the guest wasm module")
	flag.StringVar(&opts.world, "world", "", "Path to a YAML scenario (overrides world_path)")
	flag.StringVar(&opts.config, "config", "", "Path to a config file")
	flag.StringVar(&opts.record, "record", "", "Write a zstd tick recording to this path (overrides record_path)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (overrides log_level)")
	flag.IntVar(&opts.ticks, "ticks", -1, "Ticks to run (overrides ticks)")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive tick stepper")
	flag.Parse()

	if opts.wasm == "" {
		fmt.Fprintln(os.Stderr, "Usage: screeps-host -wasm <guest.wasm> -world <scenario.yaml> [-ticks n] [-record out.zst]")
		fmt.Fprintln(os.Stderr, "       screeps-host -wasm <guest.wasm> -world <scenario.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	if opts.world != "" {
		cfg.WorldPath = opts.world
	}
	if opts.record != "" {
		cfg.RecordPath = opts.record
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.ticks >= 0 {
		cfg.Ticks = opts.ticks
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.WorldPath == "" {
		return fmt.Errorf("no world: pass -world or set world_path")
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wasm, err := os.ReadFile(opts.wasm)
	if err != nil {
		return fmt.Errorf("read guest: %w", err)
	}
	sc, err := host.LoadScenarioFile(cfg.WorldPath)
	if err != nil {
		return err
	}
	world, err := sc.World()
	if err != nil {
		return err
	}

	var rec *runtime.Recorder
	if cfg.RecordPath != "" {
		rec, err = runtime.CreateRecorder(cfg.RecordPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error("close recording", zap.Error(err))
			}
		}()
	}

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		// The TUI owns the terminal; runtime logs would tear the view.
		logger = zap.NewNop()
	}

	rtCfg := cfg.Runtime(logger)
	rtCfg.Stdout = os.Stderr
	rtCfg.Stderr = os.Stderr
	rt, err := runtime.New(ctx, rtCfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	inst, err := rt.Load(ctx, wasm, world)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	if opts.interactive {
		return runInteractive(ctx, opts.wasm, inst, rec)
	}

	color := term.IsTerminal(int(os.Stdout.Fd()))
	return inst.Run(ctx, cfg.Ticks, func(r *runtime.TickReport) error {
		fmt.Println(summarize(r, color))
		if rec != nil {
			return rec.Record(r)
		}
		return nil
	})
}

// summarize renders one report as a short block of text.
func summarize(r *runtime.TickReport, color bool) string {
	paint := func(s lipgloss.Style, v string) string {
		if !color {
			return v
		}
		return s.Render(v)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %d objects  %d calls  %d visuals  %s",
		paint(tickStyle, fmt.Sprintf("tick %d", r.Tick)),
		r.Arena.Written, len(r.Calls), visualCount(r), r.Duration)
	if r.LeakedHandles > 0 {
		fmt.Fprintf(&b, "  %d handles leaked", r.LeakedHandles)
	}
	if r.Restarted {
		b.WriteString("  " + paint(mutedStyle, "(restarted)"))
	}
	if r.Error != "" {
		b.WriteString("\n  " + paint(errStyle, r.Error))
	}
	for _, c := range r.Calls {
		st := paint(okStyle, c.Status.String())
		if c.Status != 0 {
			st = paint(errStyle, c.Status.String())
		}
		fmt.Fprintf(&b, "\n  %-24s %s", c.Func, st)
		if c.Detail != "" {
			b.WriteString(" " + paint(mutedStyle, c.Detail))
		}
	}
	for _, l := range r.Logs {
		fmt.Fprintf(&b, "\n  [%s] %s", l.Level, l.Message)
	}
	return b.String()
}

func visualCount(r *runtime.TickReport) int {
	n := 0
	for _, v := range r.Visuals {
		n += len(v)
	}
	return n
}

// rooms returns the rooms of r in name order.
func rooms(r *runtime.TickReport) []string {
	out := make([]string, 0, len(r.Visuals))
	for room := range r.Visuals {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}
