package runtime

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/screeps-wasm/engine"
	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/host"
)

// ErrCPUBudget matches tick errors caused by a guest overrunning its budget.
var ErrCPUBudget = &errors.Error{Phase: errors.PhaseTick, Kind: errors.KindBudget}

// ErrGuestTrap matches tick errors caused by a guest trap or exit.
var ErrGuestTrap = &errors.Error{Phase: errors.PhaseTick, Kind: errors.KindTrap}

// TickReport is what one tick produced.
type TickReport struct {
	Visuals       map[string][]host.Visual `json:"visuals,omitempty"`
	Error         string                   `json:"error,omitempty"`
	Calls         []host.Call              `json:"calls"`
	Logs          []host.LogEntry          `json:"logs,omitempty"`
	Arena         host.ArenaStats          `json:"arena"`
	Duration      time.Duration            `json:"duration_ns"`
	LeakedHandles int                      `json:"leaked_handles"`
	Tick          uint32                   `json:"tick"`
	Restarted     bool                     `json:"restarted,omitempty"`
}

// Instance is a loaded guest bound to a world.
// It is NOT safe for concurrent use from multiple goroutines.
type Instance struct {
	rt     *Runtime
	module *engine.Module
	inst   *engine.Instance
	bridge *host.Bridge
	world  *host.World
	logger *zap.Logger
	closed bool
}

// start instantiates the guest with a fresh bridge and runs screeps_init.
func (i *Instance) start(ctx context.Context) error {
	b := host.NewBridge(i.world, i.rt.cfg.Logger)
	b.LimitArena(i.rt.cfg.ArenaLimit)

	inst, err := i.module.Instantiate(ctx, &engine.InstanceConfig{
		Stdout: i.rt.cfg.Stdout,
		Stderr: i.rt.cfg.Stderr,
	})
	if err != nil {
		return err
	}

	callCtx, cancel := i.rt.budget(host.WithBridge(ctx, b))
	_, err = inst.Call(callCtx, ExportInit)
	cancel()
	abandon := func() {
		inst.Close(ctx)
		b.Handles().Close()
	}
	if err != nil {
		abandon()
		if regErr := b.Registry().Err(); regErr != nil {
			return errors.Registration("registry", regErr)
		}
		if engine.IsInterrupted(err) && ctx.Err() == nil {
			return errors.Budget(i.world.Tick(), err)
		}
		return errors.Trap(ExportInit, i.world.Tick(), err)
	}

	if err := b.Registry().Freeze(); err != nil {
		abandon()
		return errors.Registration("registry", err)
	}
	if !b.Arena().Set() {
		abandon()
		return errors.New(errors.PhaseLoad, errors.KindNotInitialized).
			Object("arena").
			Detail("screeps_init returned without calling set_arena").
			Build()
	}

	i.inst, i.bridge = inst, b
	return nil
}

// discard drops the running guest and closes its handle table, so values
// issued to it are dropped and nothing more can be created there. The next
// Tick starts a new guest.
func (i *Instance) discard(ctx context.Context) {
	if i.inst != nil {
		i.inst.Close(ctx)
	}
	if i.bridge != nil {
		if err := i.bridge.Handles().Close(); err != nil {
			i.logger.Warn("closing handle table", zap.Error(err))
		}
	}
	i.inst, i.bridge = nil, nil
}

// Bridge returns the bridge of the current guest, or nil between a failed
// tick and the restart.
func (i *Instance) Bridge() *host.Bridge {
	if i.inst == nil {
		return nil
	}
	return i.bridge
}

func (i *Instance) World() *host.World {
	return i.world
}

// Running reports whether a guest is instantiated.
func (i *Instance) Running() bool {
	return i.inst != nil
}

// Tick runs one game tick. Budget overruns return an error matching
// ErrCPUBudget and traps one matching ErrGuestTrap; in both cases the
// report is still returned, the world advances and the guest restarts on
// the next tick. A restart whose init traps or overruns is reported the same
// way, with Restarted set. Other errors leave the world where it was.
func (i *Instance) Tick(ctx context.Context) (*TickReport, error) {
	if i.closed {
		return nil, errors.NotInitialized(errors.PhaseTick, "instance")
	}

	report := &TickReport{Tick: i.world.Tick()}
	if i.inst == nil {
		report.Restarted = true
		if err := i.start(ctx); err != nil {
			if ctx.Err() != nil || !isTickFailure(err) {
				return nil, err
			}
			// A guest that traps or overruns in init costs the tick like a
			// failing loop does; the world moves on and the next tick retries.
			report.Error = err.Error()
			i.logger.Warn("guest restart failed", zap.Uint32("tick", report.Tick), zap.Error(err))
			i.world.Advance()
			return report, err
		}
		i.logger.Info("guest restarted", zap.Uint32("tick", report.Tick))
	}

	b := i.bridge
	stats, err := b.BeginTick(i.inst.Memory())
	if err != nil {
		return nil, err
	}
	report.Arena = stats
	if stats.Truncated > 0 {
		i.logger.Warn("arena full, objects dropped",
			zap.Uint32("tick", report.Tick),
			zap.Int("truncated", stats.Truncated))
	}

	callCtx, cancel := i.rt.budget(host.WithBridge(ctx, b))
	start := time.Now()
	_, callErr := i.inst.Call(callCtx, ExportLoop)
	report.Duration = time.Since(start)
	cancel()

	report.Calls = b.Trace()
	report.Visuals = b.Visuals().Snapshot()
	report.Logs = b.Logs()
	report.LeakedHandles = b.EndTick()

	var tickErr error
	if callErr != nil {
		if ctx.Err() != nil {
			i.discard(ctx)
			return report, ctx.Err()
		}
		if engine.IsInterrupted(callErr) {
			tickErr = errors.Budget(report.Tick, callErr)
		} else {
			tickErr = errors.Trap(ExportLoop, report.Tick, callErr)
		}
		report.Error = tickErr.Error()
		i.logger.Warn("tick aborted", zap.Uint32("tick", report.Tick), zap.Error(tickErr))
		i.discard(ctx)
	}

	i.world.Advance()
	i.logger.Debug("tick done",
		zap.Uint32("tick", report.Tick),
		zap.Int("calls", len(report.Calls)),
		zap.Int("records", stats.Written),
		zap.Duration("duration", report.Duration))
	return report, tickErr
}

// Run calls Tick n times, handing each report to fn. Budget overruns and
// traps are carried in the report and do not stop the run; any other error
// or an error from fn does.
func (i *Instance) Run(ctx context.Context, n int, fn func(*TickReport) error) error {
	for range n {
		report, err := i.Tick(ctx)
		if err != nil && !isTickFailure(err) {
			return err
		}
		if fn != nil && report != nil {
			if err := fn(report); err != nil {
				return err
			}
		}
	}
	return nil
}

func isTickFailure(err error) bool {
	return stderrors.Is(err, ErrCPUBudget) || stderrors.Is(err, ErrGuestTrap)
}

// Close releases the guest. It is safe to call more than once.
func (i *Instance) Close(ctx context.Context) error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.discard(ctx)
	return i.module.Close(ctx)
}
