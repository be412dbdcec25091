package runtime

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/screeps-wasm/engine"
	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/host"
)

// Guest exports the runtime calls.
const (
	ExportInit = "screeps_init"
	ExportLoop = "screeps_loop"
)

// Config holds configuration for a Runtime.
type Config struct {
	// Logger receives runtime and bridge logs. Nil disables logging.
	Logger *zap.Logger

	// Stdout and Stderr receive guest WASI output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the
	// wazero default.
	MemoryLimitPages uint32

	// ArenaLimit caps how many arena bytes the host fills. 0 means the
	// whole guest-provided arena.
	ArenaLimit uint32

	// TickBudget bounds each screeps_init and screeps_loop call. 0 means
	// unbounded.
	TickBudget time.Duration
}

type Runtime struct {
	engine *engine.Engine
	logger *zap.Logger
	cfg    Config
}

// New creates a runtime. A nil cfg uses the defaults.
func New(ctx context.Context, cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: cfg.Logger, MemoryLimitPages: cfg.MemoryLimitPages})
	if err != nil {
		return nil, errors.Load("create engine", err)
	}
	if err := eng.InitWASI(ctx); err != nil {
		eng.Close(ctx)
		return nil, err
	}
	if err := host.Define(ctx, eng); err != nil {
		eng.Close(ctx)
		return nil, err
	}

	return &Runtime{
		engine: eng,
		logger: logger.With(zap.String("component", "runtime")),
		cfg:    *cfg,
	}, nil
}

// Engine exposes the underlying engine.
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// Close releases all runtime resources.
// All instances must be closed before calling this.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}

// Load compiles wasm, instantiates it over world and runs screeps_init.
// It fails if the guest lacks either export, if init fails, or if any
// layout registration failed.
func (r *Runtime) Load(ctx context.Context, wasm []byte, world *host.World) (*Instance, error) {
	if world == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil world")
	}
	mod, err := r.engine.Compile(ctx, wasm)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{ExportInit, ExportLoop} {
		if !mod.HasExport(name) {
			mod.Close(ctx)
			return nil, errors.NotFound(errors.PhaseLoad, "export", name)
		}
	}

	inst := &Instance{
		rt:     r,
		module: mod,
		world:  world,
		logger: r.logger,
	}
	if err := inst.start(ctx); err != nil {
		mod.Close(ctx)
		return nil, err
	}
	r.logger.Info("guest loaded",
		zap.Uint32("stride", inst.bridge.Registry().Stride()),
		zap.Uint32("arena_cap", inst.bridge.Arena().Cap),
		zap.Int("objects", world.Len()))
	return inst, nil
}

// budget derives the context of one guest call.
func (r *Runtime) budget(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.TickBudget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.TickBudget)
}
