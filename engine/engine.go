package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/screeps-wasm/errors"
)

// Engine owns one wazero runtime. Host modules and WASI are defined once per
// engine and shared by every guest instantiated from it.
type Engine struct {
	runtime  wazero.Runtime
	logger   *zap.Logger
	wasiMu   sync.Mutex
	wasiDone bool
}

// Config holds configuration for engine creation
type Config struct {
	// Logger receives engine diagnostics. Nil disables them.
	Logger *zap.Logger

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// NoCloseOnContextDone disables interrupting guest code when the call
	// context is done. The per-tick CPU budget relies on it being enabled.
	NoCloseOnContextDone bool
}

// New creates an engine. A nil cfg uses the defaults.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	runtimeCfg := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(!cfg.NoCloseOnContextDone)
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	logger := scopedLogger(cfg.Logger)
	logger.Debug("engine created",
		zap.Uint32("memory_limit_pages", cfg.MemoryLimitPages),
		zap.Bool("close_on_context_done", !cfg.NoCloseOnContextDone))

	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		logger:  logger,
	}, nil
}

// Runtime exposes the underlying wazero runtime.
func (e *Engine) Runtime() wazero.Runtime {
	return e.runtime
}

// InitWASI instantiates wasi_snapshot_preview1 for this engine's runtime.
// Safe to call repeatedly.
func (e *Engine) InitWASI(ctx context.Context) error {
	e.wasiMu.Lock()
	defer e.wasiMu.Unlock()

	if e.wasiDone || e.runtime.Module(wasi_snapshot_preview1.ModuleName) != nil {
		e.wasiDone = true
		return nil
	}
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, e.runtime); err != nil {
		return errors.Load("instantiate WASI", err)
	}
	e.wasiDone = true
	return nil
}

// HostFunc describes one function of a host module.
type HostFunc struct {
	Fn         api.GoModuleFunc
	Name       string
	ParamNames []string
	Params     []api.ValueType
	Results    []api.ValueType
}

// DefineHostModule instantiates a host module named name exporting funcs.
// A module name can be defined only once per engine.
func (e *Engine) DefineHostModule(ctx context.Context, name string, funcs []HostFunc) error {
	if e.runtime.Module(name) != nil {
		return errors.New(errors.PhaseLoad, errors.KindDuplicate).
			Object(name).
			Detail("host module already defined").
			Build()
	}

	builder := e.runtime.NewHostModuleBuilder(name)
	seen := make(map[string]bool, len(funcs))
	for _, f := range funcs {
		if f.Fn == nil {
			return errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("host function %s.%s has no implementation", name, f.Name))
		}
		if seen[f.Name] {
			return errors.New(errors.PhaseLoad, errors.KindDuplicate).
				Object(name).
				Path(f.Name).
				Detail("host function defined twice").
				Build()
		}
		seen[f.Name] = true

		fb := builder.NewFunctionBuilder().WithGoModuleFunction(f.Fn, f.Params, f.Results)
		if len(f.ParamNames) == len(f.Params) && len(f.ParamNames) > 0 {
			fb = fb.WithParameterNames(f.ParamNames...)
		}
		builder = fb.Export(f.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Load(fmt.Sprintf("instantiate host module %q", name), err)
	}
	e.logger.Debug("host module defined", zap.String("module", name), zap.Int("functions", len(funcs)))
	return nil
}

// Compile validates and compiles a guest binary.
func (e *Engine) Compile(ctx context.Context, wasm []byte) (*Module, error) {
	if len(wasm) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty module binary")
	}
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}
	return &Module{engine: e, compiled: compiled}, nil
}

func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Module is a compiled guest.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// Exports lists exported function names, sorted.
func (m *Module) Exports() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasExport reports whether the module exports a function called name.
func (m *Module) HasExport(name string) bool {
	_, ok := m.compiled.ExportedFunctions()[name]
	return ok
}

// Imports lists imported function names from the given module namespace.
func (m *Module) Imports(namespace string) []string {
	var names []string
	for _, def := range m.compiled.ImportedFunctions() {
		mod, name, ok := def.Import()
		if ok && mod == namespace {
			names = append(names, name)
		}
	}
	return names
}

// InstanceConfig holds configuration for module instantiation
type InstanceConfig struct {
	Stdout io.Writer
	Stderr io.Writer
	// Name registers the instance under a module name. Empty keeps it
	// anonymous so the same module can be instantiated repeatedly.
	Name string
}

// Instantiate creates a running instance. Reactor initializers
// (_initialize) run before it returns.
func (m *Module) Instantiate(ctx context.Context, cfg *InstanceConfig) (*Instance, error) {
	if cfg == nil {
		cfg = &InstanceConfig{}
	}
	modConfig := wazero.NewModuleConfig().
		WithName(cfg.Name).
		WithStartFunctions("_initialize")
	if cfg.Stdout != nil {
		modConfig = modConfig.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		modConfig = modConfig.WithStderr(cfg.Stderr)
	}

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	return &Instance{module: mod, memory: NewMemory(mod.Memory())}, nil
}

func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// Instance is a running guest.
// It is NOT safe for concurrent use from multiple goroutines.
type Instance struct {
	module api.Module
	memory *Memory
}

// Call invokes an exported function.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	if i.module == nil {
		return nil, errors.NotInitialized(errors.PhaseTick, "instance")
	}
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", name)
	}
	return fn.Call(ctx, args...)
}

func (i *Instance) HasExport(name string) bool {
	return i.module != nil && i.module.ExportedFunction(name) != nil
}

// Memory returns the instance's linear memory adapter.
func (i *Instance) Memory() *Memory {
	return i.memory
}

// Module returns the wazero module, or nil after Close.
func (i *Instance) Module() api.Module {
	return i.module
}

func (i *Instance) Close(ctx context.Context) error {
	if i.module == nil {
		return nil
	}
	err := i.module.Close(ctx)
	i.module = nil
	i.memory = &Memory{}
	return err
}

// IsInterrupted reports whether err came from the runtime closing a guest
// because its call context was cancelled or timed out.
func IsInterrupted(err error) bool {
	var exitErr *sys.ExitError
	if !stderrors.As(err, &exitErr) {
		return false
	}
	code := exitErr.ExitCode()
	return code == sys.ExitCodeDeadlineExceeded || code == sys.ExitCodeContextCanceled
}

// ExitCode extracts a guest proc_exit code from err.
func ExitCode(err error) (uint32, bool) {
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
