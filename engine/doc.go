// Package engine wraps wazero for the tick driver.
//
// An Engine owns one wazero runtime configured to interrupt guest code when
// the call context is done, which is how the per-tick CPU budget is enforced.
// Host modules are defined once per engine with DefineHostModule; guests are
// compiled with Compile and instantiated anonymously, so the same compiled
// module can be instantiated again after an aborted tick.
//
//	e, _ := engine.New(ctx, &engine.Config{MemoryLimitPages: 256})
//	defer e.Close(ctx)
//
//	_ = e.InitWASI(ctx)
//	_ = e.DefineHostModule(ctx, "screeps", funcs)
//
//	mod, _ := e.Compile(ctx, wasmBytes)
//	inst, _ := mod.Instantiate(ctx, nil)
//	_, err := inst.Call(tickCtx, "screeps_loop")
//	if engine.IsInterrupted(err) {
//	    // budget exceeded
//	}
//
// Host functions receive the caller's api.Module; MemoryOf adapts its memory
// to the screepswasm.Memory interface used by the bridge.
package engine
