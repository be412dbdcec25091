// Package runtime drives screeps guests tick by tick.
//
// A Runtime owns one wazero engine with WASI and the screeps host module
// defined. Load compiles a guest, runs its screeps_init export and freezes
// the layouts it registered; a registration error there is fatal.
//
//	rt, err := runtime.New(ctx, &runtime.Config{TickBudget: 50 * time.Millisecond})
//	inst, err := rt.Load(ctx, wasmBytes, world)
//	for range 10 {
//	    report, err := inst.Tick(ctx)
//	    ...
//	}
//
// Each Tick writes the world into the guest arena, calls screeps_loop under
// the CPU budget, collects the call trace, visuals and logs into a
// TickReport, voids the handle table and advances the world. A guest that
// overruns its budget or traps is discarded and instantiated again, with
// fresh layouts and handles, on the next tick; the world carries over.
//
// Reports can be written to a zstd-compressed JSON lines file with a
// Recorder.
package runtime
