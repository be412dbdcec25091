// Package screepswasm bridges Screeps player code compiled to WebAssembly with
// the game host that runs it once per simulation tick.
//
// Player code cannot touch host objects directly. Instead the host publishes
// game state into guest linear memory as packed records, and the guest calls a
// small set of imported host functions to act on that state.
//
// # Architecture Overview
//
//	screepswasm/         Root package with the Memory interface and a byte-slice Memory
//	├── layout/          Closed kind/field enumeration and the Layout Registry
//	├── game/            Shared plain data: status codes, directions, colors, visuals
//	├── resource/        Handle Table for host values retained by the guest
//	├── host/            Object Resolver, Call Bridge functions, game world
//	├── engine/          wazero integration and host module definition
//	├── runtime/         Tick driver: load, serialize, run loop, advance
//	├── config/          Host configuration (viper)
//	├── wasm/            Minimal core module builder
//	├── testbed/         Guest fixtures built with wasm/ for end-to-end tests
//	├── errors/          Structured error types
//	├── sdk/screeps/     Guest-side API compiled with GOOS=wasip1
//	├── cmd/screeps-host CLI and interactive tick stepper
//	└── examples/        Example guest (spawner)
//
// # Tick Lifecycle
//
//	rt, _ := runtime.New(ctx, cfg)
//	defer rt.Close(ctx)
//
//	inst, err := rt.Load(ctx, wasmBytes, world)
//	if err != nil {
//	    log.Fatal(err) // includes fatal layout registration errors
//	}
//	defer inst.Close(ctx)
//
//	report, err := inst.Tick(ctx)
//
// Load instantiates the guest and calls its screeps_init export, during which
// the guest registers every record layout and its arena. Each Tick writes the
// world into the arena, calls screeps_loop, collects the call trace and then
// advances the world by one step.
//
// # Memory Model
//
// The host writes records only into the guest-provided arena and only before
// control enters the guest. Records are valid for exactly one tick.
package screepswasm
