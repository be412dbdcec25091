// Package wasm builds small WebAssembly core modules in memory.
//
// It covers the subset of the binary format needed to assemble guest
// fixtures: function types, function imports, one linear memory, function
// bodies, exports and active data segments. Nothing here parses modules;
// wazero does that when the bytes are compiled.
//
//	m := wasm.NewModule()
//	logFn := m.ImportFunc("screeps", "log", []wasm.ValType{wasm.I32, wasm.I32, wasm.I32}, nil)
//	m.Memory(1, 0)
//	m.ExportMemory("memory")
//	m.Data(64, []byte("hello"))
//
//	body := wasm.NewCode().
//		I32Const(1).I32Const(64).I32Const(5).Call(logFn)
//	loop := m.Func(nil, nil, nil, body)
//	m.ExportFunc("screeps_loop", loop)
//
//	bin, err := m.Encode()
//
// Imports must be declared before the first local function, since imports
// occupy the low end of the function index space. Declaring one later is
// reported by Encode.
package wasm
