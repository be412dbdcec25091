// Package testbed builds small screeps guest modules for end-to-end tests.
//
// A Guest is assembled with the wasm module builder: its screeps_init
// registers layouts and the arena, and its screeps_loop replays a fixed list
// of bridge calls. Each call that returns a status stores it in a numbered
// slot of guest memory so tests can read what the guest observed.
//
//	g := testbed.NewGuest().RegisterStandard().SetArena(testbed.ArenaPtr, testbed.ArenaCap)
//	slot := g.Spawn("spawn1", []game.BodyPart{game.Move}, "c1", 0, false)
//	bin := g.Build()
//
// Slot values are read back with Status on the instance memory.
package testbed
