// Package screeps is the guest side of the bridge. Build player code with
// GOOS=wasip1 GOARCH=wasm and -buildmode=c-shared; the package exports
// screeps_init and screeps_loop.
//
// Records are read in place from the arena the host fills before every
// loop call:
//
//	func init() {
//		screeps.Loop(func() {
//			for _, s := range screeps.Spawns() {
//				if !s.My || s.IsSpawning {
//					continue
//				}
//				body, err := screeps.NewBody(game.Work, game.Carry, game.Move)
//				if err != nil {
//					return
//				}
//				defer body.Close()
//				s.SpawnCreep(body, "worker", nil)
//			}
//		})
//	}
//
// Pointers into the arena are valid for the current tick only. Strings cross
// the boundary as Latin-1, one byte per character.
//
// Outside wasip1 the bridge calls go to a Host set with SetHost, so the same
// player code can run in native tests.
package screeps
