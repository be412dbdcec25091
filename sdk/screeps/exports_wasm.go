//go:build wasip1

package screeps

import "github.com/wippyai/screeps-wasm/game"

//go:wasmexport screeps_init
func screepsInit() {
	if err := Init(); err != nil {
		Log(game.LogError, err.Error())
	}
}

//go:wasmexport screeps_loop
func screepsLoop() {
	runLoop()
}
