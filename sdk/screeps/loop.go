package screeps

var loopFn func()

// Loop installs fn as the per-tick entry point. Call it from an init
// function.
func Loop(fn func()) {
	loopFn = fn
}

// RunTick calls the installed loop once. The screeps_loop export uses it;
// native tests call it after the host has filled the arena.
func RunTick() {
	runLoop()
}

func runLoop() {
	if loopFn != nil {
		loopFn()
	}
}
