// Package host is the game side of the bridge.
//
// It holds the Object Resolver, which maps ids in guest memory back to live
// objects, the Bridge, which implements every function the guest imports
// from the "screeps" module, and the small World those functions act on.
//
// A Bridge belongs to one guest instance. Host functions find it through the
// call context:
//
//	b := host.NewBridge(world, logger)
//	ctx = host.WithBridge(ctx, b)
//	inst.Call(ctx, "screeps_init")
//
// Every bridge call returns a game.Status to the guest and is appended to
// the tick trace in issue order. Host-side failures never cross the boundary
// as anything other than a status.
//
// Worlds are usually built from YAML scenarios validated against an
// embedded JSON Schema; see LoadScenarioFile.
package host
