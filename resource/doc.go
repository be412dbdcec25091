// Package resource provides the Handle Table: integer handles naming host
// values that guest code keeps across bridge calls.
//
// A guest cannot hold a host value directly. When it asks the host to build
// one (for example a preprocessed body-part array), the host stores the value
// here and hands back a non-zero Handle. Later bridge calls pass the handle
// and the host resolves it.
//
//	table := resource.NewTable()
//
//	h, err := table.Create(resource.TypeBody, parts)
//	v, err := table.GetTyped(h, resource.TypeBody)
//	err = table.Release(h) // guest wrapper destroyed
//	err = table.Release(h) // ErrReleased: double release
//
// # Errors
//
// Handle 0 is the "no handle" sentinel and is rejected with ErrZeroHandle.
// A released handle, or one never issued, yields ErrReleased. Both are handle
// errors; the bridge reports them to the guest as game.ErrInvalidHandle.
//
// # Tick Scope
//
// The host calls Reset at tick boundaries, which releases everything still
// live. Handle numbers are never reused, so a handle kept from an earlier
// tick fails instead of aliasing a newer value.
//
// # Observers
//
//	unsubscribe := table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("handle %d %s", e.Handle, e.Type)
//	}))
//	defer unsubscribe()
package resource
