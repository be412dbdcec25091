package host

import (
	screepswasm "github.com/wippyai/screeps-wasm"
	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
)

// ErrStaleObject is returned when an id names no live object.
var ErrStaleObject = errors.New(errors.PhaseResolve, errors.KindStale).
	Detail("id names no live object").
	Build()

// Resolver maps ids in guest memory to live world objects. It keys on the
// id rather than the record address because records are rewritten every
// tick.
type Resolver struct {
	world *World
}

func NewResolver(w *World) *Resolver {
	return &Resolver{world: w}
}

// ReadID reads the 24-byte id at idPtr.
func ReadID(mem screepswasm.Memory, idPtr uint32) (game.ID, error) {
	var id game.ID
	b, err := mem.Read(idPtr, game.IDSize)
	if err != nil {
		return id, errors.New(errors.PhaseResolve, errors.KindOutOfBounds).
			Value(idPtr).
			Detail("id pointer %#x outside memory", idPtr).
			Cause(err).
			Build()
	}
	copy(id[:], b)
	return id, nil
}

// Resolve returns the live object whose id is stored at idPtr.
func (r *Resolver) Resolve(mem screepswasm.Memory, idPtr uint32) (*Object, error) {
	id, err := ReadID(mem, idPtr)
	if err != nil {
		return nil, err
	}
	o, ok := r.world.Get(id)
	if !ok {
		return nil, errors.New(errors.PhaseResolve, errors.KindStale).
			Object(id.String()).
			Detail("id names no live object").
			Build()
	}
	return o, nil
}

// ResolveKind is Resolve restricted to one kind; a live object of another
// kind is reported like a stale id.
func (r *Resolver) ResolveKind(mem screepswasm.Memory, idPtr uint32, kind layout.Kind) (*Object, error) {
	o, err := r.Resolve(mem, idPtr)
	if err != nil {
		return nil, err
	}
	if o.Kind != kind {
		return nil, errors.New(errors.PhaseResolve, errors.KindStale).
			Object(o.ID.String()).
			Detail("object is a %s, not a %s", o.Kind, kind).
			Build()
	}
	return o, nil
}
