package screeps

import (
	"unsafe"

	"github.com/wippyai/screeps-wasm/game"
)

// noCopy makes go vet's copylocks check flag copies of the containing
// struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Body is a creep body prepared by the host. It owns a host handle until
// Close; handles also lapse at the end of the tick.
type Body struct {
	_      noCopy
	parts  []game.BodyPart
	handle uint32
}

// NewBody asks the host to prepare parts.
func NewBody(parts ...game.BodyPart) (*Body, error) {
	for _, p := range parts {
		if !p.Valid() {
			return nil, game.ErrInvalidArgs.Err()
		}
	}
	h := bodyCreate(parts)
	if h == 0 {
		return nil, game.ErrInvalidArgs.Err()
	}
	return &Body{parts: append([]game.BodyPart(nil), parts...), handle: h}, nil
}

func (b *Body) Parts() []game.BodyPart {
	return b.parts
}

// Cost is the energy needed to spawn the body.
func (b *Body) Cost() int32 {
	return game.BodyCost(b.parts)
}

// Close releases the host handle. Later calls do nothing.
func (b *Body) Close() error {
	if b == nil || b.handle == 0 {
		return nil
	}
	h := b.handle
	b.handle = 0
	return handleRelease(h).Err()
}

// SpawnOptions tunes SpawnCreep. The zero value spawns with no preferred
// directions.
type SpawnOptions struct {
	Directions []game.Direction
	DryRun     bool
}

// SpawnCreep starts spawning a creep with body and name. A closed or nil
// body yields ErrInvalidHandle from the host.
func (s *Spawn) SpawnCreep(body *Body, name string, opts *SpawnOptions) game.Status {
	if opts == nil {
		opts = &SpawnOptions{}
	}
	dirs, err := game.PackDirections(opts.Directions...)
	if err != nil {
		return game.ErrInvalidArgs
	}
	raw, ok := latin1(name)
	if !ok {
		return game.ErrInvalidArgs
	}
	var h uint32
	if body != nil {
		h = body.handle
	}
	return spawnCreep(&s.ID, h, raw, dirs, opts.DryRun)
}

// SpawnState is where a spawn is in its spawn cycle.
type SpawnState int

const (
	SpawnIdle SpawnState = iota
	SpawnSpawning
	SpawnJustFinished
)

func (s SpawnState) String() string {
	switch s {
	case SpawnSpawning:
		return "spawning"
	case SpawnJustFinished:
		return "just-finished"
	default:
		return "idle"
	}
}

var spawningOffset = unsafe.Offsetof(Spawn{}.Spawning)

// Spawn returns the spawn that holds sp.
func (sp *Spawning) Spawn() *Spawn {
	return (*Spawn)(unsafe.Add(unsafe.Pointer(sp), -int(spawningOffset)))
}

// State reads the spawn cycle from the record.
func (sp *Spawning) State() SpawnState {
	switch {
	case !sp.Spawn().IsSpawning:
		return SpawnIdle
	case sp.RemainingTime <= 0:
		return SpawnJustFinished
	default:
		return SpawnSpawning
	}
}

// Cancel drops the pending spawn. Energy is not refunded.
func (sp *Spawning) Cancel() game.Status {
	return spawningCancel(&sp.Spawn().ID)
}

// SetDirections changes where the creep leaves the spawn.
func (sp *Spawning) SetDirections(dirs ...game.Direction) game.Status {
	packed, err := game.PackDirections(dirs...)
	if err != nil {
		return game.ErrInvalidArgs
	}
	return spawningSetDirections(&sp.Spawn().ID, packed)
}

// DirectionList unpacks the recorded exit directions.
func (sp *Spawning) DirectionList() []game.Direction {
	return sp.Directions.Unpack()
}

// latin1 encodes s one byte per character. It fails for characters above
// U+00FF.
func latin1(s string) ([]byte, bool) {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return []byte(s), true
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			return nil, false
		}
		out = append(out, byte(r))
	}
	return out, true
}
