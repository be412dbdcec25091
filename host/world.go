package host

import (
	"fmt"
	"sort"

	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
)

// Decay and downgrade constants applied by Advance.
const (
	ContainerDecayAmount = 5000
	ContainerDecayTime   = 500
	RoadDecayAmount      = 100
	RoadDecayTime        = 1000
	ControllerDowngrade  = 20000
)

// Object is the host-side state of one game object.
type Object struct {
	Spawning *Spawning
	Room     string
	Store    game.Store

	Kind    layout.Kind
	Hits    int32
	HitsMax int32

	TicksToDecay int32

	Level            int32
	Progress         int32
	ProgressTotal    int32
	TicksToDowngrade int32
	UpgradeBlocked   int32

	Energy         int32
	EnergyCapacity int32

	ID    game.ID
	Owner game.Name
	My    bool
}

// SpawnState is the pending-spawn state of a spawn.
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

// Spawning is a spawn's pending-spawn sub-object.
type Spawning struct {
	Name          string
	Body          []game.BodyPart
	Directions    []game.Direction
	NeedTime      int32
	RemainingTime int32
	ID            game.ID
}

// State derives the pending-spawn state of o. Non-spawn objects are idle.
func (o *Object) State() SpawnState {
	switch {
	case o.Spawning == nil:
		return SpawnIdle
	case o.Spawning.RemainingTime > 0:
		return SpawnSpawning
	default:
		return SpawnJustFinished
	}
}

// Creep is a creep produced by a finished spawn.
type Creep struct {
	Name       string
	Room       string
	Body       []game.BodyPart
	Directions []game.Direction
	Born       uint32
	ID         game.ID
	Spawn      game.ID
	Owner      game.Name
}

// World is the minimal game state the bridge acts on. It is not a
// simulation: it only keeps what records and spawn shims need.
type World struct {
	objects map[game.ID]*Object
	creeps  map[string]*Creep
	order   []game.ID
	names   []string
	player  game.Name
	tick    uint32
}

// NewWorld creates an empty world played by player.
func NewWorld(player game.Name) *World {
	return &World{
		objects: make(map[game.ID]*Object),
		creeps:  make(map[string]*Creep),
		player:  player,
	}
}

func (w *World) Player() game.Name {
	return w.player
}

// Tick is the number of completed Advance steps.
func (w *World) Tick() uint32 {
	return w.tick
}

// Add inserts o. The id must be unique and the kind known.
func (w *World) Add(o *Object) error {
	if o == nil || o.ID.IsZero() {
		return errors.InvalidInput(errors.PhaseConfig, "object without id")
	}
	if !o.Kind.Valid() {
		return errors.InvalidData(errors.PhaseConfig, o.ID.String(), fmt.Sprintf("unknown kind %d", int32(o.Kind)))
	}
	if _, dup := w.objects[o.ID]; dup {
		return errors.New(errors.PhaseConfig, errors.KindDuplicate).
			Object(o.ID.String()).
			Detail("object id already in world").
			Build()
	}
	w.objects[o.ID] = o
	w.order = append(w.order, o.ID)
	return nil
}

// Remove destroys an object. Later lookups of its id fail.
func (w *World) Remove(id game.ID) bool {
	if _, ok := w.objects[id]; !ok {
		return false
	}
	delete(w.objects, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

func (w *World) Get(id game.ID) (*Object, bool) {
	o, ok := w.objects[id]
	return o, ok
}

// Objects returns live objects in insertion order.
func (w *World) Objects() []*Object {
	out := make([]*Object, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.objects[id])
	}
	return out
}

func (w *World) Len() int {
	return len(w.order)
}

// Creeps returns spawned creeps in spawn order.
func (w *World) Creeps() []*Creep {
	out := make([]*Creep, 0, len(w.names))
	for _, n := range w.names {
		out = append(out, w.creeps[n])
	}
	return out
}

func (w *World) Creep(name string) (*Creep, bool) {
	c, ok := w.creeps[name]
	return c, ok
}

// nameTaken reports whether name belongs to a creep or a pending spawn.
func (w *World) nameTaken(name string) bool {
	if _, ok := w.creeps[name]; ok {
		return true
	}
	for _, o := range w.objects {
		if o.Spawning != nil && o.Spawning.Name == name {
			return true
		}
	}
	return false
}

// SpawnRequest is a decoded spawn_creep call.
type SpawnRequest struct {
	Name       string           `json:"name"`
	Body       []game.BodyPart  `json:"body"`
	Directions []game.Direction `json:"directions,omitempty"`
	Spawn      game.ID          `json:"-"`
	DryRun     bool             `json:"dry_run,omitempty"`
}

// SpawnCreep applies a spawn request to spawn s.
func (w *World) SpawnCreep(s *Object, req SpawnRequest) game.Status {
	switch {
	case s.Kind != layout.KindSpawn:
		return game.ErrInvalidTarget
	case !s.My:
		return game.ErrNotOwner
	case s.Spawning != nil:
		return game.ErrBusy
	case len(req.Body) == 0 || len(req.Body) > game.MaxBodyParts:
		return game.ErrInvalidArgs
	case req.Name == "" || len(req.Name) > game.NameSize:
		return game.ErrInvalidArgs
	case w.nameTaken(req.Name):
		return game.ErrNameExists
	}
	cost := game.BodyCost(req.Body)
	if s.Energy < cost {
		return game.ErrNotEnoughEnergy
	}
	if req.DryRun {
		return game.OK
	}

	s.Energy -= cost
	need := int32(game.SpawnTimePerPart * len(req.Body))
	s.Spawning = &Spawning{
		Name:          req.Name,
		Body:          append([]game.BodyPart(nil), req.Body...),
		Directions:    append([]game.Direction(nil), req.Directions...),
		NeedTime:      need,
		RemainingTime: need,
		ID:            game.NewID(),
	}
	return game.OK
}

// CancelSpawning drops the pending spawn. Energy is not refunded.
func (w *World) CancelSpawning(s *Object) game.Status {
	if s.Kind != layout.KindSpawn {
		return game.ErrInvalidTarget
	}
	if !s.My {
		return game.ErrNotOwner
	}
	if s.State() != SpawnSpawning {
		return game.ErrNotFound
	}
	s.Spawning = nil
	return game.OK
}

// SetSpawningDirections replaces the exit directions of the pending spawn.
func (w *World) SetSpawningDirections(s *Object, dirs []game.Direction) game.Status {
	if s.Kind != layout.KindSpawn {
		return game.ErrInvalidTarget
	}
	if !s.My {
		return game.ErrNotOwner
	}
	if s.State() != SpawnSpawning {
		return game.ErrNotFound
	}
	if len(dirs) == 0 {
		return game.ErrInvalidArgs
	}
	s.Spawning.Directions = append([]game.Direction(nil), dirs...)
	return game.OK
}

// Advance moves the world one tick forward.
func (w *World) Advance() {
	w.tick++

	var destroyed []game.ID
	for _, id := range w.order {
		o := w.objects[id]
		switch o.Kind {
		case layout.KindSpawn:
			w.advanceSpawn(o)
		case layout.KindContainer:
			if decay(o, ContainerDecayAmount, ContainerDecayTime) {
				destroyed = append(destroyed, id)
			}
		case layout.KindRoad:
			if decay(o, RoadDecayAmount, RoadDecayTime) {
				destroyed = append(destroyed, id)
			}
		case layout.KindController:
			advanceController(o)
		}
	}
	for _, id := range destroyed {
		w.Remove(id)
	}
}

func (w *World) advanceSpawn(s *Object) {
	switch s.State() {
	case SpawnJustFinished:
		sp := s.Spawning
		c := &Creep{
			ID:         sp.ID,
			Name:       sp.Name,
			Room:       s.Room,
			Body:       sp.Body,
			Directions: sp.Directions,
			Owner:      s.Owner,
			Spawn:      s.ID,
			Born:       w.tick,
		}
		w.creeps[c.Name] = c
		w.names = append(w.names, c.Name)
		s.Spawning = nil
	case SpawnSpawning:
		s.Spawning.RemainingTime--
	}
}

// decay counts down and removes hits when the timer expires. It reports
// whether the object was destroyed.
func decay(o *Object, amount, period int32) bool {
	if o.TicksToDecay > 1 {
		o.TicksToDecay--
		return false
	}
	o.TicksToDecay = period
	o.Hits -= amount
	return o.Hits <= 0
}

func advanceController(o *Object) {
	if o.UpgradeBlocked > 0 {
		o.UpgradeBlocked--
	}
	if o.Level == 0 || o.TicksToDowngrade == 0 {
		return
	}
	o.TicksToDowngrade--
	if o.TicksToDowngrade == 0 {
		o.Level--
		o.Progress = 0
		if o.Level > 0 {
			o.TicksToDowngrade = ControllerDowngrade
		}
	}
}

// SortedIDs returns object ids in byte order, for stable listings.
func (w *World) SortedIDs() []game.ID {
	ids := make([]game.ID, len(w.order))
	copy(ids, w.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
