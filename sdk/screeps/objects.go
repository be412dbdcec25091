package screeps

import (
	"unsafe"

	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
)

// Object is the generic record header shared by every kind.
type Object struct {
	ID      game.ID
	Kind    layout.Kind
	Hits    int32
	HitsMax int32
	Owner   game.Name
	My      bool
	_       [3]byte
}

type Container struct {
	Object
	Store        game.Store
	TicksToDecay int32
}

type Controller struct {
	Object
	Level            int32
	Progress         int32
	ProgressTotal    int32
	TicksToDowngrade int32
	UpgradeBlocked   int32
}

type Extension struct {
	Object
	Energy         int32
	EnergyCapacity int32
}

type Road struct {
	Object
	TicksToDecay int32
}

type Spawn struct {
	Object
	Energy         int32
	EnergyCapacity int32
	IsSpawning     bool
	_              [3]byte
	Spawning       Spawning
}

// Spawning is the pending-spawn sub-record of a Spawn. It is only
// meaningful while the spawn's IsSpawning is set.
type Spawning struct {
	Directions    game.Directions
	NeedTime      int32
	RemainingTime int32
	ID            game.ID
}

// RecordSize is the generic record size and arena stride: every record
// slot is large enough for the largest kind.
const RecordSize = max(
	unsafe.Sizeof(Object{}),
	unsafe.Sizeof(Container{}),
	unsafe.Sizeof(Controller{}),
	unsafe.Sizeof(Extension{}),
	unsafe.Sizeof(Road{}),
	unsafe.Sizeof(Spawn{}),
)

type registration struct {
	kind    layout.Kind
	size    uintptr
	entries []layout.Entry
}

func off(v uintptr) uint32 {
	return uint32(v)
}

// layouts lists every registration, base kind first.
func layouts() []registration {
	var (
		o   Object
		c   Container
		ctl Controller
		e   Extension
		r   Road
		s   Spawn
	)
	sp := unsafe.Offsetof(s.Spawning)
	return []registration{
		{layout.KindStructure, RecordSize, []layout.Entry{
			{Field: layout.FieldID, Offset: off(unsafe.Offsetof(o.ID))},
			{Field: layout.FieldKindTag, Offset: off(unsafe.Offsetof(o.Kind))},
			{Field: layout.FieldHits, Offset: off(unsafe.Offsetof(o.Hits))},
			{Field: layout.FieldHitsMax, Offset: off(unsafe.Offsetof(o.HitsMax))},
			{Field: layout.FieldOwner, Offset: off(unsafe.Offsetof(o.Owner))},
			{Field: layout.FieldMy, Offset: off(unsafe.Offsetof(o.My))},
		}},
		{layout.KindContainer, unsafe.Sizeof(c), []layout.Entry{
			{Field: layout.FieldStore, Offset: off(unsafe.Offsetof(c.Store))},
			{Field: layout.FieldTicksToDecay, Offset: off(unsafe.Offsetof(c.TicksToDecay))},
		}},
		{layout.KindController, unsafe.Sizeof(ctl), []layout.Entry{
			{Field: layout.FieldLevel, Offset: off(unsafe.Offsetof(ctl.Level))},
			{Field: layout.FieldProgress, Offset: off(unsafe.Offsetof(ctl.Progress))},
			{Field: layout.FieldProgressTotal, Offset: off(unsafe.Offsetof(ctl.ProgressTotal))},
			{Field: layout.FieldTicksToDowngrade, Offset: off(unsafe.Offsetof(ctl.TicksToDowngrade))},
			{Field: layout.FieldUpgradeBlocked, Offset: off(unsafe.Offsetof(ctl.UpgradeBlocked))},
		}},
		{layout.KindExtension, unsafe.Sizeof(e), []layout.Entry{
			{Field: layout.FieldEnergy, Offset: off(unsafe.Offsetof(e.Energy))},
			{Field: layout.FieldEnergyCapacity, Offset: off(unsafe.Offsetof(e.EnergyCapacity))},
		}},
		{layout.KindRoad, unsafe.Sizeof(r), []layout.Entry{
			{Field: layout.FieldTicksToDecay, Offset: off(unsafe.Offsetof(r.TicksToDecay))},
		}},
		{layout.KindSpawn, unsafe.Sizeof(s), []layout.Entry{
			{Field: layout.FieldEnergy, Offset: off(unsafe.Offsetof(s.Energy))},
			{Field: layout.FieldEnergyCapacity, Offset: off(unsafe.Offsetof(s.EnergyCapacity))},
			{Field: layout.FieldIsSpawning, Offset: off(unsafe.Offsetof(s.IsSpawning))},
			{Field: layout.FieldSpawningDirections, Offset: off(sp + unsafe.Offsetof(s.Spawning.Directions))},
			{Field: layout.FieldSpawningNeedTime, Offset: off(sp + unsafe.Offsetof(s.Spawning.NeedTime))},
			{Field: layout.FieldSpawningRemainingTime, Offset: off(sp + unsafe.Offsetof(s.Spawning.RemainingTime))},
			{Field: layout.FieldSpawningID, Offset: off(sp + unsafe.Offsetof(s.Spawning.ID))},
		}},
	}
}

func (o *Object) String() string {
	return o.Kind.String() + " " + o.ID.String()
}

// as reinterprets the record o heads as a T when the kind tag matches.
func as[T any](o *Object, kind layout.Kind) (*T, bool) {
	if o == nil || o.Kind != kind {
		return nil, false
	}
	return (*T)(unsafe.Pointer(o)), true
}

func (o *Object) AsContainer() (*Container, bool) {
	return as[Container](o, layout.KindContainer)
}

func (o *Object) AsController() (*Controller, bool) {
	return as[Controller](o, layout.KindController)
}

func (o *Object) AsExtension() (*Extension, bool) {
	return as[Extension](o, layout.KindExtension)
}

func (o *Object) AsRoad() (*Road, bool) {
	return as[Road](o, layout.KindRoad)
}

func (o *Object) AsSpawn() (*Spawn, bool) {
	return as[Spawn](o, layout.KindSpawn)
}
