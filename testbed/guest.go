package testbed

import (
	"encoding/binary"
	"fmt"

	screepswasm "github.com/wippyai/screeps-wasm"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
	"github.com/wippyai/screeps-wasm/wasm"
)

// Guest memory map. One page holds everything.
const (
	MemoryPages = 1
	StatusBase  = 256
	MaxSlots    = 128
	DataBase    = StatusBase + 4*MaxSlots
	ArenaPtr    = 16384
	ArenaCap    = 32768

	// GenericSize is the stride of the standard layouts.
	GenericSize = 120
)

const hostModule = "screeps"

var (
	i32 = wasm.I32
	f32 = wasm.F32
)

type importSig struct {
	name    string
	params  []wasm.ValType
	results []wasm.ValType
}

func ints(n int) []wasm.ValType {
	out := make([]wasm.ValType, n)
	for i := range out {
		out[i] = i32
	}
	return out
}

// screepsImports mirrors the host module signatures.
var screepsImports = []importSig{
	{"register_layout", ints(4), ints(1)},
	{"set_arena", ints(2), ints(1)},
	{"body_create", ints(2), ints(1)},
	{"handle_release", ints(1), ints(1)},
	{"spawn_creep", ints(6), ints(1)},
	{"spawning_cancel", ints(1), ints(1)},
	{"spawning_set_directions", ints(2), ints(1)},
	{"draw_circle", []wasm.ValType{i32, i32, f32, f32, f32, i32, f32, i32, f32}, nil},
	{"log", ints(3), nil},
}

// Layout is one register_layout call.
type Layout struct {
	Entries []layout.Entry
	Kind    layout.Kind
	Size    uint32
}

// StandardLayouts is a complete registration: a 72-byte generic header
// padded to GenericSize, with kind fields from offset 72.
func StandardLayouts() []Layout {
	return []Layout{
		{Kind: layout.KindStructure, Size: GenericSize, Entries: []layout.Entry{
			{Field: layout.FieldID, Offset: 0},
			{Field: layout.FieldKindTag, Offset: 24},
			{Field: layout.FieldHits, Offset: 28},
			{Field: layout.FieldHitsMax, Offset: 32},
			{Field: layout.FieldOwner, Offset: 36},
			{Field: layout.FieldMy, Offset: 68},
		}},
		{Kind: layout.KindContainer, Size: 84, Entries: []layout.Entry{
			{Field: layout.FieldStore, Offset: 72},
			{Field: layout.FieldTicksToDecay, Offset: 80},
		}},
		{Kind: layout.KindController, Size: 92, Entries: []layout.Entry{
			{Field: layout.FieldLevel, Offset: 72},
			{Field: layout.FieldProgress, Offset: 76},
			{Field: layout.FieldProgressTotal, Offset: 80},
			{Field: layout.FieldTicksToDowngrade, Offset: 84},
			{Field: layout.FieldUpgradeBlocked, Offset: 88},
		}},
		{Kind: layout.KindExtension, Size: 80, Entries: []layout.Entry{
			{Field: layout.FieldEnergy, Offset: 72},
			{Field: layout.FieldEnergyCapacity, Offset: 76},
		}},
		{Kind: layout.KindRoad, Size: 76, Entries: []layout.Entry{
			{Field: layout.FieldTicksToDecay, Offset: 72},
		}},
		{Kind: layout.KindSpawn, Size: 120, Entries: []layout.Entry{
			{Field: layout.FieldEnergy, Offset: 72},
			{Field: layout.FieldEnergyCapacity, Offset: 76},
			{Field: layout.FieldIsSpawning, Offset: 80},
			{Field: layout.FieldSpawningDirections, Offset: 84},
			{Field: layout.FieldSpawningNeedTime, Offset: 88},
			{Field: layout.FieldSpawningRemainingTime, Offset: 92},
			{Field: layout.FieldSpawningID, Offset: 96},
		}},
	}
}

// Guest accumulates the init and loop bodies of a fixture module.
type Guest struct {
	mod    *wasm.Module
	funcs  map[string]uint32
	init   *wasm.Code
	loop   *wasm.Code
	data   []byte
	slots  uint32
	noLoop bool
	noInit bool
}

// NewGuest declares the screeps imports and one exported memory page.
func NewGuest() *Guest {
	g := &Guest{
		mod:   wasm.NewModule(),
		funcs: make(map[string]uint32, len(screepsImports)),
		init:  wasm.NewCode(),
		loop:  wasm.NewCode(),
	}
	for _, imp := range screepsImports {
		g.funcs[imp.name] = g.mod.ImportFunc(hostModule, imp.name, imp.params, imp.results)
	}
	g.mod.Memory(MemoryPages, 0)
	g.mod.ExportMemory("memory")
	return g
}

// Put places b in the data segment and returns its guest address.
func (g *Guest) Put(b []byte) uint32 {
	ptr := DataBase + uint32(len(g.data))
	g.data = append(g.data, b...)
	if pad := len(g.data) % 8; pad != 0 {
		g.data = append(g.data, make([]byte, 8-pad)...)
	}
	if DataBase+uint32(len(g.data)) > ArenaPtr {
		panic("testbed: data segment overlaps the arena")
	}
	return ptr
}

// putString stores s one byte per character, as Latin-1.
func (g *Guest) putString(s string) (uint32, uint32) {
	if s == "" {
		return DataBase, 0
	}
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			panic(fmt.Sprintf("testbed: %q is not Latin-1", s))
		}
		b = append(b, byte(r))
	}
	return g.Put(b), uint32(len(b))
}

func (g *Guest) putID(id string) uint32 {
	var b [game.IDSize]byte
	copy(b[:], id)
	return g.Put(b[:])
}

func (g *Guest) nextSlot() uint32 {
	if g.slots == MaxSlots {
		panic("testbed: out of status slots")
	}
	g.slots++
	return g.slots - 1
}

// SlotAddr is the guest address of status slot i.
func SlotAddr(slot uint32) uint32 {
	return StatusBase + 4*slot
}

// Status reads status slot i from a guest memory.
func Status(mem screepswasm.Memory, slot uint32) (game.Status, error) {
	v, err := mem.ReadU32(SlotAddr(slot))
	if err != nil {
		return 0, fmt.Errorf("read slot %d: %w", slot, err)
	}
	return game.Status(int32(v)), nil
}

// Register appends a register_layout call to screeps_init.
func (g *Guest) Register(l Layout) uint32 {
	ptr := g.Put(layout.EncodeEntries(l.Entries))
	slot := g.nextSlot()
	g.init.U32Const(SlotAddr(slot)).
		I32Const(int32(l.Kind)).U32Const(l.Size).U32Const(ptr).U32Const(uint32(len(l.Entries))).
		Call(g.funcs["register_layout"]).
		I32Store(0)
	return slot
}

// RegisterStandard registers StandardLayouts in order.
func (g *Guest) RegisterStandard() *Guest {
	for _, l := range StandardLayouts() {
		g.Register(l)
	}
	return g
}

// SetArena appends a set_arena call to screeps_init.
func (g *Guest) SetArena(ptr, capacity uint32) *Guest {
	g.init.U32Const(ptr).U32Const(capacity).Call(g.funcs["set_arena"]).Drop()
	return g
}

// NoInit leaves screeps_init out of the export list.
func (g *Guest) NoInit() *Guest {
	g.noInit = true
	return g
}

// NoLoop leaves screeps_loop out of the export list.
func (g *Guest) NoLoop() *Guest {
	g.noLoop = true
	return g
}

// Log appends a log call to screeps_loop.
func (g *Guest) Log(level game.LogLevel, msg string) *Guest {
	ptr, n := g.putString(msg)
	g.loop.I32Const(int32(level)).U32Const(ptr).U32Const(n).Call(g.funcs["log"])
	return g
}

// Circle appends a draw_circle call with default styling to screeps_loop.
func (g *Guest) Circle(room string, x, y float32) *Guest {
	ptr, n := g.putString(room)
	st := game.DefaultCircle()
	g.loop.U32Const(ptr).U32Const(n).F32Const(x).F32Const(y).
		F32Const(st.Radius).U32Const(uint32(st.Fill)).F32Const(st.Opacity).
		U32Const(uint32(st.Stroke)).F32Const(st.StrokeWidth).
		Call(g.funcs["draw_circle"])
	return g
}

// Spawn appends body_create, spawn_creep and handle_release to screeps_loop
// and returns the slot holding the spawn_creep status.
func (g *Guest) Spawn(spawnID string, parts []game.BodyPart, name string, dirs game.Directions, dryRun bool) uint32 {
	raw := make([]byte, 4*len(parts))
	for i, p := range parts {
		binary.LittleEndian.PutUint32(raw[4*i:], uint32(p))
	}
	partsPtr := g.Put(raw)
	idPtr := g.putID(spawnID)
	namePtr, nameLen := g.putString(name)
	var dry uint32
	if dryRun {
		dry = 1
	}

	slot := g.nextSlot()
	g.loop.U32Const(partsPtr).U32Const(uint32(len(parts))).Call(g.funcs["body_create"]).LocalSet(0).
		U32Const(SlotAddr(slot)).
		U32Const(idPtr).LocalGet(0).U32Const(namePtr).U32Const(nameLen).U32Const(uint32(dirs)).U32Const(dry).
		Call(g.funcs["spawn_creep"]).
		I32Store(0).
		LocalGet(0).Call(g.funcs["handle_release"]).Drop()
	return slot
}

// LeakBody appends a body_create whose handle is never released.
func (g *Guest) LeakBody(parts ...game.BodyPart) *Guest {
	raw := make([]byte, 4*len(parts))
	for i, p := range parts {
		binary.LittleEndian.PutUint32(raw[4*i:], uint32(p))
	}
	ptr := g.Put(raw)
	g.loop.U32Const(ptr).U32Const(uint32(len(parts))).Call(g.funcs["body_create"]).Drop()
	return g
}

// Cancel appends spawning_cancel and returns its status slot.
func (g *Guest) Cancel(spawnID string) uint32 {
	idPtr := g.putID(spawnID)
	slot := g.nextSlot()
	g.loop.U32Const(SlotAddr(slot)).U32Const(idPtr).Call(g.funcs["spawning_cancel"]).I32Store(0)
	return slot
}

// SetDirections appends spawning_set_directions and returns its status slot.
func (g *Guest) SetDirections(spawnID string, dirs game.Directions) uint32 {
	idPtr := g.putID(spawnID)
	slot := g.nextSlot()
	g.loop.U32Const(SlotAddr(slot)).U32Const(idPtr).U32Const(uint32(dirs)).
		Call(g.funcs["spawning_set_directions"]).I32Store(0)
	return slot
}

// CopyArenaCount stores the record count of the arena header into a slot.
func (g *Guest) CopyArenaCount() uint32 {
	slot := g.nextSlot()
	g.loop.U32Const(SlotAddr(slot)).U32Const(ArenaPtr + 4).I32Load(0).I32Store(0)
	return slot
}

// Spin makes screeps_loop never return.
func (g *Guest) Spin() *Guest {
	g.loop.Loop().Br(0).End()
	return g
}

// Trap makes screeps_loop trap.
func (g *Guest) Trap() *Guest {
	g.loop.Unreachable()
	return g
}

// TrapInit makes screeps_init trap after the steps added so far.
func (g *Guest) TrapInit() *Guest {
	g.init.Unreachable()
	return g
}

// Build encodes the module. It panics on builder misuse.
func (g *Guest) Build() []byte {
	if len(g.data) > 0 {
		g.mod.Data(DataBase, g.data)
	}
	initFn := g.mod.Func(nil, nil, nil, g.init)
	loopFn := g.mod.Func(nil, nil, []wasm.ValType{i32}, g.loop)
	if !g.noInit {
		g.mod.ExportFunc("screeps_init", initFn)
	}
	if !g.noLoop {
		g.mod.ExportFunc("screeps_loop", loopFn)
	}
	return g.mod.MustEncode()
}
