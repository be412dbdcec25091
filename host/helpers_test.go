package host

import (
	"testing"

	screepswasm "github.com/wippyai/screeps-wasm"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
)

// Standard guest layout used across tests: a 72-byte generic header, kind
// fields from offset 72, and a 120-byte stride.
const (
	testStride     = 120
	testArenaPtr   = 4096
	testArenaCap   = 8192
	testScratch    = 1024
	testMemorySize = 65536
)

type testLayout struct {
	kind    layout.Kind
	size    uint32
	entries []layout.Entry
}

func standardLayouts() []testLayout {
	return []testLayout{
		{layout.KindStructure, testStride, []layout.Entry{
			{Field: layout.FieldID, Offset: 0},
			{Field: layout.FieldKindTag, Offset: 24},
			{Field: layout.FieldHits, Offset: 28},
			{Field: layout.FieldHitsMax, Offset: 32},
			{Field: layout.FieldOwner, Offset: 36},
			{Field: layout.FieldMy, Offset: 68},
		}},
		{layout.KindContainer, 84, []layout.Entry{
			{Field: layout.FieldStore, Offset: 72},
			{Field: layout.FieldTicksToDecay, Offset: 80},
		}},
		{layout.KindController, 92, []layout.Entry{
			{Field: layout.FieldLevel, Offset: 72},
			{Field: layout.FieldProgress, Offset: 76},
			{Field: layout.FieldProgressTotal, Offset: 80},
			{Field: layout.FieldTicksToDowngrade, Offset: 84},
			{Field: layout.FieldUpgradeBlocked, Offset: 88},
		}},
		{layout.KindExtension, 80, []layout.Entry{
			{Field: layout.FieldEnergy, Offset: 72},
			{Field: layout.FieldEnergyCapacity, Offset: 76},
		}},
		{layout.KindRoad, 76, []layout.Entry{
			{Field: layout.FieldTicksToDecay, Offset: 72},
		}},
		{layout.KindSpawn, 120, []layout.Entry{
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

// guestMemory places registration entries and strings in a byte memory the
// way a guest would before calling the bridge.
type guestMemory struct {
	screepswasm.Bytes
	next uint32
}

func newGuestMemory() *guestMemory {
	return &guestMemory{Bytes: screepswasm.NewBytes(testMemorySize), next: testScratch}
}

// put copies b into scratch space and returns its address.
func (m *guestMemory) put(b []byte) uint32 {
	ptr := m.next
	copy(m.Bytes[ptr:], b)
	m.next += uint32(len(b)+7) &^ 7
	if m.next >= testArenaPtr {
		panic("scratch space exhausted")
	}
	return ptr
}

func (m *guestMemory) putString(s string) (uint32, uint32) {
	return m.put([]byte(s)), uint32(len(s))
}

func (m *guestMemory) putID(id game.ID) uint32 {
	return m.put(id[:])
}

func (m *guestMemory) putParts(parts ...game.BodyPart) (uint32, uint32) {
	b := make([]byte, 4*len(parts))
	for i, p := range parts {
		screepswasm.Bytes(b).WriteU32(uint32(i*4), uint32(p))
	}
	return m.put(b), uint32(len(parts))
}

func mustID(t *testing.T, s string) game.ID {
	t.Helper()
	id, err := game.ParseID(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func mustName(t *testing.T, s string) game.Name {
	t.Helper()
	n, err := game.ParseName(s)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

// testWorld holds one owned spawn with 300 energy, an extension, and a
// spawn owned by someone else.
func testWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld(mustName(t, "alice"))
	objs := []*Object{
		{ID: mustID(t, "spawn1"), Kind: layout.KindSpawn, Room: "W1N1", Owner: mustName(t, "alice"), My: true,
			Hits: 5000, HitsMax: 5000, Energy: 300, EnergyCapacity: 300},
		{ID: mustID(t, "ext1"), Kind: layout.KindExtension, Room: "W1N1", Owner: mustName(t, "alice"), My: true,
			Hits: 1000, HitsMax: 1000, Energy: 50, EnergyCapacity: 200},
		{ID: mustID(t, "enemy"), Kind: layout.KindSpawn, Room: "W2N1", Owner: mustName(t, "bob"),
			Hits: 5000, HitsMax: 5000, Energy: 300, EnergyCapacity: 300},
	}
	for _, o := range objs {
		if err := w.Add(o); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

// readyBridge registers the standard layouts, sets the arena and freezes.
func readyBridge(t *testing.T, w *World) (*Bridge, *guestMemory) {
	t.Helper()
	b := NewBridge(w, nil)
	mem := newGuestMemory()
	for _, l := range standardLayouts() {
		ptr := mem.put(layout.EncodeEntries(l.entries))
		if st := b.RegisterLayout(mem, int32(l.kind), l.size, ptr, uint32(len(l.entries))); st != game.OK {
			t.Fatalf("register %s: %s (%v)", l.kind, st, b.Registry().Err())
		}
	}
	if st := b.SetArena(mem, testArenaPtr, testArenaCap); st != game.OK {
		t.Fatalf("set arena: %s", st)
	}
	if err := b.Registry().Freeze(); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	return b, mem
}

// arenaRecord returns the bytes of record i of the current arena.
func arenaRecord(mem *guestMemory, stride uint32, i int) []byte {
	base := testArenaPtr + ArenaHeaderSize + uint32(i)*stride
	return mem.Bytes[base : base+stride]
}

// wideMemory maps a small page at the very top of the 32-bit address space
// on top of a guestMemory, so ranges that wrap past 4 GiB can be exercised.
type wideMemory struct {
	*guestMemory
	top screepswasm.Bytes
}

func newWideMemory(low *guestMemory, topSize uint32) *wideMemory {
	return &wideMemory{guestMemory: low, top: screepswasm.NewBytes(topSize)}
}

func (m *wideMemory) base() uint32 {
	return uint32(1<<32 - uint64(len(m.top)))
}

func (m *wideMemory) Read(offset, length uint32) ([]byte, error) {
	if offset >= m.base() {
		return m.top.Read(offset-m.base(), length)
	}
	return m.Bytes.Read(offset, length)
}

func (m *wideMemory) Write(offset uint32, data []byte) error {
	if offset >= m.base() {
		return m.top.Write(offset-m.base(), data)
	}
	return m.Bytes.Write(offset, data)
}

func (m *wideMemory) ReadU32(offset uint32) (uint32, error) {
	if offset >= m.base() {
		return m.top.ReadU32(offset - m.base())
	}
	return m.Bytes.ReadU32(offset)
}

func (m *wideMemory) WriteU32(offset, value uint32) error {
	if offset >= m.base() {
		return m.top.WriteU32(offset-m.base(), value)
	}
	return m.Bytes.WriteU32(offset, value)
}

func (m *wideMemory) ReadF32(offset uint32) (float32, error) {
	if offset >= m.base() {
		return m.top.ReadF32(offset - m.base())
	}
	return m.Bytes.ReadF32(offset)
}
