package host

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
	"github.com/wippyai/screeps-wasm/resource"
)

// spawnRecord reads the spawn record at slot i after BeginTick.
func spawnRecord(t *testing.T, b *Bridge, mem *guestMemory, i int) layout.Record {
	t.Helper()
	rec := b.Registry().Record(arenaRecord(mem, testStride, i), layout.KindSpawn)
	if tag, _ := rec.I32(layout.FieldKindTag); layout.Kind(tag) != layout.KindSpawn {
		t.Fatalf("slot %d is not a spawn (kind %d)", i, tag)
	}
	return rec
}

func TestBridge_SpawnWithoutDirections(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}

	parts, n := mem.putParts(game.Work, game.Move)
	h := b.BodyCreate(mem, parts, n)
	if h == 0 {
		t.Fatalf("BodyCreate failed: %+v", b.Trace())
	}
	idPtr := mem.putID(mustID(t, "spawn1"))
	namePtr, nameLen := mem.putString("alice")

	if st := b.SpawnCreep(mem, idPtr, uint32(h), namePtr, nameLen, 0, 0); st != game.OK {
		t.Fatalf("SpawnCreep: %s", st)
	}
	b.HandleRelease(h)
	b.EndTick()
	w.Advance()

	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	rec := spawnRecord(t, b, mem, 0)
	if sp, _ := rec.Bool(layout.FieldIsSpawning); !sp {
		t.Fatal("expected is-spawning")
	}
	if need, _ := rec.I32(layout.FieldSpawningNeedTime); need != 6 {
		t.Errorf("expected need time 6, got %d", need)
	}
	if rem, _ := rec.I32(layout.FieldSpawningRemainingTime); rem != 5 {
		t.Errorf("expected remaining time 5, got %d", rem)
	}
	if d, _ := rec.U32(layout.FieldSpawningDirections); d != 0 {
		t.Errorf("expected no directions, got %#x", d)
	}
	if e, _ := rec.I32(layout.FieldEnergy); e != 150 {
		t.Errorf("expected 150 energy left, got %d", e)
	}
}

func TestBridge_SpawnWithDirections(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}

	parts, n := mem.putParts(game.Move)
	h := b.BodyCreate(mem, parts, n)
	idPtr := mem.putID(mustID(t, "spawn1"))
	namePtr, nameLen := mem.putString("bob")

	if st := b.SpawnCreep(mem, idPtr, uint32(h), namePtr, nameLen, 0x531, 0); st != game.OK {
		t.Fatalf("SpawnCreep: %s", st)
	}

	s, _ := w.Get(mustID(t, "spawn1"))
	want := []game.Direction{game.Top, game.Right, game.Bottom}
	if len(s.Spawning.Directions) != len(want) {
		t.Fatalf("expected %v, got %v", want, s.Spawning.Directions)
	}
	for i := range want {
		if s.Spawning.Directions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, s.Spawning.Directions)
		}
	}

	last := b.Trace()[len(b.Trace())-1]
	req, ok := last.Request.(*SpawnRequest)
	if !ok || req.Name != "bob" || len(req.Directions) != 3 {
		t.Errorf("unexpected dispatched request %+v", last.Request)
	}
}

func TestBridge_CancelClearsNextArena(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}

	parts, n := mem.putParts(game.Move, game.Move)
	h := b.BodyCreate(mem, parts, n)
	idPtr := mem.putID(mustID(t, "spawn1"))
	namePtr, nameLen := mem.putString("c1")
	if st := b.SpawnCreep(mem, idPtr, uint32(h), namePtr, nameLen, 0, 0); st != game.OK {
		t.Fatalf("SpawnCreep: %s", st)
	}
	b.EndTick()
	w.Advance()

	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	if sp, _ := spawnRecord(t, b, mem, 0).Bool(layout.FieldIsSpawning); !sp {
		t.Fatal("expected is-spawning before cancel")
	}
	if st := b.SpawningCancel(mem, idPtr); st != game.OK {
		t.Fatalf("SpawningCancel: %s", st)
	}
	if st := b.SpawningCancel(mem, idPtr); st != game.ErrNotFound {
		t.Errorf("second cancel: expected %s, got %s", game.ErrNotFound, st)
	}
	b.EndTick()
	w.Advance()

	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	if sp, _ := spawnRecord(t, b, mem, 0).Bool(layout.FieldIsSpawning); sp {
		t.Error("expected is-spawning false after cancel")
	}
	if _, ok := w.Creep("c1"); ok {
		t.Error("cancelled creep must not be born")
	}
}

func TestBridge_StaleIDDispatchesNothing(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}

	parts, n := mem.putParts(game.Move)
	h := b.BodyCreate(mem, parts, n)
	idPtr := mem.putID(mustID(t, "spawn1"))
	namePtr, nameLen := mem.putString("ghost")

	w.Remove(mustID(t, "spawn1"))
	if st := b.SpawnCreep(mem, idPtr, uint32(h), namePtr, nameLen, 0, 0); st != game.ErrInvalidTarget {
		t.Fatalf("expected %s, got %s", game.ErrInvalidTarget, st)
	}
	if req := b.Trace()[len(b.Trace())-1].Request; req != nil {
		t.Errorf("expected nothing dispatched, got %+v", req)
	}

	extPtr := mem.putID(mustID(t, "ext1"))
	if st := b.SpawnCreep(mem, extPtr, uint32(h), namePtr, nameLen, 0, 0); st != game.ErrInvalidTarget {
		t.Errorf("non-spawn id: expected %s, got %s", game.ErrInvalidTarget, st)
	}
	if st := b.SpawningCancel(mem, idPtr); st != game.ErrInvalidTarget {
		t.Errorf("cancel on stale id: expected %s, got %s", game.ErrInvalidTarget, st)
	}
	if st := b.SpawningSetDirections(mem, idPtr, 0x1); st != game.ErrInvalidTarget {
		t.Errorf("set directions on stale id: expected %s, got %s", game.ErrInvalidTarget, st)
	}
}

func TestBridge_HandleErrorsBeforeResolution(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}

	parts, n := mem.putParts(game.Move)
	h := b.BodyCreate(mem, parts, n)
	if st := b.HandleRelease(h); st != game.OK {
		t.Fatalf("HandleRelease: %s", st)
	}
	if st := b.HandleRelease(h); st != game.ErrInvalidHandle {
		t.Errorf("double release: expected %s, got %s", game.ErrInvalidHandle, st)
	}

	idPtr := mem.putID(mustID(t, "spawn1"))
	stalePtr := mem.putID(mustID(t, "nothing"))
	namePtr, nameLen := mem.putString("n")

	tests := []struct {
		name   string
		handle uint32
		idPtr  uint32
	}{
		{"released handle", uint32(h), idPtr},
		{"zero handle", 0, idPtr},
		{"never issued", 999, idPtr},
		{"released handle and stale id", uint32(h), stalePtr},
		{"zero handle and stale id", 0, stalePtr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if st := b.SpawnCreep(mem, tt.idPtr, tt.handle, namePtr, nameLen, 0, 0); st != game.ErrInvalidHandle {
				t.Errorf("expected %s, got %s", game.ErrInvalidHandle, st)
			}
		})
	}

	s, _ := w.Get(mustID(t, "spawn1"))
	if s.Spawning != nil || s.Energy != 300 {
		t.Error("refused calls must not change the spawn")
	}
}

func TestBridge_HandlesVoidAtTickBoundary(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	parts, n := mem.putParts(game.Move)
	h := b.BodyCreate(mem, parts, n)
	b.BodyCreate(mem, parts, n)
	if leaked := b.EndTick(); leaked != 2 {
		t.Errorf("expected 2 leaked handles, got %d", leaked)
	}
	w.Advance()

	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	idPtr := mem.putID(mustID(t, "spawn1"))
	namePtr, nameLen := mem.putString("late")
	if st := b.SpawnCreep(mem, idPtr, uint32(h), namePtr, nameLen, 0, 0); st != game.ErrInvalidHandle {
		t.Errorf("handle from previous tick: expected %s, got %s", game.ErrInvalidHandle, st)
	}
	if h2 := b.BodyCreate(mem, parts, n); h2 == h {
		t.Error("handle value reused across ticks")
	}
}

func TestBridge_SpawnCreepStatuses(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}

	own := mem.putID(mustID(t, "spawn1"))
	foreign := mem.putID(mustID(t, "enemy"))
	cheap, cheapN := mem.putParts(game.Move)
	pricey, priceyN := mem.putParts(game.Claim)
	name, nameLen := mem.putString("x")
	long, longLen := mem.putString("abcdefghijklmnopqrstuvwxyz0123456")

	tests := []struct {
		name    string
		idPtr   uint32
		parts   uint32
		count   uint32
		namePtr uint32
		nameLen uint32
		dirs    uint32
		dry     uint32
		want    game.Status
	}{
		{"foreign spawn", foreign, cheap, cheapN, name, nameLen, 0, 0, game.ErrNotOwner},
		{"not enough energy", own, pricey, priceyN, name, nameLen, 0, 0, game.ErrNotEnoughEnergy},
		{"empty body", own, cheap, 0, name, nameLen, 0, 0, game.ErrInvalidArgs},
		{"empty name", own, cheap, cheapN, name, 0, 0, 0, game.ErrInvalidArgs},
		{"name too long", own, cheap, cheapN, long, longLen, 0, 0, game.ErrInvalidArgs},
		{"zero nibble in directions", own, cheap, cheapN, name, nameLen, 0x301, 0, game.ErrInvalidArgs},
		{"invalid direction nibble", own, cheap, cheapN, name, nameLen, 0x9, 0, game.ErrInvalidArgs},
		{"name outside memory", own, cheap, cheapN, testMemorySize - 2, 4, 0, 0, game.ErrInvalidArgs},
		{"dry run", own, cheap, cheapN, name, nameLen, 0, 1, game.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := b.BodyCreate(mem, tt.parts, tt.count)
			if h == 0 {
				t.Fatalf("BodyCreate failed: %+v", b.Trace()[len(b.Trace())-1])
			}
			defer b.HandleRelease(h)
			if st := b.SpawnCreep(mem, tt.idPtr, uint32(h), tt.namePtr, tt.nameLen, tt.dirs, tt.dry); st != tt.want {
				t.Errorf("expected %s, got %s", tt.want, st)
			}
		})
	}

	s, _ := w.Get(mustID(t, "spawn1"))
	if s.Spawning != nil || s.Energy != 300 {
		t.Errorf("spawn changed by refused or dry-run calls: %+v", s)
	}

	h := b.BodyCreate(mem, cheap, cheapN)
	if st := b.SpawnCreep(mem, own, uint32(h), name, nameLen, 0, 0); st != game.OK {
		t.Fatalf("SpawnCreep: %s", st)
	}
	if st := b.SpawnCreep(mem, own, uint32(h), name, nameLen, 0, 0); st != game.ErrBusy {
		t.Errorf("expected %s, got %s", game.ErrBusy, st)
	}
}

func TestBridge_SetDirections(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	idPtr := mem.putID(mustID(t, "spawn1"))
	if st := b.SpawningSetDirections(mem, idPtr, 0x21); st != game.ErrNotFound {
		t.Errorf("idle spawn: expected %s, got %s", game.ErrNotFound, st)
	}

	parts, n := mem.putParts(game.Move)
	h := b.BodyCreate(mem, parts, n)
	namePtr, nameLen := mem.putString("d")
	b.SpawnCreep(mem, idPtr, uint32(h), namePtr, nameLen, 0, 0)

	if st := b.SpawningSetDirections(mem, idPtr, 0); st != game.ErrInvalidArgs {
		t.Errorf("empty directions: expected %s, got %s", game.ErrInvalidArgs, st)
	}
	if st := b.SpawningSetDirections(mem, idPtr, 0x0f); st != game.ErrInvalidArgs {
		t.Errorf("bad nibble: expected %s, got %s", game.ErrInvalidArgs, st)
	}
	if st := b.SpawningSetDirections(mem, idPtr, 0x87); st != game.OK {
		t.Fatalf("SpawningSetDirections: %s", st)
	}
	b.EndTick()
	w.Advance()

	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	if d, _ := spawnRecord(t, b, mem, 0).U32(layout.FieldSpawningDirections); d != 0x87 {
		t.Errorf("expected directions 0x87 in next arena, got %#x", d)
	}
}

func TestSpawnRequest_JSON(t *testing.T) {
	req := &SpawnRequest{
		Name:       "harvester",
		Body:       []game.BodyPart{game.Work, game.Move},
		Directions: []game.Direction{game.Top, game.Right, game.Bottom},
	}
	data, err := json.Marshal(Call{Func: "spawn_creep", Request: req})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"directions":[1,3,5]`) {
		t.Errorf("directions not encoded as numbers: %s", data)
	}
	if !strings.Contains(string(data), `"body":[2,1]`) {
		t.Errorf("unexpected body encoding: %s", data)
	}
}

func TestBridge_TraceKeepsIssueOrder(t *testing.T) {
	w := testWorld(t)
	b, mem := readyBridge(t, w)
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	if len(b.Trace()) != 0 {
		t.Fatalf("trace not cleared at tick start: %d calls", len(b.Trace()))
	}

	room, roomLen := mem.putString("W1N1")
	msg, msgLen := mem.putString("hello")
	parts, n := mem.putParts(game.Move)

	b.Log(mem, int32(game.LogInfo), msg, msgLen)
	h := b.BodyCreate(mem, parts, n)
	b.DrawCircle(mem, room, roomLen, game.Point{X: 1, Y: 2}, game.DefaultCircle())
	b.HandleRelease(h)

	want := []string{"log", "body_create", "draw_circle", "handle_release"}
	trace := b.Trace()
	if len(trace) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(trace))
	}
	for i, fn := range want {
		if trace[i].Func != fn {
			t.Errorf("call %d: expected %s, got %s", i, fn, trace[i].Func)
		}
		if i > 0 && trace[i].Seq <= trace[i-1].Seq {
			t.Errorf("call %d: sequence %d not after %d", i, trace[i].Seq, trace[i-1].Seq)
		}
	}
}

func TestReadString(t *testing.T) {
	mem := newGuestMemory()
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"ascii", []byte("Harvester1"), "Harvester1"},
		{"latin1", []byte{'c', 'a', 'f', 0xe9}, "café"},
		{"high bytes", []byte{0xa9, 0xff}, "©ÿ"},
		{"embedded zero", []byte{'a', 0, 'b'}, "a\x00b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ptr := mem.put(tt.raw)
			got, err := ReadString(mem, ptr, uint32(len(tt.raw)))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if n := len([]rune(got)); n != len(tt.raw) {
				t.Errorf("expected %d code points, got %d", len(tt.raw), n)
			}
		})
	}

	if _, err := ReadString(mem, 0, MaxStringLen+1); err == nil {
		t.Error("expected error for oversized string")
	}
	if _, err := ReadString(mem, testMemorySize-1, 2); err == nil {
		t.Error("expected error for string outside memory")
	}
}

func TestBridge_RegisterLayoutFailures(t *testing.T) {
	ext := layout.EncodeEntries([]layout.Entry{
		{Field: layout.FieldEnergy, Offset: 72},
		{Field: layout.FieldEnergyCapacity, Offset: 76},
	})
	tests := []struct {
		name  string
		setup func(b *Bridge, mem *guestMemory) game.Status
	}{
		{"field at record size", func(b *Bridge, mem *guestMemory) game.Status {
			ptr := mem.put(layout.EncodeEntries([]layout.Entry{
				{Field: layout.FieldEnergy, Offset: 72},
				{Field: layout.FieldEnergyCapacity, Offset: 80},
			}))
			return b.RegisterLayout(mem, int32(layout.KindExtension), 80, ptr, 2)
		}},
		{"missing field", func(b *Bridge, mem *guestMemory) game.Status {
			ptr := mem.put(ext)
			return b.RegisterLayout(mem, int32(layout.KindExtension), 80, ptr, 1)
		}},
		{"unknown kind", func(b *Bridge, mem *guestMemory) game.Status {
			ptr := mem.put(ext)
			return b.RegisterLayout(mem, 99, 80, ptr, 2)
		}},
		{"entries outside memory", func(b *Bridge, mem *guestMemory) game.Status {
			return b.RegisterLayout(mem, int32(layout.KindExtension), 80, testMemorySize-8, 2)
		}},
		{"too many entries", func(b *Bridge, mem *guestMemory) game.Status {
			return b.RegisterLayout(mem, int32(layout.KindExtension), 80, 0, MaxLayoutEntries+1)
		}},
		{"field of another kind", func(b *Bridge, mem *guestMemory) game.Status {
			ptr := mem.put(layout.EncodeEntries([]layout.Entry{
				{Field: layout.FieldEnergy, Offset: 72},
				{Field: layout.FieldEnergyCapacity, Offset: 76},
				{Field: layout.FieldLevel, Offset: 80},
			}))
			return b.RegisterLayout(mem, int32(layout.KindExtension), 84, ptr, 3)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBridge(testWorld(t), nil)
			mem := newGuestMemory()
			base := standardLayouts()[0]
			basePtr := mem.put(layout.EncodeEntries(base.entries))
			if st := b.RegisterLayout(mem, int32(base.kind), base.size, basePtr, uint32(len(base.entries))); st != game.OK {
				t.Fatalf("generic layout: %s", st)
			}

			if st := tt.setup(b, mem); st != game.ErrRegistration {
				t.Fatalf("expected %s, got %s", game.ErrRegistration, st)
			}
			if b.Registry().Err() == nil {
				t.Fatal("registry not poisoned")
			}

			// Every later registration keeps failing and the tick cannot start.
			ptr := mem.put(ext)
			if st := b.RegisterLayout(mem, int32(layout.KindExtension), 80, ptr, 2); st != game.ErrRegistration {
				t.Errorf("valid layout after failure: expected %s, got %s", game.ErrRegistration, st)
			}
			b.SetArena(mem, testArenaPtr, testArenaCap)
			if err := b.Registry().Freeze(); err == nil {
				t.Error("expected Freeze to report the registration error")
			}
			if _, err := b.BeginTick(mem); err == nil {
				t.Error("expected BeginTick to fail")
			}
		})
	}
}

func TestBridge_RegisterAfterFreeze(t *testing.T) {
	b, mem := readyBridge(t, testWorld(t))
	ptr := mem.put(layout.EncodeEntries(standardLayouts()[0].entries))
	if st := b.RegisterLayout(mem, int32(layout.KindStructure), testStride, ptr, 6); st != game.ErrRegistration {
		t.Errorf("expected %s, got %s", game.ErrRegistration, st)
	}
}

func TestBridge_SetArena(t *testing.T) {
	b := NewBridge(testWorld(t), nil)
	mem := newGuestMemory()

	tests := []struct {
		name     string
		ptr, cap uint32
		want     game.Status
	}{
		{"smaller than header", testArenaPtr, 4, game.ErrInvalidArgs},
		{"outside memory", testMemorySize - 16, 64, game.ErrInvalidArgs},
		{"valid", testArenaPtr, testArenaCap, game.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if st := b.SetArena(mem, tt.ptr, tt.cap); st != tt.want {
				t.Errorf("expected %s, got %s", tt.want, st)
			}
		})
	}
	if b.Arena() != (Arena{Ptr: testArenaPtr, Cap: testArenaCap}) {
		t.Errorf("unexpected arena %+v", b.Arena())
	}

	b2, mem2 := readyBridge(t, testWorld(t))
	if st := b2.SetArena(mem2, 0, 64); st != game.ErrRegistration {
		t.Errorf("after freeze: expected %s, got %s", game.ErrRegistration, st)
	}
}

func TestBridge_BeginTickBeforeFreeze(t *testing.T) {
	b := NewBridge(testWorld(t), nil)
	if _, err := b.BeginTick(newGuestMemory()); err == nil {
		t.Error("expected error before registration ends")
	}
}

func TestBridge_BodyCreateInvalid(t *testing.T) {
	b, mem := readyBridge(t, testWorld(t))
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	bad := mem.put([]byte{1, 0, 0, 0, 42, 0, 0, 0})

	tests := []struct {
		name       string
		ptr, count uint32
	}{
		{"unknown part", bad, 2},
		{"outside memory", testMemorySize - 4, 2},
		{"too many parts", bad, MaxBodyRead + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h := b.BodyCreate(mem, tt.ptr, tt.count); h != 0 {
				t.Errorf("expected zero handle, got %d", h)
			}
		})
	}
	if b.Handles().Len() != 0 {
		t.Errorf("expected no live handles, got %d", b.Handles().Len())
	}

	h := b.BodyCreate(mem, bad, 1)
	v, err := b.Handles().GetTyped(h, resource.TypeBody)
	if err != nil {
		t.Fatal(err)
	}
	if parts := v.(*Body).Parts; len(parts) != 1 || parts[0] != game.Move {
		t.Errorf("unexpected body %v", parts)
	}
}

func TestBridge_RangesWrappingAddressSpace(t *testing.T) {
	b, low := readyBridge(t, testWorld(t))
	if _, err := b.BeginTick(low); err != nil {
		t.Fatal(err)
	}
	mem := newWideMemory(low, 16)
	// Valid data on both sides of the 4 GiB boundary.
	mem.WriteU32(0, uint32(game.Move))
	mem.WriteU32(0xFFFFFFFC, uint32(game.Move))
	mem.top.WriteF32(8, 1)
	mem.top.WriteF32(12, 2)
	room, roomLen := low.putString("W1N1")

	if h := b.BodyCreate(mem, 0xFFFFFFFC, 2); h != 0 {
		t.Errorf("body_create: expected zero handle, got %d", h)
	}
	if st := b.DrawPoly(mem, room, roomLen, 0xFFFFFFF8, 2, game.DefaultPoly()); st != game.ErrInvalidArgs {
		t.Errorf("draw_poly: expected %s, got %s", game.ErrInvalidArgs, st)
	}
	for _, c := range b.Trace() {
		if c.Status != game.ErrInvalidArgs {
			t.Errorf("%s: expected %s, got %s (%s)", c.Func, game.ErrInvalidArgs, c.Status, c.Detail)
		}
	}
	if b.Handles().Len() != 0 || b.Visuals().Len() != 0 {
		t.Errorf("expected nothing created, got %d handles, %d visuals", b.Handles().Len(), b.Visuals().Len())
	}

	// The last in-range body part is still readable.
	if h := b.BodyCreate(mem, 0xFFFFFFFC, 1); h == 0 {
		t.Error("single part at top of memory rejected")
	}
}

func TestBridge_ReleaseDropsBody(t *testing.T) {
	b, mem := readyBridge(t, testWorld(t))
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	ptr, n := mem.putParts(game.Work, game.Move)
	h := b.BodyCreate(mem, ptr, n)
	body, err := b.body(h)
	if err != nil {
		t.Fatal(err)
	}
	if st := b.HandleRelease(h); st != game.OK {
		t.Fatalf("release: %s", st)
	}
	if body.Parts != nil {
		t.Errorf("released body still holds %v", body.Parts)
	}

	h = b.BodyCreate(mem, ptr, n)
	body, err = b.body(h)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Handles().Close(); err != nil {
		t.Fatal(err)
	}
	if body.Parts != nil {
		t.Errorf("closed table left body %v", body.Parts)
	}
	if _, err := b.Handles().Create(resource.TypeBody, &Body{}); !stderrors.Is(err, resource.ErrClosed) {
		t.Errorf("expected %v after close, got %v", resource.ErrClosed, err)
	}
}

func TestBridge_DrawsRejectNonFinite(t *testing.T) {
	b, mem := readyBridge(t, testWorld(t))
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	room, roomLen := mem.putString("W1N1")
	text, textLen := mem.putString("x")
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	pts := mem.next
	mem.WriteF32(pts, 1)
	mem.WriteF32(pts+4, 2)
	mem.WriteF32(pts+8, nan)
	mem.WriteF32(pts+12, 4)
	mem.next += 16

	wideCircle := game.DefaultCircle()
	wideCircle.Radius = inf
	fadedLine := game.DefaultLine()
	fadedLine.Opacity = nan
	thickPoly := game.DefaultPoly()
	thickPoly.StrokeWidth = -inf
	paddedText := game.DefaultText()
	paddedText.BackgroundPadding = inf

	tests := []struct {
		name string
		draw func() game.Status
	}{
		{"circle nan x", func() game.Status {
			return b.DrawCircle(mem, room, roomLen, game.Point{X: nan, Y: 1}, game.DefaultCircle())
		}},
		{"circle inf radius", func() game.Status {
			return b.DrawCircle(mem, room, roomLen, game.Point{X: 1, Y: 1}, wideCircle)
		}},
		{"line inf end", func() game.Status {
			return b.DrawLine(mem, room, roomLen, game.Point{}, game.Point{X: 1, Y: inf}, game.DefaultLine())
		}},
		{"line nan opacity", func() game.Status {
			return b.DrawLine(mem, room, roomLen, game.Point{}, game.Point{X: 1, Y: 1}, fadedLine)
		}},
		{"poly nan point", func() game.Status {
			return b.DrawPoly(mem, room, roomLen, pts, 2, game.DefaultPoly())
		}},
		{"poly inf stroke", func() game.Status {
			return b.DrawPoly(mem, room, roomLen, pts, 1, thickPoly)
		}},
		{"text nan y", func() game.Status {
			return b.DrawText(mem, room, roomLen, game.Point{X: 1, Y: nan}, text, textLen, 0, 0, game.DefaultText())
		}},
		{"text inf padding", func() game.Status {
			return b.DrawText(mem, room, roomLen, game.Point{X: 1, Y: 1}, text, textLen, 0, 0, paddedText)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if st := tt.draw(); st != game.ErrInvalidArgs {
				t.Errorf("expected %s, got %s", game.ErrInvalidArgs, st)
			}
		})
	}
	if b.Visuals().Len() != 0 {
		t.Errorf("expected no visuals, got %d", b.Visuals().Len())
	}
	if _, err := json.Marshal(b.Trace()); err != nil {
		t.Errorf("trace does not encode: %v", err)
	}
}


func TestBridge_Draws(t *testing.T) {
	b, mem := readyBridge(t, testWorld(t))
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	r1, r1Len := mem.putString("W1N1")
	r2, r2Len := mem.putString("W2N2")
	text, textLen := mem.putString("spawn")
	font, fontLen := mem.putString("12px monospace")

	pts := mem.next
	mem.WriteF32(pts, 1)
	mem.WriteF32(pts+4, 2)
	mem.WriteF32(pts+8, 3.5)
	mem.WriteF32(pts+12, 4.25)
	mem.next += 16

	statuses := []game.Status{
		b.DrawCircle(mem, r1, r1Len, game.Point{X: 10, Y: 10}, game.DefaultCircle()),
		b.DrawLine(mem, r1, r1Len, game.Point{X: 0, Y: 0}, game.Point{X: 5, Y: 5}, game.DefaultLine()),
		b.DrawPoly(mem, r2, r2Len, pts, 2, game.DefaultPoly()),
		b.DrawText(mem, r2, r2Len, game.Point{X: 1, Y: 1}, text, textLen, font, fontLen, game.DefaultText()),
	}
	for i, st := range statuses {
		if st != game.OK {
			t.Errorf("draw %d: %s", i, st)
		}
	}

	if st := b.DrawCircle(mem, r1, 0, game.Point{}, game.DefaultCircle()); st != game.ErrInvalidArgs {
		t.Errorf("empty room: expected %s, got %s", game.ErrInvalidArgs, st)
	}
	if st := b.DrawPoly(mem, r1, r1Len, pts, MaxPolyPoints+1, game.DefaultPoly()); st != game.ErrInvalidArgs {
		t.Errorf("too many points: expected %s, got %s", game.ErrInvalidArgs, st)
	}

	v := b.Visuals()
	if rooms := v.Rooms(); len(rooms) != 2 || rooms[0] != "W1N1" || rooms[1] != "W2N2" {
		t.Fatalf("unexpected rooms %v", rooms)
	}
	if v.Len() != 4 {
		t.Errorf("expected 4 visuals, got %d", v.Len())
	}
	w1 := v.Room("W1N1")
	if w1[0].Shape != ShapeCircle || w1[1].Shape != ShapeLine {
		t.Errorf("unexpected W1N1 order %v, %v", w1[0].Shape, w1[1].Shape)
	}
	w2 := v.Room("W2N2")
	if poly := w2[0]; poly.Shape != ShapePoly || len(poly.Points) != 2 || poly.Points[1] != (game.Point{X: 3.5, Y: 4.25}) {
		t.Errorf("unexpected poly %+v", poly)
	}
	if txt := w2[1]; txt.Label != "spawn" || txt.Text == nil || txt.Text.Font != "12px monospace" {
		t.Errorf("unexpected text %+v", txt)
	}

	b.EndTick()
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	if b.Visuals().Len() != 0 {
		t.Error("visuals not cleared at tick start")
	}
}

func TestBridge_Log(t *testing.T) {
	b, mem := readyBridge(t, testWorld(t))
	if _, err := b.BeginTick(mem); err != nil {
		t.Fatal(err)
	}
	msg, n := mem.putString("hello")
	b.Log(mem, int32(game.LogWarn), msg, n)
	b.Log(mem, 77, msg, n)
	if st := b.Log(mem, 0, testMemorySize-1, 8); st != game.ErrInvalidArgs {
		t.Errorf("expected %s, got %s", game.ErrInvalidArgs, st)
	}

	logs := b.Logs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(logs))
	}
	if logs[0].Level != game.LogWarn || logs[0].Message != "hello" {
		t.Errorf("unexpected entry %+v", logs[0])
	}
	if logs[1].Level != game.LogInfo {
		t.Errorf("unknown level should map to info, got %s", logs[1].Level)
	}
}

func TestBridge_LimitArena(t *testing.T) {
	b := NewBridge(testWorld(t), nil)
	b.LimitArena(256)
	if st := b.SetArena(newGuestMemory(), testArenaPtr, testArenaCap); st != game.OK {
		t.Fatalf("SetArena: %s", st)
	}
	if b.Arena().Cap != 256 {
		t.Errorf("expected capped capacity 256, got %d", b.Arena().Cap)
	}
}
