//go:build !wasip1

package screeps

import (
	"testing"

	screepswasm "github.com/wippyai/screeps-wasm"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/host"
	"github.com/wippyai/screeps-wasm/layout"
	"github.com/wippyai/screeps-wasm/resource"
)

// bridgeHost runs SDK calls against a real host.Bridge. Arguments are
// copied into a scratch memory at fixed offsets; the arena is the guest's
// own slice.
type bridgeHost struct {
	bridge *host.Bridge
	arena  screepswasm.Bytes
}

const scratchSize = 64 << 10

func newBridgeHost(t *testing.T, w *host.World) *bridgeHost {
	t.Helper()
	h := &bridgeHost{bridge: host.NewBridge(w, nil)}
	SetHost(h)
	t.Cleanup(func() { SetHost(nil) })
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := h.bridge.Registry().Freeze(); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	return h
}

// tick fills the arena, runs the installed loop and advances the world.
// It returns the number of handles the loop left open.
func (h *bridgeHost) tick(t *testing.T) int {
	t.Helper()
	if _, err := h.bridge.BeginTick(h.arena); err != nil {
		t.Fatalf("begin tick: %v", err)
	}
	RunTick()
	leaked := h.bridge.EndTick()
	h.bridge.World().Advance()
	return leaked
}

type scratch struct {
	screepswasm.Bytes
	next uint32
}

func newScratch() *scratch {
	return &scratch{Bytes: screepswasm.NewBytes(scratchSize), next: 8}
}

func (s *scratch) put(b []byte) (uint32, uint32) {
	ptr := s.next
	copy(s.Bytes[ptr:], b)
	s.next += uint32(len(b)+7) &^ 7
	return ptr, uint32(len(b))
}

func (s *scratch) putID(id game.ID) uint32 {
	ptr, _ := s.put(id[:])
	return ptr
}

func (h *bridgeHost) RegisterLayout(kind layout.Kind, size uint32, entries []layout.Entry) game.Status {
	s := newScratch()
	ptr, _ := s.put(layout.EncodeEntries(entries))
	return h.bridge.RegisterLayout(s, int32(kind), size, ptr, uint32(len(entries)))
}

func (h *bridgeHost) SetArena(arena []byte) game.Status {
	st := h.bridge.SetArena(screepswasm.Bytes(arena), 0, uint32(len(arena)))
	if st == game.OK {
		h.arena = arena
	}
	return st
}

func (h *bridgeHost) BodyCreate(parts []game.BodyPart) uint32 {
	s := newScratch()
	b := make([]byte, 4*len(parts))
	for i, p := range parts {
		screepswasm.Bytes(b).WriteU32(uint32(i*4), uint32(p))
	}
	ptr, _ := s.put(b)
	return uint32(h.bridge.BodyCreate(s, ptr, uint32(len(parts))))
}

func (h *bridgeHost) HandleRelease(handle uint32) game.Status {
	return h.bridge.HandleRelease(resource.Handle(handle))
}

func (h *bridgeHost) SpawnCreep(id game.ID, body uint32, name []byte, dirs game.Directions, dryRun bool) game.Status {
	s := newScratch()
	idPtr := s.putID(id)
	namePtr, nameLen := s.put(name)
	var dry uint32
	if dryRun {
		dry = 1
	}
	return h.bridge.SpawnCreep(s, idPtr, body, namePtr, nameLen, uint32(dirs), dry)
}

func (h *bridgeHost) SpawningCancel(id game.ID) game.Status {
	s := newScratch()
	return h.bridge.SpawningCancel(s, s.putID(id))
}

func (h *bridgeHost) SpawningSetDirections(id game.ID, dirs game.Directions) game.Status {
	s := newScratch()
	return h.bridge.SpawningSetDirections(s, s.putID(id), uint32(dirs))
}

func (h *bridgeHost) DrawCircle(room []byte, at game.Point, style game.CircleStyle) {
	s := newScratch()
	ptr, n := s.put(room)
	h.bridge.DrawCircle(s, ptr, n, at, style)
}

func (h *bridgeHost) DrawLine(room []byte, from, to game.Point, style game.LineStyleOptions) {
	s := newScratch()
	ptr, n := s.put(room)
	h.bridge.DrawLine(s, ptr, n, from, to, style)
}

func (h *bridgeHost) DrawPoly(room []byte, points []game.Point, style game.PolyStyle) {
	s := newScratch()
	roomPtr, roomLen := s.put(room)
	b := screepswasm.NewBytes(uint32(8 * len(points)))
	for i, p := range points {
		b.WriteF32(uint32(i*8), p.X)
		b.WriteF32(uint32(i*8+4), p.Y)
	}
	pointsPtr, _ := s.put(b)
	h.bridge.DrawPoly(s, roomPtr, roomLen, pointsPtr, uint32(len(points)), style)
}

func (h *bridgeHost) DrawText(room []byte, at game.Point, text, font []byte, style game.TextStyle) {
	s := newScratch()
	roomPtr, roomLen := s.put(room)
	textPtr, textLen := s.put(text)
	fontPtr, fontLen := s.put(font)
	h.bridge.DrawText(s, roomPtr, roomLen, at, textPtr, textLen, fontPtr, fontLen, style)
}

func (h *bridgeHost) Log(level game.LogLevel, msg []byte) {
	s := newScratch()
	ptr, n := s.put(msg)
	h.bridge.Log(s, int32(level), ptr, n)
}
