//go:build !wasip1

package screeps

import (
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
)

// Host receives bridge calls in builds that do not target wasip1. Byte
// slices carry strings one Latin-1 character per byte, exactly as a wasm
// guest would send them.
type Host interface {
	RegisterLayout(kind layout.Kind, size uint32, entries []layout.Entry) game.Status
	SetArena(arena []byte) game.Status
	BodyCreate(parts []game.BodyPart) uint32
	HandleRelease(handle uint32) game.Status
	SpawnCreep(id game.ID, body uint32, name []byte, dirs game.Directions, dryRun bool) game.Status
	SpawningCancel(id game.ID) game.Status
	SpawningSetDirections(id game.ID, dirs game.Directions) game.Status
	DrawCircle(room []byte, at game.Point, style game.CircleStyle)
	DrawLine(room []byte, from, to game.Point, style game.LineStyleOptions)
	DrawPoly(room []byte, points []game.Point, style game.PolyStyle)
	DrawText(room []byte, at game.Point, text, font []byte, style game.TextStyle)
	Log(level game.LogLevel, msg []byte)
}

var current Host

// SetHost installs h and forgets any previous registration, so Init runs
// again against the new host.
func SetHost(h Host) {
	current = h
	arena = nil
	initialized = false
}

func hostOrPanic() Host {
	if current == nil {
		panic("screeps: no Host installed; call SetHost first")
	}
	return current
}

func registerLayout(kind layout.Kind, size uint32, entries []layout.Entry) game.Status {
	return hostOrPanic().RegisterLayout(kind, size, entries)
}

func setArena(buf []byte) game.Status {
	return hostOrPanic().SetArena(buf)
}

func bodyCreate(parts []game.BodyPart) uint32 {
	return hostOrPanic().BodyCreate(parts)
}

func handleRelease(h uint32) game.Status {
	return hostOrPanic().HandleRelease(h)
}

func spawnCreep(id *game.ID, body uint32, name []byte, dirs game.Directions, dryRun bool) game.Status {
	return hostOrPanic().SpawnCreep(*id, body, name, dirs, dryRun)
}

func spawningCancel(id *game.ID) game.Status {
	return hostOrPanic().SpawningCancel(*id)
}

func spawningSetDirections(id *game.ID, dirs game.Directions) game.Status {
	return hostOrPanic().SpawningSetDirections(*id, dirs)
}

func drawCircle(room []byte, at game.Point, s game.CircleStyle) {
	hostOrPanic().DrawCircle(room, at, s)
}

func drawLine(room []byte, from, to game.Point, s game.LineStyleOptions) {
	hostOrPanic().DrawLine(room, from, to, s)
}

func drawPoly(room []byte, points []game.Point, s game.PolyStyle) {
	hostOrPanic().DrawPoly(room, points, s)
}

func drawText(room []byte, at game.Point, text, font []byte, s game.TextStyle) {
	hostOrPanic().DrawText(room, at, text, font, s)
}

func logMessage(level game.LogLevel, msg []byte) {
	hostOrPanic().Log(level, msg)
}
