//go:build wasip1

package screeps

import (
	"runtime"
	"unsafe"

	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
)

//go:wasmimport screeps register_layout
func screepsRegisterLayout(kind int32, size uint32, entries unsafe.Pointer, count uint32) int32

//go:wasmimport screeps set_arena
func screepsSetArena(ptr unsafe.Pointer, capacity uint32) int32

//go:wasmimport screeps body_create
func screepsBodyCreate(parts unsafe.Pointer, count uint32) uint32

//go:wasmimport screeps handle_release
func screepsHandleRelease(handle uint32) int32

//go:wasmimport screeps spawn_creep
func screepsSpawnCreep(id unsafe.Pointer, body uint32, name unsafe.Pointer, nameLen uint32, directions uint32, dryRun uint32) int32

//go:wasmimport screeps spawning_cancel
func screepsSpawningCancel(id unsafe.Pointer) int32

//go:wasmimport screeps spawning_set_directions
func screepsSpawningSetDirections(id unsafe.Pointer, directions uint32) int32

//go:wasmimport screeps draw_circle
func screepsDrawCircle(room unsafe.Pointer, roomLen uint32, x, y, radius float32, fill uint32, opacity float32, stroke uint32, strokeWidth float32)

//go:wasmimport screeps draw_line
func screepsDrawLine(room unsafe.Pointer, roomLen uint32, x1, y1, x2, y2, width float32, color uint32, opacity float32, lineStyle int32)

//go:wasmimport screeps draw_poly
func screepsDrawPoly(room unsafe.Pointer, roomLen uint32, points unsafe.Pointer, count uint32, fill uint32, opacity float32, stroke uint32, strokeWidth float32, lineStyle int32)

//go:wasmimport screeps draw_text
func screepsDrawText(room unsafe.Pointer, roomLen uint32, x, y float32, text unsafe.Pointer, textLen uint32, color uint32, font unsafe.Pointer, fontLen uint32, stroke uint32, strokeWidth float32, background uint32, backgroundPadding float32, align int32, opacity float32)

//go:wasmimport screeps log
func screepsLog(level int32, msg unsafe.Pointer, n uint32)

func ptr[T any](s []T) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(s))
}

func registerLayout(kind layout.Kind, size uint32, entries []layout.Entry) game.Status {
	raw := layout.EncodeEntries(entries)
	st := screepsRegisterLayout(int32(kind), size, ptr(raw), uint32(len(entries)))
	runtime.KeepAlive(raw)
	return game.Status(st)
}

func setArena(buf []byte) game.Status {
	return game.Status(screepsSetArena(ptr(buf), uint32(len(buf))))
}

func bodyCreate(parts []game.BodyPart) uint32 {
	h := screepsBodyCreate(ptr(parts), uint32(len(parts)))
	runtime.KeepAlive(parts)
	return h
}

func handleRelease(h uint32) game.Status {
	return game.Status(screepsHandleRelease(h))
}

func spawnCreep(id *game.ID, body uint32, name []byte, dirs game.Directions, dryRun bool) game.Status {
	var dry uint32
	if dryRun {
		dry = 1
	}
	st := screepsSpawnCreep(unsafe.Pointer(id), body, ptr(name), uint32(len(name)), uint32(dirs), dry)
	runtime.KeepAlive(name)
	return game.Status(st)
}

func spawningCancel(id *game.ID) game.Status {
	return game.Status(screepsSpawningCancel(unsafe.Pointer(id)))
}

func spawningSetDirections(id *game.ID, dirs game.Directions) game.Status {
	return game.Status(screepsSpawningSetDirections(unsafe.Pointer(id), uint32(dirs)))
}

func drawCircle(room []byte, at game.Point, s game.CircleStyle) {
	screepsDrawCircle(ptr(room), uint32(len(room)), at.X, at.Y, s.Radius, uint32(s.Fill), s.Opacity, uint32(s.Stroke), s.StrokeWidth)
	runtime.KeepAlive(room)
}

func drawLine(room []byte, from, to game.Point, s game.LineStyleOptions) {
	screepsDrawLine(ptr(room), uint32(len(room)), from.X, from.Y, to.X, to.Y, s.Width, uint32(s.Color), s.Opacity, int32(s.LineStyle))
	runtime.KeepAlive(room)
}

func drawPoly(room []byte, points []game.Point, s game.PolyStyle) {
	screepsDrawPoly(ptr(room), uint32(len(room)), ptr(points), uint32(len(points)),
		uint32(s.Fill), s.Opacity, uint32(s.Stroke), s.StrokeWidth, int32(s.LineStyle))
	runtime.KeepAlive(room)
	runtime.KeepAlive(points)
}

func drawText(room []byte, at game.Point, text, font []byte, s game.TextStyle) {
	screepsDrawText(ptr(room), uint32(len(room)), at.X, at.Y, ptr(text), uint32(len(text)),
		uint32(s.Color), ptr(font), uint32(len(font)), uint32(s.Stroke), s.StrokeWidth,
		uint32(s.Background), s.BackgroundPadding, int32(s.Align), s.Opacity)
	runtime.KeepAlive(room)
	runtime.KeepAlive(text)
	runtime.KeepAlive(font)
}

func logMessage(level game.LogLevel, msg []byte) {
	screepsLog(int32(level), ptr(msg), uint32(len(msg)))
	runtime.KeepAlive(msg)
}
