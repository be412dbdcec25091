package host

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	screepswasm "github.com/wippyai/screeps-wasm"
	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/game"
	"github.com/wippyai/screeps-wasm/layout"
	"github.com/wippyai/screeps-wasm/resource"
)

// Limits on guest-supplied lengths.
const (
	MaxStringLen     = 4096
	MaxLayoutEntries = 64
	MaxBodyRead      = 256
	MaxPolyPoints    = 1024
)

// Body is the host value behind a body handle.
type Body struct {
	Parts []game.BodyPart
}

// Drop clears the parts when the handle is released or its table closed.
func (b *Body) Drop() { b.Parts = nil }

// finite reports whether every value is a real number.
func finite(vals ...float32) bool {
	for _, v := range vals {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

const errNonFinite = "non-finite coordinate or style value"

// Call is one bridge call as observed by the host, in issue order.
type Call struct {
	Request any         `json:"request,omitempty"`
	Func    string      `json:"func"`
	Detail  string      `json:"detail,omitempty"`
	Args    []uint64    `json:"args"`
	Seq     uint64      `json:"seq"`
	Status  game.Status `json:"status"`
}

// LogEntry is one guest log line.
type LogEntry struct {
	Message string        `json:"message"`
	Level   game.LogLevel `json:"level"`
}

// Bridge implements every host function the guest imports. It owns the
// Layout Registry, Handle Table and Object Resolver of one guest instance.
// A Bridge is driven by a single goroutine: the one running the guest.
type Bridge struct {
	registry *layout.Registry
	handles  *resource.Table
	world    *World
	resolver *Resolver
	visuals  *Visuals
	logger   *zap.Logger
	trace    []Call
	logs     []LogEntry
	arena    Arena
	limit    uint32
	seq      uint64
}

// NewBridge creates a bridge over world with a fresh registry and handle
// table. A nil logger disables logging.
func NewBridge(world *World, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bridge{
		registry: layout.NewRegistry(),
		handles:  resource.NewTable(),
		world:    world,
		resolver: NewResolver(world),
		visuals:  NewVisuals(),
		logger:   logger.With(zap.String("component", "bridge")),
	}
	b.handles.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		b.logger.Debug("handle event",
			zap.Uint32("handle", uint32(e.Handle)),
			zap.Stringer("event", e.Type))
	}))
	return b
}

func (b *Bridge) Registry() *layout.Registry {
	return b.registry
}

func (b *Bridge) Handles() *resource.Table {
	return b.handles
}

func (b *Bridge) World() *World {
	return b.world
}

func (b *Bridge) Arena() Arena {
	return b.arena
}

// Trace returns the calls recorded since the tick began.
func (b *Bridge) Trace() []Call {
	return b.trace
}

func (b *Bridge) Visuals() *Visuals {
	return b.visuals
}

func (b *Bridge) Logs() []LogEntry {
	return b.logs
}

func (b *Bridge) record(fn string, args []uint64, st game.Status, req any, detail string) game.Status {
	b.seq++
	b.trace = append(b.trace, Call{
		Seq:     b.seq,
		Func:    fn,
		Args:    args,
		Status:  st,
		Request: req,
		Detail:  detail,
	})
	if st != game.OK {
		b.logger.Debug("bridge call refused",
			zap.String("func", fn),
			zap.Stringer("status", st),
			zap.String("detail", detail))
	}
	return st
}

// BeginTick validates the registry, voids the handle table, clears the
// per-tick output and writes the world into the arena.
func (b *Bridge) BeginTick(mem screepswasm.Memory) (ArenaStats, error) {
	if err := b.registry.Err(); err != nil {
		return ArenaStats{}, errors.Registration("registry", err)
	}
	if !b.registry.Frozen() {
		return ArenaStats{}, errors.NotInitialized(errors.PhaseTick, "layout registry")
	}

	b.handles.Reset()
	b.trace = nil
	b.logs = nil
	b.visuals.Reset()

	return WriteArena(mem, b.registry, b.arena, b.world.Tick(), b.world.Objects())
}

// EndTick voids the handle table and reports how many handles the guest
// left unreleased.
func (b *Bridge) EndTick() int {
	leaked := b.handles.Reset()
	if leaked > 0 {
		b.logger.Debug("handles released at tick end", zap.Int("count", leaked))
	}
	return leaked
}

// RegisterLayout handles register_layout. Any failure poisons the registry.
func (b *Bridge) RegisterLayout(mem screepswasm.Memory, kind int32, size, entriesPtr, count uint32) game.Status {
	args := []uint64{uint64(uint32(kind)), uint64(size), uint64(entriesPtr), uint64(count)}
	k := layout.Kind(kind)

	fail := func(err error) game.Status {
		b.logger.Error("layout registration failed", zap.Stringer("kind", k), zap.Error(err))
		return b.record("register_layout", args, game.ErrRegistration, nil, err.Error())
	}

	if count > MaxLayoutEntries {
		return fail(b.registry.Fail(errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Object(k.String()).
			Detail("%d entries exceeds limit %d", count, MaxLayoutEntries).
			Build()))
	}
	raw, err := mem.Read(entriesPtr, count*layout.EntrySize)
	if err != nil {
		return fail(b.registry.Fail(errors.OutOfBounds(errors.PhaseRegister, k.String(), nil, entriesPtr, count*layout.EntrySize)))
	}
	entries, err := layout.DecodeEntries(raw)
	if err != nil {
		return fail(b.registry.Fail(err))
	}
	if err := b.registry.Register(k, size, entries); err != nil {
		return fail(err)
	}

	b.logger.Debug("layout registered", zap.Stringer("kind", k), zap.Uint32("size", size), zap.Uint32("fields", count))
	return b.record("register_layout", args, game.OK, nil, k.String())
}

// LimitArena caps how many bytes of a guest arena the host fills. Zero
// means no cap. It applies to later set_arena calls.
func (b *Bridge) LimitArena(n uint32) {
	b.limit = n
}

// SetArena handles set_arena. The arena can only be set before the first tick.
func (b *Bridge) SetArena(mem screepswasm.Memory, ptr, capacity uint32) game.Status {
	args := []uint64{uint64(ptr), uint64(capacity)}
	if b.registry.Frozen() {
		return b.record("set_arena", args, game.ErrRegistration, nil, "arena set after the first tick")
	}
	if capacity < ArenaHeaderSize {
		return b.record("set_arena", args, game.ErrInvalidArgs, nil, "arena smaller than its header")
	}
	if sizer, ok := mem.(screepswasm.MemorySizer); ok && uint64(ptr)+uint64(capacity) > uint64(sizer.Size()) {
		return b.record("set_arena", args, game.ErrInvalidArgs, nil, "arena outside guest memory")
	}
	detail := ""
	if b.limit > 0 && capacity > b.limit {
		detail = fmt.Sprintf("capacity capped at %d", b.limit)
		capacity = b.limit
	}
	b.arena = Arena{Ptr: ptr, Cap: capacity}
	return b.record("set_arena", args, game.OK, nil, detail)
}

// BodyCreate handles body_create. It returns 0 when the parts cannot be read.
func (b *Bridge) BodyCreate(mem screepswasm.Memory, partsPtr, count uint32) resource.Handle {
	args := []uint64{uint64(partsPtr), uint64(count)}
	if count > MaxBodyRead {
		b.record("body_create", args, game.ErrInvalidArgs, nil, fmt.Sprintf("%d parts exceeds limit %d", count, MaxBodyRead))
		return 0
	}
	// One bounded read; a range that would wrap past 4 GiB is rejected by Read.
	raw, err := mem.Read(partsPtr, count*4)
	if err != nil {
		b.record("body_create", args, game.ErrInvalidArgs, nil, "parts outside guest memory")
		return 0
	}
	parts := make([]game.BodyPart, count)
	for i := range parts {
		v := binary.LittleEndian.Uint32(raw[i*4:])
		parts[i] = game.BodyPart(int32(v))
		if !parts[i].Valid() {
			b.record("body_create", args, game.ErrInvalidArgs, nil, fmt.Sprintf("invalid body part %d at %d", int32(v), i))
			return 0
		}
	}
	h, err := b.handles.Create(resource.TypeBody, &Body{Parts: parts})
	if err != nil {
		b.record("body_create", args, game.ErrInvalidArgs, nil, err.Error())
		return 0
	}
	b.record("body_create", args, game.OK, nil, fmt.Sprintf("handle %d, %d parts", h, count))
	return h
}

// HandleRelease handles handle_release.
func (b *Bridge) HandleRelease(h resource.Handle) game.Status {
	args := []uint64{uint64(h)}
	if err := b.handles.Release(h); err != nil {
		return b.record("handle_release", args, game.ErrInvalidHandle, nil, err.Error())
	}
	return b.record("handle_release", args, game.OK, nil, "")
}

func (b *Bridge) body(h resource.Handle) (*Body, error) {
	v, err := b.handles.GetTyped(h, resource.TypeBody)
	if err != nil {
		return nil, err
	}
	return v.(*Body), nil
}

// SpawnCreep handles spawn_creep. A bad handle is reported before the id is
// resolved; a stale id dispatches nothing.
func (b *Bridge) SpawnCreep(mem screepswasm.Memory, idPtr, bodyHandle, namePtr, nameLen, directions, dryRun uint32) game.Status {
	const fn = "spawn_creep"
	args := []uint64{uint64(idPtr), uint64(bodyHandle), uint64(namePtr), uint64(nameLen), uint64(directions), uint64(dryRun)}

	body, err := b.body(resource.Handle(bodyHandle))
	if err != nil {
		return b.record(fn, args, game.ErrInvalidHandle, nil, err.Error())
	}
	spawn, err := b.resolver.ResolveKind(mem, idPtr, layout.KindSpawn)
	if err != nil {
		return b.record(fn, args, game.ErrInvalidTarget, nil, err.Error())
	}
	name, err := ReadString(mem, namePtr, nameLen)
	if err != nil {
		return b.record(fn, args, game.ErrInvalidArgs, nil, err.Error())
	}
	dirs, err := decodeDirections(directions)
	if err != nil {
		return b.record(fn, args, game.ErrInvalidArgs, nil, err.Error())
	}

	req := &SpawnRequest{
		Spawn:      spawn.ID,
		Body:       append([]game.BodyPart(nil), body.Parts...),
		Name:       name,
		Directions: dirs,
		DryRun:     dryRun != 0,
	}
	st := b.world.SpawnCreep(spawn, *req)
	return b.record(fn, args, st, req, fmt.Sprintf("%s %q %d parts", spawn.ID, name, len(body.Parts)))
}

// SpawningCancel handles spawning_cancel.
func (b *Bridge) SpawningCancel(mem screepswasm.Memory, idPtr uint32) game.Status {
	args := []uint64{uint64(idPtr)}
	spawn, err := b.resolver.ResolveKind(mem, idPtr, layout.KindSpawn)
	if err != nil {
		return b.record("spawning_cancel", args, game.ErrInvalidTarget, nil, err.Error())
	}
	return b.record("spawning_cancel", args, b.world.CancelSpawning(spawn), nil, spawn.ID.String())
}

// SpawningSetDirections handles spawning_set_directions.
func (b *Bridge) SpawningSetDirections(mem screepswasm.Memory, idPtr, directions uint32) game.Status {
	const fn = "spawning_set_directions"
	args := []uint64{uint64(idPtr), uint64(directions)}
	spawn, err := b.resolver.ResolveKind(mem, idPtr, layout.KindSpawn)
	if err != nil {
		return b.record(fn, args, game.ErrInvalidTarget, nil, err.Error())
	}
	dirs, err := decodeDirections(directions)
	if err != nil {
		return b.record(fn, args, game.ErrInvalidArgs, nil, err.Error())
	}
	return b.record(fn, args, b.world.SetSpawningDirections(spawn, dirs), dirs, spawn.ID.String())
}

func (b *Bridge) room(mem screepswasm.Memory, ptr, n uint32) (string, error) {
	room, err := ReadString(mem, ptr, n)
	if err != nil {
		return "", err
	}
	if room == "" {
		return "", errors.InvalidInput(errors.PhaseBridge, "empty room name")
	}
	return room, nil
}

// DrawCircle handles draw_circle.
func (b *Bridge) DrawCircle(mem screepswasm.Memory, roomPtr, roomLen uint32, at game.Point, style game.CircleStyle) game.Status {
	args := []uint64{uint64(roomPtr), uint64(roomLen)}
	room, err := b.room(mem, roomPtr, roomLen)
	if err != nil {
		return b.record("draw_circle", args, game.ErrInvalidArgs, nil, err.Error())
	}
	if !finite(at.X, at.Y, style.Radius, style.Opacity, style.StrokeWidth) {
		return b.record("draw_circle", args, game.ErrInvalidArgs, nil, errNonFinite)
	}
	b.visuals.Add(room, Visual{Shape: ShapeCircle, Points: []game.Point{at}, Circle: &style})
	return b.record("draw_circle", args, game.OK, nil, room)
}

// DrawLine handles draw_line.
func (b *Bridge) DrawLine(mem screepswasm.Memory, roomPtr, roomLen uint32, from, to game.Point, style game.LineStyleOptions) game.Status {
	args := []uint64{uint64(roomPtr), uint64(roomLen)}
	room, err := b.room(mem, roomPtr, roomLen)
	if err != nil {
		return b.record("draw_line", args, game.ErrInvalidArgs, nil, err.Error())
	}
	if !finite(from.X, from.Y, to.X, to.Y, style.Width, style.Opacity) {
		return b.record("draw_line", args, game.ErrInvalidArgs, nil, errNonFinite)
	}
	b.visuals.Add(room, Visual{Shape: ShapeLine, Points: []game.Point{from, to}, Line: &style})
	return b.record("draw_line", args, game.OK, nil, room)
}

// DrawPoly handles draw_poly. Points are count consecutive {x, y f32} pairs.
func (b *Bridge) DrawPoly(mem screepswasm.Memory, roomPtr, roomLen, pointsPtr, count uint32, style game.PolyStyle) game.Status {
	args := []uint64{uint64(roomPtr), uint64(roomLen), uint64(pointsPtr), uint64(count)}
	room, err := b.room(mem, roomPtr, roomLen)
	if err != nil {
		return b.record("draw_poly", args, game.ErrInvalidArgs, nil, err.Error())
	}
	if count > MaxPolyPoints {
		return b.record("draw_poly", args, game.ErrInvalidArgs, nil, fmt.Sprintf("%d points exceeds limit %d", count, MaxPolyPoints))
	}
	if !finite(style.Opacity, style.StrokeWidth) {
		return b.record("draw_poly", args, game.ErrInvalidArgs, nil, errNonFinite)
	}
	raw, err := mem.Read(pointsPtr, count*8)
	if err != nil {
		return b.record("draw_poly", args, game.ErrInvalidArgs, nil, "points outside guest memory")
	}
	points := make([]game.Point, count)
	for i := range points {
		x := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
		if !finite(x, y) {
			return b.record("draw_poly", args, game.ErrInvalidArgs, nil, fmt.Sprintf("non-finite point at %d", i))
		}
		points[i] = game.Point{X: x, Y: y}
	}
	b.visuals.Add(room, Visual{Shape: ShapePoly, Points: points, Poly: &style})
	return b.record("draw_poly", args, game.OK, nil, room)
}

// DrawText handles draw_text. The font string is read into style.Font.
func (b *Bridge) DrawText(mem screepswasm.Memory, roomPtr, roomLen uint32, at game.Point, textPtr, textLen, fontPtr, fontLen uint32, style game.TextStyle) game.Status {
	args := []uint64{uint64(roomPtr), uint64(roomLen), uint64(textPtr), uint64(textLen), uint64(fontPtr), uint64(fontLen)}
	room, err := b.room(mem, roomPtr, roomLen)
	if err != nil {
		return b.record("draw_text", args, game.ErrInvalidArgs, nil, err.Error())
	}
	if !finite(at.X, at.Y, style.StrokeWidth, style.BackgroundPadding, style.Opacity) {
		return b.record("draw_text", args, game.ErrInvalidArgs, nil, errNonFinite)
	}
	text, err := ReadString(mem, textPtr, textLen)
	if err != nil {
		return b.record("draw_text", args, game.ErrInvalidArgs, nil, err.Error())
	}
	font, err := ReadString(mem, fontPtr, fontLen)
	if err != nil {
		return b.record("draw_text", args, game.ErrInvalidArgs, nil, err.Error())
	}
	style.Font = font
	b.visuals.Add(room, Visual{Shape: ShapeText, Points: []game.Point{at}, Label: text, Text: &style})
	return b.record("draw_text", args, game.OK, nil, room)
}

// Log handles log.
func (b *Bridge) Log(mem screepswasm.Memory, level int32, ptr, n uint32) game.Status {
	args := []uint64{uint64(uint32(level)), uint64(ptr), uint64(n)}
	msg, err := ReadString(mem, ptr, n)
	if err != nil {
		return b.record("log", args, game.ErrInvalidArgs, nil, err.Error())
	}
	lvl := game.LogLevel(level)
	if !lvl.Valid() {
		lvl = game.LogInfo
	}
	b.logs = append(b.logs, LogEntry{Level: lvl, Message: msg})

	guest := b.logger.With(zap.String("source", "guest"), zap.Uint32("tick", b.world.Tick()))
	switch lvl {
	case game.LogDebug:
		guest.Debug(msg)
	case game.LogWarn:
		guest.Warn(msg)
	case game.LogError:
		guest.Error(msg)
	default:
		guest.Info(msg)
	}
	return b.record("log", args, game.OK, nil, "")
}

// ReadString reads exactly n one-byte characters at ptr. Each byte is one
// Latin-1 code point; no terminator is consulted.
func ReadString(mem screepswasm.Memory, ptr, n uint32) (string, error) {
	if n == 0 {
		return "", nil
	}
	if n > MaxStringLen {
		return "", errors.InvalidInput(errors.PhaseBridge, fmt.Sprintf("string length %d exceeds limit %d", n, MaxStringLen))
	}
	raw, err := mem.Read(ptr, n)
	if err != nil {
		return "", errors.OutOfBounds(errors.PhaseBridge, "string", nil, ptr, n)
	}
	ascii := true
	for _, c := range raw {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(raw), nil
	}
	var sb strings.Builder
	sb.Grow(int(n) * 2)
	for _, c := range raw {
		sb.WriteRune(rune(c))
	}
	return sb.String(), nil
}

// decodeDirections unpacks a direction word. Zero is the empty list.
func decodeDirections(w uint32) ([]game.Direction, error) {
	d := game.Directions(w)
	if err := d.Validate(); err != nil {
		return nil, errors.InvalidInput(errors.PhaseBridge, err.Error())
	}
	return d.Unpack(), nil
}

func packDirections(dirs []game.Direction) game.Directions {
	d, err := game.PackDirections(dirs...)
	if err != nil {
		return 0
	}
	return d
}
